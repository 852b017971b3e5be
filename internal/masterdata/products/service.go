package products

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/medika-erp/medika-erp/internal/masterdata/shared"
	"github.com/medika-erp/medika-erp/internal/platform/httpx"
)

// Service coordinates product master data operations.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns products matching the filters plus the unfiltered total.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

// Get loads one product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new product.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return Product{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.Create(ctx, Product{
		Code:        req.Code,
		Name:        req.Name,
		Unit:        req.Unit,
		BuyPrice:    req.BuyPrice,
		SellPrice:   req.SellPrice,
		TaxRate:     req.TaxRate,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		WarehouseID: req.WarehouseID,
		CategoryID:  req.CategoryID,
	})
}

// Update applies partial updates on top of the stored product.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return Product{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Unit != nil {
		existing.Unit = *req.Unit
	}
	if req.BuyPrice != nil {
		existing.BuyPrice = *req.BuyPrice
	}
	if req.SellPrice != nil {
		existing.SellPrice = *req.SellPrice
	}
	if req.TaxRate != nil {
		existing.TaxRate = *req.TaxRate
	}
	if req.MinStock != nil {
		existing.MinStock = *req.MinStock
	}
	if req.WarehouseID != nil {
		existing.WarehouseID = *req.WarehouseID
	}
	if req.CategoryID != nil {
		existing.CategoryID = *req.CategoryID
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, id, existing); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

// Deactivate retires a product without deleting its history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

// ListLowStock returns active products at or under their minimum stock.
func (s *Service) ListLowStock(ctx context.Context) ([]Product, error) {
	active := true
	items, _, err := s.repo.List(ctx, shared.ListFilters{IsActive: &active, LowStock: true})
	return items, err
}
