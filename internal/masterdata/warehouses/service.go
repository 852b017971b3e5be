package warehouses

import (
	"context"
	"fmt"
	"strings"

	"github.com/medika-erp/medika-erp/internal/platform/httpx"
)

// Service coordinates warehouse master data operations.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Warehouse, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Warehouse, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateWarehouseRequest) (Warehouse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Warehouse{}, fmt.Errorf("%w: warehouse name is required", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, name, strings.TrimSpace(req.Address))
}

func (s *Service) Update(ctx context.Context, id int64, req CreateWarehouseRequest) (Warehouse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Warehouse{}, fmt.Errorf("%w: warehouse name is required", httpx.ErrValidation)
	}
	if err := s.repo.Update(ctx, id, name, strings.TrimSpace(req.Address)); err != nil {
		return Warehouse{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}
