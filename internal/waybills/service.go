package waybills

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/medika-erp/medika-erp/internal/platform/httpx"
	"github.com/medika-erp/medika-erp/internal/shared"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func itemsFromRequests(reqs []WaybillItemRequest) []WaybillItem {
	items := make([]WaybillItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, WaybillItem{
			ProductID:   r.ProductID,
			Quantity:    r.Quantity,
			Unit:        r.Unit,
			Description: r.Description,
		})
	}
	return items
}

// Create opens a waybill in status SENT. The number allocation and the
// header and item inserts share one transaction.
func (s *Service) Create(ctx context.Context, req CreateWaybillRequest) (*Waybill, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	wb := Waybill{
		Type:        req.Type,
		Status:      WaybillStatusSent,
		PartnerID:   req.PartnerID,
		WaybillDate: req.WaybillDate,
		Notes:       req.Notes,
	}
	if actor := shared.ActorID(ctx); actor > 0 {
		wb.CreatedBy = &actor
	}

	var waybillID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.NextNumber(ctx, wb.WaybillDate)
		if err != nil {
			return err
		}
		wb.Number = number
		if err := repo.Insert(ctx, &wb); err != nil {
			return err
		}
		waybillID = wb.ID
		return repo.InsertItems(ctx, wb.ID, itemsFromRequests(req.Items))
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, waybillID)
}

// Update edits header fields and, when items are given, replaces the whole
// item set. The delete and the reinsert run in the same transaction so a
// reader never sees a half-replaced waybill.
func (s *Service) Update(ctx context.Context, id int64, req UpdateWaybillRequest) (*Waybill, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	wb, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.PartnerID != nil {
		wb.PartnerID = *req.PartnerID
	}
	if req.Type != nil {
		wb.Type = *req.Type
	}
	if req.Status != nil {
		wb.Status = *req.Status
	}
	if req.WaybillDate != nil {
		wb.WaybillDate = *req.WaybillDate
	}
	if req.Notes != nil {
		wb.Notes = *req.Notes
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, wb); err != nil {
			return err
		}
		if req.Items == nil {
			return nil
		}
		if err := repo.DeleteItems(ctx, id); err != nil {
			return err
		}
		return repo.InsertItems(ctx, id, itemsFromRequests(*req.Items))
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Waybill, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*Waybill, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, f ListFilters) ([]Waybill, int64, error) {
	return s.repo.List(ctx, f)
}
