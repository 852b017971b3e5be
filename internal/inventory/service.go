package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/medika-erp/medika-erp/internal/platform/httpx"
	"github.com/medika-erp/medika-erp/internal/shared"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
	audit    *shared.AuditLogger
	logger   *slog.Logger
}

func NewService(logger *slog.Logger, repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, validate: validator.New(), audit: audit, logger: logger}
}

// Adjust applies a relative stock change. An OUT larger than the current
// stock is rejected and nothing is written; this guard applies to manual
// adjustments only, invoice postings may drive stock negative.
func (s *Service) Adjust(ctx context.Context, req AdjustRequest) (*Movement, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	movement := Movement{
		Ref:         uuid.NewString(),
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		Description: req.Description,
	}
	if actor := shared.ActorID(ctx); actor > 0 {
		movement.CreatedBy = &actor
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		name, stock, err := repo.LockProductStock(ctx, req.ProductID)
		if err != nil {
			return err
		}
		movement.OldStock = stock
		if req.Direction == AdjustOut {
			if req.Quantity > stock {
				return fmt.Errorf("%w: product %d has %d, requested %d",
					httpx.ErrInsufficientStock, req.ProductID, stock, req.Quantity)
			}
			movement.Type = MovementTypeAdjustOut
			movement.NewStock = stock - req.Quantity
		} else {
			movement.Type = MovementTypeAdjustIn
			movement.NewStock = stock + req.Quantity
		}
		if movement.Description == "" {
			movement.Description = fmt.Sprintf("Manual adjustment: %s", name)
		}
		if err := repo.UpdateProductStock(ctx, req.ProductID, movement.NewStock); err != nil {
			return err
		}
		return repo.InsertMovement(ctx, &movement)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "stock.adjusted", &movement)
	return &movement, nil
}

// Count overwrites stock with the physically counted value. The movement
// quantity holds the signed difference.
func (s *Service) Count(ctx context.Context, req CountRequest) (*Movement, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	movement := Movement{
		Ref:         uuid.NewString(),
		ProductID:   req.ProductID,
		Type:        MovementTypeCount,
		Description: req.Description,
	}
	if actor := shared.ActorID(ctx); actor > 0 {
		movement.CreatedBy = &actor
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		name, stock, err := repo.LockProductStock(ctx, req.ProductID)
		if err != nil {
			return err
		}
		movement.OldStock = stock
		movement.NewStock = req.Counted
		movement.Quantity = req.Counted - stock
		if movement.Description == "" {
			movement.Description = fmt.Sprintf("Stock count: %s", name)
		}
		if err := repo.UpdateProductStock(ctx, req.ProductID, req.Counted); err != nil {
			return err
		}
		return repo.InsertMovement(ctx, &movement)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "stock.counted", &movement)
	return &movement, nil
}

func (s *Service) recordAudit(ctx context.Context, action string, m *Movement) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{
		Action:   action,
		Entity:   "product",
		EntityID: strconv.FormatInt(m.ProductID, 10),
		Meta: map[string]any{
			"ref":       m.Ref,
			"type":      m.Type,
			"old_stock": m.OldStock,
			"new_stock": m.NewStock,
		},
	}
	if m.CreatedBy != nil {
		log.ActorID = *m.CreatedBy
	}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("audit stock change", slog.Any("error", err))
	}
}

// Movements lists the stock card.
func (s *Service) Movements(ctx context.Context, f MovementFilters) ([]Movement, int64, error) {
	return s.repo.ListMovements(ctx, f)
}
