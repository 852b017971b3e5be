package partners

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

func (s *Service) Create(ctx context.Context, req CreatePartnerRequest) (*Partner, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	p := &Partner{
		Name:      req.Name,
		Type:      req.Type,
		TaxNumber: req.TaxNumber,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Partner, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilters) ([]Partner, int64, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdatePartnerRequest) (*Partner, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Type != nil {
		p.Type = *req.Type
	}
	if req.TaxNumber != nil {
		p.TaxNumber = *req.TaxNumber
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

// Statement returns a partner's ledger page with a running balance per line.
// The running balance starts from zero at the first page of the ledger, so a
// full statement is obtained by walking pages in order.
func (s *Service) Statement(ctx context.Context, partnerID int64, page shared.Pagination) (*Partner, []StatementLine, int64, error) {
	p, err := s.repo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, nil, 0, err
	}
	entries, total, err := s.repo.ListLedger(ctx, partnerID, page)
	if err != nil {
		return nil, nil, 0, err
	}
	lines := make([]StatementLine, 0, len(entries))
	var running float64
	for _, e := range entries {
		if e.Type == EntryTypeDebit {
			running += e.Amount
		} else {
			running -= e.Amount
		}
		lines = append(lines, StatementLine{LedgerEntry: e, RunningBalance: running})
	}
	return p, lines, total, nil
}
