package proposals

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/medika-erp/medika-erp/internal/invoices"
	"github.com/medika-erp/medika-erp/internal/platform/httpx"
	"github.com/medika-erp/medika-erp/internal/shared"
)

// InvoicePoster posts the invoice a converted proposal becomes. Satisfied
// by *invoices.Service.
type InvoicePoster interface {
	Create(ctx context.Context, req invoices.CreateInvoiceRequest) (*invoices.Invoice, error)
}

type Service struct {
	repo     Repository
	invoices InvoicePoster
	validate *validator.Validate
}

func NewService(repo Repository, poster InvoicePoster) *Service {
	return &Service{repo: repo, invoices: poster, validate: validator.New()}
}

// Create opens a proposal in status DRAFT with totals computed the same way
// invoice totals are.
func (s *Service) Create(ctx context.Context, req CreateProposalRequest) (*Proposal, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	p := Proposal{
		Type:         req.Type,
		Status:       ProposalStatusDraft,
		PartnerID:    req.PartnerID,
		ProposalDate: req.ProposalDate,
		ValidUntil:   req.ValidUntil,
		Notes:        req.Notes,
	}
	if actor := shared.ActorID(ctx); actor > 0 {
		p.CreatedBy = &actor
	}
	for _, item := range req.Items {
		lineTotal, lineTax := invoices.LineTotals(item.Quantity, item.UnitPrice, item.TaxRate)
		p.SubTotal += lineTotal
		p.TaxTotal += lineTax
		p.Items = append(p.Items, ProposalItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			TaxRate:   item.TaxRate,
			LineTotal: lineTotal,
			LineTax:   lineTax,
		})
	}
	p.TotalAmount = p.SubTotal + p.TaxTotal

	var proposalID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.NextNumber(ctx, p.ProposalDate)
		if err != nil {
			return err
		}
		p.Number = number
		if err := repo.Insert(ctx, &p); err != nil {
			return err
		}
		proposalID = p.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, proposalID)
}

// ChangeStatus moves a proposal along DRAFT -> SENT -> APPROVED | REJECTED.
// CONVERTED is reachable only through Convert.
func (s *Service) ChangeStatus(ctx context.Context, id int64, to ProposalStatus) (*Proposal, error) {
	if to == ProposalStatusConverted {
		return nil, fmt.Errorf("%w: %s via status change", ErrInvalidTransition, to)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(p.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, to, nil); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Convert promotes an APPROVED proposal into an invoice of the same type
// and marks the proposal CONVERTED. The invoice posting carries all its
// usual side effects; the proposal itself still moves no stock or balance.
func (s *Service) Convert(ctx context.Context, id int64) (*Proposal, *invoices.Invoice, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !CanTransition(p.Status, ProposalStatusConverted) {
		return nil, nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, ProposalStatusConverted)
	}

	req := invoices.CreateInvoiceRequest{
		PartnerID:   p.PartnerID,
		Type:        invoices.InvoiceType(p.Type),
		InvoiceDate: p.ProposalDate,
		Notes:       fmt.Sprintf("Converted from proposal %s", p.Number),
	}
	for _, item := range p.Items {
		req.Items = append(req.Items, invoices.InvoiceItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			TaxRate:   item.TaxRate,
		})
	}

	inv, err := s.invoices.Create(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("convert proposal %s: %w", p.Number, err)
	}
	if err := s.repo.UpdateStatus(ctx, id, ProposalStatusConverted, &inv.ID); err != nil {
		return nil, nil, err
	}

	p, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return p, inv, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Proposal, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilters) ([]Proposal, int64, error) {
	return s.repo.List(ctx, f)
}
