package proposals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medika-erp/medika-erp/internal/invoices"
	"github.com/medika-erp/medika-erp/internal/numbering"
	"github.com/medika-erp/medika-erp/internal/platform/httpx"
)

type fakeRepo struct {
	seq       int64
	nextID    int64
	proposals map[int64]*Proposal
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{proposals: map[int64]*Proposal{}}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) NextNumber(_ context.Context, at time.Time) (string, error) {
	f.seq++
	return numbering.Format(numbering.PrefixProposal, at.Year(), f.seq), nil
}

func (f *fakeRepo) Insert(_ context.Context, p *Proposal) error {
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	f.proposals[p.ID] = &stored
	return nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, status ProposalStatus, invoiceID *int64) error {
	p, ok := f.proposals[id]
	if !ok {
		return httpx.ErrNotFound
	}
	p.Status = status
	if invoiceID != nil {
		p.InvoiceID = invoiceID
	}
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Proposal, error) {
	p, ok := f.proposals[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (f *fakeRepo) List(_ context.Context, _ ListFilters) ([]Proposal, int64, error) {
	out := make([]Proposal, 0, len(f.proposals))
	for _, p := range f.proposals {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

type fakePoster struct {
	created []invoices.CreateInvoiceRequest
	err     error
}

func (f *fakePoster) Create(_ context.Context, req invoices.CreateInvoiceRequest) (*invoices.Invoice, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &invoices.Invoice{ID: int64(len(f.created)), Number: "FAT-2026-0001", Type: req.Type}, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newDraft(t *testing.T, svc *Service) *Proposal {
	t.Helper()
	p, err := svc.Create(context.Background(), CreateProposalRequest{
		PartnerID:    1,
		Type:         ProposalTypeSales,
		ProposalDate: date(2026, time.February, 1),
		Items: []ProposalItemRequest{
			{ProductID: 10, Quantity: 3, UnitPrice: 100, TaxRate: 20},
		},
	})
	require.NoError(t, err)
	return p
}

func TestCreateProposal(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakePoster{})
	p := newDraft(t, svc)

	require.Equal(t, "TEK-2026-0001", p.Number)
	require.Equal(t, ProposalStatusDraft, p.Status)
	require.InDelta(t, 300.0, p.SubTotal, 1e-9)
	require.InDelta(t, 60.0, p.TaxTotal, 1e-9)
	require.InDelta(t, 360.0, p.TotalAmount, 1e-9)
}

func TestStatusTransitions(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakePoster{})
	p := newDraft(t, svc)

	// DRAFT cannot jump straight to APPROVED.
	_, err := svc.ChangeStatus(context.Background(), p.ID, ProposalStatusApproved)
	require.ErrorIs(t, err, ErrInvalidTransition)

	p, err = svc.ChangeStatus(context.Background(), p.ID, ProposalStatusSent)
	require.NoError(t, err)
	require.Equal(t, ProposalStatusSent, p.Status)

	p, err = svc.ChangeStatus(context.Background(), p.ID, ProposalStatusRejected)
	require.NoError(t, err)
	require.Equal(t, ProposalStatusRejected, p.Status)

	// Rejected is terminal.
	_, err = svc.ChangeStatus(context.Background(), p.ID, ProposalStatusSent)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestChangeStatusCannotConvert(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakePoster{})
	p := newDraft(t, svc)

	_, err := svc.ChangeStatus(context.Background(), p.ID, ProposalStatusConverted)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConvertApprovedProposal(t *testing.T) {
	poster := &fakePoster{}
	svc := NewService(newFakeRepo(), poster)
	p := newDraft(t, svc)

	_, err := svc.ChangeStatus(context.Background(), p.ID, ProposalStatusSent)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(context.Background(), p.ID, ProposalStatusApproved)
	require.NoError(t, err)

	converted, inv, err := svc.Convert(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, ProposalStatusConverted, converted.Status)
	require.NotNil(t, converted.InvoiceID)
	require.Equal(t, inv.ID, *converted.InvoiceID)

	require.Len(t, poster.created, 1)
	req := poster.created[0]
	require.Equal(t, invoices.InvoiceTypeSales, req.Type)
	require.Equal(t, int64(1), req.PartnerID)
	require.Len(t, req.Items, 1)
	require.Equal(t, 3, req.Items[0].Quantity)
	require.Contains(t, req.Notes, p.Number)
}

func TestConvertRequiresApproval(t *testing.T) {
	poster := &fakePoster{}
	svc := NewService(newFakeRepo(), poster)
	p := newDraft(t, svc)

	_, _, err := svc.Convert(context.Background(), p.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Empty(t, poster.created)
}

func TestConvertPostingFailureKeepsStatus(t *testing.T) {
	poster := &fakePoster{err: httpx.ErrNotFound}
	repo := newFakeRepo()
	svc := NewService(repo, poster)
	p := newDraft(t, svc)

	_, err := svc.ChangeStatus(context.Background(), p.ID, ProposalStatusSent)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(context.Background(), p.ID, ProposalStatusApproved)
	require.NoError(t, err)

	_, _, err = svc.Convert(context.Background(), p.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, ProposalStatusApproved, got.Status)
	require.Nil(t, got.InvoiceID)
}
