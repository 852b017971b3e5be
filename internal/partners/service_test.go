package partners

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medika-erp/medika-erp/internal/platform/httpx"
	"github.com/medika-erp/medika-erp/internal/shared"
)

type fakeRepo struct {
	partners map[int64]*Partner
	ledger   []LedgerEntry
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{partners: map[int64]*Partner{}, nextID: 1}
}

func (f *fakeRepo) Create(_ context.Context, p *Partner) error {
	p.ID = f.nextID
	f.nextID++
	p.IsActive = true
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.partners[p.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context, _ ListFilters) ([]Partner, int64, error) {
	out := make([]Partner, 0, len(f.partners))
	for _, p := range f.partners {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) Update(_ context.Context, p *Partner) error {
	if _, ok := f.partners[p.ID]; !ok {
		return httpx.ErrNotFound
	}
	cp := *p
	f.partners[p.ID] = &cp
	return nil
}

func (f *fakeRepo) Deactivate(_ context.Context, id int64) error {
	p, ok := f.partners[id]
	if !ok {
		return httpx.ErrNotFound
	}
	p.IsActive = false
	return nil
}

func (f *fakeRepo) ListLedger(_ context.Context, partnerID int64, page shared.Pagination) ([]LedgerEntry, int64, error) {
	var all []LedgerEntry
	for _, e := range f.ledger {
		if e.PartnerID == partnerID {
			all = append(all, e)
		}
	}
	total := int64(len(all))
	off := page.Offset()
	if off >= len(all) {
		return nil, total, nil
	}
	end := off + page.Limit()
	if end > len(all) {
		end = len(all)
	}
	return all[off:end], total, nil
}

func TestCreatePartnerValidation(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreatePartnerRequest{Name: "", Type: PartnerTypeCustomer})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	_, err = svc.Create(ctx, CreatePartnerRequest{Name: "Acme", Type: "WHOLESALER"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	p, err := svc.Create(ctx, CreatePartnerRequest{Name: "Acme Klinik", Type: PartnerTypeCustomer})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.True(t, p.IsActive)
	assert.Zero(t, p.Balance)
}

func TestUpdatePartnerPartialFields(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreatePartnerRequest{Name: "Acme", Type: PartnerTypeCustomer, Phone: "0312 000 00 00"})
	require.NoError(t, err)

	name := "Acme Klinik"
	typ := PartnerTypeBoth
	got, err := svc.Update(ctx, p.ID, UpdatePartnerRequest{Name: &name, Type: &typ})
	require.NoError(t, err)
	assert.Equal(t, "Acme Klinik", got.Name)
	assert.Equal(t, PartnerTypeBoth, got.Type)
	assert.Equal(t, "0312 000 00 00", got.Phone)
}

func TestStatementRunningBalance(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreatePartnerRequest{Name: "Acme", Type: PartnerTypeCustomer})
	require.NoError(t, err)

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo.ledger = []LedgerEntry{
		{ID: 1, PartnerID: p.ID, EntryDate: day, Type: EntryTypeDebit, Amount: 360},
		{ID: 2, PartnerID: p.ID, EntryDate: day.AddDate(0, 0, 3), Type: EntryTypeCredit, Amount: 100},
		{ID: 3, PartnerID: p.ID, EntryDate: day.AddDate(0, 0, 9), Type: EntryTypeDebit, Amount: 40},
	}

	_, lines, total, err := svc.Statement(ctx, p.ID, shared.Pagination{Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, lines, 3)
	assert.InDelta(t, 360, lines[0].RunningBalance, 1e-9)
	assert.InDelta(t, 260, lines[1].RunningBalance, 1e-9)
	assert.InDelta(t, 300, lines[2].RunningBalance, 1e-9)
}

func TestStatementUnknownPartner(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, _, _, err := svc.Statement(context.Background(), 99, shared.Pagination{Page: 1})
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}
