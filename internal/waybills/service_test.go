package waybills

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medika-erp/medika-erp/internal/numbering"
	"github.com/medika-erp/medika-erp/internal/platform/httpx"
)

type fakeRepo struct {
	seq      int64
	nextID   int64
	waybills map[int64]*Waybill
	items    map[int64][]WaybillItem
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{waybills: map[int64]*Waybill{}, items: map[int64][]WaybillItem{}}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) NextNumber(_ context.Context, at time.Time) (string, error) {
	f.seq++
	return numbering.Format(numbering.PrefixWaybill, at.Year(), f.seq), nil
}

func (f *fakeRepo) Insert(_ context.Context, wb *Waybill) error {
	f.nextID++
	wb.ID = f.nextID
	wb.CreatedAt = time.Now()
	wb.UpdatedAt = wb.CreatedAt
	stored := *wb
	f.waybills[wb.ID] = &stored
	return nil
}

func (f *fakeRepo) Update(_ context.Context, wb *Waybill) error {
	if _, ok := f.waybills[wb.ID]; !ok {
		return httpx.ErrNotFound
	}
	stored := *wb
	stored.Items = nil
	f.waybills[wb.ID] = &stored
	return nil
}

func (f *fakeRepo) DeleteItems(_ context.Context, waybillID int64) error {
	delete(f.items, waybillID)
	return nil
}

func (f *fakeRepo) InsertItems(_ context.Context, waybillID int64, items []WaybillItem) error {
	for i := range items {
		items[i].WaybillID = waybillID
		items[i].ID = int64(len(f.items[waybillID]) + 1)
		f.items[waybillID] = append(f.items[waybillID], items[i])
	}
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Waybill, error) {
	wb, ok := f.waybills[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	out := *wb
	out.Items = append([]WaybillItem(nil), f.items[id]...)
	return &out, nil
}

func (f *fakeRepo) GetByNumber(_ context.Context, number string) (*Waybill, error) {
	for id, wb := range f.waybills {
		if wb.Number == number {
			return f.GetByID(context.Background(), id)
		}
	}
	return nil, httpx.ErrNotFound
}

func (f *fakeRepo) List(_ context.Context, _ ListFilters) ([]Waybill, int64, error) {
	out := make([]Waybill, 0, len(f.waybills))
	for _, wb := range f.waybills {
		out = append(out, *wb)
	}
	return out, int64(len(out)), nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateWaybill(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	wb, err := svc.Create(context.Background(), CreateWaybillRequest{
		PartnerID:   1,
		Type:        WaybillTypeOutgoing,
		WaybillDate: date(2026, time.March, 10),
		Items: []WaybillItemRequest{
			{ProductID: 10, Quantity: 5, Unit: "box"},
			{ProductID: 11, Quantity: 2, Unit: "pcs", Description: "fragile"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "IRS-2026-0001", wb.Number)
	require.Equal(t, WaybillStatusSent, wb.Status)
	require.Len(t, wb.Items, 2)
}

func TestCreateWaybillValidation(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), CreateWaybillRequest{
		PartnerID:   1,
		Type:        WaybillTypeOutgoing,
		WaybillDate: date(2026, time.March, 10),
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), CreateWaybillRequest{
		PartnerID:   1,
		Type:        "SIDEWAYS",
		WaybillDate: date(2026, time.March, 10),
		Items:       []WaybillItemRequest{{ProductID: 10, Quantity: 1}},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateWaybillReplacesItemSet(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	wb, err := svc.Create(context.Background(), CreateWaybillRequest{
		PartnerID:   1,
		Type:        WaybillTypeOutgoing,
		WaybillDate: date(2026, time.March, 10),
		Items: []WaybillItemRequest{
			{ProductID: 10, Quantity: 5, Unit: "box"},
			{ProductID: 11, Quantity: 2, Unit: "pcs"},
			{ProductID: 12, Quantity: 1, Unit: "pcs"},
		},
	})
	require.NoError(t, err)

	newItems := []WaybillItemRequest{{ProductID: 20, Quantity: 9, Unit: "box"}}
	updated, err := svc.Update(context.Background(), wb.ID, UpdateWaybillRequest{Items: &newItems})
	require.NoError(t, err)

	// Replace, not merge: the old three lines are gone.
	require.Len(t, updated.Items, 1)
	require.Equal(t, int64(20), updated.Items[0].ProductID)
	require.Equal(t, 9, updated.Items[0].Quantity)
}

func TestUpdateWaybillWithoutItemsKeepsItems(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	wb, err := svc.Create(context.Background(), CreateWaybillRequest{
		PartnerID:   1,
		Type:        WaybillTypeOutgoing,
		WaybillDate: date(2026, time.March, 10),
		Items:       []WaybillItemRequest{{ProductID: 10, Quantity: 5, Unit: "box"}},
	})
	require.NoError(t, err)

	status := WaybillStatusDelivered
	updated, err := svc.Update(context.Background(), wb.ID, UpdateWaybillRequest{Status: &status})
	require.NoError(t, err)
	require.Equal(t, WaybillStatusDelivered, updated.Status)
	require.Len(t, updated.Items, 1)
}

func TestUpdateWaybillNotFound(t *testing.T) {
	svc := NewService(newFakeRepo())
	status := WaybillStatusCancelled
	_, err := svc.Update(context.Background(), 404, UpdateWaybillRequest{Status: &status})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
