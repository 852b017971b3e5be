package invoices

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medika-erp/medika-erp/internal/inventory"
	"github.com/medika-erp/medika-erp/internal/numbering"
	"github.com/medika-erp/medika-erp/internal/partners"
	"github.com/medika-erp/medika-erp/internal/platform/httpx"
)

// fakeRepo keeps all posting side effects in memory. WithTx snapshots the
// state and restores it when fn fails, mirroring a rolled back transaction.
type fakeRepo struct {
	seq      int64
	nextID   int64
	invoices map[int64]*Invoice
	ledger   []partners.LedgerEntry
	balances map[int64]float64
	stocks   map[int64]int
	names    map[int64]string
	moves    []inventory.Movement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		invoices: map[int64]*Invoice{},
		balances: map[int64]float64{},
		stocks:   map[int64]int{},
		names:    map[int64]string{},
	}
}

func (f *fakeRepo) snapshot() *fakeRepo {
	s := newFakeRepo()
	s.seq, s.nextID = f.seq, f.nextID
	for k, v := range f.invoices {
		s.invoices[k] = v
	}
	for k, v := range f.balances {
		s.balances[k] = v
	}
	for k, v := range f.stocks {
		s.stocks[k] = v
	}
	s.ledger = append(s.ledger, f.ledger...)
	s.moves = append(s.moves, f.moves...)
	return s
}

func (f *fakeRepo) restore(s *fakeRepo) {
	f.seq, f.nextID = s.seq, s.nextID
	f.invoices, f.balances, f.stocks = s.invoices, s.balances, s.stocks
	f.ledger, f.moves = s.ledger, s.moves
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	before := f.snapshot()
	if err := fn(ctx, f); err != nil {
		f.restore(before)
		return err
	}
	return nil
}

func (f *fakeRepo) NextNumber(_ context.Context, at time.Time) (string, error) {
	f.seq++
	return numbering.Format(numbering.PrefixInvoice, at.Year(), f.seq), nil
}

func (f *fakeRepo) Insert(_ context.Context, inv *Invoice) error {
	f.nextID++
	inv.ID = f.nextID
	inv.CreatedAt = time.Now()
	stored := *inv
	f.invoices[inv.ID] = &stored
	return nil
}

func (f *fakeRepo) InsertLedgerEntry(_ context.Context, e *partners.LedgerEntry) error {
	e.ID = int64(len(f.ledger) + 1)
	f.ledger = append(f.ledger, *e)
	return nil
}

func (f *fakeRepo) AdjustPartnerBalance(_ context.Context, partnerID int64, delta float64) error {
	if _, ok := f.balances[partnerID]; !ok {
		return httpx.ErrNotFound
	}
	f.balances[partnerID] += delta
	return nil
}

func (f *fakeRepo) LockProductStock(_ context.Context, productID int64) (string, int, error) {
	stock, ok := f.stocks[productID]
	if !ok {
		return "", 0, httpx.ErrNotFound
	}
	return f.names[productID], stock, nil
}

func (f *fakeRepo) UpdateProductStock(_ context.Context, productID int64, stock int) error {
	if _, ok := f.stocks[productID]; !ok {
		return httpx.ErrNotFound
	}
	f.stocks[productID] = stock
	return nil
}

func (f *fakeRepo) InsertMovement(_ context.Context, m *inventory.Movement) error {
	m.ID = int64(len(f.moves) + 1)
	f.moves = append(f.moves, *m)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return inv, nil
}

func (f *fakeRepo) GetByNumber(_ context.Context, number string) (*Invoice, error) {
	for _, inv := range f.invoices {
		if inv.Number == number {
			return inv, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (f *fakeRepo) List(_ context.Context, _ ListFilters) ([]Invoice, int64, error) {
	out := make([]Invoice, 0, len(f.invoices))
	for _, inv := range f.invoices {
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func newTestService(repo Repository) *Service {
	return NewService(slog.Default(), repo, nil)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateSalesInvoice(t *testing.T) {
	repo := newFakeRepo()
	repo.balances[1] = 0
	repo.stocks[10] = 10
	repo.names[10] = "Sterile gauze 10x10"
	svc := newTestService(repo)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		PartnerID:   1,
		Type:        InvoiceTypeSales,
		InvoiceDate: date(2026, time.March, 5),
		Items: []InvoiceItemRequest{
			{ProductID: 10, Quantity: 3, UnitPrice: 100, TaxRate: 20},
		},
	})
	require.NoError(t, err)

	require.Equal(t, "FAT-2026-0001", inv.Number)
	require.InDelta(t, 300.0, inv.SubTotal, 1e-9)
	require.InDelta(t, 60.0, inv.TaxTotal, 1e-9)
	require.InDelta(t, 360.0, inv.TotalAmount, 1e-9)

	require.Equal(t, 7, repo.stocks[10])
	require.InDelta(t, 360.0, repo.balances[1], 1e-9)

	require.Len(t, repo.ledger, 1)
	require.Equal(t, partners.EntryTypeDebit, repo.ledger[0].Type)
	require.InDelta(t, 360.0, repo.ledger[0].Amount, 1e-9)
	require.Equal(t, inv.ID, *repo.ledger[0].InvoiceID)

	require.Len(t, repo.moves, 1)
	m := repo.moves[0]
	require.Equal(t, inventory.MovementTypeSale, m.Type)
	require.Equal(t, 10, m.OldStock)
	require.Equal(t, 7, m.NewStock)
	require.Contains(t, m.Description, "FAT-2026-0001")
	require.NotEmpty(t, m.Ref)
}

func TestCreatePurchaseInvoice(t *testing.T) {
	repo := newFakeRepo()
	repo.balances[2] = 100
	repo.stocks[20] = 5
	repo.names[20] = "Examination gloves M"
	svc := newTestService(repo)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		PartnerID:   2,
		Type:        InvoiceTypePurchase,
		InvoiceDate: date(2026, time.March, 6),
		Items: []InvoiceItemRequest{
			{ProductID: 20, Quantity: 40, UnitPrice: 2.5, TaxRate: 10},
		},
	})
	require.NoError(t, err)

	require.InDelta(t, 100.0, inv.SubTotal, 1e-9)
	require.InDelta(t, 110.0, inv.TotalAmount, 1e-9)

	// Purchases credit the partner and increment stock.
	require.InDelta(t, -10.0, repo.balances[2], 1e-9)
	require.Equal(t, 45, repo.stocks[20])
	require.Len(t, repo.ledger, 1)
	require.Equal(t, partners.EntryTypeCredit, repo.ledger[0].Type)
	require.Equal(t, inventory.MovementTypePurchase, repo.moves[0].Type)
}

func TestCreateInvoiceMultiLineTotals(t *testing.T) {
	repo := newFakeRepo()
	repo.balances[1] = 0
	repo.stocks[10], repo.stocks[11] = 50, 50
	repo.names[10], repo.names[11] = "A", "B"
	svc := newTestService(repo)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		PartnerID:   1,
		Type:        InvoiceTypeSales,
		InvoiceDate: date(2026, time.April, 1),
		Items: []InvoiceItemRequest{
			{ProductID: 10, Quantity: 2, UnitPrice: 50, TaxRate: 20},
			{ProductID: 11, Quantity: 1, UnitPrice: 80, TaxRate: 0},
		},
	})
	require.NoError(t, err)

	require.InDelta(t, 180.0, inv.SubTotal, 1e-9)
	require.InDelta(t, 20.0, inv.TaxTotal, 1e-9)
	require.InDelta(t, 200.0, inv.TotalAmount, 1e-9)
	require.Len(t, repo.moves, 2)
}

func TestCreateInvoiceUnknownProductRollsBackEverything(t *testing.T) {
	repo := newFakeRepo()
	repo.balances[1] = 42
	repo.stocks[10] = 10
	repo.names[10] = "A"
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInvoiceRequest{
		PartnerID:   1,
		Type:        InvoiceTypeSales,
		InvoiceDate: date(2026, time.May, 1),
		Items: []InvoiceItemRequest{
			{ProductID: 10, Quantity: 1, UnitPrice: 10, TaxRate: 0},
			{ProductID: 999, Quantity: 1, UnitPrice: 10, TaxRate: 0},
		},
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	// First line already went through before the failure; nothing survives.
	require.Empty(t, repo.invoices)
	require.Empty(t, repo.ledger)
	require.Empty(t, repo.moves)
	require.Equal(t, 10, repo.stocks[10])
	require.InDelta(t, 42.0, repo.balances[1], 1e-9)
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc := newTestService(newFakeRepo())

	cases := []CreateInvoiceRequest{
		{PartnerID: 1, Type: InvoiceTypeSales, InvoiceDate: date(2026, 1, 1)},
		{PartnerID: 1, Type: "GIFT", InvoiceDate: date(2026, 1, 1), Items: []InvoiceItemRequest{{ProductID: 1, Quantity: 1}}},
		{PartnerID: 1, Type: InvoiceTypeSales, InvoiceDate: date(2026, 1, 1), Items: []InvoiceItemRequest{{ProductID: 1, Quantity: -2, UnitPrice: 5}}},
		{PartnerID: 1, Type: InvoiceTypeSales, InvoiceDate: date(2026, 1, 1), Items: []InvoiceItemRequest{{ProductID: 1, Quantity: 1, UnitPrice: 5, TaxRate: 120}}},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), req)
		require.ErrorIs(t, err, httpx.ErrValidation)
	}
}

func TestSalesInvoiceMayDriveStockNegative(t *testing.T) {
	repo := newFakeRepo()
	repo.balances[1] = 0
	repo.stocks[10] = 2
	repo.names[10] = "A"
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInvoiceRequest{
		PartnerID:   1,
		Type:        InvoiceTypeSales,
		InvoiceDate: date(2026, time.June, 1),
		Items: []InvoiceItemRequest{
			{ProductID: 10, Quantity: 5, UnitPrice: 1, TaxRate: 0},
		},
	})
	require.NoError(t, err)
	require.Equal(t, -3, repo.stocks[10])
	require.Equal(t, -3, repo.moves[0].NewStock)
}

func TestInvoiceNumbersAreSequential(t *testing.T) {
	repo := newFakeRepo()
	repo.balances[1] = 0
	repo.stocks[10] = 100
	repo.names[10] = "A"
	svc := newTestService(repo)

	for i, want := range []string{"FAT-2026-0001", "FAT-2026-0002", "FAT-2026-0003"} {
		inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
			PartnerID:   1,
			Type:        InvoiceTypeSales,
			InvoiceDate: date(2026, time.July, i+1),
			Items:       []InvoiceItemRequest{{ProductID: 10, Quantity: 1, UnitPrice: 1, TaxRate: 0}},
		})
		require.NoError(t, err)
		require.Equal(t, want, inv.Number)
	}
}
