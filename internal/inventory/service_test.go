package inventory

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medika-erp/medika-erp/internal/platform/httpx"
)

type fakeRepo struct {
	stocks map[int64]int
	names  map[int64]string
	moves  []Movement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stocks: map[int64]int{}, names: map[int64]string{}}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	stocks := map[int64]int{}
	for k, v := range f.stocks {
		stocks[k] = v
	}
	moves := append([]Movement(nil), f.moves...)
	if err := fn(ctx, f); err != nil {
		f.stocks, f.moves = stocks, moves
		return err
	}
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

func (f *fakeRepo) InsertMovement(_ context.Context, m *Movement) error {
	m.ID = int64(len(f.moves) + 1)
	m.CreatedAt = time.Now()
	f.moves = append(f.moves, *m)
	return nil
}

func (f *fakeRepo) ListMovements(_ context.Context, f2 MovementFilters) ([]Movement, int64, error) {
	var out []Movement
	for _, m := range f.moves {
		if f2.ProductID > 0 && m.ProductID != f2.ProductID {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func newTestService(repo Repository) *Service {
	return NewService(slog.Default(), repo, nil)
}

func TestAdjustIn(t *testing.T) {
	repo := newFakeRepo()
	repo.stocks[10] = 4
	repo.names[10] = "Syringe 5ml"
	svc := newTestService(repo)

	m, err := svc.Adjust(context.Background(), AdjustRequest{
		ProductID: 10, Direction: AdjustIn, Quantity: 6,
	})
	require.NoError(t, err)
	require.Equal(t, MovementTypeAdjustIn, m.Type)
	require.Equal(t, 4, m.OldStock)
	require.Equal(t, 10, m.NewStock)
	require.Equal(t, 10, repo.stocks[10])
	require.NotEmpty(t, m.Ref)
}

func TestAdjustOut(t *testing.T) {
	repo := newFakeRepo()
	repo.stocks[10] = 9
	svc := newTestService(repo)

	m, err := svc.Adjust(context.Background(), AdjustRequest{
		ProductID: 10, Direction: AdjustOut, Quantity: 4, Description: "damaged batch",
	})
	require.NoError(t, err)
	require.Equal(t, MovementTypeAdjustOut, m.Type)
	require.Equal(t, 5, m.NewStock)
	require.Equal(t, 5, repo.stocks[10])
	require.Equal(t, "damaged batch", m.Description)
}

func TestAdjustOutExceedingStockRejected(t *testing.T) {
	repo := newFakeRepo()
	repo.stocks[10] = 3
	svc := newTestService(repo)

	_, err := svc.Adjust(context.Background(), AdjustRequest{
		ProductID: 10, Direction: AdjustOut, Quantity: 5,
	})
	require.ErrorIs(t, err, httpx.ErrInsufficientStock)

	// Nothing changed.
	require.Equal(t, 3, repo.stocks[10])
	require.Empty(t, repo.moves)
}

func TestAdjustValidation(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Adjust(context.Background(), AdjustRequest{ProductID: 1, Direction: "UP", Quantity: 1})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Adjust(context.Background(), AdjustRequest{ProductID: 1, Direction: AdjustIn, Quantity: 0})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCountOverwritesStock(t *testing.T) {
	repo := newFakeRepo()
	repo.stocks[10] = 17
	svc := newTestService(repo)

	m, err := svc.Count(context.Background(), CountRequest{ProductID: 10, Counted: 12})
	require.NoError(t, err)
	require.Equal(t, MovementTypeCount, m.Type)
	require.Equal(t, 17, m.OldStock)
	require.Equal(t, 12, m.NewStock)
	require.Equal(t, -5, m.Quantity)
	require.Equal(t, 12, repo.stocks[10])
}

func TestCountToZero(t *testing.T) {
	repo := newFakeRepo()
	repo.stocks[10] = 8
	svc := newTestService(repo)

	m, err := svc.Count(context.Background(), CountRequest{ProductID: 10, Counted: 0})
	require.NoError(t, err)
	require.Equal(t, 0, m.NewStock)
	require.Equal(t, 0, repo.stocks[10])
}

func TestCountRejectsNegative(t *testing.T) {
	repo := newFakeRepo()
	repo.stocks[10] = 8
	svc := newTestService(repo)

	_, err := svc.Count(context.Background(), CountRequest{ProductID: 10, Counted: -1})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Equal(t, 8, repo.stocks[10])
}

func TestCountUnknownProduct(t *testing.T) {
	svc := newTestService(newFakeRepo())
	_, err := svc.Count(context.Background(), CountRequest{ProductID: 404, Counted: 1})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
