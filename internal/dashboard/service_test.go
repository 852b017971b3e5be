package dashboard

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/medika-erp/medika-erp/internal/inventory"
)

type fakeRepo struct {
	sales, purchases      float64
	receivables, payables float64
	lowStock              int64
	builds                int
}

func (f *fakeRepo) MonthlyInvoiceTotals(_ context.Context, _, _ time.Time) (float64, float64, error) {
	f.builds++
	return f.sales, f.purchases, nil
}

func (f *fakeRepo) PartnerBalances(_ context.Context) (float64, float64, error) {
	return f.receivables, f.payables, nil
}

func (f *fakeRepo) LowStockCount(_ context.Context) (int64, error) {
	return f.lowStock, nil
}

func (f *fakeRepo) RecentMovements(_ context.Context, _ int) ([]inventory.Movement, error) {
	return []inventory.Movement{{ID: 1, ProductID: 10, Type: inventory.MovementTypeSale}}, nil
}

func newTestService(t *testing.T, repo Repository) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewService(slog.Default(), repo, rdb, time.Minute), mr
}

func TestSnapshotBuildsAndCaches(t *testing.T) {
	repo := &fakeRepo{sales: 1500, purchases: 400, receivables: 900, payables: 120, lowStock: 3}
	svc, _ := newTestService(t, repo)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 1500.0, snap.MonthSales, 1e-9)
	require.InDelta(t, 400.0, snap.MonthPurchases, 1e-9)
	require.InDelta(t, 900.0, snap.Receivables, 1e-9)
	require.InDelta(t, 120.0, snap.Payables, 1e-9)
	require.Equal(t, int64(3), snap.LowStockCount)
	require.Len(t, snap.RecentMovements, 1)
	require.Equal(t, 1, repo.builds)

	// Second read is served from the cache.
	_, err = svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.builds)
}

func TestInvalidateForcesRebuild(t *testing.T) {
	repo := &fakeRepo{sales: 100}
	svc, _ := newTestService(t, repo)

	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.builds)

	require.NoError(t, svc.Invalidate(context.Background()))

	repo.sales = 250
	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.builds)
	require.InDelta(t, 250.0, snap.MonthSales, 1e-9)
}

func TestSnapshotExpiresWithTTL(t *testing.T) {
	repo := &fakeRepo{sales: 100}
	svc, mr := newTestService(t, repo)

	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.builds)
}

func TestWarmPrefillsCache(t *testing.T) {
	repo := &fakeRepo{sales: 77}
	svc, _ := newTestService(t, repo)

	require.NoError(t, svc.Warm(context.Background()))
	require.Equal(t, 1, repo.builds)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.builds)
	require.InDelta(t, 77.0, snap.MonthSales, 1e-9)
}
