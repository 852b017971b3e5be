package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Service builds KPI snapshots and keeps them in a versioned Redis cache.
// Bumping the version on invalidation makes every cached snapshot stale at
// once without scanning keys. Concurrent fills for the same key collapse
// into one database pass via singleflight.
type Service struct {
	repo   Repository
	rdb    *redis.Client
	logger *slog.Logger
	ttl    time.Duration
	group  singleflight.Group
	now    func() time.Time
}

const versionKey = "dashboard:version"

func NewService(logger *slog.Logger, repo Repository, rdb *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{repo: repo, rdb: rdb, logger: logger, ttl: ttl, now: time.Now}
}

// Snapshot returns the cached snapshot for the current month, filling the
// cache on a miss. Cache failures degrade to a direct build.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	key, err := s.cacheKey(ctx)
	if err != nil {
		s.logger.Warn("dashboard cache key", slog.Any("error", err))
		return s.build(ctx)
	}

	if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err == nil {
			return &snap, nil
		}
	}

	ch := s.group.DoChan(key, func() (any, error) {
		snap, err := s.build(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(snap); err == nil {
			if err := s.rdb.Set(context.WithoutCancel(ctx), key, data, s.ttl).Err(); err != nil {
				s.logger.Warn("dashboard cache set", slog.Any("error", err))
			}
		}
		return snap, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

// Warm pre-fills the cache, used by the warm-up job.
func (s *Service) Warm(ctx context.Context) error {
	if err := s.Invalidate(ctx); err != nil {
		return err
	}
	_, err := s.Snapshot(ctx)
	return err
}

// Invalidate bumps the cache version so the next read rebuilds.
func (s *Service) Invalidate(ctx context.Context) error {
	if err := s.rdb.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("bump dashboard cache version: %w", err)
	}
	return nil
}

func (s *Service) cacheKey(ctx context.Context) (string, error) {
	version, err := s.rdb.Get(ctx, versionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	month := s.now().UTC().Format("2006-01")
	return fmt.Sprintf("dashboard:snapshot:v%d:%s", version, month), nil
}

func (s *Service) build(ctx context.Context) (*Snapshot, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	sales, purchases, err := s.repo.MonthlyInvoiceTotals(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	receivables, payables, err := s.repo.PartnerBalances(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.LowStockCount(ctx)
	if err != nil {
		return nil, err
	}
	movements, err := s.repo.RecentMovements(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		MonthSales:      sales,
		MonthPurchases:  purchases,
		Receivables:     receivables,
		Payables:        payables,
		LowStockCount:   lowStock,
		RecentMovements: movements,
		GeneratedAt:     now,
	}, nil
}
