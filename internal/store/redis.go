package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finwheel/calc-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the recent list;
// reads check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

func (s *CachedStore) SaveCalculation(ctx context.Context, c *model.Calculation) error {
	if err := s.primary.SaveCalculation(ctx, c); err != nil {
		return err
	}
	s.cacheCalculation(ctx, c)
	// Recent lists are stale now; next read re-populates.
	s.invalidateLists(ctx)
	return nil
}

func (s *CachedStore) GetCalculation(ctx context.Context, id string) (*model.Calculation, error) {
	// Try cache.
	data, err := s.rdb.Get(ctx, calcKey(id)).Bytes()
	if err == nil {
		var c model.Calculation
		if json.Unmarshal(data, &c) == nil {
			return &c, nil
		}
	}

	// Cache miss: read from primary.
	c, err := s.primary.GetCalculation(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheCalculation(ctx, c)
	return c, nil
}

func (s *CachedStore) ListRecent(ctx context.Context, limit int) ([]model.Calculation, error) {
	data, err := s.rdb.Get(ctx, recentKey(limit)).Bytes()
	if err == nil {
		var calcs []model.Calculation
		if json.Unmarshal(data, &calcs) == nil {
			return calcs, nil
		}
	}

	calcs, err := s.primary.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(calcs); err == nil {
		s.rdb.Set(ctx, recentKey(limit), data, s.ttl)
	}
	return calcs, nil
}

// CountByKind is not cached; it backs metrics scrapes, not hot paths.
func (s *CachedStore) CountByKind(ctx context.Context) (map[model.Kind]int, error) {
	return s.primary.CountByKind(ctx)
}

func (s *CachedStore) cacheCalculation(ctx context.Context, c *model.Calculation) {
	if data, err := json.Marshal(c); err == nil {
		s.rdb.Set(ctx, calcKey(c.ID), data, s.ttl)
	}
}

func (s *CachedStore) invalidateLists(ctx context.Context) {
	iter := s.rdb.Scan(ctx, 0, "calcs:recent:*", 100).Iterator()
	for iter.Next(ctx) {
		s.rdb.Del(ctx, iter.Val())
	}
}

func calcKey(id string) string   { return fmt.Sprintf("calc:%s", id) }
func recentKey(limit int) string { return fmt.Sprintf("calcs:recent:%d", limit) }
