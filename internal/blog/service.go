package blog

import (
	"context"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"portfolio/internal/cache"
)

type Options struct {
	TTL time.Duration
	// CoalesceMisses lets concurrent cache misses share one upstream fetch.
	CoalesceMisses bool
	Logger         *zap.Logger
	Now            func() time.Time
}

type Service struct {
	cache    *cache.Memory
	fetcher  Fetcher
	ttlSec   int
	coalesce bool
	sf       singleflight.Group
	log      *zap.Logger
	now      func() time.Time

	hits      *atomic.Int64
	misses    *atomic.Int64
	fallbacks *atomic.Int64
}

func NewService(c *cache.Memory, f Fetcher, opts Options) *Service {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Duration(cache.Durations.BlogData) * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		cache:     c,
		fetcher:   f,
		ttlSec:    int(ttl / time.Second),
		coalesce:  opts.CoalesceMisses,
		log:       log.Named("blog"),
		now:       now,
		hits:      atomic.NewInt64(0),
		misses:    atomic.NewInt64(0),
		fallbacks: atomic.NewInt64(0),
	}
}

// Latest never fails: it answers from cache, the live feed, or the sample
// posts, in that order.
func (s *Service) Latest(ctx context.Context) Response {
	key := cache.Keys.BlogPosts()
	if v, ok := s.cache.Get(key); ok {
		if items, ok := v.([]Item); ok {
			s.hits.Inc()
			return Response{Success: true, Data: items, Cached: boolPtr(true), Timestamp: s.now().UnixMilli()}
		}
		s.cache.Delete(key)
	}
	s.misses.Inc()

	if items, ok := s.load(ctx); ok {
		return Response{Success: true, Data: items, Cached: boolPtr(false), Timestamp: s.now().UnixMilli()}
	}

	s.fallbacks.Inc()
	return Response{
		Success:   true,
		Data:      Fallback(),
		Cached:    boolPtr(false),
		Fallback:  boolPtr(true),
		Timestamp: s.now().UnixMilli(),
	}
}

func (s *Service) load(ctx context.Context) ([]Item, bool) {
	if !s.coalesce {
		return s.refresh(ctx)
	}
	// The shared fetch outlives any single caller's cancellation.
	shared := context.WithoutCancel(ctx)
	v, _, _ := s.sf.Do(cache.Keys.BlogPosts(), func() (any, error) {
		items, ok := s.refresh(shared)
		if !ok {
			return []Item(nil), nil
		}
		return items, nil
	})
	items, _ := v.([]Item)
	return items, len(items) > 0
}

// refresh fetches and parses the feed, caching only a non-empty result.
func (s *Service) refresh(ctx context.Context) ([]Item, bool) {
	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.log.Error("rss fetch failed, using fallback", zap.Error(err))
		return nil, false
	}
	res := ParseItems(raw)
	if !res.OK() {
		s.log.Warn("rss feed produced no items, using fallback",
			zap.Error(res.Err),
			zap.Int("skipped", res.Skipped),
			zap.Int("bytes", len(raw)))
		return nil, false
	}
	if res.Skipped > 0 {
		s.log.Debug("skipped malformed feed items", zap.Int("skipped", res.Skipped))
	}
	s.cache.Set(cache.Keys.BlogPosts(), res.Items, s.ttlSec)
	return res.Items, true
}

// Clear drops the cached feed so the next read goes upstream.
func (s *Service) Clear(ctx context.Context) ClearResponse {
	s.cache.Delete(cache.Keys.BlogPosts())
	s.log.Info("blog cache cleared")
	return ClearResponse{Success: true, Message: "Cache cleared successfully"}
}

func (s *Service) Stats() Stats {
	st := Stats{Hits: s.hits.Load(), Misses: s.misses.Load(), Fallbacks: s.fallbacks.Load()}
	if b, ok := s.fetcher.(interface{ State() string }); ok {
		st.Breaker = b.State()
	}
	return st
}
