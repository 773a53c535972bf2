package blog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"portfolio/internal/cache"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	body  []byte
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.body, f.err
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func goodFeed() []byte {
	return feed(
		feedItem("One", "https://example.com/1", "Mon, 15 Jan 2024 10:30:00 GMT", "one"),
		feedItem("Two", "https://example.com/2", "Tue, 16 Jan 2024 10:30:00 GMT", "two"),
	)
}

func TestLatestFetchesThenServesFromCache(t *testing.T) {
	f := &fakeFetcher{body: goodFeed()}
	svc := NewService(cache.NewMemory(), f, Options{})

	first := svc.Latest(context.Background())
	if !first.Success || first.Cached == nil || *first.Cached || first.Fallback != nil {
		t.Fatalf("unexpected first response: %+v", first)
	}
	if len(first.Data) != 2 {
		t.Fatalf("expected 2 items, got %d", len(first.Data))
	}

	second := svc.Latest(context.Background())
	if second.Cached == nil || !*second.Cached {
		t.Fatalf("expected cached response, got %+v", second)
	}
	if f.Calls() != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", f.Calls())
	}
	if st := svc.Stats(); st.Hits != 1 || st.Misses != 1 || st.Fallbacks != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestLatestFallsBackOnFetchError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("connection refused")}
	c := cache.NewMemory()
	svc := NewService(c, f, Options{})

	resp := svc.Latest(context.Background())
	if !resp.Success || resp.Fallback == nil || !*resp.Fallback || resp.Cached == nil || *resp.Cached {
		t.Fatalf("expected fallback response, got %+v", resp)
	}
	if len(resp.Data) != 5 {
		t.Fatalf("expected 5 fallback items, got %d", len(resp.Data))
	}
	for i, it := range resp.Data {
		if it.Title != SamplePosts[i].Title {
			t.Fatalf("fallback item %d should come from the sample posts", i)
		}
	}
	if c.Has(cache.Keys.BlogPosts()) {
		t.Fatalf("fallback must not be cached")
	}

	svc.Latest(context.Background())
	if f.Calls() != 2 {
		t.Fatalf("expected the next read to retry upstream, got %d calls", f.Calls())
	}
}

func TestLatestFallsBackOnEmptyFeed(t *testing.T) {
	f := &fakeFetcher{body: []byte(`<rss><channel></channel></rss>`)}
	c := cache.NewMemory()
	svc := NewService(c, f, Options{})

	resp := svc.Latest(context.Background())
	if resp.Fallback == nil || !*resp.Fallback {
		t.Fatalf("expected fallback for an empty feed")
	}
	if c.Size() != 0 {
		t.Fatalf("empty result must not be cached")
	}
}

func TestClearForcesRefetch(t *testing.T) {
	f := &fakeFetcher{body: goodFeed()}
	svc := NewService(cache.NewMemory(), f, Options{})

	svc.Latest(context.Background())
	svc.Latest(context.Background())
	if f.Calls() != 1 {
		t.Fatalf("expected 1 call before clear, got %d", f.Calls())
	}

	cleared := svc.Clear(context.Background())
	if !cleared.Success || cleared.Message != "Cache cleared successfully" {
		t.Fatalf("unexpected clear response %+v", cleared)
	}
	resp := svc.Latest(context.Background())
	if f.Calls() != 2 {
		t.Fatalf("expected refetch after clear, got %d calls", f.Calls())
	}
	if resp.Cached == nil || *resp.Cached {
		t.Fatalf("expected a fresh response after clear")
	}
}

func TestClearWithoutEntryStillSucceeds(t *testing.T) {
	svc := NewService(cache.NewMemory(), &fakeFetcher{}, Options{})
	if !svc.Clear(context.Background()).Success {
		t.Fatalf("clear should always succeed")
	}
}

func TestLatestHonoursTTL(t *testing.T) {
	clk := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clk }
	f := &fakeFetcher{body: goodFeed()}
	svc := NewService(cache.NewMemory(cache.WithClock(now)), f, Options{TTL: 30 * time.Minute, Now: now})

	svc.Latest(context.Background())
	clk = clk.Add(30*time.Minute + time.Second)
	svc.Latest(context.Background())
	if f.Calls() != 2 {
		t.Fatalf("expected refetch after ttl, got %d calls", f.Calls())
	}
}

func TestLatestCoalescedMissStillCaches(t *testing.T) {
	f := &fakeFetcher{body: goodFeed()}
	svc := NewService(cache.NewMemory(), f, Options{CoalesceMisses: true})
	if resp := svc.Latest(context.Background()); len(resp.Data) != 2 || resp.Fallback != nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp := svc.Latest(context.Background()); resp.Cached == nil || !*resp.Cached {
		t.Fatalf("expected cached response after coalesced load")
	}
}

func TestHTTPFetcherSendsHeaders(t *testing.T) {
	var gotUA, gotCC string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCC = r.Header.Get("Cache-Control")
		_, _ = w.Write(goodFeed())
	}))
	defer ts.Close()

	f := NewHTTPFetcher(ts.URL, 5*time.Second, 30*time.Minute)
	body, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ParseItems(body).Items) != 2 {
		t.Fatalf("expected feed body to parse")
	}
	if gotUA != "Mozilla/5.0 (compatible; Portfolio RSS Reader)" {
		t.Fatalf("unexpected user agent %q", gotUA)
	}
	if gotCC != "max-age=1800" {
		t.Fatalf("unexpected cache-control %q", gotCC)
	}
}

func TestHTTPFetcherNon2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewHTTPFetcher(ts.URL, 5*time.Second, 0).Fetch(context.Background())
	var statusErr StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected StatusError 502, got %v", err)
	}
}

func TestBreakerFetcherOpensAfterFailures(t *testing.T) {
	f := &fakeFetcher{err: errors.New("down")}
	b := NewBreakerFetcher(f, BreakerSettings{MaxConsecutiveFailures: 2, OpenFor: time.Hour}, nil)

	for i := 0; i < 2; i++ {
		if _, err := b.Fetch(context.Background()); err == nil {
			t.Fatalf("expected upstream error")
		}
	}
	if b.State() != "open" {
		t.Fatalf("expected open breaker, got %s", b.State())
	}
	if _, err := b.Fetch(context.Background()); err == nil {
		t.Fatalf("expected open-state error")
	}
	if f.Calls() != 2 {
		t.Fatalf("open breaker must not call upstream, got %d calls", f.Calls())
	}

	svc := NewService(cache.NewMemory(), b, Options{})
	if resp := svc.Latest(context.Background()); resp.Fallback == nil || !*resp.Fallback {
		t.Fatalf("expected fallback while breaker is open")
	}
	if svc.Stats().Breaker != "open" {
		t.Fatalf("expected breaker state in stats")
	}
}

// ctxFetcher serves body unless the caller's context has ended. onFetch runs
// before the context is checked.
type ctxFetcher struct {
	mu      sync.Mutex
	calls   int
	body    []byte
	onFetch func()
}

func (f *ctxFetcher) Fetch(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	hook := f.onFetch
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.body, nil
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	f := &ctxFetcher{body: goodFeed()}
	b := NewBreakerFetcher(f, BreakerSettings{MaxConsecutiveFailures: 2, OpenFor: time.Hour}, nil)
	svc := NewService(cache.NewMemory(), b, Options{})

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		svc.Latest(cancelled)
	}
	if b.State() != "closed" {
		t.Fatalf("cancelled callers must not open the breaker, got %s", b.State())
	}

	resp := svc.Latest(context.Background())
	if resp.Fallback != nil || len(resp.Data) != 2 {
		t.Fatalf("expected live data after cancelled callers, got %+v", resp)
	}
}

func TestBreakerIgnoresCancellationMidFetch(t *testing.T) {
	f := &ctxFetcher{body: goodFeed()}
	b := NewBreakerFetcher(f, BreakerSettings{MaxConsecutiveFailures: 2, OpenFor: time.Hour}, nil)

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		f.mu.Lock()
		f.onFetch = cancel
		f.mu.Unlock()
		_, err := b.Fetch(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	}
	if b.State() != "closed" {
		t.Fatalf("expected closed breaker, got %s", b.State())
	}
	if f.calls != 3 {
		t.Fatalf("expected 3 upstream calls, got %d", f.calls)
	}
}

func TestCoalescedFetchSurvivesCallerCancellation(t *testing.T) {
	f := &ctxFetcher{body: goodFeed()}
	svc := NewService(cache.NewMemory(), f, Options{CoalesceMisses: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := svc.Latest(ctx)
	if resp.Fallback != nil || len(resp.Data) != 2 {
		t.Fatalf("shared fetch should not inherit the caller's cancellation, got %+v", resp)
	}
}
