package cache

import (
	"net/http/httptest"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestMemory() (*Memory, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)}
	return NewMemory(WithClock(clk.now)), clk
}

func TestMemoryRoundTrip(t *testing.T) {
	m, _ := newTestMemory()
	m.Set("k", "v", 60)
	got, ok := m.Get("k")
	if !ok || got != "v" {
		t.Fatalf("expected v, got %v (ok=%v)", got, ok)
	}
	if !m.Has("k") {
		t.Fatalf("expected Has to report true")
	}
}

func TestMemoryExpiry(t *testing.T) {
	m, clk := newTestMemory()
	m.Set("k", "v", 1)

	clk.t = clk.t.Add(time.Second)
	if !m.Has("k") {
		t.Fatalf("entry exactly at its ttl is still live")
	}

	clk.t = clk.t.Add(time.Millisecond)
	if _, ok := m.Get("k"); ok {
		t.Fatalf("expected entry to be expired")
	}
	if m.Has("k") {
		t.Fatalf("Has must agree with Get")
	}
	if m.Size() != 0 {
		t.Fatalf("expired read should delete the entry, size=%d", m.Size())
	}
}

func TestMemoryOverwrite(t *testing.T) {
	m, _ := newTestMemory()
	m.Set("k", "v1", 60)
	m.Set("k", "v2", 60)
	if got, _ := m.Get("k"); got != "v2" {
		t.Fatalf("expected v2, got %v", got)
	}
}

func TestMemorySizeCountsExpired(t *testing.T) {
	m, clk := newTestMemory()
	m.Set("a", 1, 1)
	m.Set("b", 2, 60)
	clk.t = clk.t.Add(5 * time.Second)
	if m.Size() != 2 {
		t.Fatalf("size should include unswept expired entries, got %d", m.Size())
	}
	if removed := m.Cleanup(); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if m.Size() != 1 || !m.Has("b") {
		t.Fatalf("expected only b to survive cleanup")
	}
}

func TestMemoryDeleteAndClear(t *testing.T) {
	m, _ := newTestMemory()
	m.Delete("missing")
	m.Set("a", 1, 60)
	m.Set("b", 2, 60)
	m.Delete("a")
	if m.Has("a") {
		t.Fatalf("a should be gone")
	}
	m.Clear()
	if m.Size() != 0 {
		t.Fatalf("expected empty cache after Clear, got %d", m.Size())
	}
}

func TestMemoryZeroTTL(t *testing.T) {
	m, clk := newTestMemory()
	m.Set("k", "v", 0)
	if !m.Has("k") {
		t.Fatalf("zero ttl entry is live at the instant it was written")
	}
	clk.t = clk.t.Add(time.Millisecond)
	if m.Has("k") {
		t.Fatalf("zero ttl entry should expire immediately after")
	}
}

func TestKeys(t *testing.T) {
	if Keys.BlogPosts() != "blog:posts" {
		t.Fatalf("unexpected blog key %q", Keys.BlogPosts())
	}
	if Keys.Project("go-api") != "project:go-api" {
		t.Fatalf("unexpected project key %q", Keys.Project("go-api"))
	}
}

func TestCacheControl(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"blog", HeadersBlogData["Cache-Control"], "public, max-age=1800, stale-while-revalidate=1800"},
		{"api", HeadersAPIData["Cache-Control"], "public, max-age=3600, stale-while-revalidate=3600"},
		{"project", HeadersProjectData["Cache-Control"], "public, max-age=86400, stale-while-revalidate=86400"},
		{"images", HeadersImages["Cache-Control"], "public, max-age=31536000, immutable, stale-while-revalidate=86400"},
		{"static", HeadersStaticAssets["Cache-Control"], "public, max-age=31536000, immutable"},
		{"private", CacheControl(0, HeaderPolicy{Private: true, MustRevalidate: true}), "private, max-age=0, must-revalidate"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, tc.got)
		}
	}
}

func TestApplyHeadersNoCache(t *testing.T) {
	rr := httptest.NewRecorder()
	ApplyHeaders(rr, HeadersNoCache)
	if rr.Header().Get("Cache-Control") != "no-store, no-cache, must-revalidate, proxy-revalidate" {
		t.Fatalf("unexpected cache-control %q", rr.Header().Get("Cache-Control"))
	}
	if rr.Header().Get("Pragma") != "no-cache" || rr.Header().Get("Expires") != "0" {
		t.Fatalf("missing no-cache companions: %v", rr.Header())
	}
}
