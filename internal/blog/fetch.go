package blog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	userAgent    = "Mozilla/5.0 (compatible; Portfolio RSS Reader)"
	maxFeedBytes = 5 << 20
)

type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

type StatusError struct {
	StatusCode int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("rss fetch failed: %d", e.StatusCode)
}

type HTTPFetcher struct {
	url        string
	revalidate time.Duration
	client     *http.Client
}

func NewHTTPFetcher(feedURL string, timeout, revalidate time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		url:        feedURL,
		revalidate: revalidate,
		client:     &http.Client{Timeout: timeout},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build feed request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8")
	if f.revalidate > 0 {
		req.Header.Set("Cache-Control", fmt.Sprintf("max-age=%d", int(f.revalidate.Seconds())))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", f.url)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, StatusError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read feed body")
	}
	return body, nil
}

type BreakerSettings struct {
	MaxConsecutiveFailures uint32
	OpenFor                time.Duration
}

// BreakerFetcher stops calling the upstream feed after repeated failures and
// lets a single probe through once OpenFor has passed.
type BreakerFetcher struct {
	next Fetcher
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerFetcher(next Fetcher, s BreakerSettings, log *zap.Logger) *BreakerFetcher {
	if s.MaxConsecutiveFailures == 0 {
		s.MaxConsecutiveFailures = 5
	}
	if s.OpenFor <= 0 {
		s.OpenFor = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "blog-feed",
		MaxRequests: 1,
		Timeout:     s.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			var gone callerGoneError
			return err == nil || errors.As(err, &gone)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &BreakerFetcher{next: next, cb: cb}
}

// callerGoneError marks a fetch that failed because the caller's context
// ended. The breaker does not hold it against the upstream.
type callerGoneError struct {
	err error
}

func (e callerGoneError) Error() string { return e.err.Error() }
func (e callerGoneError) Unwrap() error { return e.err }

func (f *BreakerFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "fetch feed")
	}
	out, err := f.cb.Execute(func() (interface{}, error) {
		body, err := f.next.Fetch(ctx)
		if err != nil && ctx.Err() != nil {
			return nil, callerGoneError{err: err}
		}
		return body, err
	})
	if err != nil {
		var gone callerGoneError
		if errors.As(err, &gone) {
			return nil, gone.err
		}
		return nil, err
	}
	return out.([]byte), nil
}

func (f *BreakerFetcher) State() string {
	return f.cb.State().String()
}
