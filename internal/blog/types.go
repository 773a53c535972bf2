// Package blog serves the latest Medium posts: cache first, then the live
// RSS feed, then bundled sample posts.
package blog

type Item struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Preview     string `json:"preview"`
}

type Response struct {
	Success   bool   `json:"success"`
	Data      []Item `json:"data"`
	Cached    *bool  `json:"cached,omitempty"`
	Fallback  *bool  `json:"fallback,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type ClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Stats struct {
	Hits      int64  `json:"hits"`
	Misses    int64  `json:"misses"`
	Fallbacks int64  `json:"fallbacks"`
	Breaker   string `json:"breaker,omitempty"`
}

func boolPtr(b bool) *bool { return &b }
