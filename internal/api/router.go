package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"portfolio/internal/blog"
	"portfolio/internal/cache"
	"portfolio/internal/chat"
	"portfolio/internal/config"
	"portfolio/internal/contact"
	"portfolio/internal/content"
	"portfolio/internal/logger"
	"portfolio/internal/maintenance"
	"portfolio/internal/middleware"
	"portfolio/internal/notify"
	"portfolio/internal/rate"
	"portfolio/internal/util"
	"portfolio/internal/version"
)

// Deps are the components the HTTP layer dispatches to. Maintenance may be
// nil when sweeps are disabled.
type Deps struct {
	Config      config.Config
	Logger      *zap.Logger
	Cache       *cache.Memory
	Blog        *blog.Service
	Contact     *contact.Service
	Mailer      notify.Sender
	ContactRate *rate.TokenBucketLimiter
	Chat        *chat.Service
	Content     *content.Service
	Maintenance *maintenance.Runner
}

type Handlers struct {
	Deps
	log *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	h := &Handlers{Deps: d, log: logger.OrNop(d.Logger)}
	cfg := d.Config

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLogger(h.log, cfg.TrustProxy))
	r.Use(middleware.SecurityHeaders)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"Retry-After", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		util.WriteError(w, http.StatusMethodNotAllowed, "", "Method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		util.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	})

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", h.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Get("/blog/latest", h.BlogLatest)
		r.Post("/blog/latest", h.BlogClear)

		r.With(middleware.ContactRateLimit(h.ContactRate, cfg.TrustProxy, h.log)).Post("/contact", h.SubmitContact)
		r.Post("/chat", h.ChatMessage)

		r.Get("/projects", h.ListProjects)
		r.Get("/projects/{slug}", h.GetProject)
		r.Get("/tech", h.GetTechStack)
		r.Get("/about", h.GetAbout)
	})
	return r
}

type readyResponse struct {
	Status      string                  `json:"status"`
	CheckedAt   string                  `json:"checkedAt"`
	Version     version.Info            `json:"version"`
	CacheSize   int                     `json:"cacheSize"`
	Blog        blog.Stats              `json:"blog"`
	Maintenance []maintenance.TaskStats `json:"maintenance,omitempty"`
	Email       *componentStatus        `json:"email,omitempty"`
}

type componentStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type prober interface {
	Probe(ctx context.Context) error
}

// Ready always answers 200 since feed outages are served from fallback data.
// An open feed breaker or an unreachable mail relay marks the status degraded.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	out := readyResponse{
		Status:    "ready",
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
		Version:   version.Current(),
		CacheSize: h.Cache.Size(),
		Blog:      h.Blog.Stats(),
	}
	if out.Blog.Breaker == "open" {
		out.Status = "degraded"
	}
	if h.Maintenance != nil {
		out.Maintenance = h.Maintenance.Stats()
	}
	if p, ok := h.Mailer.(prober); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		out.Email = &componentStatus{OK: true}
		if err := p.Probe(ctx); err != nil {
			out.Email = &componentStatus{OK: false, Error: err.Error()}
			out.Status = "degraded"
		}
	}
	cache.ApplyHeaders(w, cache.HeadersNoCache)
	util.WriteJSON(w, http.StatusOK, out)
}
