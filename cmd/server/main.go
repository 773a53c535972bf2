package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"portfolio/internal/api"
	"portfolio/internal/blog"
	"portfolio/internal/cache"
	"portfolio/internal/captcha"
	"portfolio/internal/chat"
	"portfolio/internal/config"
	"portfolio/internal/contact"
	"portfolio/internal/content"
	"portfolio/internal/logger"
	"portfolio/internal/maintenance"
	"portfolio/internal/notify"
	"portfolio/internal/rate"
	"portfolio/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg, err := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	site, err := content.Load()
	if err != nil {
		lg.Fatal("load site content", zap.Error(err))
	}

	mem := cache.NewMemory()

	var fetcher blog.Fetcher = blog.NewHTTPFetcher(cfg.BlogFeedURL,
		time.Duration(cfg.BlogFetchTimeoutSec)*time.Second, cfg.BlogCacheTTL())
	fetcher = blog.NewBreakerFetcher(fetcher, blog.BreakerSettings{
		MaxConsecutiveFailures: uint32(cfg.BlogBreakerMaxFails),
		OpenFor:                time.Duration(cfg.BlogBreakerOpenSec) * time.Second,
	}, lg)
	blogSvc := blog.NewService(mem, fetcher, blog.Options{
		TTL:            cfg.BlogCacheTTL(),
		CoalesceMisses: cfg.BlogCoalesceMisses,
		Logger:         lg,
	})

	mailer := notify.NewSender(cfg, lg.Named("notify"))
	contactSvc, err := contact.NewService(mailer, captcha.New(cfg), contact.Options{
		From:      cfg.FromEmail,
		To:        cfg.ToEmail,
		Signature: site.Profile.Name,
		Logger:    lg.Named("contact"),
	})
	if err != nil {
		lg.Fatal("build contact service", zap.Error(err))
	}
	contactLimiter := rate.NewTokenBucketLimiter(cfg.RateLimitMaxRequests, cfg.RefillPerSecond())

	chatLimiter := rate.NewWindowLimiter(cfg.ChatRateLimit, cfg.ChatWindow())
	chatSvc := chat.NewService(chatLimiter, chat.NewResponder(site), cfg.ChatStreamDelay())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runner *maintenance.Runner
	if cfg.MaintenanceOn {
		sweep := time.Duration(cfg.LimiterSweepMin) * time.Minute
		runner = maintenance.NewRunner(lg.Named("maintenance"),
			maintenance.Task{Name: "cache", Interval: time.Duration(cfg.CacheSweepMin) * time.Minute, Run: mem.Cleanup},
			maintenance.Task{Name: "contact-buckets", Interval: sweep, Run: contactLimiter.Cleanup},
			maintenance.Task{Name: "chat-windows", Interval: sweep, Run: chatLimiter.Cleanup},
		)
		runner.Start(ctx)
	}

	r := api.NewRouter(api.Deps{
		Config:      cfg,
		Logger:      lg,
		Cache:       mem,
		Blog:        blogSvc,
		Contact:     contactSvc,
		Mailer:      mailer,
		ContactRate: contactLimiter,
		Chat:        chatSvc,
		Content:     content.NewService(site, mem),
		Maintenance: runner,
	})

	hsrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTPReadHeaderTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:       time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("version", version.Current().Version),
			zap.String("feed", cfg.BlogFeedURL),
			zap.String("email_sender", cfg.EmailSender))
		if err := hsrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			lg.Error("server", zap.Error(err))
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hsrv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("shutdown", zap.Error(err))
	}
	if runner != nil {
		runner.Wait()
	}
	lg.Info("stopped")
}
