package config

import (
	"math"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BlogFeedURL != "https://medium.com/feed/@melvinprince" {
		t.Fatalf("unexpected default feed url %q", cfg.BlogFeedURL)
	}
	if cfg.RateLimitMaxRequests != 5 || cfg.RateLimitWindowMS != 3600000 {
		t.Fatalf("unexpected contact limit defaults: %d/%d", cfg.RateLimitMaxRequests, cfg.RateLimitWindowMS)
	}
	if cfg.EmailSender != "log" {
		t.Fatalf("expected log sender by default, got %q", cfg.EmailSender)
	}
	if cfg.BlogCoalesceMisses {
		t.Fatalf("expected miss coalescing off by default")
	}
}

func TestLoadDerivesFeedURLFromUsername(t *testing.T) {
	t.Setenv("MEDIUM_USERNAME", "@someone")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BlogFeedURL != "https://medium.com/feed/@someone" {
		t.Fatalf("unexpected feed url %q", cfg.BlogFeedURL)
	}

	t.Setenv("BLOG_FEED_URL", "http://127.0.0.1:9999/feed")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BlogFeedURL != "http://127.0.0.1:9999/feed" {
		t.Fatalf("explicit feed url should win, got %q", cfg.BlogFeedURL)
	}
}

func TestLoadRejectsResendWithoutKey(t *testing.T) {
	t.Setenv("EMAIL_SENDER", "resend")
	t.Setenv("RESEND_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected Load to fail without RESEND_API_KEY")
	}

	t.Setenv("RESEND_API_KEY", "re_test")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsUnknownSender(t *testing.T) {
	t.Setenv("EMAIL_SENDER", "pigeon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected Load to fail for unknown EMAIL_SENDER")
	}
}

func TestLoadRejectsInvalidLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	if _, err := Load(); err == nil {
		t.Fatalf("expected Load to fail for invalid LOG_FORMAT")
	}
}

func TestLoadRejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected Load to fail for zero RATE_LIMIT_MAX_REQUESTS")
	}
}

func TestLoadCaptchaRequiresSecret(t *testing.T) {
	t.Setenv("CAPTCHA_ENABLED", "true")
	t.Setenv("CAPTCHA_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected Load to fail without CAPTCHA_SECRET")
	}

	t.Setenv("CAPTCHA_SECRET", "secret")
	t.Setenv("CAPTCHA_PROVIDER", "hcaptcha")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CaptchaVerifyURL != "https://hcaptcha.com/siteverify" {
		t.Fatalf("unexpected verify url %q", cfg.CaptchaVerifyURL)
	}
}

func TestRefillPerSecond(t *testing.T) {
	cfg := Config{RateLimitWindowMS: 3600000}
	if got := cfg.RefillPerSecond(); math.Abs(got-1.0/3600) > 1e-12 {
		t.Fatalf("unexpected refill rate %v", got)
	}
}

func TestInvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("CHAT_RATE_LIMIT", "many")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ChatRateLimit != 20 {
		t.Fatalf("expected default chat limit, got %d", cfg.ChatRateLimit)
	}
}
