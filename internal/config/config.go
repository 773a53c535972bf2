package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string

	TrustProxy         bool
	CORSAllowedOrigins []string

	HTTPReadTimeoutSec       int
	HTTPReadHeaderTimeoutSec int
	HTTPWriteTimeoutSec      int
	HTTPIdleTimeoutSec       int

	LogLevel        string
	LogFormat       string
	LogFile         string
	LogMaxSizeMB    int
	LogMaxBackups   int
	LogMaxAgeDays   int
	MaintenanceOn   bool
	CacheSweepMin   int
	LimiterSweepMin int

	MediumUsername      string
	BlogFeedURL         string
	BlogCacheTTLSec     int
	BlogFetchTimeoutSec int
	BlogCoalesceMisses  bool
	BlogBreakerMaxFails int
	BlogBreakerOpenSec  int

	RateLimitMaxRequests int
	RateLimitWindowMS    int

	ChatRateLimit     int
	ChatRateWindowMin int
	ChatStreamDelayMS int

	EmailSender  string
	ResendAPIKey string
	ResendAPIURL string
	FromEmail    string
	ToEmail      string

	SMTPHost               string
	SMTPPort               int
	SMTPUsername           string
	SMTPPassword           string
	SMTPTLS                bool
	SMTPStartTLS           bool
	SMTPInsecureSkipVerify bool

	CaptchaEnabled   bool
	CaptchaProvider  string
	CaptchaVerifyURL string
	CaptchaSecret    string
}

func Load() (Config, error) {
	// A missing .env file is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:               env("LISTEN_ADDR", ":8080"),
		TrustProxy:               envBool("TRUST_PROXY", true),
		CORSAllowedOrigins:       envCSV("CORS_ALLOWED_ORIGINS"),
		HTTPReadTimeoutSec:       envInt("HTTP_READ_TIMEOUT_SEC", 10),
		HTTPReadHeaderTimeoutSec: envInt("HTTP_READ_HEADER_TIMEOUT_SEC", 5),
		HTTPWriteTimeoutSec:      envInt("HTTP_WRITE_TIMEOUT_SEC", 60),
		HTTPIdleTimeoutSec:       envInt("HTTP_IDLE_TIMEOUT_SEC", 60),
		LogLevel:                 strings.ToLower(env("LOG_LEVEL", "info")),
		LogFormat:                strings.ToLower(env("LOG_FORMAT", "json")),
		LogFile:                  env("LOG_FILE", ""),
		LogMaxSizeMB:             envInt("LOG_MAX_SIZE_MB", 50),
		LogMaxBackups:            envInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays:            envInt("LOG_MAX_AGE_DAYS", 14),
		MaintenanceOn:            envBool("MAINTENANCE_ENABLED", true),
		CacheSweepMin:            envInt("CACHE_SWEEP_INTERVAL_MIN", 5),
		LimiterSweepMin:          envInt("LIMITER_SWEEP_INTERVAL_MIN", 60),
		MediumUsername:           env("MEDIUM_USERNAME", "melvinprince"),
		BlogFeedURL:              env("BLOG_FEED_URL", ""),
		BlogCacheTTLSec:          envInt("BLOG_CACHE_TTL_SEC", 1800),
		BlogFetchTimeoutSec:      envInt("BLOG_FETCH_TIMEOUT_SEC", 10),
		BlogCoalesceMisses:       envBool("BLOG_COALESCE_MISSES", false),
		BlogBreakerMaxFails:      envInt("BLOG_BREAKER_MAX_FAILURES", 5),
		BlogBreakerOpenSec:       envInt("BLOG_BREAKER_OPEN_SEC", 60),
		RateLimitMaxRequests:     envInt("RATE_LIMIT_MAX_REQUESTS", 5),
		RateLimitWindowMS:        envInt("RATE_LIMIT_WINDOW_MS", 3600000),
		ChatRateLimit:            envInt("CHAT_RATE_LIMIT", 20),
		ChatRateWindowMin:        envInt("CHAT_RATE_WINDOW_MIN", 60),
		ChatStreamDelayMS:        envInt("CHAT_STREAM_DELAY_MS", 50),
		EmailSender:              strings.ToLower(env("EMAIL_SENDER", "log")),
		ResendAPIKey:             env("RESEND_API_KEY", ""),
		ResendAPIURL:             env("RESEND_API_URL", "https://api.resend.com/emails"),
		FromEmail:                env("FROM_EMAIL", "noreply@yourdomain.com"),
		ToEmail:                  env("TO_EMAIL", "your.email@example.com"),
		SMTPHost:                 env("SMTP_HOST", "127.0.0.1"),
		SMTPPort:                 envInt("SMTP_PORT", 587),
		SMTPUsername:             env("SMTP_USERNAME", ""),
		SMTPPassword:             env("SMTP_PASSWORD", ""),
		SMTPTLS:                  envBool("SMTP_TLS", false),
		SMTPStartTLS:             envBool("SMTP_STARTTLS", true),
		SMTPInsecureSkipVerify:   envBool("SMTP_INSECURE_SKIP_VERIFY", false),
		CaptchaEnabled:           envBool("CAPTCHA_ENABLED", false),
		CaptchaProvider:          strings.ToLower(env("CAPTCHA_PROVIDER", "turnstile")),
		CaptchaVerifyURL:         env("CAPTCHA_VERIFY_URL", ""),
		CaptchaSecret:            env("CAPTCHA_SECRET", ""),
	}

	if strings.TrimSpace(cfg.BlogFeedURL) == "" {
		cfg.BlogFeedURL = "https://medium.com/feed/@" + strings.TrimPrefix(strings.TrimSpace(cfg.MediumUsername), "@")
	}
	if cfg.BlogCacheTTLSec <= 0 {
		return Config{}, fmt.Errorf("BLOG_CACHE_TTL_SEC must be positive")
	}
	if cfg.RateLimitMaxRequests <= 0 || cfg.RateLimitWindowMS <= 0 {
		return Config{}, fmt.Errorf("rate limit config must be positive")
	}
	if cfg.ChatRateLimit <= 0 || cfg.ChatRateWindowMin <= 0 {
		return Config{}, fmt.Errorf("chat rate limit config must be positive")
	}
	if cfg.ChatStreamDelayMS < 0 {
		return Config{}, fmt.Errorf("CHAT_STREAM_DELAY_MS must be >= 0")
	}
	if cfg.CacheSweepMin <= 0 || cfg.LimiterSweepMin <= 0 {
		return Config{}, fmt.Errorf("sweep intervals must be positive")
	}
	if cfg.SMTPPort <= 0 {
		return Config{}, fmt.Errorf("invalid SMTP_PORT")
	}
	switch cfg.EmailSender {
	case "log", "smtp":
	case "resend":
		if strings.TrimSpace(cfg.ResendAPIKey) == "" {
			return Config{}, fmt.Errorf("RESEND_API_KEY is required when EMAIL_SENDER=resend")
		}
	default:
		return Config{}, fmt.Errorf("EMAIL_SENDER must be one of: log, smtp, resend")
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	if cfg.CaptchaEnabled {
		if strings.TrimSpace(cfg.CaptchaSecret) == "" {
			return Config{}, fmt.Errorf("CAPTCHA_SECRET is required when CAPTCHA_ENABLED=true")
		}
		if strings.TrimSpace(cfg.CaptchaVerifyURL) == "" {
			switch cfg.CaptchaProvider {
			case "turnstile", "":
				cfg.CaptchaVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
			case "hcaptcha":
				cfg.CaptchaVerifyURL = "https://hcaptcha.com/siteverify"
			default:
				return Config{}, fmt.Errorf("unsupported CAPTCHA_PROVIDER: %s", cfg.CaptchaProvider)
			}
		}
	}
	return cfg, nil
}

// RefillPerSecond converts the "N requests per window" budget into a token bucket refill rate:
// one token per window.
func (c Config) RefillPerSecond() float64 {
	return 1 / (float64(c.RateLimitWindowMS) / 1000)
}

func (c Config) BlogCacheTTL() time.Duration {
	return time.Duration(c.BlogCacheTTLSec) * time.Second
}

func (c Config) ChatWindow() time.Duration {
	return time.Duration(c.ChatRateWindowMin) * time.Minute
}

func (c Config) ChatStreamDelay() time.Duration {
	return time.Duration(c.ChatStreamDelayMS) * time.Millisecond
}

func env(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func envCSV(k string) []string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
