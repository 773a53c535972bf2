// Package captcha checks the optional bot-protection token sent with the
// contact form.
package captcha

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"portfolio/internal/config"
)

var (
	ErrCaptchaRequired    = errors.New("captcha_required")
	ErrCaptchaUnavailable = errors.New("captcha_unavailable")
)

type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type NoopVerifier struct{}

func (NoopVerifier) Verify(ctx context.Context, token, remoteIP string) error { return nil }

// HTTPVerifier talks to a siteverify endpoint. Turnstile and hCaptcha take a
// form body; cap takes JSON and reports every non-2xx as unavailable.
type HTTPVerifier struct {
	provider  string
	verifyURL string
	secret    string
	client    *http.Client
}

func NewHTTPVerifier(provider, verifyURL, secret string, client *http.Client) *HTTPVerifier {
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}
	return &HTTPVerifier{
		provider:  strings.ToLower(strings.TrimSpace(provider)),
		verifyURL: strings.TrimSpace(verifyURL),
		secret:    strings.TrimSpace(secret),
		client:    client,
	}
}

func New(cfg config.Config) Verifier {
	if !cfg.CaptchaEnabled {
		return NoopVerifier{}
	}
	return NewHTTPVerifier(cfg.CaptchaProvider, cfg.CaptchaVerifyURL, cfg.CaptchaSecret, nil)
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Error      string   `json:"error"`
	Message    string   `json:"message"`
}

func (v *HTTPVerifier) jsonAPI() bool { return v.provider == "cap" }

func (v *HTTPVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.Wrap(ErrCaptchaRequired, "captcha token is required")
	}
	switch v.provider {
	case "", "turnstile", "hcaptcha", "cap":
	default:
		return errors.Wrapf(ErrCaptchaUnavailable, "unsupported captcha provider %q", v.provider)
	}

	req, err := v.buildRequest(ctx, token, strings.TrimSpace(remoteIP))
	if err != nil {
		return errors.Wrap(ErrCaptchaUnavailable, err.Error())
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return errors.Wrap(ErrCaptchaUnavailable, err.Error())
	}
	defer resp.Body.Close()
	return v.classify(resp.StatusCode, resp.Body)
}

func (v *HTTPVerifier) buildRequest(ctx context.Context, token, remoteIP string) (*http.Request, error) {
	if v.jsonAPI() {
		payload := map[string]string{"secret": v.secret, "response": token}
		if remoteIP != "" {
			payload["remoteip"] = remoteIP
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

func (v *HTTPVerifier) classify(status int, body io.Reader) error {
	switch {
	case status >= 500, v.jsonAPI() && (status < 200 || status > 299):
		return errors.Wrapf(ErrCaptchaUnavailable, "captcha verify HTTP %d", status)
	case status < 200 || status > 299:
		return errors.Wrapf(ErrCaptchaRequired, "captcha verify HTTP %d", status)
	}

	var out siteverifyResponse
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return errors.Wrap(ErrCaptchaUnavailable, err.Error())
	}
	if out.Success {
		return nil
	}
	reason := "captcha rejected"
	switch {
	case v.jsonAPI() && strings.TrimSpace(out.Error) != "":
		reason = out.Error
	case v.jsonAPI() && strings.TrimSpace(out.Message) != "":
		reason = out.Message
	case len(out.ErrorCodes) > 0:
		reason = "captcha rejected: " + strings.Join(out.ErrorCodes, ",")
	}
	return errors.Wrap(ErrCaptchaRequired, reason)
}
