package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultResendURL = "https://api.resend.com/emails"

// ResendSender delivers through the Resend HTTP API.
type ResendSender struct {
	url    string
	apiKey string
	client *http.Client
}

func NewResendSender(apiURL, apiKey string, client *http.Client) ResendSender {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultResendURL
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return ResendSender{url: apiURL, apiKey: apiKey, client: client}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendError struct {
	StatusCode int
	Message    string
}

func (e resendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("resend api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("resend api returned status %d: %s", e.StatusCode, e.Message)
}

func (s ResendSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(s.apiKey) == "" {
		return errors.New("RESEND_API_KEY is not configured")
	}
	payload, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return errors.Wrap(err, "encode resend payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build resend request")
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send email")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	return resendError{StatusCode: resp.StatusCode, Message: body.Message}
}
