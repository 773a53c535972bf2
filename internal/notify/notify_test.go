package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio/internal/config"
)

func TestBuildMIMEAlternative(t *testing.T) {
	raw, err := buildMIME(Message{
		From:    "Portfolio <noreply@example.com>",
		To:      []string{"owner@example.com"},
		ReplyTo: "visitor@example.com",
		Subject: "Portfolio Contact: Jane",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
	}, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(raw)
	for _, want := range []string{
		"multipart/alternative",
		"Subject: Portfolio Contact: Jane",
		"Reply-To: <visitor@example.com>",
		"text/plain",
		"text/html",
		"plain body",
		"Message-Id:",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in message:\n%s", want, out)
		}
	}
}

func TestBuildMIMERejectsBadAddress(t *testing.T) {
	_, err := buildMIME(Message{From: "not an address", To: []string{"a@example.com"}, Text: "x"}, time.Now())
	if err == nil {
		t.Fatalf("expected error for invalid from address")
	}
}

func TestResendSender(t *testing.T) {
	var got resendRequest
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"id":"msg_1"}`))
	}))
	defer ts.Close()

	s := NewResendSender(ts.URL, "re_key", ts.Client())
	err := s.Send(context.Background(), Message{
		From:    "noreply@example.com",
		To:      []string{"owner@example.com"},
		ReplyTo: "visitor@example.com",
		Subject: "hello",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Bearer re_key" {
		t.Fatalf("unexpected authorization header %q", auth)
	}
	if got.ReplyTo != "visitor@example.com" || len(got.To) != 1 || got.Subject != "hello" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestResendSenderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"message":"invalid from","name":"validation_error"}`))
	}))
	defer ts.Close()

	err := NewResendSender(ts.URL, "re_key", ts.Client()).Send(context.Background(), Message{To: []string{"a@example.com"}})
	if err == nil || !strings.Contains(err.Error(), "invalid from") {
		t.Fatalf("expected resend error with message, got %v", err)
	}
}

func TestResendSenderRequiresKey(t *testing.T) {
	if err := NewResendSender("", "", nil).Send(context.Background(), Message{}); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestContactNotificationEscapesHTML(t *testing.T) {
	msg, err := ContactNotification("noreply@example.com", "owner@example.com", ContactEmail{
		Name:    "Jane O'Neil",
		Email:   "jane@example.com",
		Message: "<script>alert(1)</script> hello there",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Subject != "Portfolio Contact: Jane O'Neil" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if msg.ReplyTo != "jane@example.com" || msg.To[0] != "owner@example.com" {
		t.Fatalf("unexpected routing %+v", msg)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Fatalf("html body must escape user input")
	}
	if !strings.Contains(msg.Text, "<script>alert(1)</script> hello there") {
		t.Fatalf("text body should carry the raw message")
	}
}

func TestContactConfirmation(t *testing.T) {
	msg, err := ContactConfirmation("noreply@example.com", ContactEmail{
		Name:      "Jane",
		Email:     "jane@example.com",
		Message:   "hello there friend",
		Signature: "Melvin Prince",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.To[0] != "jane@example.com" || msg.Subject != confirmationSubject {
		t.Fatalf("unexpected confirmation %+v", msg)
	}
	if !strings.Contains(msg.HTML, "Melvin Prince") {
		t.Fatalf("expected signature in html body")
	}
}

func TestNewSenderSelection(t *testing.T) {
	if _, ok := NewSender(config.Config{EmailSender: "log"}, nil).(LogSender); !ok {
		t.Fatalf("expected LogSender")
	}
	if _, ok := NewSender(config.Config{EmailSender: "smtp", SMTPHost: "localhost", SMTPPort: 25}, nil).(SMTPSender); !ok {
		t.Fatalf("expected SMTPSender")
	}
	if _, ok := NewSender(config.Config{EmailSender: "resend", ResendAPIKey: "k"}, nil).(ResendSender); !ok {
		t.Fatalf("expected ResendSender")
	}
}
