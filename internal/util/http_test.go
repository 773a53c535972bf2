package util

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteErrorOmitsEmptyCode(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusMethodNotAllowed, "", "Method not allowed")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"Method not allowed"}` {
		t.Fatalf("unexpected body %s", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestWriteErrorDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorDetails(rec, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid form data", []string{"name"})
	want := `{"error":"Invalid form data","code":"VALIDATION_ERROR","details":["name"]}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Message string `json:"message"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"hi"}`))
	if err := DecodeJSON(r, &dst); err != nil || dst.Message != "hi" {
		t.Fatalf("unexpected decode result %q %v", dst.Message, err)
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":`))
	if err := DecodeJSON(r, &dst); err == nil {
		t.Fatalf("expected error for truncated json")
	}
}
