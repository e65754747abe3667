package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRecoveryAndLogging(t *testing.T) {
	var buf bytes.Buffer
	logging := NewLoggingMiddleware(zerolog.New(&buf))

	handler := logging.Wrap(Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/deposit", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "internal server error") {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}

	out := buf.String()
	if !strings.Contains(out, "panic recovered") {
		t.Fatalf("expected panic to be logged through the request logger, got %q", out)
	}
	if !strings.Contains(out, `"status":500`) || !strings.Contains(out, `"level":"error"`) {
		t.Fatalf("expected request line at error level, got %q", out)
	}
}
