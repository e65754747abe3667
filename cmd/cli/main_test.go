package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	printJSON(&out, []byte(`{"a":1}`))

	expected := "{\n  \"a\": 1\n}\n"
	if out.String() != expected {
		t.Fatalf("unexpected json output:\n%s", out.String())
	}

	out.Reset()
	printJSON(&out, []byte("not json"))
	if out.String() != "not json\n" {
		t.Fatalf("expected raw passthrough, got %q", out.String())
	}
}

func TestParseAmount(t *testing.T) {
	if got, err := parseAmount("12.5"); err != nil || got != "12.50" {
		t.Fatalf("expected 12.50, got %q (%v)", got, err)
	}

	for _, raw := range []string{"abc", "0", "-1", "1.234"} {
		if _, err := parseAmount(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestDepositCmd(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/deposit" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-User-ID") != "10" || r.Header.Get("X-User-Role") != "customer" {
			t.Errorf("unexpected identity headers %v", r.Header)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("X-Idempotency-Replay", "true")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"tx-1"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "--user", "10", "deposit", "1", "100", "--key", "dep-1")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	if got["amount"] != "100.00" || got["idempotency_key"] != "dep-1" || got["account_id"] != float64(1) {
		t.Fatalf("unexpected body %v", got)
	}
	if !strings.Contains(out, `"id": "tx-1"`) || !strings.Contains(out, "(replayed)") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestTransferCmdGeneratesKey(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if _, err := execute(t, "--url", srv.URL, "--token", "tok", "transfer", "1", "2", "5"); err != nil {
		t.Fatalf("command failed: %v", err)
	}

	if key, _ := got["idempotency_key"].(string); key == "" {
		t.Fatalf("expected a generated idempotency key, got %v", got)
	}
}

func TestCommandReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"SETTLEMENT_FAILED","message":"External system failure"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "--user", "10", "withdraw", "1", "5")
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected status error, got %v", err)
	}
	if !strings.Contains(out, "External system failure") {
		t.Fatalf("expected body in output, got %q", out)
	}
}

func TestHistoryCmdPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/accounts/3/transactions" || r.URL.Query().Get("page") != "2" {
			t.Errorf("unexpected request %s", r.URL)
		}
		_, _ = w.Write([]byte(`{"transactions":[]}`))
	}))
	defer srv.Close()

	if _, err := execute(t, "--url", srv.URL, "history", "3", "--page", "2"); err != nil {
		t.Fatalf("command failed: %v", err)
	}
}

func TestInvalidArguments(t *testing.T) {
	cases := [][]string{
		{"deposit", "abc", "1"},
		{"deposit", "1", "1.001"},
		{"balance", "0"},
		{"transfer", "1", "2"},
	}

	for _, args := range cases {
		if _, err := execute(t, append([]string{"--url", "http://127.0.0.1:0"}, args...)...); err == nil {
			t.Fatalf("expected %v to fail", args)
		}
	}
}

func TestTokenCmd(t *testing.T) {
	out, err := execute(t, "token", "42", "--secret", "s3cret", "--role", "admin", "--ttl", "1m")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	claims, err := auth.NewJWTManager("s3cret", time.Minute).Verify(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("token did not verify: %v", err)
	}
	if claims.UserID != 42 || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}

	t.Setenv("JWT_SECRET", "")
	if _, err := execute(t, "token", "42"); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}

func TestMigrateCmd(t *testing.T) {
	origUp, origDown := migrateUp, migrateDown
	defer func() { migrateUp, migrateDown = origUp, origDown }()

	var calls []string
	migrateUp = func(url, path string, _ zerolog.Logger) error {
		calls = append(calls, "up:"+path)
		return nil
	}
	migrateDown = func(url, path string, _ zerolog.Logger) error {
		calls = append(calls, "down:"+path)
		return errors.New("no migration")
	}

	t.Setenv("MIGRATIONS_PATH", "db/migrations")

	if _, err := execute(t, "migrate", "up"); err != nil {
		t.Fatalf("migrate up failed: %v", err)
	}
	if _, err := execute(t, "migrate", "down"); err == nil {
		t.Fatalf("expected migrate down error to surface")
	}

	if strings.Join(calls, ",") != "up:db/migrations,down:db/migrations" {
		t.Fatalf("unexpected calls %v", calls)
	}
}
