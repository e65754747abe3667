package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/auth"
)

func principalEcho(t *testing.T, got **domain.Principal) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := domain.PrincipalFromContext(r.Context())
		if !ok {
			t.Fatalf("expected principal in context")
		}
		*got = p
	})
}

func TestAuthenticate_GatewayHeaders(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		role     string
		wantCode int
		wantRole domain.Role
	}{
		{"customer default", "42", "", http.StatusOK, domain.RoleCustomer},
		{"admin", "1", "ADMIN", http.StatusOK, domain.RoleAdmin},
		{"missing user", "", "", http.StatusUnauthorized, ""},
		{"non numeric", "abc", "", http.StatusUnauthorized, ""},
		{"zero user", "0", "", http.StatusUnauthorized, ""},
		{"unknown role", "5", "root", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *domain.Principal
			req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/1/balance", nil)
			if tt.userID != "" {
				req.Header.Set(UserIDHeader, tt.userID)
			}
			if tt.role != "" {
				req.Header.Set(UserRoleHeader, tt.role)
			}
			rr := httptest.NewRecorder()

			Authenticate(nil)(principalEcho(t, &got)).ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
			if tt.wantCode == http.StatusOK && got.Role != tt.wantRole {
				t.Fatalf("expected role %s, got %+v", tt.wantRole, got)
			}
		})
	}
}

func TestAuthenticate_Bearer(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	token, err := manager.Generate(domain.Principal{UserID: 77, Role: domain.RoleCustomer})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var got *domain.Principal
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	Authenticate(manager)(principalEcho(t, &got)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || got.UserID != 77 {
		t.Fatalf("expected authenticated request, got %d %+v", rr.Code, got)
	}

	rejected := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"basic", "Basic dXNlcjpwYXNz"},
		{"garbage", "Bearer not-a-token"},
	}

	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			// Gateway headers are ignored once bearer tokens are enabled.
			req.Header.Set(UserIDHeader, "1")
			rr := httptest.NewRecorder()

			Authenticate(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatalf("handler must not be called")
			})).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name      string
		principal *domain.Principal
		want      int
	}{
		{"admin", &domain.Principal{UserID: 1, Role: domain.RoleAdmin}, http.StatusOK},
		{"customer", &domain.Principal{UserID: 2, Role: domain.RoleCustomer}, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
			if tt.principal != nil {
				req = req.WithContext(domain.WithPrincipal(req.Context(), tt.principal))
			}
			rr := httptest.NewRecorder()

			RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}
