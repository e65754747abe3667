package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/auth"
)

// Trusted gateway headers used when bearer tokens are disabled.
const (
	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"
)

// Authenticate resolves the caller identity and stores it in the request
// context. With a JWT manager it requires a bearer token; without one it
// trusts the gateway headers.
func Authenticate(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				principal *domain.Principal
				msg       string
			)
			if jwtManager != nil {
				principal, msg = fromBearer(jwtManager, r)
			} else {
				principal, msg = fromHeaders(r)
			}

			if principal == nil {
				writeError(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := domain.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func fromBearer(jwtManager *auth.JWTManager, r *http.Request) (*domain.Principal, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, "missing authorization header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, "invalid authorization header format"
	}

	claims, err := jwtManager.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, "invalid or expired token"
	}

	return claims.Principal(), ""
}

func fromHeaders(r *http.Request) (*domain.Principal, string) {
	raw := r.Header.Get(UserIDHeader)
	if raw == "" {
		return nil, "missing " + UserIDHeader + " header"
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return nil, "invalid " + UserIDHeader + " header"
	}

	role := domain.Role(strings.ToLower(r.Header.Get(UserRoleHeader)))
	switch role {
	case "":
		role = domain.RoleCustomer
	case domain.RoleCustomer, domain.RoleAdmin:
	default:
		return nil, "invalid " + UserRoleHeader + " header"
	}

	return &domain.Principal{UserID: userID, Role: role}, ""
}

// RequireAdmin rejects callers without the administrator role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := domain.PrincipalFromContext(r.Context())
		switch err := domain.RequireAdmin(p); err {
		case nil:
			next.ServeHTTP(w, r)
		case domain.ErrUnauthorized:
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			writeError(w, http.StatusForbidden, "insufficient permissions")
		}
	})
}
