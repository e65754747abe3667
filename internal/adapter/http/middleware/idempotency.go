package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iho/walletledger/internal/domain"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks responses served from a stored transaction.
	IdempotencyReplayHeader = "X-Idempotency-Replay"
)

type idempotencyKeyCtx struct{}

// IdempotencyKey validates the Idempotency-Key header of mutating requests
// and exposes it to handlers. The ledger itself enforces uniqueness.
func IdempotencyKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		if err := domain.ValidateIdempotencyKey(key); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), idempotencyKeyCtx{}, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdempotencyKeyFromContext returns the header key, or "" when absent.
func IdempotencyKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKeyCtx{}).(string)
	return key
}
