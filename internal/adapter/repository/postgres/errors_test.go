package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/walletledger/internal/domain"
)

func TestMapError(t *testing.T) {
	other := errors.New("connection refused")
	unknownUnique := &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "withdrawals_transaction_id_key"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"plain", other, other},
		{"idempotency key", &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: constraintIdempotencyKey}, domain.ErrDuplicateIdempotencyKey},
		{"account owner", &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: constraintAccountOwner}, domain.ErrAccountExists},
		{"negative balance", &pgconn.PgError{Code: pgErrCheckViolation, ConstraintName: constraintNonNegativeBalance}, domain.ErrInsufficientFunds},
		{"other unique", unknownUnique, unknownUnique},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Fatalf("mapError() = %v, want %v", got, tt.want)
			}
		})
	}
}
