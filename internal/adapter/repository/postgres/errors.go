package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/walletledger/internal/domain"
)

// PostgreSQL error codes mapped to ledger errors.
const (
	pgErrUniqueViolation = "23505"
	pgErrCheckViolation  = "23514"
)

// Constraint names from the migrations.
const (
	constraintIdempotencyKey     = "transactions_idempotency_key_key"
	constraintAccountOwner       = "accounts_owner_id_key"
	constraintNonNegativeBalance = "non_negative_balance"
)

// mapError translates constraint violations into ledger errors. Anything
// else is returned unchanged so callers can still inspect the PgError.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgErrUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintIdempotencyKey:
			return domain.ErrDuplicateIdempotencyKey
		case constraintAccountOwner:
			return domain.ErrAccountExists
		}
	case pgErrCheckViolation:
		if pgErr.ConstraintName == constraintNonNegativeBalance {
			return domain.ErrInsufficientFunds
		}
	}

	return err
}
