package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists for owner")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Transaction errors
	ErrSameAccount         = errors.New("cannot transfer to same account")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrCurrencyMismatch    = errors.New("cannot transfer between different currencies")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Idempotency errors
	ErrInvalidIdempotencyKey = errors.New("invalid idempotency key")
	ErrIdempotencyKeyReused  = errors.New("idempotency key reused with different request")

	// ErrDuplicateIdempotencyKey is reported by the store when a concurrent
	// request already committed a transaction with the same key.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// Authorization errors
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("not allowed to operate on this account")

	// Settlement errors
	ErrSettlementFailed = errors.New("external settlement failed")

	// ErrStorage wraps failures of the backing store. Callers may retry.
	ErrStorage = errors.New("storage failure")
)

var validationErrors = []error{
	ErrInvalidAmount,
	ErrAmountPrecision,
	ErrAmountTooSmall,
	ErrAmountTooLarge,
	ErrSameAccount,
	ErrCurrencyMismatch,
	ErrInvalidCurrency,
	ErrInvalidIdempotencyKey,
	ErrIdempotencyKeyReused,
	ErrInvalidAccountID,
	ErrInvalidPage,
	ErrInvalidFilter,
}

// IsValidation reports whether err is caused by invalid caller input.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
