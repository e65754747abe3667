package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrAmountTooLarge   = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall   = errors.New("amount below minimum allowed")
	ErrAmountPrecision  = errors.New("amount has more than 2 decimal places")
	ErrInvalidAccountID = errors.New("invalid account id")
	ErrInvalidPage      = errors.New("page must be a positive integer")
	ErrInvalidFilter    = errors.New("invalid filter")
)

// Validation constants
const (
	AmountScale             = 2
	MinAmount               = "0.01"
	MaxAmount               = "9999999999999.99" // NUMERIC(15,2)
	MaxIdempotencyKeyLength = 255
	DefaultCurrency         = "KES"
)

var (
	minAmount = decimal.RequireFromString(MinAmount)
	maxAmount = decimal.RequireFromString(MaxAmount)
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"KES": true, "UGX": true, "TZS": true, "NGN": true,
	"ZAR": true, "USD": true, "EUR": true, "GBP": true,
}

// ValidateAmount checks that amount is a positive two-decimal money value
// that fits the balance column.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: %s", ErrAmountPrecision, amount.String())
	}

	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinAmount)
	}

	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateIdempotencyKey checks a client supplied key.
func ValidateIdempotencyKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidIdempotencyKey)
	}

	if len(key) > MaxIdempotencyKeyLength {
		return fmt.Errorf("%w: key exceeds %d characters", ErrInvalidIdempotencyKey, MaxIdempotencyKeyLength)
	}

	for _, r := range key {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("%w: key contains non-printable characters", ErrInvalidIdempotencyKey)
		}
	}

	return nil
}

// ValidateAccountID rejects non-positive identifiers.
func ValidateAccountID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAccountID, id)
	}
	return nil
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a supported currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(page, pageSize int) (int, int, error) {
	const MaxPageSize = 200
	const DefaultPageSize = 50

	if page <= 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return page, pageSize, nil
}
