package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount string
		want   error
	}{
		{"100", nil},
		{"0.01", nil},
		{"10.50", nil},
		{"10.500", nil},
		{MaxAmount, nil},
		{"0", ErrInvalidAmount},
		{"-5", ErrInvalidAmount},
		{"0.001", ErrAmountPrecision},
		{"1.234", ErrAmountPrecision},
		{"10000000000000", ErrAmountTooLarge},
	}

	for _, tt := range tests {
		err := ValidateAmount(decimal.RequireFromString(tt.amount))
		if tt.want == nil {
			if err != nil {
				t.Fatalf("ValidateAmount(%s): unexpected error %v", tt.amount, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Fatalf("ValidateAmount(%s): expected %v, got %v", tt.amount, tt.want, err)
		}
	}
}

func TestValidateIdempotencyKey(t *testing.T) {
	t.Parallel()

	t.Run("valid key", func(t *testing.T) {
		if err := ValidateIdempotencyKey("dep-2024-0001"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("blank key rejected", func(t *testing.T) {
		if err := ValidateIdempotencyKey("   "); !errors.Is(err, ErrInvalidIdempotencyKey) {
			t.Fatalf("expected ErrInvalidIdempotencyKey, got %v", err)
		}
	})

	t.Run("key at limit accepted", func(t *testing.T) {
		if err := ValidateIdempotencyKey(strings.Repeat("k", MaxIdempotencyKeyLength)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("key too long", func(t *testing.T) {
		err := ValidateIdempotencyKey(strings.Repeat("k", MaxIdempotencyKeyLength+1))
		if !errors.Is(err, ErrInvalidIdempotencyKey) {
			t.Fatalf("expected ErrInvalidIdempotencyKey, got %v", err)
		}
	})

	t.Run("control characters rejected", func(t *testing.T) {
		if err := ValidateIdempotencyKey("abc\x00def"); !errors.Is(err, ErrInvalidIdempotencyKey) {
			t.Fatalf("expected ErrInvalidIdempotencyKey, got %v", err)
		}
	})
}

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrency("kes"); err != nil {
		t.Fatalf("expected uppercase conversion to succeed, got %v", err)
	}

	if err := ValidateCurrency("XYZ"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	page, size, err := ValidatePagination(2, 0)
	if err != nil || page != 2 || size != 50 {
		t.Fatalf("expected defaults (2, 50), got (%d, %d, %v)", page, size, err)
	}

	_, size, _ = ValidatePagination(1, 5000)
	if size != 200 {
		t.Fatalf("expected page size capped at 200, got %d", size)
	}

	if _, _, err := ValidatePagination(0, 10); !errors.Is(err, ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}
}

func TestIsValidation(t *testing.T) {
	t.Parallel()

	if !IsValidation(ValidateAmount(decimal.Zero)) {
		t.Fatal("expected invalid amount to be a validation error")
	}
	if IsValidation(ErrInsufficientFunds) {
		t.Fatal("insufficient funds is not a validation error")
	}
	if IsValidation(ErrStorage) {
		t.Fatal("storage failure is not a validation error")
	}
}
