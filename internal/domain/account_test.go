package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		debitAmount decimal.Decimal
		expectError bool
	}{
		{
			name:        "debit less than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(40),
		},
		{
			name:        "debit exact balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(100),
		},
		{
			name:        "debit more than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.RequireFromString("100.01"),
			expectError: true,
		},
		{
			name:        "debit from empty account",
			balance:     decimal.Zero,
			debitAmount: decimal.RequireFromString("0.01"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{ID: 1, Balance: tt.balance}
			err := acc.ValidateDebit(tt.debitAmount)
			if tt.expectError {
				if !errors.Is(err, ErrInsufficientFunds) {
					t.Errorf("expected ErrInsufficientFunds, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccount_ApplyDebitCredit(t *testing.T) {
	acc := &Account{Balance: decimal.RequireFromString("50.25")}

	if got := acc.ApplyCredit(decimal.RequireFromString("10.75")); !got.Equal(decimal.NewFromInt(61)) {
		t.Errorf("credit: expected 61, got %s", got)
	}

	if got := acc.ApplyDebit(decimal.RequireFromString("0.25")); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("debit: expected 50, got %s", got)
	}
}

func TestAccount_OwnerMatches(t *testing.T) {
	acc := &Account{ID: 7, OwnerID: 42}

	if !acc.OwnerMatches(42) {
		t.Error("expected owner to match")
	}
	if acc.OwnerMatches(43) {
		t.Error("expected other user not to match")
	}
}
