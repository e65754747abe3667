package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	acc := &Account{ID: 1, OwnerID: 10}

	tests := []struct {
		name      string
		principal *Principal
		want      error
	}{
		{"owner", &Principal{UserID: 10, Role: RoleCustomer}, nil},
		{"admin", &Principal{UserID: 99, Role: RoleAdmin}, nil},
		{"other customer", &Principal{UserID: 11, Role: RoleCustomer}, ErrForbidden},
		{"missing principal", nil, ErrUnauthorized},
		{"anonymous principal", &Principal{}, ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Authorize(tt.principal, acc); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	if err := RequireAdmin(&Principal{UserID: 1, Role: RoleAdmin}); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}
	if err := RequireAdmin(&Principal{UserID: 1, Role: RoleCustomer}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := RequireAdmin(nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPrincipalContext(t *testing.T) {
	t.Parallel()

	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Fatal("expected no principal in empty context")
	}

	ctx := WithPrincipal(context.Background(), &Principal{UserID: 5, Role: RoleCustomer})
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.UserID != 5 {
		t.Fatalf("expected principal 5, got %+v", p)
	}
}

func TestTransaction_SameRequest(t *testing.T) {
	t.Parallel()

	src, dst := int64(1), int64(2)
	tx := &Transaction{
		Type:                 TransactionTypeTransfer,
		Amount:               decimal.RequireFromString("30.00"),
		SourceAccountID:      &src,
		DestinationAccountID: &dst,
	}

	if !tx.SameRequest(TransactionTypeTransfer, decimal.NewFromInt(30), &src, &dst) {
		t.Fatal("expected identical request to match")
	}
	if tx.SameRequest(TransactionTypeTransfer, decimal.NewFromInt(31), &src, &dst) {
		t.Fatal("expected different amount not to match")
	}
	if tx.SameRequest(TransactionTypeDeposit, decimal.NewFromInt(30), nil, &dst) {
		t.Fatal("expected different type not to match")
	}
	if !tx.Involves(2) || tx.Involves(3) {
		t.Fatal("unexpected Involves result")
	}
}
