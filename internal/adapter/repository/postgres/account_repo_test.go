package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

var accountColumns = []string{"id", "owner_id", "currency", "balance", "created_at", "updated_at"}

func numeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("numeric %q: %v", s, err)
	}
	return n
}

func TestAccountRepositoryGetByID(t *testing.T) {
	mockPool := newMockPool(t)
	now := timeToPgTimestamptz(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(accountColumns).
			AddRow(int64(7), int64(70), "KES", numeric(t, "1250.50"), now, now))

	repo := newAccountRepository(mockPool)
	acc, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if acc.ID != 7 || acc.OwnerID != 70 || acc.Currency != "KES" {
		t.Fatalf("unexpected account: %+v", acc)
	}
	if !acc.Balance.Equal(decimal.RequireFromString("1250.50")) {
		t.Fatalf("expected balance 1250.50, got %s", acc.Balance)
	}

	assertExpectations(t, mockPool)
}

func TestAccountRepositoryGetByIDNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	repo := newAccountRepository(mockPool)
	if _, err := repo.GetByID(context.Background(), 9); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestAccountRepositoryGetByIDsForUpdate(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginMockTx(t, mockPool)
	now := timeToPgTimestamptz(time.Now().UTC())

	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE id = ANY($1::bigint[]) ORDER BY id FOR UPDATE")).
		WithArgs([]int64{3, 8}).
		WillReturnRows(pgxmock.NewRows(accountColumns).
			AddRow(int64(3), int64(30), "KES", numeric(t, "10"), now, now).
			AddRow(int64(8), int64(80), "KES", numeric(t, "0"), now, now))

	repo := newAccountRepository(mockPool)
	accounts, err := repo.GetByIDsForUpdate(context.Background(), tx, []int64{3, 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(accounts) != 2 || accounts[0].ID != 3 || accounts[1].ID != 8 {
		t.Fatalf("unexpected accounts: %+v", accounts)
	}

	assertExpectations(t, mockPool)
}

func TestAccountRepositoryUpdateBalance(t *testing.T) {
	tests := []struct {
		name    string
		result  pgconn.CommandTag
		err     error
		wantErr error
	}{
		{name: "updated", result: pgxmock.NewResult("UPDATE", 1)},
		{name: "missing", result: pgxmock.NewResult("UPDATE", 0), wantErr: domain.ErrAccountNotFound},
		{
			name:    "negative balance",
			err:     &pgconn.PgError{Code: pgErrCheckViolation, ConstraintName: constraintNonNegativeBalance},
			wantErr: domain.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			tx := beginMockTx(t, mockPool)

			exec := mockPool.ExpectExec(regexp.QuoteMeta("UPDATE accounts")).
				WithArgs(int64(1), pgxmock.AnyArg(), pgxmock.AnyArg())
			if tt.err != nil {
				exec.WillReturnError(tt.err)
			} else {
				exec.WillReturnResult(tt.result)
			}

			repo := newAccountRepository(mockPool)
			err := repo.UpdateBalance(context.Background(), tx, 1, decimal.RequireFromString("-1"), time.Now())

			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			assertExpectations(t, mockPool)
		})
	}
}

func TestAccountRepositoryCreate(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginMockTx(t, mockPool)
	now := time.Now().UTC()

	mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs(int64(42), "USD", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(accountColumns).
			AddRow(int64(5), int64(42), "USD", numeric(t, "0"), timeToPgTimestamptz(now), timeToPgTimestamptz(now)))

	repo := newAccountRepository(mockPool)
	acc := &domain.Account{OwnerID: 42, Currency: "USD", Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now}
	if err := repo.Create(context.Background(), tx, acc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if acc.ID != 5 {
		t.Fatalf("expected generated id 5, got %d", acc.ID)
	}

	assertExpectations(t, mockPool)
}

func TestAccountRepositoryCreateDuplicateOwner(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginMockTx(t, mockPool)

	mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: constraintAccountOwner})

	repo := newAccountRepository(mockPool)
	err := repo.Create(context.Background(), tx, &domain.Account{OwnerID: 42, Currency: "KES"})
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}

	assertExpectations(t, mockPool)
}
