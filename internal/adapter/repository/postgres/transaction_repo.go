package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return newTransactionRepository(pool)
}

func newTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create inserts a transaction. A taken idempotency key is reported as
// domain.ErrDuplicateIdempotencyKey.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	id, err := stringToUUID(t.ID)
	if err != nil {
		return err
	}

	metadata := []byte("{}")
	if t.Metadata != nil {
		metadata, err = json.Marshal(t.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
	}

	err = queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:                   id,
		TransactionType:      string(t.Type),
		Amount:               decimalToNumeric(t.Amount),
		SourceAccountID:      int64PtrToInt8(t.SourceAccountID),
		DestinationAccountID: int64PtrToInt8(t.DestinationAccountID),
		Status:               string(t.Status),
		IdempotencyKey:       t.IdempotencyKey,
		Metadata:             metadata,
		CreatedAt:            timeToPgTimestamptz(t.CreatedAt),
		UpdatedAt:            timeToPgTimestamptz(t.UpdatedAt),
	})

	return mapError(err)
}

// GetByIdempotencyKey retrieves the transaction created under key.
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row)
}

// ListByAccount lists transactions touching an account, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByAccount(ctx, generated.ListTransactionsByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows)
}

// List returns one filtered page and the total number of matches.
func (r *TransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	transactionType := optionalText(string(filter.Type))
	status := optionalText(string(filter.Status))
	accountID := int64PtrToInt8(filter.AccountID)

	count, err := r.queries.CountTransactions(ctx, generated.CountTransactionsParams{
		TransactionType: transactionType,
		Status:          status,
		AccountID:       accountID,
	})
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.queries.ListTransactions(ctx, generated.ListTransactionsParams{
		TransactionType: transactionType,
		Status:          status,
		AccountID:       accountID,
		Limit:           int32(filter.PageSize),
		Offset:          int32((filter.Page - 1) * filter.PageSize),
	})
	if err != nil {
		return nil, 0, err
	}

	transactions, err := rowsToTransactions(rows)
	if err != nil {
		return nil, 0, err
	}

	return transactions, count, nil
}

func rowsToTransactions(rows []generated.Transaction) ([]*domain.Transaction, error) {
	transactions := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := rowToTransaction(row)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	return transactions, nil
}

func rowToTransaction(row generated.Transaction) (*domain.Transaction, error) {
	var metadata map[string]any
	if row.Metadata != nil {
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of transaction %s: %w", uuidToString(row.ID), err)
		}
	}

	return &domain.Transaction{
		ID:                   uuidToString(row.ID),
		Type:                 domain.TransactionType(row.TransactionType),
		Amount:               numericToDecimal(row.Amount),
		SourceAccountID:      int8ToInt64Ptr(row.SourceAccountID),
		DestinationAccountID: int8ToInt64Ptr(row.DestinationAccountID),
		Status:               domain.TransactionStatus(row.Status),
		IdempotencyKey:       row.IdempotencyKey,
		Metadata:             metadata,
		CreatedAt:            row.CreatedAt.Time,
		UpdatedAt:            row.UpdatedAt.Time,
	}, nil
}
