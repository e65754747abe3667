package postgres

import (
	"context"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

// WithdrawalRepository implements usecase.WithdrawalRepository. It only writes
// inside a unit of work, so it holds no pool.
type WithdrawalRepository struct{}

// NewWithdrawalRepository creates a new WithdrawalRepository.
func NewWithdrawalRepository() *WithdrawalRepository {
	return &WithdrawalRepository{}
}

// Create records a withdrawal and its settlement outcome.
func (r *WithdrawalRepository) Create(ctx context.Context, tx usecase.Transaction, w *domain.Withdrawal) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	transactionID, err := stringToUUID(w.TransactionID)
	if err != nil {
		return err
	}

	id, err := queries.CreateWithdrawal(ctx, generated.CreateWithdrawalParams{
		TransactionID:     transactionID,
		AccountID:         w.AccountID,
		Amount:            decimalToNumeric(w.Amount),
		Status:            string(w.Status),
		ExternalReference: stringPtrToText(w.ExternalReference),
		CreatedAt:         timeToPgTimestamptz(w.CreatedAt),
	})
	if err != nil {
		return mapError(err)
	}

	w.ID = id

	return nil
}
