package postgres

import (
	"context"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

// TransferRequestRepository implements usecase.TransferRequestRepository. It only writes
// inside a unit of work, so it holds no pool.
type TransferRequestRepository struct{}

// NewTransferRequestRepository creates a new TransferRequestRepository.
func NewTransferRequestRepository() *TransferRequestRepository {
	return &TransferRequestRepository{}
}

// Create records the account pair of a transfer within its transaction.
func (r *TransferRequestRepository) Create(ctx context.Context, tx usecase.Transaction, req *domain.TransferRequest) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	transactionID, err := stringToUUID(req.TransactionID)
	if err != nil {
		return err
	}

	id, err := queries.CreateTransferRequest(ctx, generated.CreateTransferRequestParams{
		TransactionID:        transactionID,
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               decimalToNumeric(req.Amount),
		Status:               string(req.Status),
		CreatedAt:            timeToPgTimestamptz(req.CreatedAt),
	})
	if err != nil {
		return mapError(err)
	}

	req.ID = id

	return nil
}
