package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

// errKeyCommitted aborts a unit of work whose key was committed by an
// earlier request that held the same row locks.
var errKeyCommitted = errors.New("idempotency key committed concurrently")

// requestShape identifies what a request asked for, independent of its key.
type requestShape struct {
	typ         domain.TransactionType
	amount      decimal.Decimal
	source      *int64
	destination *int64
}

// lookupReplay returns the receipt of an earlier request with the same key,
// or nil when the key is unused.
func (uc *LedgerUseCase) lookupReplay(ctx context.Context, key string, shape requestShape) (*Receipt, error) {
	existing, err := uc.transactionRepo.GetByIdempotencyKey(ctx, key)
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("lookup idempotency key", err)
	}

	return replay(existing, shape)
}

// recheckKey runs after the account rows are locked. A same-key request that
// locked them first has committed by now, so its row is visible.
func (uc *LedgerUseCase) recheckKey(ctx context.Context, key string) error {
	_, err := uc.transactionRepo.GetByIdempotencyKey(ctx, key)
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return nil
	}
	if err != nil {
		return storageError("recheck idempotency key", err)
	}
	return errKeyCommitted
}

// isKeyConflict reports whether a unit of work lost its key to another request.
func isKeyConflict(err error) bool {
	return errors.Is(err, domain.ErrDuplicateIdempotencyKey) || errors.Is(err, errKeyCommitted)
}

// resolveDuplicate handles a lost race on the idempotency key: the winner
// has committed, so its transaction is returned as a replay.
func (uc *LedgerUseCase) resolveDuplicate(ctx context.Context, key string, shape requestShape) (*Receipt, error) {
	existing, err := uc.transactionRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, storageError("resolve duplicate idempotency key", err)
	}

	return replay(existing, shape)
}

func replay(existing *domain.Transaction, shape requestShape) (*Receipt, error) {
	if !existing.SameRequest(shape.typ, shape.amount, shape.source, shape.destination) {
		return nil, domain.ErrIdempotencyKeyReused
	}

	receipt := &Receipt{Transaction: existing, Replayed: true}
	if existing.Status == domain.TransactionStatusFailed {
		return receipt, domain.ErrSettlementFailed
	}

	return receipt, nil
}
