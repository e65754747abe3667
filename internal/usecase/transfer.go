package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/iho/walletledger/internal/domain"
)

// Transfer moves funds between two accounts of the same currency.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*Receipt, error) {
	start := time.Now()
	receipt, err := uc.transfer(ctx, input)
	uc.observe(domain.TransactionTypeTransfer, input.Amount, start, receipt, err)
	return receipt, err
}

func (uc *LedgerUseCase) transfer(ctx context.Context, input TransferInput) (*Receipt, error) {
	if err := validateMovement(input.Amount, input.IdempotencyKey, input.SourceAccountID, input.DestinationAccountID); err != nil {
		return nil, err
	}

	if input.SourceAccountID == input.DestinationAccountID {
		return nil, domain.ErrSameAccount
	}

	if _, err := uc.loadOwned(ctx, input.Principal, input.SourceAccountID); err != nil {
		return nil, err
	}

	shape := requestShape{
		typ:         domain.TransactionTypeTransfer,
		amount:      input.Amount,
		source:      int64Ptr(input.SourceAccountID),
		destination: int64Ptr(input.DestinationAccountID),
	}

	if receipt, err := uc.lookupReplay(ctx, input.IdempotencyKey, shape); receipt != nil || err != nil {
		return receipt, err
	}

	// Lock order is ascending id on every path.
	accountIDs := []int64{input.SourceAccountID, input.DestinationAccountID}
	slices.Sort(accountIDs)

	var created *domain.Transaction
	err := uc.retry(ctx, func() error {
		return uc.inTx(ctx, func(ctx context.Context, tx Transaction) error {
			accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, accountIDs)
			if err != nil {
				return storageError("lock accounts", err)
			}

			var source, destination *domain.Account
			for _, acc := range accounts {
				switch acc.ID {
				case input.SourceAccountID:
					source = acc
				case input.DestinationAccountID:
					destination = acc
				}
			}
			if source == nil || destination == nil {
				return domain.ErrAccountNotFound
			}

			if err := uc.recheckKey(ctx, input.IdempotencyKey); err != nil {
				return err
			}

			if source.Currency != destination.Currency {
				return domain.ErrCurrencyMismatch
			}
			if err := source.ValidateDebit(input.Amount); err != nil {
				return err
			}

			now := time.Now().UTC()
			t := uc.newTransaction(input.Principal, shape.typ, input.Amount, shape.source, shape.destination, input.IdempotencyKey, now)

			if err := uc.transactionRepo.Create(ctx, tx, t); err != nil {
				return storageError("create transaction", err)
			}

			if err := uc.accountRepo.UpdateBalance(ctx, tx, source.ID, source.ApplyDebit(input.Amount), now); err != nil {
				return storageError("debit source", err)
			}

			if err := uc.accountRepo.UpdateBalance(ctx, tx, destination.ID, destination.ApplyCredit(input.Amount), now); err != nil {
				return storageError("credit destination", err)
			}

			err = uc.transferRepo.Create(ctx, tx, &domain.TransferRequest{
				TransactionID:        t.ID,
				SourceAccountID:      source.ID,
				DestinationAccountID: destination.ID,
				Amount:               input.Amount,
				Status:               domain.TransactionStatusCompleted,
				CreatedAt:            now,
			})
			if err != nil {
				return storageError("create transfer request", err)
			}

			if err := uc.writeEvent(ctx, tx, t); err != nil {
				return err
			}

			created = t
			return nil
		})
	})
	if isKeyConflict(err) {
		return uc.resolveDuplicate(ctx, input.IdempotencyKey, shape)
	}
	if err != nil {
		return nil, err
	}

	uc.invalidateAccounts(ctx, accountIDs...)

	return &Receipt{Transaction: created}, nil
}
