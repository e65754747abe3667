package usecase

import (
	"context"
	"time"

	"github.com/iho/walletledger/internal/domain"
)

// Deposit credits an account.
func (uc *LedgerUseCase) Deposit(ctx context.Context, input DepositInput) (*Receipt, error) {
	start := time.Now()
	receipt, err := uc.deposit(ctx, input)
	uc.observe(domain.TransactionTypeDeposit, input.Amount, start, receipt, err)
	return receipt, err
}

func (uc *LedgerUseCase) deposit(ctx context.Context, input DepositInput) (*Receipt, error) {
	if err := validateMovement(input.Amount, input.IdempotencyKey, input.AccountID); err != nil {
		return nil, err
	}

	if _, err := uc.loadOwned(ctx, input.Principal, input.AccountID); err != nil {
		return nil, err
	}

	shape := requestShape{
		typ:         domain.TransactionTypeDeposit,
		amount:      input.Amount,
		destination: int64Ptr(input.AccountID),
	}

	if receipt, err := uc.lookupReplay(ctx, input.IdempotencyKey, shape); receipt != nil || err != nil {
		return receipt, err
	}

	var created *domain.Transaction
	err := uc.retry(ctx, func() error {
		return uc.inTx(ctx, func(ctx context.Context, tx Transaction) error {
			account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
			if err != nil {
				return storageError("lock account", err)
			}

			if err := uc.recheckKey(ctx, input.IdempotencyKey); err != nil {
				return err
			}

			now := time.Now().UTC()
			t := uc.newTransaction(input.Principal, shape.typ, input.Amount, nil, shape.destination, input.IdempotencyKey, now)

			if err := uc.transactionRepo.Create(ctx, tx, t); err != nil {
				return storageError("create transaction", err)
			}

			if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.ApplyCredit(input.Amount), now); err != nil {
				return storageError("update balance", err)
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

	uc.invalidateAccounts(ctx, input.AccountID)

	return &Receipt{Transaction: created}, nil
}
