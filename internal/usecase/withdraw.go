package usecase

import (
	"context"
	"time"

	"github.com/iho/walletledger/internal/domain"
)

// Withdraw debits an account and settles the funds externally. A rejected
// settlement is recorded as a failed transaction and reported with
// domain.ErrSettlementFailed alongside the receipt.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*Receipt, error) {
	start := time.Now()
	receipt, err := uc.withdraw(ctx, input)
	uc.observe(domain.TransactionTypeWithdrawal, input.Amount, start, receipt, err)
	return receipt, err
}

func (uc *LedgerUseCase) withdraw(ctx context.Context, input WithdrawInput) (*Receipt, error) {
	if err := validateMovement(input.Amount, input.IdempotencyKey, input.AccountID); err != nil {
		return nil, err
	}

	if _, err := uc.loadOwned(ctx, input.Principal, input.AccountID); err != nil {
		return nil, err
	}

	shape := requestShape{
		typ:    domain.TransactionTypeWithdrawal,
		amount: input.Amount,
		source: int64Ptr(input.AccountID),
	}

	if receipt, err := uc.lookupReplay(ctx, input.IdempotencyKey, shape); receipt != nil || err != nil {
		return receipt, err
	}

	// Not retried: the settlement rail must see each withdrawal at most once.
	var created *domain.Transaction
	err := uc.inTx(ctx, func(ctx context.Context, tx Transaction) error {
		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
		if err != nil {
			return storageError("lock account", err)
		}

		// Must precede Settle.
		if err := uc.recheckKey(ctx, input.IdempotencyKey); err != nil {
			return err
		}

		if err := account.ValidateDebit(input.Amount); err != nil {
			return err
		}

		result, err := uc.settlement.Settle(ctx, domain.SettlementRequest{
			AccountID:      account.ID,
			Amount:         input.Amount,
			IdempotencyKey: input.IdempotencyKey,
		})
		if err != nil {
			return storageError("settle withdrawal", err)
		}
		uc.recordSettlement(result)

		now := time.Now().UTC()
		t := uc.newTransaction(input.Principal, shape.typ, input.Amount, shape.source, nil, input.IdempotencyKey, now)
		t.Metadata[domain.MetaExternalSuccess] = result.Success

		withdrawal := &domain.Withdrawal{
			TransactionID: t.ID,
			AccountID:     account.ID,
			Amount:        input.Amount,
			Status:        domain.TransactionStatusCompleted,
			CreatedAt:     now,
		}

		if result.Success {
			ref := result.Reference
			withdrawal.ExternalReference = &ref
		} else {
			t.Status = domain.TransactionStatusFailed
			t.Metadata[domain.MetaReason] = result.Reason
			withdrawal.Status = domain.TransactionStatusFailed
		}

		if err := uc.transactionRepo.Create(ctx, tx, t); err != nil {
			return storageError("create transaction", err)
		}

		if result.Success {
			if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.ApplyDebit(input.Amount), now); err != nil {
				return storageError("update balance", err)
			}
		}

		if err := uc.withdrawalRepo.Create(ctx, tx, withdrawal); err != nil {
			return storageError("create withdrawal", err)
		}

		if err := uc.writeEvent(ctx, tx, t); err != nil {
			return err
		}

		created = t
		return nil
	})
	if isKeyConflict(err) {
		return uc.resolveDuplicate(ctx, input.IdempotencyKey, shape)
	}
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{Transaction: created}
	if created.Status == domain.TransactionStatusFailed {
		return receipt, domain.ErrSettlementFailed
	}

	uc.invalidateAccounts(ctx, input.AccountID)

	return receipt, nil
}

func (uc *LedgerUseCase) recordSettlement(result domain.SettlementResult) {
	if uc.metrics == nil {
		return
	}
	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	uc.metrics.Settlements.WithLabelValues(outcome).Inc()
}
