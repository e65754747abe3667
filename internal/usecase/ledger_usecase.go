package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// LedgerUseCase moves money: deposits, transfers and withdrawals.
type LedgerUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	transferRepo    TransferRequestRepository
	withdrawalRepo  WithdrawalRepository
	outboxRepo      OutboxRepository
	settlement      SettlementGateway
	cache           Cache
	idGen           IDGenerator
	retrier         Retrier
	logger          zerolog.Logger
	metrics         *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase. retrier and m may be nil.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	transferRepo TransferRequestRepository,
	withdrawalRepo WithdrawalRepository,
	outboxRepo OutboxRepository,
	settlement SettlementGateway,
	cache Cache,
	idGen IDGenerator,
	retrier Retrier,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		transferRepo:    transferRepo,
		withdrawalRepo:  withdrawalRepo,
		outboxRepo:      outboxRepo,
		settlement:      settlement,
		cache:           cache,
		idGen:           idGen,
		retrier:         retrier,
		logger:          logger.With().Str("component", "ledger").Logger(),
		metrics:         m,
	}
}

// Receipt is the result of a money movement. Replayed is set when the
// transaction was created by an earlier request with the same key.
type Receipt struct {
	Transaction *domain.Transaction
	Replayed    bool
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	Principal      *domain.Principal
	AccountID      int64
	Amount         decimal.Decimal
	IdempotencyKey string
}

// TransferInput represents input for a transfer between two accounts.
type TransferInput struct {
	Principal            *domain.Principal
	SourceAccountID      int64
	DestinationAccountID int64
	Amount               decimal.Decimal
	IdempotencyKey       string
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	Principal      *domain.Principal
	AccountID      int64
	Amount         decimal.Decimal
	IdempotencyKey string
}

func validateMovement(amount decimal.Decimal, key string, accountIDs ...int64) error {
	for _, id := range accountIDs {
		if err := domain.ValidateAccountID(id); err != nil {
			return err
		}
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}
	return domain.ValidateIdempotencyKey(key)
}

// loadOwned reads an account outside any lock and checks the caller may act on it.
func (uc *LedgerUseCase) loadOwned(ctx context.Context, p *domain.Principal, id int64) (*domain.Account, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("get account", err)
	}

	if err := domain.Authorize(p, account); err != nil {
		return nil, err
	}

	return account, nil
}

// inTx runs fn in one database transaction. The context is detached from
// caller cancellation so a disconnecting client cannot abort a half-done
// unit of work; DefaultTransactionTimeout still bounds it.
func (uc *LedgerUseCase) inTx(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return storageError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storageError("commit transaction", err)
	}

	return nil
}

func (uc *LedgerUseCase) retry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}
	return uc.retrier.Retry(ctx, operation)
}

func (uc *LedgerUseCase) newTransaction(
	p *domain.Principal,
	typ domain.TransactionType,
	amount decimal.Decimal,
	source, destination *int64,
	key string,
	now time.Time,
) *domain.Transaction {
	return &domain.Transaction{
		ID:                   uuid.NewString(),
		Type:                 typ,
		Amount:               amount,
		SourceAccountID:      source,
		DestinationAccountID: destination,
		Status:               domain.TransactionStatusCompleted,
		IdempotencyKey:       key,
		Metadata: map[string]any{
			domain.MetaSimulated: true,
			domain.MetaUserID:    p.UserID,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (uc *LedgerUseCase) writeEvent(ctx context.Context, tx Transaction, t *domain.Transaction) error {
	if uc.outboxRepo == nil {
		return nil
	}
	event := domain.NewTransactionEvent(uc.idGen.Generate(), t)
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return storageError("create outbox event", err)
	}
	return nil
}

// observe records the outcome of a ledger operation.
func (uc *LedgerUseCase) observe(typ domain.TransactionType, amount decimal.Decimal, start time.Time, receipt *Receipt, err error) {
	outcome := metrics.OutcomeCompleted
	switch {
	case receipt != nil && receipt.Replayed:
		outcome = metrics.OutcomeReplayed
	case errors.Is(err, domain.ErrSettlementFailed):
		outcome = metrics.OutcomeFailed
	case errors.Is(err, domain.ErrInsufficientFunds):
		outcome = metrics.OutcomeInsufficientFunds
	case errors.Is(err, domain.ErrStorage):
		outcome = metrics.OutcomeError
	case err != nil:
		outcome = metrics.OutcomeRejected
	}

	level := zerolog.InfoLevel
	switch outcome {
	case metrics.OutcomeReplayed, metrics.OutcomeRejected:
		level = zerolog.DebugLevel
	case metrics.OutcomeFailed, metrics.OutcomeInsufficientFunds:
		level = zerolog.WarnLevel
	case metrics.OutcomeError:
		level = zerolog.ErrorLevel
	}

	event := uc.logger.WithLevel(level)
	if err != nil {
		event = event.Err(err)
	}
	if receipt != nil && receipt.Transaction != nil {
		event = event.Str("transaction_id", receipt.Transaction.ID)
	}
	event.Str("type", string(typ)).
		Str("amount", amount.String()).
		Str("outcome", outcome).
		Dur("duration", time.Since(start)).
		Msg("ledger operation")

	if uc.metrics == nil {
		return
	}
	uc.metrics.Operations.WithLabelValues(string(typ), outcome).Inc()
	uc.metrics.OperationDuration.WithLabelValues(string(typ)).Observe(time.Since(start).Seconds())
	if outcome == metrics.OutcomeCompleted {
		uc.metrics.OperationAmount.WithLabelValues(string(typ)).Observe(amount.InexactFloat64())
	}
}

// storageError passes ledger errors through and wraps everything else as a
// retryable storage failure.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isLedgerError(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

var ledgerErrors = []error{
	domain.ErrStorage,
	domain.ErrAccountNotFound,
	domain.ErrAccountExists,
	domain.ErrTransactionNotFound,
	domain.ErrInsufficientFunds,
	domain.ErrDuplicateIdempotencyKey,
	domain.ErrUnauthorized,
	domain.ErrForbidden,
	domain.ErrSettlementFailed,
}

func isLedgerError(err error) bool {
	if domain.IsValidation(err) {
		return true
	}
	for _, target := range ledgerErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func int64Ptr(v int64) *int64 {
	return &v
}
