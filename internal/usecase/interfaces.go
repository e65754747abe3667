package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks -exclude_interfaces=AccountRepository,TransactionRepository,TransferRequestRepository,WithdrawalRepository,OutboxRepository,Transaction,TransactionManager,Retrier,IDGenerator

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.Account, error)
	// GetByIDsForUpdate locks the rows in ascending id order.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []int64) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id int64, balance decimal.Decimal, updatedAt time.Time) error
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	// Create returns domain.ErrDuplicateIdempotencyKey when the key is taken.
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error)
}

// TransferRequestRepository defines data access for transfer requests.
type TransferRequestRepository interface {
	Create(ctx context.Context, tx Transaction, req *domain.TransferRequest) error
}

// WithdrawalRepository defines data access for withdrawals.
type WithdrawalRepository interface {
	Create(ctx context.Context, tx Transaction, w *domain.Withdrawal) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// StatsRepository aggregates ledger-wide figures.
type StatsRepository interface {
	LedgerStats(ctx context.Context) (*domain.LedgerStats, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ErrPatternDeleteUnsupported is returned by caches that cannot delete by pattern.
var ErrPatternDeleteUnsupported = errors.New("cache: pattern delete not supported")

// Cache defines caching operations.
type Cache interface {
	// Get returns found=false on a miss.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePattern removes keys matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error
}

// SettlementGateway moves withdrawn funds to the outside world.
type SettlementGateway interface {
	Settle(ctx context.Context, req domain.SettlementRequest) (domain.SettlementResult, error)
}
