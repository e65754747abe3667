package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// AccountConfig tunes the read side.
type AccountConfig struct {
	BalanceTTL time.Duration
	HistoryTTL time.Duration
	PageSize   int
}

func (c AccountConfig) withDefaults() AccountConfig {
	if c.BalanceTTL <= 0 {
		c.BalanceTTL = DefaultBalanceCacheTTL
	}
	if c.HistoryTTL <= 0 {
		c.HistoryTTL = DefaultHistoryCacheTTL
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultHistoryPageSize
	}
	return c
}

// AccountUseCase handles account reads and account opening.
type AccountUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	outboxRepo      OutboxRepository
	cache           Cache
	idGen           IDGenerator
	cfg             AccountConfig
	logger          zerolog.Logger
	metrics         *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. m may be nil.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	outboxRepo OutboxRepository,
	cache Cache,
	idGen IDGenerator,
	cfg AccountConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		outboxRepo:      outboxRepo,
		cache:           cache,
		idGen:           idGen,
		cfg:             cfg.withDefaults(),
		logger:          logger.With().Str("component", "accounts").Logger(),
		metrics:         m,
	}
}

// cachedBalance keeps the owner next to the balance so cached reads can be
// authorized without touching the store.
type cachedBalance struct {
	domain.Balance
	OwnerID int64 `json:"owner_id"`
}

func (c *cachedBalance) OwnerMatches(userID int64) bool { return c.OwnerID == userID }

type cachedHistory struct {
	OwnerID      int64                 `json:"owner_id"`
	Transactions []*domain.Transaction `json:"transactions"`
}

func (c *cachedHistory) OwnerMatches(userID int64) bool { return c.OwnerID == userID }

// GetBalance returns the current balance of an account.
func (uc *AccountUseCase) GetBalance(ctx context.Context, p *domain.Principal, accountID int64) (*domain.Balance, error) {
	if err := domain.ValidateAccountID(accountID); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUnauthorized
	}

	key := balanceCacheKey(accountID)

	var cached cachedBalance
	if readCache(ctx, uc.cache, uc.logger, uc.metrics, "balance", key, &cached) {
		if err := domain.Authorize(p, &cached); err != nil {
			return nil, err
		}
		return &cached.Balance, nil
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, storageError("get account", err)
	}

	if err := domain.Authorize(p, account); err != nil {
		return nil, err
	}

	cached = cachedBalance{
		Balance: domain.Balance{
			AccountID: account.ID,
			Balance:   account.Balance,
			Currency:  account.Currency,
			UpdatedAt: account.UpdatedAt,
		},
		OwnerID: account.OwnerID,
	}
	writeCache(ctx, uc.cache, uc.logger, key, cached, uc.cfg.BalanceTTL)

	return &cached.Balance, nil
}

// GetHistory returns one page of an account's transactions, newest first.
// Pages start at 1.
func (uc *AccountUseCase) GetHistory(ctx context.Context, p *domain.Principal, accountID int64, page int) ([]*domain.Transaction, error) {
	if err := domain.ValidateAccountID(accountID); err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, domain.ErrInvalidPage
	}
	if p == nil {
		return nil, domain.ErrUnauthorized
	}

	key := historyCacheKey(accountID, page)
	cacheable := page <= MaxCachedHistoryPages

	var cached cachedHistory
	if cacheable && readCache(ctx, uc.cache, uc.logger, uc.metrics, "history", key, &cached) {
		if err := domain.Authorize(p, &cached); err != nil {
			return nil, err
		}
		return cached.Transactions, nil
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, storageError("get account", err)
	}

	if err := domain.Authorize(p, account); err != nil {
		return nil, err
	}

	offset := (page - 1) * uc.cfg.PageSize
	transactions, err := uc.transactionRepo.ListByAccount(ctx, accountID, uc.cfg.PageSize, offset)
	if err != nil {
		return nil, storageError("list transactions", err)
	}

	if cacheable {
		writeCache(ctx, uc.cache, uc.logger, key, cachedHistory{OwnerID: account.OwnerID, Transactions: transactions}, uc.cfg.HistoryTTL)
	}

	return transactions, nil
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	Principal *domain.Principal
	OwnerID   int64
	Currency  string
}

// OpenAccount creates the single account of a user. Admin only.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if err := domain.RequireAdmin(input.Principal); err != nil {
		return nil, err
	}

	if input.OwnerID <= 0 {
		return nil, domain.ErrInvalidAccountID
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		OwnerID:   input.OwnerID,
		Currency:  currency,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return nil, storageError("create account", err)
	}

	if uc.outboxRepo != nil {
		err := uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   account.IDString(),
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeAccountOpened,
			Payload: map[string]any{
				"account_id": account.ID,
				"owner_id":   account.OwnerID,
				"currency":   account.Currency,
			},
			CreatedAt: now,
		})
		if err != nil {
			return nil, storageError("create outbox event", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit transaction", err)
	}

	uc.logger.Info().Int64("account_id", account.ID).Int64("owner_id", account.OwnerID).Msg("account opened")

	return account, nil
}
