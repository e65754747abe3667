package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// AdminUseCase serves ledger-wide reads for administrators.
type AdminUseCase struct {
	statsRepo       StatsRepository
	transactionRepo TransactionRepository
	cache           Cache
	statsTTL        time.Duration
	logger          zerolog.Logger
	metrics         *metrics.Metrics
}

// NewAdminUseCase creates a new AdminUseCase. m may be nil.
func NewAdminUseCase(
	statsRepo StatsRepository,
	transactionRepo TransactionRepository,
	cache Cache,
	statsTTL time.Duration,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *AdminUseCase {
	if statsTTL <= 0 {
		statsTTL = DefaultStatsCacheTTL
	}
	return &AdminUseCase{
		statsRepo:       statsRepo,
		transactionRepo: transactionRepo,
		cache:           cache,
		statsTTL:        statsTTL,
		logger:          logger.With().Str("component", "admin").Logger(),
		metrics:         m,
	}
}

// Stats returns ledger-wide totals, served from cache when fresh.
func (uc *AdminUseCase) Stats(ctx context.Context, p *domain.Principal) (*domain.LedgerStats, error) {
	if err := domain.RequireAdmin(p); err != nil {
		return nil, err
	}

	var cached domain.LedgerStats
	if readCache(ctx, uc.cache, uc.logger, uc.metrics, "stats", statsCacheKey, &cached) {
		return &cached, nil
	}

	stats, err := uc.statsRepo.LedgerStats(ctx)
	if err != nil {
		return nil, storageError("ledger stats", err)
	}

	writeCache(ctx, uc.cache, uc.logger, statsCacheKey, stats, uc.statsTTL)

	return stats, nil
}

// TransactionPage is one page of an administrative listing.
type TransactionPage struct {
	Transactions []*domain.Transaction
	Count        int64
	Page         int
	PageSize     int
}

// ListTransactions lists transactions across all accounts.
func (uc *AdminUseCase) ListTransactions(ctx context.Context, p *domain.Principal, filter domain.TransactionFilter) (*TransactionPage, error) {
	if err := domain.RequireAdmin(p); err != nil {
		return nil, err
	}

	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", domain.ErrInvalidFilter, filter.Type)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction status %q", domain.ErrInvalidFilter, filter.Status)
	}
	if filter.AccountID != nil {
		if err := domain.ValidateAccountID(*filter.AccountID); err != nil {
			return nil, err
		}
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	page, pageSize, err := domain.ValidatePagination(filter.Page, filter.PageSize)
	if err != nil {
		return nil, err
	}
	filter.Page, filter.PageSize = page, pageSize

	transactions, count, err := uc.transactionRepo.List(ctx, filter)
	if err != nil {
		return nil, storageError("list transactions", err)
	}

	return &TransactionPage{
		Transactions: transactions,
		Count:        count,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}
