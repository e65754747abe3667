package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
)

// StatsRepository implements usecase.StatsRepository.
type StatsRepository struct {
	queries *generated.Queries
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return newStatsRepository(pool)
}

func newStatsRepository(db generated.DBTX) *StatsRepository {
	return &StatsRepository{queries: generated.New(db)}
}

// LedgerStats aggregates users, total wallet value and transaction counts.
func (r *StatsRepository) LedgerStats(ctx context.Context) (*domain.LedgerStats, error) {
	totals, err := r.queries.GetLedgerTotals(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := r.queries.CountTransactionsByType(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.LedgerStats{
		TotalUsers:        totals.TotalUsers,
		TotalWalletsValue: numericToDecimal(totals.TotalWalletsValue),
		TransactionCounts: make(map[domain.TransactionType]int64, len(counts)),
	}
	for _, c := range counts {
		stats.TransactionCounts[domain.TransactionType(c.TransactionType)] = c.Count
		stats.TotalTransactions += c.Count
	}

	return stats, nil
}
