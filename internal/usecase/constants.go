package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultBalanceCacheTTL is how long a cached balance is served.
	DefaultBalanceCacheTTL = 30 * time.Second

	// DefaultHistoryCacheTTL is how long a cached history page is served.
	DefaultHistoryCacheTTL = 60 * time.Second

	// DefaultStatsCacheTTL is how long cached admin stats are served.
	DefaultStatsCacheTTL = 5 * time.Minute

	// DefaultHistoryPageSize is the number of transactions per history page.
	DefaultHistoryPageSize = 20

	// MaxCachedHistoryPages bounds the history pages kept in cache per account.
	MaxCachedHistoryPages = 10

	// cacheInvalidationTimeout bounds post-commit cache work.
	cacheInvalidationTimeout = 2 * time.Second
)
