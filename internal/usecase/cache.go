package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

const statsCacheKey = "admin:stats"

func balanceCacheKey(accountID int64) string {
	return fmt.Sprintf("balance:%d", accountID)
}

func historyCacheKey(accountID int64, page int) string {
	return fmt.Sprintf("history:%d:%d", accountID, page)
}

func historyCachePattern(accountID int64) string {
	return fmt.Sprintf("history:%d:*", accountID)
}

// boundedHistoryKeys lists the key of every cacheable history page.
func boundedHistoryKeys(accountID int64) []string {
	keys := make([]string, 0, MaxCachedHistoryPages)
	for page := 1; page <= MaxCachedHistoryPages; page++ {
		keys = append(keys, historyCacheKey(accountID, page))
	}
	return keys
}

// readCache decodes a cached JSON value into dst. Any cache failure is a miss.
func readCache(ctx context.Context, cache Cache, logger zerolog.Logger, m *metrics.Metrics, kind, key string, dst any) bool {
	if cache == nil {
		return false
	}

	raw, found, err := cache.Get(ctx, key)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	hit := err == nil && found && json.Unmarshal(raw, dst) == nil

	if m != nil {
		result := "miss"
		if hit {
			result = "hit"
		}
		m.CacheLookups.WithLabelValues(kind, result).Inc()
	}

	return hit
}

func writeCache(ctx context.Context, cache Cache, logger zerolog.Logger, key string, value any, ttl time.Duration) {
	if cache == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}

	if err := cache.Set(ctx, key, raw, ttl); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// invalidateAccounts drops cached balance and history for each account.
// Failures are logged only: the ledger is already committed.
func (uc *LedgerUseCase) invalidateAccounts(ctx context.Context, accountIDs ...int64) {
	if uc.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheInvalidationTimeout)
	defer cancel()

	for _, id := range accountIDs {
		if err := uc.cache.Delete(ctx, balanceCacheKey(id)); err != nil {
			uc.logger.Warn().Err(err).Int64("account_id", id).Msg("balance cache invalidation failed")
		}

		mode := "pattern"
		err := uc.cache.DeletePattern(ctx, historyCachePattern(id))
		if err != nil {
			if !errors.Is(err, ErrPatternDeleteUnsupported) {
				uc.logger.Warn().Err(err).Int64("account_id", id).Msg("history pattern invalidation failed, deleting bounded keys")
			}
			mode = "bounded"
			if err := uc.cache.Delete(ctx, boundedHistoryKeys(id)...); err != nil {
				uc.logger.Warn().Err(err).Int64("account_id", id).Msg("history cache invalidation failed")
			}
		}

		if uc.metrics != nil {
			uc.metrics.CacheInvalidations.WithLabelValues(mode).Inc()
		}
	}
}
