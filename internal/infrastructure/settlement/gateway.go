// Package settlement simulates the external rail that pays out withdrawals.
package settlement

import (
	"context"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/domain"
)

// DefaultSuccessRate is the share of withdrawals the simulated rail accepts.
const DefaultSuccessRate = 0.9

// FailureReason is recorded on transactions the rail declines.
const FailureReason = "External system failure"

const referencePrefix = "EXT-"

// SimulatedGateway implements usecase.SettlementGateway with a biased coin.
type SimulatedGateway struct {
	mu          sync.Mutex
	rng         *rand.Rand
	successRate float64
	logger      zerolog.Logger
}

// NewSimulatedGateway creates a gateway accepting successRate of requests.
// Rates outside [0, 1] are clamped. seed makes outcomes reproducible.
func NewSimulatedGateway(successRate float64, seed int64, logger zerolog.Logger) *SimulatedGateway {
	switch {
	case successRate < 0:
		successRate = 0
	case successRate > 1:
		successRate = 1
	}
	return &SimulatedGateway{
		rng:         rand.New(rand.NewSource(seed)),
		successRate: successRate,
		logger:      logger.With().Str("component", "settlement").Logger(),
	}
}

// Settle draws one outcome per call and never returns an error.
func (g *SimulatedGateway) Settle(ctx context.Context, req domain.SettlementRequest) (domain.SettlementResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.SettlementResult{}, err
	}

	g.mu.Lock()
	draw := g.rng.Float64()
	g.mu.Unlock()

	if draw >= g.successRate {
		g.logger.Warn().
			Int64("account_id", req.AccountID).
			Str("amount", req.Amount.String()).
			Msg("settlement declined")
		return domain.SettlementResult{Reason: FailureReason}, nil
	}

	return domain.SettlementResult{Success: true, Reference: Reference(req.IdempotencyKey)}, nil
}

// Reference derives the external reference of an accepted withdrawal.
func Reference(idempotencyKey string) string {
	key := []rune(idempotencyKey)
	if len(key) > 8 {
		key = key[:8]
	}
	return referencePrefix + string(key)
}
