package dto

import (
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID                   string         `json:"id"`
	Type                 string         `json:"type"`
	Amount               string         `json:"amount"`
	SourceAccountID      *int64         `json:"source_account_id,omitempty"`
	DestinationAccountID *int64         `json:"destination_account_id,omitempty"`
	Status               string         `json:"status"`
	IdempotencyKey       string         `json:"idempotency_key"`
	Metadata             map[string]any `json:"metadata,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	if t == nil {
		return nil
	}
	return &TransactionResponse{
		ID:                   t.ID,
		Type:                 string(t.Type),
		Amount:               t.Amount.StringFixed(domain.AmountScale),
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		Status:               string(t.Status),
		IdempotencyKey:       t.IdempotencyKey,
		Metadata:             t.Metadata,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// BalanceResponse represents the balance of an account.
type BalanceResponse struct {
	AccountID int64     `json:"account_id"`
	Balance   string    `json:"balance"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BalanceFromDomain converts domain balance to response.
func BalanceFromDomain(b *domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		AccountID: b.AccountID,
		Balance:   b.Balance.StringFixed(domain.AmountScale),
		Currency:  b.Currency,
		UpdatedAt: b.UpdatedAt,
	}
}

// HistoryResponse is one page of an account's transactions.
type HistoryResponse struct {
	AccountID    int64                  `json:"account_id"`
	Page         int                    `json:"page"`
	Transactions []*TransactionResponse `json:"transactions"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Currency  string    `json:"currency"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		Currency:  a.Currency,
		Balance:   a.Balance.StringFixed(domain.AmountScale),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// StatsResponse represents ledger-wide totals.
type StatsResponse struct {
	TotalUsers        int64            `json:"total_users"`
	TotalWalletsValue string           `json:"total_wallets_value"`
	TransactionCounts map[string]int64 `json:"transaction_counts"`
	TotalTransactions int64            `json:"total_transactions"`
}

// StatsFromDomain converts domain stats to response.
func StatsFromDomain(s *domain.LedgerStats) *StatsResponse {
	counts := make(map[string]int64, len(s.TransactionCounts))
	for typ, n := range s.TransactionCounts {
		counts[string(typ)] = n
	}
	return &StatsResponse{
		TotalUsers:        s.TotalUsers,
		TotalWalletsValue: s.TotalWalletsValue.StringFixed(domain.AmountScale),
		TransactionCounts: counts,
		TotalTransactions: s.TotalTransactions,
	}
}

// TransactionPageResponse is one page of an administrative listing.
type TransactionPageResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Count        int64                  `json:"count"`
	Page         int                    `json:"page"`
	PageSize     int                    `json:"page_size"`
}

// TransactionPageFromUseCase converts a use case page to response.
func TransactionPageFromUseCase(p *usecase.TransactionPage) *TransactionPageResponse {
	return &TransactionPageResponse{
		Transactions: TransactionsFromDomain(p.Transactions),
		Count:        p.Count,
		Page:         p.Page,
		PageSize:     p.PageSize,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
	// Transaction is set when a withdrawal was recorded as failed.
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}
