package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user-owned wallet holding a non-negative balance.
type Account struct {
	ID        int64
	OwnerID   int64
	Currency  string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnerMatches implements Ownable.
func (a *Account) OwnerMatches(userID int64) bool {
	return a.OwnerID == userID
}

// IDString returns the id in its decimal form.
func (a *Account) IDString() string {
	return strconv.FormatInt(a.ID, 10)
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// Balance is the read model returned by balance queries.
type Balance struct {
	AccountID int64           `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LedgerStats aggregates ledger-wide totals for administrators.
type LedgerStats struct {
	TotalUsers        int64                     `json:"total_users"`
	TotalWalletsValue decimal.Decimal           `json:"total_wallets_value"`
	TransactionCounts map[TransactionType]int64 `json:"transaction_counts"`
	TotalTransactions int64                     `json:"total_transactions"`
}
