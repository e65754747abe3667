package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money movements.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
)

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeTransfer, TransactionTypeWithdrawal:
		return true
	}
	return false
}

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	// TransactionStatusPending is declared for storage compatibility.
	// The engine only persists terminal states.
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	}
	return false
}

// Metadata keys written by the engine.
const (
	MetaSimulated       = "simulated"
	MetaUserID          = "user_id"
	MetaExternalSuccess = "external_success"
	MetaReason          = "reason"
)

// Transaction is an immutable record of a money movement.
type Transaction struct {
	ID                   string            `json:"id"`
	Type                 TransactionType   `json:"type"`
	Amount               decimal.Decimal   `json:"amount"`
	SourceAccountID      *int64            `json:"source_account_id,omitempty"`
	DestinationAccountID *int64            `json:"destination_account_id,omitempty"`
	Status               TransactionStatus `json:"status"`
	IdempotencyKey       string            `json:"idempotency_key"`
	Metadata             map[string]any    `json:"metadata,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// Involves reports whether the transaction touches accountID.
func (t *Transaction) Involves(accountID int64) bool {
	return (t.SourceAccountID != nil && *t.SourceAccountID == accountID) ||
		(t.DestinationAccountID != nil && *t.DestinationAccountID == accountID)
}

// SameRequest reports whether t was produced by a request with the given
// shape. Used to detect a key reused for a different operation.
func (t *Transaction) SameRequest(typ TransactionType, amount decimal.Decimal, source, destination *int64) bool {
	return t.Type == typ &&
		t.Amount.Equal(amount) &&
		equalID(t.SourceAccountID, source) &&
		equalID(t.DestinationAccountID, destination)
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// TransferRequest records the account pair of a completed transfer.
type TransferRequest struct {
	ID                   int64
	TransactionID        string
	SourceAccountID      int64
	DestinationAccountID int64
	Amount               decimal.Decimal
	Status               TransactionStatus
	CreatedAt            time.Time
}

// Withdrawal mirrors a withdrawal transaction and its settlement outcome.
type Withdrawal struct {
	ID                int64
	TransactionID     string
	AccountID         int64
	Amount            decimal.Decimal
	Status            TransactionStatus
	ExternalReference *string
	CreatedAt         time.Time
}

// SettlementRequest is handed to the external settlement rail.
type SettlementRequest struct {
	AccountID      int64
	Amount         decimal.Decimal
	IdempotencyKey string
}

// SettlementResult is the outcome reported by the settlement rail.
type SettlementResult struct {
	Success   bool
	Reference string
	Reason    string
}

// TransactionFilter narrows administrative transaction listings.
type TransactionFilter struct {
	Type      TransactionType
	Status    TransactionStatus
	AccountID *int64
	Page      int
	PageSize  int
}
