package domain

import "time"

// Event types
const (
	EventTypeTransactionCompleted = "transaction.completed"
	EventTypeTransactionFailed    = "transaction.failed"
	EventTypeAccountOpened        = "account.opened"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
	AggregateTypeAccount     = "account"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewTransactionEvent builds the outbox event for a settled transaction.
func NewTransactionEvent(id string, t *Transaction) *OutboxEvent {
	eventType := EventTypeTransactionCompleted
	if t.Status == TransactionStatusFailed {
		eventType = EventTypeTransactionFailed
	}

	payload := map[string]any{
		"transaction_id":  t.ID,
		"type":            string(t.Type),
		"status":          string(t.Status),
		"amount":          t.Amount.StringFixed(AmountScale),
		"idempotency_key": t.IdempotencyKey,
	}
	if t.SourceAccountID != nil {
		payload["source_account_id"] = *t.SourceAccountID
	}
	if t.DestinationAccountID != nil {
		payload["destination_account_id"] = *t.DestinationAccountID
	}

	return &OutboxEvent{
		ID:            id,
		AggregateID:   t.ID,
		AggregateType: AggregateTypeTransaction,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     t.CreatedAt,
	}
}
