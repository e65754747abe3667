package dto

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists the request fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, tag := range e.Fields {
		parts = append(parts, field+": "+tag)
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

// Validate checks req against its validate tags.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fmt.Sprintf("failed on '%s'", fe.Tag())
	}
	return &ValidationError{Fields: fields}
}

// DepositRequest represents a request to credit an account.
type DepositRequest struct {
	AccountID      int64           `json:"account_id"      validate:"required,gt=0"`
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"idempotency_key" validate:"max=255"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput(p *domain.Principal, key string) usecase.DepositInput {
	return usecase.DepositInput{
		Principal:      p,
		AccountID:      r.AccountID,
		Amount:         r.Amount,
		IdempotencyKey: key,
	}
}

// TransferRequest represents a request to move funds between two accounts.
type TransferRequest struct {
	SourceAccountID      int64           `json:"source_account_id"      validate:"required,gt=0"`
	DestinationAccountID int64           `json:"destination_account_id" validate:"required,gt=0"`
	Amount               decimal.Decimal `json:"amount"`
	IdempotencyKey       string          `json:"idempotency_key"        validate:"max=255"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput(p *domain.Principal, key string) usecase.TransferInput {
	return usecase.TransferInput{
		Principal:            p,
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		Amount:               r.Amount,
		IdempotencyKey:       key,
	}
}

// WithdrawRequest represents a request to move funds out of the ledger.
type WithdrawRequest struct {
	AccountID      int64           `json:"account_id"      validate:"required,gt=0"`
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"idempotency_key" validate:"max=255"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawRequest) ToUseCaseInput(p *domain.Principal, key string) usecase.WithdrawInput {
	return usecase.WithdrawInput{
		Principal:      p,
		AccountID:      r.AccountID,
		Amount:         r.Amount,
		IdempotencyKey: key,
	}
}

// OpenAccountRequest represents a request to open the account of a user.
type OpenAccountRequest struct {
	OwnerID  int64  `json:"owner_id" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"omitempty,len=3,alpha"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput(p *domain.Principal) usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		Principal: p,
		OwnerID:   r.OwnerID,
		Currency:  r.Currency,
	}
}

// ResolveIdempotencyKey picks the key from the request body or header.
// Both may be set only when they agree.
func ResolveIdempotencyKey(body, header string) (string, error) {
	body = strings.TrimSpace(body)
	header = strings.TrimSpace(header)

	switch {
	case body == "":
		return header, nil
	case header == "" || header == body:
		return body, nil
	default:
		return "", fmt.Errorf("body and header keys differ: %w", domain.ErrInvalidIdempotencyKey)
	}
}
