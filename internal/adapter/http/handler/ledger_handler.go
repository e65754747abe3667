package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*usecase.Receipt, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*usecase.Receipt, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*usecase.Receipt, error)
}

// LedgerHandler handles money movement requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Deposit credits an account.
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	key, err := idempotencyKey(r, req.IdempotencyKey)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	receipt, err := h.ledgerUC.Deposit(r.Context(), req.ToUseCaseInput(principal(r), key))
	writeReceipt(w, receipt, err)
}

// Transfer moves funds between two accounts.
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	key, err := idempotencyKey(r, req.IdempotencyKey)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	receipt, err := h.ledgerUC.Transfer(r.Context(), req.ToUseCaseInput(principal(r), key))
	writeReceipt(w, receipt, err)
}

// Withdraw debits an account and settles with the external rail.
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	key, err := idempotencyKey(r, req.IdempotencyKey)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	receipt, err := h.ledgerUC.Withdraw(r.Context(), req.ToUseCaseInput(principal(r), key))
	writeReceipt(w, receipt, err)
}

func idempotencyKey(r *http.Request, body string) (string, error) {
	return dto.ResolveIdempotencyKey(body, middleware.IdempotencyKeyFromContext(r.Context()))
}

// writeReceipt answers 201 for a new transaction, 200 for a replay and 400
// with the recorded transaction when settlement failed.
func writeReceipt(w http.ResponseWriter, receipt *usecase.Receipt, err error) {
	if receipt != nil && receipt.Replayed {
		w.Header().Set(middleware.IdempotencyReplayHeader, "true")
	}

	if err != nil {
		if errors.Is(err, domain.ErrSettlementFailed) && receipt != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:       err.Error(),
				Message:     reason(receipt.Transaction),
				Transaction: dto.TransactionFromDomain(receipt.Transaction),
			})
			return
		}
		writeDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if receipt.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, dto.TransactionFromDomain(receipt.Transaction))
}

func reason(t *domain.Transaction) string {
	if t == nil {
		return ""
	}
	s, _ := t.Metadata[domain.MetaReason].(string)
	return s
}
