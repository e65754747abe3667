package handler

import (
	"context"
	"net/http"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	GetBalance(ctx context.Context, p *domain.Principal, accountID int64) (*domain.Balance, error)
	GetHistory(ctx context.Context, p *domain.Principal, accountID int64, page int) ([]*domain.Transaction, error)
}

// AccountHandler handles account read requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Balance returns the current balance of an account.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	balance, err := h.accountUC.GetBalance(r.Context(), principal(r), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// History returns one page of an account's transactions, newest first.
func (h *AccountHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	page, err := parseIntQuery(r, "page", 1, domain.ErrInvalidPage)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	txs, err := h.accountUC.GetHistory(r.Context(), principal(r), id, page)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryResponse{
		AccountID:    id,
		Page:         page,
		Transactions: dto.TransactionsFromDomain(txs),
	})
}
