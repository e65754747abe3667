package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// AdminService defines the behavior needed by AdminHandler.
type AdminService interface {
	Stats(ctx context.Context, p *domain.Principal) (*domain.LedgerStats, error)
	ListTransactions(ctx context.Context, p *domain.Principal, filter domain.TransactionFilter) (*usecase.TransactionPage, error)
}

// AccountOpener opens the account of a user.
type AccountOpener interface {
	OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
}

// AdminHandler handles administrative requests.
type AdminHandler struct {
	adminUC  AdminService
	accounts AccountOpener
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminUC AdminService, accounts AccountOpener) *AdminHandler {
	return &AdminHandler{adminUC: adminUC, accounts: accounts}
}

// OpenAccount creates the account of a user.
func (h *AdminHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	account, err := h.accounts.OpenAccount(r.Context(), req.ToUseCaseInput(principal(r)))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Stats returns ledger-wide totals.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminUC.Stats(r.Context(), principal(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatsFromDomain(stats))
}

// ListTransactions lists transactions across all accounts.
func (h *AdminHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	page, err := h.adminUC.ListTransactions(r.Context(), principal(r), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionPageFromUseCase(page))
}

func parseTransactionFilter(r *http.Request) (domain.TransactionFilter, error) {
	q := r.URL.Query()
	filter := domain.TransactionFilter{
		Type:   domain.TransactionType(strings.ToUpper(q.Get("type"))),
		Status: domain.TransactionStatus(strings.ToUpper(q.Get("status"))),
	}

	if raw := q.Get("account_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("account_id=%q: %w", raw, domain.ErrInvalidAccountID)
		}
		filter.AccountID = &id
	}

	var err error
	if filter.Page, err = parseIntQuery(r, "page", 0, domain.ErrInvalidPage); err != nil {
		return filter, err
	}
	if filter.PageSize, err = parseIntQuery(r, "page_size", 0, domain.ErrInvalidPage); err != nil {
		return filter, err
	}

	return filter, nil
}
