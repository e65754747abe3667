package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

type adminServiceStub struct {
	statsFn func(ctx context.Context, p *domain.Principal) (*domain.LedgerStats, error)
	listFn  func(ctx context.Context, p *domain.Principal, filter domain.TransactionFilter) (*usecase.TransactionPage, error)
}

func (s *adminServiceStub) Stats(ctx context.Context, p *domain.Principal) (*domain.LedgerStats, error) {
	return s.statsFn(ctx, p)
}

func (s *adminServiceStub) ListTransactions(ctx context.Context, p *domain.Principal, filter domain.TransactionFilter) (*usecase.TransactionPage, error) {
	return s.listFn(ctx, p, filter)
}

type accountOpenerStub struct {
	openFn func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
}

func (s *accountOpenerStub) OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
	return s.openFn(ctx, input)
}

var adminPrincipal = &domain.Principal{UserID: 1000, Role: domain.RoleAdmin}

func TestAdminHandler_OpenAccount(t *testing.T) {
	var captured usecase.OpenAccountInput
	h := NewAdminHandler(nil, &accountOpenerStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{ID: 5, OwnerID: input.OwnerID, Currency: "USD", Balance: decimal.Zero}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/accounts", strings.NewReader(`{"owner_id":7,"currency":"usd"}`))
	req = withPrincipal(req, adminPrincipal)
	rec := httptest.NewRecorder()
	h.OpenAccount(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.OwnerID != 7 || captured.Currency != "usd" || captured.Principal != adminPrincipal {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 5 || resp.OwnerID != 7 || resp.Balance != "0.00" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAdminHandler_OpenAccount_Exists(t *testing.T) {
	h := NewAdminHandler(nil, &accountOpenerStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			return nil, domain.ErrAccountExists
		},
	})

	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/admin/accounts", strings.NewReader(`{"owner_id":7}`)), adminPrincipal)
	rec := httptest.NewRecorder()
	h.OpenAccount(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAdminHandler_Stats(t *testing.T) {
	h := NewAdminHandler(&adminServiceStub{
		statsFn: func(ctx context.Context, p *domain.Principal) (*domain.LedgerStats, error) {
			return &domain.LedgerStats{
				TotalUsers:        2,
				TotalWalletsValue: decimal.RequireFromString("99.9"),
				TransactionCounts: map[domain.TransactionType]int64{domain.TransactionTypeWithdrawal: 1},
				TotalTransactions: 1,
			}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.Stats(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil), adminPrincipal))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalWalletsValue != "99.90" || resp.TransactionCounts["WITHDRAWAL"] != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAdminHandler_ListTransactions_ParsesFilter(t *testing.T) {
	var captured domain.TransactionFilter
	h := NewAdminHandler(&adminServiceStub{
		listFn: func(ctx context.Context, p *domain.Principal, filter domain.TransactionFilter) (*usecase.TransactionPage, error) {
			captured = filter
			return &usecase.TransactionPage{Count: 0, Page: filter.Page, PageSize: filter.PageSize}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/transactions?type=deposit&status=completed&account_id=3&page=2&page_size=5", nil)
	rec := httptest.NewRecorder()
	h.ListTransactions(rec, withPrincipal(req, adminPrincipal))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Type != domain.TransactionTypeDeposit || captured.Status != domain.TransactionStatusCompleted {
		t.Fatalf("unexpected filter %+v", captured)
	}
	if captured.AccountID == nil || *captured.AccountID != 3 || captured.Page != 2 || captured.PageSize != 5 {
		t.Fatalf("unexpected filter %+v", captured)
	}
}

func TestAdminHandler_ListTransactions_Errors(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		err      error
		wantCode int
	}{
		{"bad account", "?account_id=x", nil, http.StatusBadRequest},
		{"bad page", "?page=one", nil, http.StatusBadRequest},
		{"bad page size", "?page_size=lots", nil, http.StatusBadRequest},
		{"forbidden", "", domain.ErrForbidden, http.StatusForbidden},
		{"invalid filter", "?type=refund", domain.ErrInvalidFilter, http.StatusBadRequest},
		{"storage", "", errors.Join(domain.ErrStorage, errors.New("timeout")), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAdminHandler(&adminServiceStub{
				listFn: func(ctx context.Context, p *domain.Principal, filter domain.TransactionFilter) (*usecase.TransactionPage, error) {
					if tt.err == nil {
						t.Fatalf("use case must not be called")
					}
					return nil, tt.err
				},
			}, nil)

			rec := httptest.NewRecorder()
			h.ListTransactions(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/transactions"+tt.query, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}
