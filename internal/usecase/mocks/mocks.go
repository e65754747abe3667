package mocks

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// MemoryStore is an in-memory ledger store with row locks and staged writes.
// It implements every repository plus the transaction manager so engine
// tests can exercise real lock contention and rollback.
type MemoryStore struct {
	mu               sync.Mutex
	accounts         map[int64]*domain.Account
	transactions     map[string]*domain.Transaction
	byKey            map[string]string
	transferRequests []*domain.TransferRequest
	withdrawals      []*domain.Withdrawal
	events           []*domain.OutboxEvent
	rowLocks         map[int64]chan struct{}
	keyLocks         map[string]chan struct{}
	faults           map[string]error
	nextID           int64
	seq              int64

	lockLog   [][]int64
	begins    atomic.Int64
	keyLookup atomic.Int64

	// BeforeCommit runs with all locks held just before a commit is applied.
	BeforeCommit func()
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[int64]*domain.Account),
		transactions: make(map[string]*domain.Transaction),
		byKey:        make(map[string]string),
		rowLocks:     make(map[int64]chan struct{}),
		keyLocks:     make(map[string]chan struct{}),
		faults:       make(map[string]error),
	}
}

// Fail makes the next call of op return err. Ops: Begin, Commit, LockAccount,
// CreateTransaction, UpdateBalance, CreateTransferRequest, CreateWithdrawal,
// CreateOutboxEvent, GetByIdempotencyKey.
func (s *MemoryStore) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func (s *MemoryStore) fault(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.faults[op]
	delete(s.faults, op)
	return err
}

// AddAccount seeds an account with the given balance and returns it.
func (s *MemoryStore) AddAccount(id, ownerID int64, balance string) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	acc := &domain.Account{
		ID:        id,
		OwnerID:   ownerID,
		Currency:  domain.DefaultCurrency,
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.accounts[id] = acc
	if id > s.nextID {
		s.nextID = id
	}
	return copyAccount(acc)
}

// Balance returns the committed balance of an account.
func (s *MemoryStore) Balance(id int64) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[id]; ok {
		return acc.Balance
	}
	return decimal.Zero
}

// TransactionByKey returns the committed transaction with key, if any.
func (s *MemoryStore) TransactionByKey(key string) (*domain.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byKey[key]
	if !ok {
		return nil, false
	}
	return s.transactions[id], true
}

// TransactionCount returns the number of committed transactions.
func (s *MemoryStore) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

// TransferRequests returns committed transfer requests.
func (s *MemoryStore) TransferRequests() []*domain.TransferRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.transferRequests)
}

// Withdrawals returns committed withdrawals.
func (s *MemoryStore) Withdrawals() []*domain.Withdrawal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.withdrawals)
}

// Events returns committed outbox events.
func (s *MemoryStore) Events() []*domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// LockLog returns the account id sets locked by each lock call, in call order.
func (s *MemoryStore) LockLog() [][]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lockLog)
}

// Begins returns how many units of work were started.
func (s *MemoryStore) Begins() int64 { return s.begins.Load() }

// KeyLookups returns how many idempotency key reads were served.
func (s *MemoryStore) KeyLookups() int64 { return s.keyLookup.Load() }

func (s *MemoryStore) rowLock(id int64) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.rowLocks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.rowLocks[id] = ch
	}
	return ch
}

func (s *MemoryStore) keyLock(key string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.keyLocks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.keyLocks[key] = ch
	}
	return ch
}

func acquire(ctx context.Context, ch chan struct{}) error {
	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("lock wait: %w", ctx.Err())
	}
}

// memTx is a unit of work against MemoryStore.
type memTx struct {
	store    *MemoryStore
	held     []chan struct{}
	lockedID map[int64]bool

	accounts     []*domain.Account
	balances     map[int64]decimal.Decimal
	createdAt    map[int64]time.Time
	transactions []*domain.Transaction
	requests     []*domain.TransferRequest
	withdrawals  []*domain.Withdrawal
	events       []*domain.OutboxEvent
	done         bool
}

// Begin implements usecase.TransactionManager.
func (s *MemoryStore) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := s.fault("Begin"); err != nil {
		return nil, err
	}
	s.begins.Add(1)
	return &memTx{
		store:     s,
		lockedID:  make(map[int64]bool),
		balances:  make(map[int64]decimal.Decimal),
		createdAt: make(map[int64]time.Time),
	}, nil
}

func (t *memTx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		<-t.held[i]
	}
	t.held = nil
	t.done = true
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("memory store: transaction already closed")
	}
	s := t.store
	if err := s.fault("Commit"); err != nil {
		t.release()
		return err
	}
	if s.BeforeCommit != nil {
		s.BeforeCommit()
	}

	s.mu.Lock()
	for id, balance := range t.balances {
		if balance.IsNegative() {
			s.mu.Unlock()
			t.release()
			return fmt.Errorf("memory store: check constraint violated for account %d: %w", id, domain.ErrInsufficientFunds)
		}
	}
	for _, acc := range t.accounts {
		s.accounts[acc.ID] = acc
	}
	for id, balance := range t.balances {
		acc := s.accounts[id]
		acc.Balance = balance
		acc.UpdatedAt = t.createdAt[id]
	}
	for _, tr := range t.transactions {
		s.transactions[tr.ID] = tr
		s.byKey[tr.IdempotencyKey] = tr.ID
	}
	for _, r := range t.requests {
		s.seq++
		r.ID = s.seq
		s.transferRequests = append(s.transferRequests, r)
	}
	for _, w := range t.withdrawals {
		s.seq++
		w.ID = s.seq
		s.withdrawals = append(s.withdrawals, w)
	}
	s.events = append(s.events, t.events...)
	s.mu.Unlock()

	t.release()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.release()
	return nil
}

func asMemTx(tx usecase.Transaction) *memTx {
	return tx.(*memTx)
}

// Create implements usecase.AccountRepository. The id is taken from a
// sequence at insert time, so a rolled back insert burns it.
func (s *MemoryStore) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.OwnerID == account.OwnerID {
			return domain.ErrAccountExists
		}
	}
	s.nextID++
	account.ID = s.nextID

	t := asMemTx(tx)
	t.accounts = append(t.accounts, copyAccount(account))
	return nil
}

// GetByID implements usecase.AccountRepository.
func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return copyAccount(acc), nil
}

// GetByIDForUpdate implements usecase.AccountRepository.
func (s *MemoryStore) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Account, error) {
	accounts, err := s.GetByIDsForUpdate(ctx, tx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	return accounts[0], nil
}

// GetByIDsForUpdate locks rows in the order given, like a FOR UPDATE scan
// over an ordered result. Missing ids are skipped.
func (s *MemoryStore) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []int64) ([]*domain.Account, error) {
	if err := s.fault("LockAccount"); err != nil {
		return nil, err
	}
	t := asMemTx(tx)

	s.mu.Lock()
	s.lockLog = append(s.lockLog, slices.Clone(ids))
	s.mu.Unlock()

	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		if _, err := s.GetByID(ctx, id); err != nil {
			continue
		}
		if !t.lockedID[id] {
			ch := s.rowLock(id)
			if err := acquire(ctx, ch); err != nil {
				return nil, err
			}
			t.held = append(t.held, ch)
			t.lockedID[id] = true
		}
		acc, _ := s.GetByID(ctx, id)
		if balance, ok := t.balances[id]; ok {
			acc.Balance = balance
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// UpdateBalance implements usecase.AccountRepository.
func (s *MemoryStore) UpdateBalance(ctx context.Context, tx usecase.Transaction, id int64, balance decimal.Decimal, updatedAt time.Time) error {
	if err := s.fault("UpdateBalance"); err != nil {
		return err
	}
	t := asMemTx(tx)
	if !t.lockedID[id] {
		return fmt.Errorf("memory store: account %d updated without lock", id)
	}
	t.balances[id] = balance
	t.createdAt[id] = updatedAt
	return nil
}

// TransactionRepo exposes the store as a usecase.TransactionRepository.
func (s *MemoryStore) TransactionRepo() usecase.TransactionRepository { return transactionRepo{s} }

// TransferRequestRepo exposes the store as a usecase.TransferRequestRepository.
func (s *MemoryStore) TransferRequestRepo() usecase.TransferRequestRepository {
	return transferRequestRepo{s}
}

// WithdrawalRepo exposes the store as a usecase.WithdrawalRepository.
func (s *MemoryStore) WithdrawalRepo() usecase.WithdrawalRepository { return withdrawalRepo{s} }

// OutboxRepo exposes the store as a usecase.OutboxRepository.
func (s *MemoryStore) OutboxRepo() usecase.OutboxRepository { return outboxRepo{s} }

// StatsRepo exposes the store as a usecase.StatsRepository.
func (s *MemoryStore) StatsRepo() usecase.StatsRepository { return statsRepo{s} }

type transactionRepo struct{ s *MemoryStore }

func (r transactionRepo) Create(ctx context.Context, tx usecase.Transaction, tr *domain.Transaction) error {
	s := r.s
	if err := s.fault("CreateTransaction"); err != nil {
		return err
	}
	t := asMemTx(tx)

	// A unique index makes a second inserter wait for the first to finish.
	ch := s.keyLock(tr.IdempotencyKey)
	if err := acquire(ctx, ch); err != nil {
		return err
	}
	t.held = append(t.held, ch)

	s.mu.Lock()
	_, exists := s.byKey[tr.IdempotencyKey]
	s.mu.Unlock()
	if exists {
		return domain.ErrDuplicateIdempotencyKey
	}

	t.transactions = append(t.transactions, tr)
	return nil
}

func (r transactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	s := r.s
	if err := s.fault("GetByIdempotencyKey"); err != nil {
		return nil, err
	}
	s.keyLookup.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byKey[key]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return s.transactions[id], nil
}

func (r transactionRepo) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transaction, error) {
	return r.list(func(t *domain.Transaction) bool { return t.Involves(accountID) }, limit, offset), nil
}

func (r transactionRepo) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	match := func(t *domain.Transaction) bool {
		if filter.Type != "" && t.Type != filter.Type {
			return false
		}
		if filter.Status != "" && t.Status != filter.Status {
			return false
		}
		if filter.AccountID != nil && !t.Involves(*filter.AccountID) {
			return false
		}
		return true
	}
	all := r.list(match, -1, 0)
	offset := (filter.Page - 1) * filter.PageSize
	return r.list(match, filter.PageSize, offset), int64(len(all)), nil
}

func (r transactionRepo) list(match func(*domain.Transaction) bool, limit, offset int) []*domain.Transaction {
	s := r.s
	s.mu.Lock()
	var out []*domain.Transaction
	for _, t := range s.transactions {
		if match(t) {
			out = append(out, t)
		}
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b *domain.Transaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	if offset >= len(out) {
		return []*domain.Transaction{}
	}
	out = out[offset:]
	if limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

type transferRequestRepo struct{ s *MemoryStore }

func (r transferRequestRepo) Create(ctx context.Context, tx usecase.Transaction, req *domain.TransferRequest) error {
	if err := r.s.fault("CreateTransferRequest"); err != nil {
		return err
	}
	t := asMemTx(tx)
	t.requests = append(t.requests, req)
	return nil
}

type withdrawalRepo struct{ s *MemoryStore }

func (r withdrawalRepo) Create(ctx context.Context, tx usecase.Transaction, w *domain.Withdrawal) error {
	if err := r.s.fault("CreateWithdrawal"); err != nil {
		return err
	}
	t := asMemTx(tx)
	t.withdrawals = append(t.withdrawals, w)
	return nil
}

type outboxRepo struct{ s *MemoryStore }

func (r outboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if err := r.s.fault("CreateOutboxEvent"); err != nil {
		return err
	}
	t := asMemTx(tx)
	t.events = append(t.events, event)
	return nil
}

func (r outboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range s.events {
		if !e.Published {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r outboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
		}
	}
	return nil
}

func (r outboxRepo) DeletePublished(ctx context.Context, before time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = slices.DeleteFunc(s.events, func(e *domain.OutboxEvent) bool {
		return e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before)
	})
	return nil
}

type statsRepo struct{ s *MemoryStore }

func (r statsRepo) LedgerStats(ctx context.Context) (*domain.LedgerStats, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &domain.LedgerStats{
		TotalWalletsValue: decimal.Zero,
		TransactionCounts: make(map[domain.TransactionType]int64),
	}
	owners := make(map[int64]bool)
	for _, acc := range s.accounts {
		owners[acc.OwnerID] = true
		stats.TotalWalletsValue = stats.TotalWalletsValue.Add(acc.Balance)
	}
	stats.TotalUsers = int64(len(owners))
	for _, t := range s.transactions {
		stats.TransactionCounts[t.Type]++
		stats.TotalTransactions++
	}
	return stats, nil
}

func copyAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

// MemoryCache is a map-backed usecase.Cache. TTLs are recorded, not enforced.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration

	// NoPattern makes DeletePattern report usecase.ErrPatternDeleteUnsupported.
	NoPattern bool
	// Err, when set, is returned from every operation.
	Err error
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, false, c.Err
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *MemoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	if c.NoPattern {
		return usecase.ErrPatternDeleteUnsupported
	}
	for k := range c.entries {
		if ok, _ := path.Match(pattern, k); ok {
			delete(c.entries, k)
		}
	}
	return nil
}

// Has reports whether key is cached.
func (c *MemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// TTL returns the ttl key was stored with.
func (c *MemoryCache) TTL(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls[key]
}

// SettlementFunc adapts a function to usecase.SettlementGateway.
type SettlementFunc func(ctx context.Context, req domain.SettlementRequest) (domain.SettlementResult, error)

func (f SettlementFunc) Settle(ctx context.Context, req domain.SettlementRequest) (domain.SettlementResult, error) {
	return f(ctx, req)
}

// FixedSettlement always reports the given outcome and counts calls.
func FixedSettlement(success bool, calls *atomic.Int64) SettlementFunc {
	return func(ctx context.Context, req domain.SettlementRequest) (domain.SettlementResult, error) {
		if calls != nil {
			calls.Add(1)
		}
		if !success {
			return domain.SettlementResult{Reason: "declined by processor"}, nil
		}
		ref := req.IdempotencyKey
		if len(ref) > 8 {
			ref = ref[:8]
		}
		return domain.SettlementResult{Success: true, Reference: "EXT-" + ref}, nil
	}
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	counter      atomic.Int64
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	return fmt.Sprintf("id-%d", m.counter.Add(1))
}
