// Package memory is an in-process Store used by tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"papertrading/src/models"
	"papertrading/src/repositories"
	"papertrading/src/utils/ids"
)

type state struct {
	accounts     map[string]models.Account
	holdings     map[string]map[models.AssetKey]models.Holding // userID -> asset -> holding
	transactions map[string][]models.Transaction              // userID -> append order
}

func newState() state {
	return state{
		accounts:     make(map[string]models.Account),
		holdings:     make(map[string]map[models.AssetKey]models.Holding),
		transactions: make(map[string][]models.Transaction),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for user, pool := range s.holdings {
		cp := make(map[models.AssetKey]models.Holding, len(pool))
		for k, v := range pool {
			cp[k] = v
		}
		c.holdings[user] = cp
	}
	for user, txs := range s.transactions {
		c.transactions[user] = append([]models.Transaction(nil), txs...)
	}
	return c
}

type Store struct {
	mu    sync.RWMutex
	state state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// read and write take the store lock unless ctx already holds it through WithinTx.
func (s *Store) read(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) write(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx serialises fn against every other store access and restores the
// previous state if fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *Store) Close(_ context.Context) error { return nil }

func (s *Store) Accounts() repositories.AccountRepository         { return accountRepo{s} }
func (s *Store) Holdings() repositories.HoldingRepository         { return holdingRepo{s} }
func (s *Store) Transactions() repositories.TransactionRepository { return transactionRepo{s} }

type accountRepo struct{ s *Store }

func (r accountRepo) Create(ctx context.Context, a *models.Account) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.state.accounts[a.UserID]; ok {
		return repositories.ErrAlreadyExists
	}
	r.s.state.accounts[a.UserID] = *a
	return nil
}

func (r accountRepo) GetByUserID(ctx context.Context, userID string) (*models.Account, error) {
	defer r.s.read(ctx)()
	a, ok := r.s.state.accounts[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (r accountRepo) GetByUserIDForUpdate(ctx context.Context, userID string) (*models.Account, error) {
	return r.GetByUserID(ctx, userID)
}

func (r accountRepo) AdjustBalance(ctx context.Context, userID string, delta float64) (*models.Account, error) {
	defer r.s.write(ctx)()
	a, ok := r.s.state.accounts[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	a.CurrentBalance = models.AddMoney(a.CurrentBalance, delta)
	a.UpdatedAt = time.Now().UTC()
	r.s.state.accounts[userID] = a
	return &a, nil
}

func (r accountRepo) SetTotalValue(ctx context.Context, userID string, totalValue float64) error {
	defer r.s.write(ctx)()
	a, ok := r.s.state.accounts[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	a.TotalValue = totalValue
	a.UpdatedAt = time.Now().UTC()
	r.s.state.accounts[userID] = a
	return nil
}

func (r accountRepo) ListUserIDs(ctx context.Context) ([]string, error) {
	defer r.s.read(ctx)()
	out := make([]string, 0, len(r.s.state.accounts))
	for id := range r.s.state.accounts {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

type holdingRepo struct{ s *Store }

func (r holdingRepo) ListByUserID(ctx context.Context, userID string, kind models.AssetKind) ([]models.Holding, error) {
	defer r.s.read(ctx)()
	out := []models.Holding{}
	for _, h := range r.s.state.holdings[userID] {
		if kind != "" && h.Asset.Kind != kind {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r holdingRepo) Get(ctx context.Context, userID string, asset models.AssetKey) (*models.Holding, error) {
	defer r.s.read(ctx)()
	h, ok := r.s.state.holdings[userID][asset]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &h, nil
}

func (r holdingRepo) Upsert(ctx context.Context, h *models.Holding) error {
	defer r.s.write(ctx)()
	pool, ok := r.s.state.holdings[h.UserID]
	if !ok {
		pool = make(map[models.AssetKey]models.Holding)
		r.s.state.holdings[h.UserID] = pool
	}
	if existing, ok := pool[h.Asset]; ok {
		h.ID = existing.ID
		h.CreatedAt = existing.CreatedAt
	} else if h.ID == "" {
		h.ID = ids.NewHoldingID()
	}
	pool[h.Asset] = *h
	return nil
}

func (r holdingRepo) Delete(ctx context.Context, userID string, asset models.AssetKey) error {
	defer r.s.write(ctx)()
	pool := r.s.state.holdings[userID]
	if _, ok := pool[asset]; !ok {
		return repositories.ErrNotFound
	}
	delete(pool, asset)
	return nil
}

type transactionRepo struct{ s *Store }

func (r transactionRepo) Create(ctx context.Context, t *models.Transaction) error {
	defer r.s.write(ctx)()
	if t.ID == "" {
		t.ID = ids.NewTransactionID(t.Timestamp)
	}
	r.s.state.transactions[t.UserID] = append(r.s.state.transactions[t.UserID], *t)
	return nil
}

func (r transactionRepo) List(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, error) {
	defer r.s.read(ctx)()
	out := []models.Transaction{}
	for _, t := range r.s.state.transactions[userID] {
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.AssetKind != "" && t.Asset.Kind != filter.AssetKind {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return later(out[i], out[j]) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r transactionRepo) History(ctx context.Context, userID string) ([]models.Transaction, error) {
	defer r.s.read(ctx)()
	out := append([]models.Transaction{}, r.s.state.transactions[userID]...)
	sort.SliceStable(out, func(i, j int) bool { return later(out[j], out[i]) })
	return out, nil
}

func later(a, b models.Transaction) bool {
	if a.Timestamp.Equal(b.Timestamp) {
		return a.ID > b.ID
	}
	return a.Timestamp.After(b.Timestamp)
}
