//go:build !integration

package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-code-shop/internal/domain"
	"telegram-code-shop/internal/domain/model"
	"telegram-code-shop/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// -----------------------------
// In-memory storage backing all mock repositories.
// -----------------------------

// memStore stands in for the database. One mutex guards the whole store;
// memTxManager holds it for the duration of a transaction, so concurrent
// purchases serialize the way row locks would and snapshot/restore gives
// exact rollback semantics.
type memStore struct {
	mu        sync.Mutex
	products  map[string]model.Product
	codes     []model.Code
	balances  map[string]int
	purchases []model.Purchase
}

func newMemStore() *memStore {
	return &memStore{
		products: map[string]model.Product{},
		balances: map[string]int{},
	}
}

// inTx marks repository calls running inside WithTx (mutex already held).
type inTx struct{}

func (st *memStore) enter(tx repository.Tx) func() {
	if _, ok := tx.(inTx); ok {
		return func() {}
	}
	st.mu.Lock()
	return st.mu.Unlock
}

func (st *memStore) snapshot() *memStore {
	snap := &memStore{
		products:  make(map[string]model.Product, len(st.products)),
		balances:  make(map[string]int, len(st.balances)),
		codes:     append([]model.Code(nil), st.codes...),
		purchases: append([]model.Purchase(nil), st.purchases...),
	}
	for k, v := range st.products {
		snap.products[k] = v
	}
	for k, v := range st.balances {
		snap.balances[k] = v
	}
	return snap
}

func (st *memStore) restore(snap *memStore) {
	st.products = snap.products
	st.codes = snap.codes
	st.balances = snap.balances
	st.purchases = snap.purchases
}

// -----------------------------
// Transaction manager
// -----------------------------

// memTransientErr satisfies the transientError contract checked by the
// retry loop.
type memTransientErr struct{}

func (memTransientErr) Error() string   { return "simulated storage conflict" }
func (memTransientErr) Transient() bool { return true }

// memTxManager serializes transactions on the store mutex and restores a
// snapshot when fn fails, mirroring commit/rollback. FailNext injects
// that many transient commit failures (after fn ran, side effects rolled
// back), to exercise the retry path.
type memTxManager struct {
	st *memStore

	failMu   sync.Mutex
	failNext int
	attempts int
}

func (m *memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	m.failMu.Lock()
	m.attempts++
	m.failMu.Unlock()

	snap := m.st.snapshot()
	if err := fn(ctx, inTx{}); err != nil {
		m.st.restore(snap)
		return err
	}

	m.failMu.Lock()
	shouldFail := m.failNext > 0
	if shouldFail {
		m.failNext--
	}
	m.failMu.Unlock()
	if shouldFail {
		m.st.restore(snap)
		return memTransientErr{}
	}
	return nil
}

func (m *memTxManager) Attempts() int {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	return m.attempts
}

// -----------------------------
// Repositories
// -----------------------------

type memProductRepo struct{ st *memStore }

func (r *memProductRepo) FindByID(_ context.Context, tx repository.Tx, id string) (*model.Product, error) {
	defer r.st.enter(tx)()
	p, ok := r.st.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (r *memProductRepo) List(_ context.Context, tx repository.Tx) ([]*model.Product, error) {
	defer r.st.enter(tx)()
	out := make([]*model.Product, 0, len(r.st.products))
	for _, p := range r.st.products {
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memProductRepo) Insert(_ context.Context, tx repository.Tx, p *model.Product) error {
	defer r.st.enter(tx)()
	if _, ok := r.st.products[p.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.st.products[p.ID] = *p
	return nil
}

func (r *memProductRepo) Update(_ context.Context, tx repository.Tx, p *model.Product) error {
	defer r.st.enter(tx)()
	cur, ok := r.st.products[p.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	cur.Name, cur.Price = p.Name, p.Price
	r.st.products[p.ID] = cur
	return nil
}

type memCodeRepo struct{ st *memStore }

func (r *memCodeRepo) CountUnsold(_ context.Context, tx repository.Tx, productID string) (int, error) {
	defer r.st.enter(tx)()
	n := 0
	for _, c := range r.st.codes {
		if c.ProductID == productID && !c.Sold {
			n++
		}
	}
	return n, nil
}

func (r *memCodeRepo) AllocateOne(_ context.Context, tx repository.Tx, productID, buyerID string) (*model.Code, error) {
	defer r.st.enter(tx)()
	best := -1
	for i, c := range r.st.codes {
		if c.ProductID != productID || c.Sold {
			continue
		}
		if best < 0 || c.CreatedAt.Before(r.st.codes[best].CreatedAt) {
			best = i
		}
	}
	if best < 0 {
		return nil, domain.ErrOutOfStock
	}
	now := time.Now()
	r.st.codes[best].Sold = true
	r.st.codes[best].SoldToUserID = &buyerID
	r.st.codes[best].SoldAt = &now
	cp := r.st.codes[best]
	return &cp, nil
}

func (r *memCodeRepo) Insert(_ context.Context, tx repository.Tx, c *model.Code) error {
	defer r.st.enter(tx)()
	for _, existing := range r.st.codes {
		if existing.Payload == c.Payload {
			return domain.ErrAlreadyExists
		}
	}
	r.st.codes = append(r.st.codes, *c)
	return nil
}

type memBalanceRepo struct{ st *memStore }

func (r *memBalanceRepo) Get(_ context.Context, tx repository.Tx, userID string) (int, error) {
	defer r.st.enter(tx)()
	return r.st.balances[userID], nil
}

func (r *memBalanceRepo) Credit(_ context.Context, tx repository.Tx, userID string, amount int) error {
	defer r.st.enter(tx)()
	if amount <= 0 {
		return domain.ErrInvalidInput
	}
	r.st.balances[userID] += amount
	return nil
}

func (r *memBalanceRepo) Debit(_ context.Context, tx repository.Tx, userID string, amount int) error {
	defer r.st.enter(tx)()
	if amount <= 0 {
		return domain.ErrInvalidInput
	}
	if r.st.balances[userID] < amount {
		return domain.ErrInsufficientFunds
	}
	r.st.balances[userID] -= amount
	return nil
}

type memPurchaseRepo struct{ st *memStore }

func (r *memPurchaseRepo) Insert(_ context.Context, tx repository.Tx, p *model.Purchase) error {
	defer r.st.enter(tx)()
	r.st.purchases = append(r.st.purchases, *p)
	return nil
}

func (r *memPurchaseRepo) ListByUser(_ context.Context, tx repository.Tx, userID string) ([]*model.Purchase, error) {
	defer r.st.enter(tx)()
	var out []*model.Purchase
	for i := len(r.st.purchases) - 1; i >= 0; i-- {
		if r.st.purchases[i].UserID == userID {
			cp := r.st.purchases[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memPurchaseRepo) Count(_ context.Context, tx repository.Tx) (int, error) {
	defer r.st.enter(tx)()
	return len(r.st.purchases), nil
}

// -----------------------------
// Mock bot adapter
// -----------------------------

type mockBot struct {
	mu   sync.Mutex
	Sent []string
}

func (m *mockBot) SendMessage(_ context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, text)
	return nil
}

// -----------------------------
// Fixture
// -----------------------------

type shopFixture struct {
	st        *memStore
	txm       *memTxManager
	products  *memProductRepo
	codes     *memCodeRepo
	balances  *memBalanceRepo
	purchases *memPurchaseRepo
}

func newShopFixture() *shopFixture {
	st := newMemStore()
	return &shopFixture{
		st:        st,
		txm:       &memTxManager{st: st},
		products:  &memProductRepo{st: st},
		codes:     &memCodeRepo{st: st},
		balances:  &memBalanceRepo{st: st},
		purchases: &memPurchaseRepo{st: st},
	}
}

func (f *shopFixture) purchaseUC() *PurchaseUseCase {
	return NewPurchaseUseCase(f.products, f.codes, f.balances, f.purchases, f.txm, testLogger())
}

func (f *shopFixture) provisionUC(bot *mockBot) *ProvisionUseCase {
	if bot == nil {
		return NewProvisionUseCase(f.products, f.codes, f.balances, nil, testLogger())
	}
	return NewProvisionUseCase(f.products, f.codes, f.balances, bot, testLogger())
}

func (f *shopFixture) addProduct(id string, price int, kind model.ProductKind) {
	f.st.products[id] = model.Product{
		ID:        id,
		Name:      "Product " + id,
		Price:     price,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
}

func (f *shopFixture) addCode(productID, payload string, createdAt time.Time) {
	f.st.codes = append(f.st.codes, model.Code{
		ID:        "code-" + payload,
		ProductID: productID,
		Payload:   payload,
		CreatedAt: createdAt,
	})
}

func (f *shopFixture) setBalance(userID string, amount int) {
	f.st.balances[userID] = amount
}

func (f *shopFixture) balance(userID string) int {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	return f.st.balances[userID]
}

func (f *shopFixture) unsold(productID string) int {
	n, _ := f.codes.CountUnsold(context.Background(), nil, productID)
	return n
}
