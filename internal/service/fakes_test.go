package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/shoe-store-api/internal/model"
	"github.com/iliyamo/shoe-store-api/internal/queue"
	"github.com/iliyamo/shoe-store-api/internal/repository"
)

// In-memory stores used across the service tests. They mirror the SQL
// repositories' observable behavior, including the conditional updates
// that the services rely on for correctness under concurrency.

type fakeUserStore struct {
	mu      sync.Mutex
	nextID  uint64
	users   map[uint64]model.User
	byEmail map[string]uint64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint64]model.User{}, byEmail: map[string]uint64{}}
}

func (s *fakeUserStore) Create(_ context.Context, email, passwordHash, role string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byEmail[email]; dup {
		return 0, repository.ErrEmailExists
	}
	s.nextID++
	u := model.User{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		TwoFactor:    model.TwoFactorDisabled,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return u.ID, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return s.users[id], nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id uint64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) SetTwoFactor(_ context.Context, id uint64, state model.TwoFactorState, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.TwoFactor = state
	u.TwoFactorKey = secret
	u.TOTPLastStep = 0
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) SetTOTPLastStep(_ context.Context, id uint64, step uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	// Monotonic, like the WHERE totp_last_step < ? guard in SQL.
	if step > u.TOTPLastStep {
		u.TOTPLastStep = step
		s.users[id] = u
	}
	return nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.RefreshToken
	byHash map[string]uint64
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: map[uint64]*model.RefreshToken{}, byHash: map[string]uint64{}}
}

func (s *fakeTokenStore) Insert(_ context.Context, userID uint64, tokenHash string, parentID *uint64, exp time.Time) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t := &model.RefreshToken{
		ID:        s.nextID,
		UserID:    userID,
		TokenHash: tokenHash,
		ParentID:  parentID,
		ExpiresAt: exp,
		CreatedAt: time.Now().UTC(),
	}
	s.rows[t.ID] = t
	s.byHash[tokenHash] = t.ID
	return t.ID, nil
}

func (s *fakeTokenStore) GetByHash(_ context.Context, tokenHash string) (model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byHash[tokenHash]
	if !ok {
		return model.RefreshToken{}, repository.ErrNotFound
	}
	return *s.rows[id], nil
}

// Claim revokes the row iff it is still active, reporting whether this
// call was the one that revoked it. Mirrors the conditional UPDATE in
// the SQL repository: under concurrent rotation exactly one caller wins.
func (s *fakeTokenStore) Claim(_ context.Context, id uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	if !ok || t.RevokedAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	t.RevokedAt = &now
	return true, nil
}

func (s *fakeTokenStore) RevokeChain(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	root, ok := s.rows[id]
	if !ok {
		return nil
	}
	for root.ParentID != nil {
		p, ok := s.rows[*root.ParentID]
		if !ok {
			break
		}
		root = p
	}
	frontier := []uint64{root.ID}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		if t := s.rows[cur]; t.RevokedAt == nil {
			now := time.Now().UTC()
			t.RevokedAt = &now
		}
		for _, t := range s.rows {
			if t.ParentID != nil && *t.ParentID == cur {
				frontier = append(frontier, t.ID)
			}
		}
	}
	return nil
}

func (s *fakeTokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.rows {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now().UTC()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (s *fakeTokenStore) activeCount(userID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.rows {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

type fakeInventory struct {
	mu    sync.Mutex
	stock map[string]uint32
}

func newFakeInventory() *fakeInventory { return &fakeInventory{stock: map[string]uint32{}} }

func invKey(productID uint64, size string) string { return fmt.Sprintf("%d/%s", productID, size) }

func (s *fakeInventory) set(productID uint64, size string, qty uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[invKey(productID, size)] = qty
}

func (s *fakeInventory) get(productID uint64, size string) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[invKey(productID, size)]
}

func (s *fakeInventory) ReserveStock(_ context.Context, productID uint64, size string, qty uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	have, ok := s.stock[invKey(productID, size)]
	if !ok {
		return repository.ErrSizeNotFound
	}
	if have < qty {
		return repository.ErrInsufficientStock
	}
	s.stock[invKey(productID, size)] = have - qty
	return nil
}

func (s *fakeInventory) RestoreStock(_ context.Context, productID uint64, size string, qty uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	have, ok := s.stock[invKey(productID, size)]
	if !ok {
		return repository.ErrSizeNotFound
	}
	s.stock[invKey(productID, size)] = have + qty
	return nil
}

type fakeCartStore struct {
	mu    sync.Mutex
	items map[uint64][]model.CartItem
}

func newFakeCartStore() *fakeCartStore { return &fakeCartStore{items: map[uint64][]model.CartItem{}} }

func (s *fakeCartStore) ItemsByUser(_ context.Context, userID uint64) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CartItem, len(s.items[userID]))
	copy(out, s.items[userID])
	return out, nil
}

func (s *fakeCartStore) Clear(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, userID)
	return nil
}

func (s *fakeCartStore) add(it model.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[it.UserID] = append(s.items[it.UserID], it)
}

type fakeOrderStore struct {
	mu      sync.Mutex
	nextID  uint64
	orders  map[uint64]*model.Order
	byToken map[string]uint64
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[uint64]*model.Order{}, byToken: map[string]uint64{}}
}

func (s *fakeOrderStore) Create(_ context.Context, o *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	o.ID = s.nextID
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	s.orders[o.ID] = &cp
	s.byToken[o.VerifyToken] = o.ID
	return nil
}

func (s *fakeOrderStore) GetByID(_ context.Context, id uint64) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return cp, nil
}

func (s *fakeOrderStore) GetByVerifyToken(_ context.Context, token string) (model.Order, error) {
	s.mu.Lock()
	id, ok := s.byToken[token]
	s.mu.Unlock()
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return s.GetByID(context.Background(), id)
}

func (s *fakeOrderStore) ListByUser(_ context.Context, userID uint64) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

// UpdateStatus only applies when the current status matches, like the
// conditional UPDATE ... WHERE status = ? in the SQL repository.
func (s *fakeOrderStore) UpdateStatus(_ context.Context, id uint64, from, to model.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return repository.ErrConflict
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	return nil
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[uint64]model.Product
}

func newFakeCatalog() *fakeCatalog { return &fakeCatalog{products: map[uint64]model.Product{}} }

func (s *fakeCatalog) put(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *fakeCatalog) GetByID(_ context.Context, id uint64) (model.Product, []model.SizeStock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, nil, repository.ErrNotFound
	}
	return p, nil, nil
}

type recordPublisher struct {
	mu     sync.Mutex
	events []queue.OrderPlacedEvent
}

func (p *recordPublisher) PublishOrderPlaced(_ context.Context, ev queue.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordPublisher) published() []queue.OrderPlacedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.OrderPlacedEvent(nil), p.events...)
}
