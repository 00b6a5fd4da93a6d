package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/cart"
	apperrors "github.com/alageshkumardev-create/FitzdoPoc/pkg/errors"
)

// CartStore is an in-memory cart.Store. Carts are copied in and out so
// callers never share state with the store. A cart past its ExpiresAt is
// treated as absent and dropped on the next access.
type CartStore struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart
	now   func() time.Time
}

// NewCartStore creates an empty cart store.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]*cart.Cart), now: time.Now}
}

// live returns the stored cart for userID unless it is missing or expired.
// Callers must hold s.mu.
func (s *CartStore) live(userID string) (*cart.Cart, bool) {
	c, ok := s.carts[userID]
	if !ok {
		return nil, false
	}
	if !c.ExpiresAt.IsZero() && !s.now().Before(c.ExpiresAt) {
		delete(s.carts, userID)
		return nil, false
	}
	return c, true
}

// Load returns a copy of the user's cart.
func (s *CartStore) Load(_ context.Context, userID string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.live(userID)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return c.Clone(), nil
}

// Save stores a copy of c when the stored version matches expectedVersion.
func (s *CartStore) Save(_ context.Context, c *cart.Cart, expectedVersion int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := 0
	if existing, ok := s.live(c.UserID); ok {
		current = existing.Version
	}
	if current != expectedVersion {
		return false, nil
	}

	c.Version = expectedVersion + 1
	s.carts[c.UserID] = c.Clone()
	return true, nil
}

// Delete removes the user's cart.
func (s *CartStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	return nil
}
