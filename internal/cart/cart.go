// Package cart holds a shopper's selected lines and the operations that
// mutate them. Cart state lives in an injected Store and is loaded on every
// request, mutated, and persisted after each mutation.
package cart

import (
	"context"
	"time"
)

// DefaultSize is used when an add request names no size.
const DefaultSize = "M"

// Cart is the set of lines selected by one user.
type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Items     []Line    `json:"items"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Line is one product in one size. Price and MRP are captured when the line
// is first added or merged.
type Line struct {
	ProductID string  `json:"productId"`
	Size      string  `json:"size"`
	Title     string  `json:"title"`
	Brand     string  `json:"brand"`
	ImageURL  string  `json:"imageUrl"`
	Price     float64 `json:"price"`
	MRP       float64 `json:"mrp"`
	Quantity  int     `json:"quantity"`
}

// Total is the sum of price times quantity over all lines.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Items {
		total += l.Price * float64(l.Quantity)
	}
	return total
}

// Count is the total quantity over all lines.
func (c *Cart) Count() int {
	var count int
	for _, l := range c.Items {
		count += l.Quantity
	}
	return count
}

// Savings is the sum of (mrp - price) times quantity over all lines.
func (c *Cart) Savings() float64 {
	var savings float64
	for _, l := range c.Items {
		savings += (l.MRP - l.Price) * float64(l.Quantity)
	}
	return savings
}

// Find returns the index of the line for productID and size, or -1.
func (c *Cart) Find(productID, size string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].Size == size {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of c.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Items = append(make([]Line, 0, len(c.Items)), c.Items...)
	return &out
}

// View is the wire form of a cart with its derived totals.
type View struct {
	*Cart
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Savings float64 `json:"savings"`
}

// NewView computes the derived totals of c.
func NewView(c *Cart) View {
	return View{Cart: c, Total: c.Total(), Count: c.Count(), Savings: c.Savings()}
}

// Store persists carts keyed by user ID.
type Store interface {
	// Load returns the cart for userID, or apperrors.ErrNotFound.
	Load(ctx context.Context, userID string) (*Cart, error)

	// Save writes c if the stored version equals expectedVersion (0 for a
	// cart that does not exist yet) and bumps c.Version. It reports false
	// when another writer got there first.
	Save(ctx context.Context, c *Cart, expectedVersion int) (bool, error)

	// Delete removes the cart for userID. Deleting a missing cart is not an
	// error.
	Delete(ctx context.Context, userID string) error
}

// Publisher announces cart mutations.
type Publisher interface {
	CartUpdated(ctx context.Context, c *Cart) error
	CartCleared(ctx context.Context, userID string) error
}
