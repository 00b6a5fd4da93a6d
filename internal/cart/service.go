package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
	apperrors "github.com/alageshkumardev-create/FitzdoPoc/pkg/errors"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/validator"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerLine is the maximum quantity allowed for a single line.
	MaxQuantityPerLine = 100
	// MaxLinesPerCart is the maximum number of distinct lines in a cart.
	MaxLinesPerCart = 50
)

// DefaultTTL is how long an untouched cart is kept.
const DefaultTTL = 7 * 24 * time.Hour

// ProductLookup resolves product IDs to catalog entries.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// AddItemInput holds the parameters for adding a product to the cart.
type AddItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=100"`
	Size      string `json:"size" validate:"max=8"`
}

// UpdateQuantityInput holds the new quantity of a line. Zero or less removes
// the line.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity" validate:"lte=100"`
}

// Service implements the cart operations.
type Service struct {
	store     Store
	products  ProductLookup
	publisher Publisher
	logger    *slog.Logger
	ttl       time.Duration
	now       func() time.Time
}

// NewService creates a cart service. A nil publisher disables events.
func NewService(store Store, products ProductLookup, publisher Publisher, logger *slog.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		store:     store,
		products:  products,
		publisher: publisher,
		logger:    logger,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the user's cart, or an empty one if none exists.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	c, err := s.store.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return c, nil
}

// AddItem adds a product to the cart, merging into an existing line for the
// same product and size. Quantity defaults to 1 and size to DefaultSize.
func (s *Service) AddItem(ctx context.Context, userID string, input AddItemInput) (*Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	input.ProductID = strings.TrimSpace(input.ProductID)
	input.Size = strings.TrimSpace(input.Size)
	if err := validator.Validate(input); err != nil {
		return nil, err
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if input.Size == "" {
		input.Size = DefaultSize
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", input.ProductID)
		}
		return nil, fmt.Errorf("look up product: %w", err)
	}

	return s.mutate(ctx, userID, true, func(c *Cart) error {
		if i := c.Find(input.ProductID, input.Size); i >= 0 {
			qty := c.Items[i].Quantity + input.Quantity
			if qty > MaxQuantityPerLine {
				return apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerLine))
			}
			c.Items[i] = newLine(product, input.Size, qty)
			return nil
		}
		if len(c.Items) >= MaxLinesPerCart {
			return apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxLinesPerCart))
		}
		c.Items = append(c.Items, newLine(product, input.Size, input.Quantity))
		return nil
	}, slog.String("op", "add"), slog.String("product_id", input.ProductID), slog.String("size", input.Size), slog.Int("quantity", input.Quantity))
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID, size string, quantity int) (*Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" || size == "" {
		return nil, apperrors.InvalidInput("product id and size are required")
	}
	if quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	return s.mutate(ctx, userID, false, func(c *Cart) error {
		i := c.Find(productID, size)
		if i < 0 {
			return apperrors.NotFound("cart item", productID+"/"+size)
		}
		if quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
		c.Items[i].Quantity = quantity
		return nil
	}, slog.String("op", "update"), slog.String("product_id", productID), slog.String("size", size), slog.Int("quantity", quantity))
}

// RemoveItem removes a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, userID, productID, size string) (*Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" || size == "" {
		return nil, apperrors.InvalidInput("product id and size are required")
	}

	return s.mutate(ctx, userID, false, func(c *Cart) error {
		i := c.Find(productID, size)
		if i < 0 {
			return apperrors.NotFound("cart item", productID+"/"+size)
		}
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return nil
	}, slog.String("op", "remove"), slog.String("product_id", productID), slog.String("size", size))
}

// Clear removes every line from the user's cart.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.CartCleared(ctx, userID); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "cart cleared", slog.String("user_id", userID))
	return nil
}

// mutate loads the cart, applies fn and saves it under optimistic locking.
// When create is false a missing cart is reported as not found.
func (s *Service) mutate(ctx context.Context, userID string, create bool, fn func(*Cart) error, attrs ...any) (*Cart, error) {
	c, err := s.store.Load(ctx, userID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound) && create:
		c = s.newEmptyCart(userID)
	case errors.Is(err, apperrors.ErrNotFound):
		return nil, apperrors.NotFound("cart", userID)
	case err != nil:
		return nil, fmt.Errorf("get cart: %w", err)
	}

	expectedVersion := c.Version
	if err := fn(c); err != nil {
		return nil, err
	}

	now := s.now()
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(s.ttl)

	ok, err := s.store.Save(ctx, c, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("cart was modified concurrently, please retry")
	}

	if s.publisher != nil {
		if err := s.publisher.CartUpdated(ctx, c); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "cart updated", append([]any{slog.String("user_id", userID), slog.Int("count", c.Count())}, attrs...)...)
	return c, nil
}

func (s *Service) newEmptyCart(userID string) *Cart {
	now := s.now()
	return &Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     []Line{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
}

func newLine(p *domain.Product, size string, quantity int) Line {
	return Line{
		ProductID: p.ID,
		Size:      size,
		Title:     p.Title,
		Brand:     p.Brand,
		ImageURL:  p.ImageURL,
		Price:     p.Price,
		MRP:       p.MRP,
		Quantity:  quantity,
	}
}
