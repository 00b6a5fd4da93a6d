package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/cart"
	apperrors "github.com/alageshkumardev-create/FitzdoPoc/pkg/errors"
)

const keyPrefix = "fitzdo:cart:"

var errVersionMismatch = errors.New("cart version mismatch")

// CartRepository implements cart.Store using Redis.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

func key(userID string) string {
	return keyPrefix + userID
}

// Load retrieves a cart by user ID from Redis.
func (r *CartRepository) Load(ctx context.Context, userID string) (*cart.Cart, error) {
	data, err := r.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &c, nil
}

// Save writes the cart under WATCH so a concurrent writer aborts the
// transaction. A version mismatch or aborted transaction reports false.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart, expectedVersion int) (bool, error) {
	k := key(c.UserID)

	txf := func(tx *redis.Tx) error {
		current := 0
		data, err := tx.Get(ctx, k).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("redis get cart: %w", err)
		default:
			var stored struct {
				Version int `json:"version"`
			}
			if err := json.Unmarshal(data, &stored); err != nil {
				return fmt.Errorf("unmarshal cart: %w", err)
			}
			current = stored.Version
		}
		if current != expectedVersion {
			return errVersionMismatch
		}

		next := *c
		next.Version = expectedVersion + 1
		payload, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("marshal cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, r.ttl)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txf, k)
	switch {
	case err == nil:
		c.Version = expectedVersion + 1
		return true, nil
	case errors.Is(err, errVersionMismatch), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("redis save cart: %w", err)
	}
}

// Delete removes a cart from Redis by user ID.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (r *CartRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
