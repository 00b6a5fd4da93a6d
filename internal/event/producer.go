// Package event publishes cart domain events.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/cart"
	pkgkafka "github.com/alageshkumardev-create/FitzdoPoc/pkg/kafka"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/logger"
)

// Kafka topics for cart domain events.
var (
	TopicCartUpdated = pkgkafka.Topic("cart", "updated")
	TopicCartCleared = pkgkafka.Topic("cart", "cleared")
)

// Aggregate type constant.
const AggregateTypeCart = "cart"

// SourceCatalogService identifies events originating from this service.
const SourceCatalogService = "catalog-service"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	UserID  string         `json:"user_id"`
	Items   []CartItemData `json:"items"`
	Count   int            `json:"count"`
	Total   float64        `json:"total"`
	Savings float64        `json:"savings"`
	Version int            `json:"version"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	ProductID string  `json:"product_id"`
	Size      string  `json:"size"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	UserID string `json:"user_id"`
}

// Publisher is the part of *pkgkafka.Producer the event producer needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes cart domain events to Kafka. It implements
// cart.Publisher.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new cart event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// CartUpdated publishes a cart.updated event.
func (p *Producer) CartUpdated(ctx context.Context, c *cart.Cart) error {
	items := make([]CartItemData, len(c.Items))
	for i, l := range c.Items {
		items[i] = CartItemData{
			ProductID: l.ProductID,
			Size:      l.Size,
			Price:     l.Price,
			Quantity:  l.Quantity,
		}
	}

	data := CartUpdatedData{
		UserID:  c.UserID,
		Items:   items,
		Count:   c.Count(),
		Total:   c.Total(),
		Savings: c.Savings(),
		Version: c.Version,
	}

	if err := p.publish(ctx, TopicCartUpdated, c.UserID, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("user_id", c.UserID),
		slog.Int("count", data.Count),
	)
	return nil
}

// CartCleared publishes a cart.cleared event.
func (p *Producer) CartCleared(ctx context.Context, userID string) error {
	if err := p.publish(ctx, TopicCartCleared, userID, CartClearedData{UserID: userID}); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.cleared event", slog.String("user_id", userID))
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, userID string, data any) error {
	event, err := pkgkafka.NewEvent(topic, userID, AggregateTypeCart, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// Noop discards every event. It is used when Kafka is disabled.
type Noop struct{}

// CartUpdated implements cart.Publisher.
func (Noop) CartUpdated(context.Context, *cart.Cart) error { return nil }

// CartCleared implements cart.Publisher.
func (Noop) CartCleared(context.Context, string) error { return nil }

var (
	_ cart.Publisher = (*Producer)(nil)
	_ cart.Publisher = Noop{}
)
