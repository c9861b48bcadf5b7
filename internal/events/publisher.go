package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_shop/internal/domain"
)

const orderPlacedTopic = "order-placed"

type OrderPlacedItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// OrderPlacedEvent is published after an order placement has committed.
type OrderPlacedEvent struct {
	EventID        string            `json:"eventId"`
	OrderReference string            `json:"orderReference"`
	UserID         int64             `json:"userId"`
	Items          []OrderPlacedItem `json:"items"`
	TotalAmount    decimal.Decimal   `json:"totalAmount"`
	Timestamp      time.Time         `json:"timestamp"`
}

func NewOrderPlacedEvent(order *domain.Order) *OrderPlacedEvent {
	items := make([]OrderPlacedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderPlacedItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return &OrderPlacedEvent{
		EventID:        uuid.New().String(),
		OrderReference: order.Reference.String(),
		UserID:         order.UserID,
		Items:          items,
		TotalAmount:    order.TotalAmount,
		Timestamp:      time.Now(),
	}
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event *OrderPlacedEvent) error
	Close() error
}

// KafkaPublisher writes order events to the order-placed topic, keyed by
// order reference so one order's events stay in partition order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  orderPlacedTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, event *OrderPlacedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order placed event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderReference),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write order placed event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
