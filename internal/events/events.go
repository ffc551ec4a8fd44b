package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// 事件类型
const (
	CustomerCreated     = "customer.created"
	ProductCreated      = "product.created"
	OrderCreated        = "order.created"
	ProductsReplenished = "products.replenished"
)

// Event 领域事件，在变更提交之后发布
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// New 创建事件并分配 ID
func New(eventType string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop 丢弃所有事件
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
