package service

import (
	"context"
	"time"

	"owl-crm/internal/domain"
	"owl-crm/internal/events"
	"owl-crm/internal/metrics"
	"owl-crm/internal/repository"

	"go.uber.org/zap"
)

// HelloMessage hello 查询的固定返回值，心跳任务用它判断 API 是否可用
const HelloMessage = "Hello, GraphQL!"

const publishTimeout = 5 * time.Second

// Deps 服务公共依赖
type Deps struct {
	Store     repository.Store
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// Services 全部业务服务
type Services struct {
	Customers *CustomerService
	Products  *ProductService
	Orders    *OrderService
	Inventory *InventoryService
	Reports   *ReportService
}

// New 创建全部业务服务
func New(d Deps) *Services {
	d = d.withDefaults()
	return &Services{
		Customers: &CustomerService{d},
		Products:  &ProductService{d},
		Orders:    &OrderService{d},
		Inventory: &InventoryService{d},
		Reports:   &ReportService{d},
	}
}

// emit 事务提交后发布事件，失败只记录日志，不影响变更结果
func (d Deps) emit(ctx context.Context, eventType string, payload any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	e := events.New(eventType, payload)
	if err := d.Publisher.Publish(ctx, e); err != nil {
		d.Metrics.IncEventFailure(eventType)
		d.Logger.Warn("Failed to publish event",
			zap.String("event_type", eventType),
			zap.String("event_id", e.ID),
			zap.Error(err),
		)
	}
}

func (d Deps) record(operation string, err error) {
	if err == nil {
		d.Metrics.IncMutation(operation, "ok")
		return
	}
	kind := string(domain.KindOf(err))
	if kind == "" {
		kind = "error"
		d.Logger.Error("Mutation failed", zap.String("operation", operation), zap.Error(err))
	}
	d.Metrics.IncMutation(operation, kind)
}
