package jobs

import (
	"context"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"
	"owl-crm/internal/service"
)

// API 任务访问 CRM 的入口：进程内调用服务，或经由 HTTP 客户端
type API interface {
	Hello(ctx context.Context) (string, error)
	UpdateLowStockProducts(ctx context.Context) (*service.ReplenishResult, error)
	ListOrders(ctx context.Context, f filter.OrderFilter) ([]domain.Order, error)
	ReportSummary(ctx context.Context) (domain.Summary, error)
}

// Greeter 心跳时调用的 hello 接口
type Greeter interface {
	Hello(ctx context.Context) (string, error)
}

// LocalAPI 直接调用进程内服务
type LocalAPI struct {
	svc *service.Services
}

func NewLocalAPI(svc *service.Services) *LocalAPI {
	return &LocalAPI{svc: svc}
}

var _ API = (*LocalAPI)(nil)

func (a *LocalAPI) Hello(context.Context) (string, error) {
	return service.HelloMessage, nil
}

func (a *LocalAPI) UpdateLowStockProducts(ctx context.Context) (*service.ReplenishResult, error) {
	return a.svc.Inventory.UpdateLowStockProducts(ctx)
}

func (a *LocalAPI) ListOrders(ctx context.Context, f filter.OrderFilter) ([]domain.Order, error) {
	return a.svc.Orders.ListOrders(ctx, filter.Query[filter.OrderFilter]{Filter: &f})
}

func (a *LocalAPI) ReportSummary(ctx context.Context) (domain.Summary, error) {
	return a.svc.Reports.Summary(ctx)
}
