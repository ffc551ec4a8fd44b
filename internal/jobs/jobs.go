package jobs

import (
	"context"
	"fmt"
	"time"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"

	"go.uber.org/zap"
)

// 任务名
const (
	JobHeartbeat = "heartbeat"
	JobLowStock  = "low_stock"
	JobReminders = "reminders"
	JobReport    = "report"
)

// Job 一个可调度的任务。run 为调度器在本次运行开始时记录的状态，
// 本次运行写出的所有日志行都使用 run.LastStart 作为时间戳
type Job interface {
	Name() string
	Run(ctx context.Context, run Status) error
}

// startedAt 本次运行的开始时间
func (s Status) startedAt() time.Time {
	if s.LastStart == nil {
		return time.Now()
	}
	return *s.LastStart
}

// Heartbeat 记录存活日志；hello 调用成功时追加 " (GraphQL Responsive)"。
// hello 调用失败不算任务失败
type Heartbeat struct {
	Greeter Greeter
	Sink    Sink
	Logger  *zap.Logger
}

func (j *Heartbeat) Name() string { return JobHeartbeat }

func (j *Heartbeat) Run(ctx context.Context, run Status) error {
	ts := run.startedAt()
	message := "CRM is alive"
	if j.Greeter != nil {
		if _, err := j.Greeter.Hello(ctx); err == nil {
			message += " (GraphQL Responsive)"
		} else if j.Logger != nil {
			j.Logger.Debug("Heartbeat hello call failed", zap.Error(err))
		}
	}
	return j.Sink.Append(ts.Format(HeartbeatLayout) + " " + message)
}

// LowStock 执行补货并记录每个商品的新库存
type LowStock struct {
	API  API
	Sink Sink
}

func (j *LowStock) Name() string { return JobLowStock }

func (j *LowStock) Run(ctx context.Context, run Status) error {
	res, err := j.API.UpdateLowStockProducts(ctx)
	if err != nil {
		return fmt.Errorf("update low stock products: %w", err)
	}
	ts := run.startedAt()
	lines := make([]string, 0, len(res.Products))
	for _, p := range res.Products {
		lines = append(lines, Line(ts, fmt.Sprintf("Updated %s to stock %d", p.Name, p.Stock)))
	}
	return j.Sink.Append(lines...)
}

// Reminders 记录下单超过 7 天的订单（严格大于 7 天）
type Reminders struct {
	API    API
	Sink   Sink
	Logger *zap.Logger
}

func (j *Reminders) Name() string { return JobReminders }

func (j *Reminders) Run(ctx context.Context, run Status) error {
	now := run.startedAt()
	cutoff := domain.StaleBefore(now)
	orders, err := j.API.ListOrders(ctx, filter.OrderFilter{OrderDateLte: &cutoff})
	if err != nil {
		return fmt.Errorf("list stale orders: %w", err)
	}
	// 过滤条件是闭区间，恰好 7 天的订单在这里排除
	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		if !o.IsStale(now) {
			continue
		}
		lines = append(lines, Line(now, fmt.Sprintf("Order ID: %d, Email: %s", o.ID, o.Customer.Email)))
	}
	if err := j.Sink.Append(lines...); err != nil {
		return err
	}
	if j.Logger != nil {
		j.Logger.Info("Order reminders processed!", zap.Int("orders", len(lines)))
	}
	return nil
}

// Report 记录客户数、订单数与总收入
type Report struct {
	API  API
	Sink Sink
}

func (j *Report) Name() string { return JobReport }

func (j *Report) Run(ctx context.Context, run Status) error {
	sum, err := j.API.ReportSummary(ctx)
	if err != nil {
		return fmt.Errorf("report summary: %w", err)
	}
	ts := run.startedAt()
	return j.Sink.Append(Line(ts, fmt.Sprintf("Report: %d customers, %d orders, %s revenue",
		sum.Customers, sum.Orders, sum.Revenue.String())))
}
