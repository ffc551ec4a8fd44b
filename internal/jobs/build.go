package jobs

import (
	"time"

	"go.uber.org/zap"
)

// 默认日志文件
const (
	DefaultHeartbeatLog = "/tmp/crm_heartbeat_log.txt"
	DefaultLowStockLog  = "/tmp/low_stock_updates_log.txt"
	DefaultRemindersLog = "/tmp/order_reminders_log.txt"
	DefaultReportLog    = "/tmp/crm_report_log.txt"
)

// Config 各任务的间隔与日志路径
type Config struct {
	HeartbeatInterval time.Duration
	LowStockInterval  time.Duration
	RemindersInterval time.Duration
	ReportInterval    time.Duration

	HeartbeatLog string
	LowStockLog  string
	RemindersLog string
	ReportLog    string
}

// DefaultConfig 默认调度
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: 5 * time.Minute,
		LowStockInterval:  12 * time.Hour,
		RemindersInterval: 24 * time.Hour,
		ReportInterval:    7 * 24 * time.Hour,
		HeartbeatLog:      DefaultHeartbeatLog,
		LowStockLog:       DefaultLowStockLog,
		RemindersLog:      DefaultRemindersLog,
		ReportLog:         DefaultReportLog,
	}
}

// Schedules 组装四个任务。greeter 为心跳使用的 HTTP hello 调用，可为 nil
func Schedules(cfg Config, api API, greeter Greeter, logger *zap.Logger) []Schedule {
	return []Schedule{
		{
			Job:      &Heartbeat{Greeter: greeter, Sink: NewFileSink(cfg.HeartbeatLog), Logger: logger},
			Interval: cfg.HeartbeatInterval,
		},
		{
			Job:      &LowStock{API: api, Sink: NewFileSink(cfg.LowStockLog)},
			Interval: cfg.LowStockInterval,
		},
		{
			Job:      &Reminders{API: api, Sink: NewFileSink(cfg.RemindersLog), Logger: logger},
			Interval: cfg.RemindersInterval,
		},
		{
			Job:      &Report{API: api, Sink: NewFileSink(cfg.ReportLog)},
			Interval: cfg.ReportInterval,
		},
	}
}
