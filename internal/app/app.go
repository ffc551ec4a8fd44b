package app

import (
	"context"
	"database/sql"
	"fmt"

	"owl-crm/common/database"
	rediscommon "owl-crm/common/redis"
	"owl-crm/internal/client"
	"owl-crm/internal/config"
	"owl-crm/internal/events"
	"owl-crm/internal/jobs"
	"owl-crm/internal/metrics"
	"owl-crm/internal/repository"
	"owl-crm/internal/service"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// App 进程内共享的依赖
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *sql.DB
	Redis     *redis.Client
	Store     repository.Store
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Services  *service.Services
}

// Option New 的可选项
type Option func(*options)

type options struct {
	memoryFallback bool
}

// WithoutMemoryFallback 数据库连接失败时直接返回错误，不退回内存存储。
// 单次任务与 seed 使用：空的内存存储只会产生错误的结果
func WithoutMemoryFallback() Option {
	return func(o *options) { o.memoryFallback = false }
}

// New 按配置初始化存储、Redis、事件出口与业务服务。
// 数据库不可用时默认退回内存存储；Redis 启用但不可用时返回错误
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	o := options{memoryFallback: true}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(nil),
	}

	a.Store = repository.NewMemoryStore()
	if cfg.DBEnabled {
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			if !o.memoryFallback {
				return nil, fmt.Errorf("failed to connect to database: %w", err)
			}
			logger.Warn("DB enabled but connection failed, falling back to memory store", zap.Error(err))
		} else if err := repository.Migrate(ctx, db); err != nil {
			_ = database.Close(db)
			return nil, err
		} else {
			a.DB = db
			a.Store = repository.NewPostgresStore(db)
			logger.Info("DB enabled for owl-crm", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Database))
		}
	}

	if cfg.RedisEnabled {
		a.Redis = rediscommon.NewRedisClient(&cfg.Redis)
		if err := rediscommon.Ping(ctx, a.Redis); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	pub, err := events.Build(events.Options{
		Sink:         cfg.Events.Sink,
		Stream:       cfg.Events.Stream,
		Redis:        a.Redis,
		MQTT:         &cfg.MQTT,
		KafkaBrokers: cfg.Kafka.Brokers,
		KafkaTopic:   cfg.Kafka.Topic,
	}, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build event publisher: %w", err)
	}
	a.Publisher = pub

	a.Services = service.New(service.Deps{
		Store:     a.Store,
		Publisher: a.Publisher,
		Metrics:   a.Metrics,
		Logger:    logger,
	})
	return a, nil
}

// APIClient HTTP 方式访问 CRM
func (a *App) APIClient() *client.Client {
	return client.New(a.Config.API.URL, a.Config.API.Retries, a.Logger)
}

// JobsRunner 按 JOBS_TRANSPORT 组装任务；心跳的 hello 总是走 HTTP
func (a *App) JobsRunner() *jobs.Runner {
	httpAPI := a.APIClient()
	var api jobs.API = jobs.NewLocalAPI(a.Services)
	if a.Config.Jobs.Transport == "http" {
		api = httpAPI
	}

	opts := []jobs.RunnerOption{jobs.WithMetrics(a.Metrics)}
	if a.Redis != nil {
		opts = append(opts, jobs.WithStateStore(jobs.NewRedisStateStore(a.Redis, a.Config.Jobs.StateKey)))
	}
	return jobs.NewRunner(jobs.Schedules(a.Config.Jobs.Config, api, httpAPI, a.Logger), a.Logger, opts...)
}

// Close 释放连接
func (a *App) Close() {
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Logger.Warn("Failed to close event publisher", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := rediscommon.Close(a.Redis); err != nil {
			a.Logger.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if err := database.Close(a.DB); err != nil {
		a.Logger.Warn("Failed to close database", zap.Error(err))
	}
}
