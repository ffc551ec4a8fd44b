package redis

import (
	"context"
	"fmt"
	"time"

	"owl-crm/common/config"

	"github.com/go-redis/redis/v8"
)

const pingTimeout = 3 * time.Second

// Client Redis客户端类型别名
type Client = redis.Client

// NewRedisClient 创建Redis客户端（只建连接池，不做连通性检查）
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  pingTimeout,
		ReadTimeout:  pingTimeout,
		WriteTimeout: pingTimeout,
	})
}

// Ping 在超时内测试Redis连接
func Ping(ctx context.Context, client *redis.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis %s: %w", client.Options().Addr, err)
	}
	return nil
}

// Close 关闭Redis连接，nil 客户端直接返回
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
