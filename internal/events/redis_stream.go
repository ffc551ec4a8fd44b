package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	commonredis "owl-crm/common/redis"

	"github.com/go-redis/redis/v8"
)

// RedisStreamPublisher 通过 XADD 发布到 Redis Streams
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisStreamPublisher 创建 Redis Streams 发布器。client 由调用方关闭
func NewRedisStreamPublisher(client *redis.Client, stream string) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	_, err = commonredis.PublishToStream(ctx, p.client, p.stream, map[string]interface{}{
		"id":          e.ID,
		"type":        e.Type,
		"occurred_at": e.OccurredAt.Format(time.RFC3339Nano),
		"data":        payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event to stream %s: %w", p.stream, err)
	}
	return nil
}

func (p *RedisStreamPublisher) Close() error { return nil }
