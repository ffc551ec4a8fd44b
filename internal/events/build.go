package events

import (
	"fmt"

	"owl-crm/common/config"
	"owl-crm/common/mqtt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Options 选择并配置事件出口
type Options struct {
	Sink         string // none | redis | mqtt | kafka
	Stream       string // redis stream 名，也用作 mqtt 主题前缀和 kafka topic 缺省值
	Redis        *redis.Client
	MQTT         *config.MQTTConfig
	KafkaBrokers []string
	KafkaTopic   string
}

// Build 按 Sink 创建 Publisher
func Build(opts Options, logger *zap.Logger) (Publisher, error) {
	switch opts.Sink {
	case "", "none":
		return Nop{}, nil
	case "redis":
		if opts.Redis == nil {
			return nil, fmt.Errorf("events sink redis requires REDIS_ENABLED=true")
		}
		return NewRedisStreamPublisher(opts.Redis, opts.Stream), nil
	case "mqtt":
		if opts.MQTT == nil || opts.MQTT.Broker == "" {
			return nil, fmt.Errorf("events sink mqtt requires MQTT_BROKER")
		}
		client, err := mqtt.NewClient(opts.MQTT, logger)
		if err != nil {
			return nil, err
		}
		return NewMQTTPublisher(client, opts.Stream), nil
	case "kafka":
		if len(opts.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("events sink kafka requires KAFKA_BROKERS")
		}
		topic := opts.KafkaTopic
		if topic == "" {
			topic = opts.Stream
		}
		return NewKafkaPublisher(NewKafkaWriter(opts.KafkaBrokers, topic)), nil
	default:
		return nil, fmt.Errorf("unknown events sink %q", opts.Sink)
	}
}
