package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	commoncfg "owl-crm/common/config"
	"owl-crm/internal/jobs"

	"github.com/joho/godotenv"
)

// Config owl-crm 配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled    bool
	Database     commoncfg.DatabaseConfig
	RedisEnabled bool
	Redis        commoncfg.RedisConfig
	Events       EventsConfig
	MQTT         commoncfg.MQTTConfig
	Kafka        KafkaConfig
	API          APIConfig
	Jobs         JobsConfig
	Log          struct {
		Level  string
		Format string
	}
}

// EventsConfig 领域事件出口
type EventsConfig struct {
	Sink   string // none | redis | mqtt | kafka
	Stream string
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// APIConfig 任务通过 HTTP 调用 CRM 时使用
type APIConfig struct {
	URL     string
	Retries int
}

// JobsConfig 定时任务配置
type JobsConfig struct {
	Enabled   bool
	Transport string // local | http
	StateKey  string
	jobs.Config
}

// Load 读取 .env（可选）与环境变量
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// 默认启用数据库；连接失败时服务退回内存存储
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "owl_crm",
		SSLMode:  "disable",
		MaxConns: 10,
		MaxIdle:  5,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Events.Sink = getEnv("EVENTS_SINK", "none")
	cfg.Events.Stream = getEnv("EVENTS_STREAM", "crm:events")

	cfg.MQTT = commoncfg.MQTTConfig{Broker: "", ClientID: "owl-crm", QoS: 1}
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Kafka.Brokers = commoncfg.SplitList(getEnv("KAFKA_BROKERS", ""))
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", "")

	cfg.API.URL = getEnv("CRM_API_URL", "http://localhost:8080")
	cfg.API.Retries = parseInt(getEnv("CRM_API_RETRIES", "3"), 3)

	cfg.Jobs.Enabled = getEnv("JOBS_ENABLED", "false") == "true"
	cfg.Jobs.Transport = getEnv("JOBS_TRANSPORT", "local")
	cfg.Jobs.StateKey = getEnv("JOBS_STATE_KEY", "owl-crm:jobs")
	def := jobs.DefaultConfig()
	cfg.Jobs.HeartbeatInterval = parseSeconds(getEnv("HEARTBEAT_INTERVAL", ""), def.HeartbeatInterval)
	cfg.Jobs.LowStockInterval = parseSeconds(getEnv("LOW_STOCK_INTERVAL", ""), def.LowStockInterval)
	cfg.Jobs.RemindersInterval = parseSeconds(getEnv("REMINDERS_INTERVAL", ""), def.RemindersInterval)
	cfg.Jobs.ReportInterval = parseSeconds(getEnv("REPORT_INTERVAL", ""), def.ReportInterval)
	cfg.Jobs.HeartbeatLog = getEnv("HEARTBEAT_LOG", def.HeartbeatLog)
	cfg.Jobs.LowStockLog = getEnv("LOW_STOCK_LOG", def.LowStockLog)
	cfg.Jobs.RemindersLog = getEnv("REMINDERS_LOG", def.RemindersLog)
	cfg.Jobs.ReportLog = getEnv("REPORT_LOG", def.ReportLog)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Events.Sink {
	case "none", "redis", "mqtt", "kafka":
	default:
		return fmt.Errorf("invalid EVENTS_SINK %q", c.Events.Sink)
	}
	switch c.Jobs.Transport {
	case "local", "http":
	default:
		return fmt.Errorf("invalid JOBS_TRANSPORT %q", c.Jobs.Transport)
	}
	if c.API.Retries < 0 {
		return fmt.Errorf("CRM_API_RETRIES must not be negative")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// parseSeconds 间隔以秒配置；0 表示不定时运行
func parseSeconds(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
