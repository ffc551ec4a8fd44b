package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"owl-crm/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 清除环境变量
	os.Clearenv()
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "owl_crm", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)

	assert.Equal(t, "none", cfg.Events.Sink)
	assert.Equal(t, "crm:events", cfg.Events.Stream)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)

	assert.Equal(t, "http://localhost:8080", cfg.API.URL)
	assert.Equal(t, 3, cfg.API.Retries)

	assert.False(t, cfg.Jobs.Enabled)
	assert.Equal(t, "local", cfg.Jobs.Transport)
	assert.Equal(t, jobs.DefaultConfig(), cfg.Jobs.Config)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	chdir(t, t.TempDir())
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("EVENTS_SINK", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CRM_API_RETRIES", "5")
	t.Setenv("JOBS_ENABLED", "true")
	t.Setenv("JOBS_TRANSPORT", "http")
	t.Setenv("HEARTBEAT_INTERVAL", "30")
	t.Setenv("REPORT_INTERVAL", "0")
	t.Setenv("LOW_STOCK_LOG", "/var/log/low.txt")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "kafka", cfg.Events.Sink)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5, cfg.API.Retries)
	assert.True(t, cfg.Jobs.Enabled)
	assert.Equal(t, "http", cfg.Jobs.Transport)
	assert.Equal(t, 30*time.Second, cfg.Jobs.HeartbeatInterval)
	assert.Zero(t, cfg.Jobs.ReportInterval)
	assert.Equal(t, "/var/log/low.txt", cfg.Jobs.LowStockLog)
}

func TestLoad_DotEnvFile(t *testing.T) {
	os.Clearenv()
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_ADDR=:9090\nLOG_LEVEL=debug\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_RejectsUnknownValues(t *testing.T) {
	os.Clearenv()
	chdir(t, t.TempDir())

	t.Setenv("EVENTS_SINK", "smtp")
	_, err := Load()
	assert.ErrorContains(t, err, "EVENTS_SINK")

	t.Setenv("EVENTS_SINK", "none")
	t.Setenv("JOBS_TRANSPORT", "grpc")
	_, err = Load()
	assert.ErrorContains(t, err, "JOBS_TRANSPORT")
}

// chdir 切换工作目录并在测试结束时恢复（等同于 Go 1.24 的 t.Chdir）
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
