package jobs

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	// HeartbeatLayout 心跳日志时间格式 dd/mm/YYYY-HH:MM:SS
	HeartbeatLayout = "02/01/2006-15:04:05"
	// DefaultLayout 其他任务日志时间格式
	DefaultLayout = "2006-01-02 15:04:05"
)

// Sink 追加写入的任务日志
type Sink interface {
	Append(lines ...string) error
}

// FileSink 以追加方式写文件，每行以换行结束
type FileSink struct {
	path string
	mu   sync.Mutex
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Append(lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open job log %s: %w", s.path, err)
	}
	defer f.Close()

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write job log %s: %w", s.path, err)
	}
	return nil
}

// Line 格式化为 "<timestamp> - <message>"
func Line(ts time.Time, message string) string {
	return ts.Format(DefaultLayout) + " - " + message
}
