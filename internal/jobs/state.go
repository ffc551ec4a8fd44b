package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// 运行结果
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Status 单个任务的运行状态
type Status struct {
	Name        string     `json:"name"`
	Running     bool       `json:"running"`
	LastStart   *time.Time `json:"last_start,omitempty"`
	LastFinish  *time.Time `json:"last_finish,omitempty"`
	LastOutcome string     `json:"last_outcome,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	Runs        int64      `json:"runs"`
}

// StateStore 状态持久化（可选，用于跨副本查看）
type StateStore interface {
	Save(ctx context.Context, st Status) error
	LoadAll(ctx context.Context) ([]Status, error)
}

// State 调度器状态，由 Runner 持有并在每次运行时传入
type State struct {
	mu   sync.Mutex
	jobs map[string]*Status
}

func NewState() *State {
	return &State{jobs: make(map[string]*Status)}
}

// Begin 标记任务开始；同名任务仍在运行时返回 false
func (s *State) Begin(name string, at time.Time) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.entry(name)
	if st.Running {
		return *st, false
	}
	st.Running = true
	st.LastStart = &at
	return *st, true
}

// Finish 记录任务结束
func (s *State) Finish(name string, at time.Time, runErr error) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.entry(name)
	st.Running = false
	st.LastFinish = &at
	st.Runs++
	if runErr != nil {
		st.LastOutcome = OutcomeFailure
		st.LastError = runErr.Error()
	} else {
		st.LastOutcome = OutcomeSuccess
		st.LastError = ""
	}
	return *st
}

// Get 返回单个任务状态
func (s *State) Get(name string) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.jobs[name]
	if !ok {
		return Status{}, false
	}
	return *st, true
}

// Snapshot 按任务名排序返回所有状态
func (s *State) Snapshot() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Status, 0, len(s.jobs))
	for _, st := range s.jobs {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *State) entry(name string) *Status {
	st, ok := s.jobs[name]
	if !ok {
		st = &Status{Name: name}
		s.jobs[name] = st
	}
	return st
}

// RedisStateStore 以 Redis Hash 保存任务状态（field=任务名，value=JSON）
type RedisStateStore struct {
	client *redis.Client
	key    string
}

func NewRedisStateStore(client *redis.Client, key string) *RedisStateStore {
	if key == "" {
		key = "owl-crm:jobs"
	}
	return &RedisStateStore{client: client, key: key}
}

func (r *RedisStateStore) Save(ctx context.Context, st Status) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal job status: %w", err)
	}
	if err := r.client.HSet(ctx, r.key, st.Name, string(b)).Err(); err != nil {
		return fmt.Errorf("failed to save job status: %w", err)
	}
	return nil
}

func (r *RedisStateStore) LoadAll(ctx context.Context) ([]Status, error) {
	vals, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load job status: %w", err)
	}
	out := make([]Status, 0, len(vals))
	for name, raw := range vals {
		var st Status
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			return nil, fmt.Errorf("failed to decode job status %s: %w", name, err)
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
