package jobs

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"owl-crm/internal/metrics"

	"go.uber.org/zap"
)

var (
	// ErrUnknownJob 未注册的任务名
	ErrUnknownJob = errors.New("unknown job")
	// ErrAlreadyRunning 同名任务正在运行
	ErrAlreadyRunning = errors.New("job already running")
)

// Schedule 任务与其运行间隔；Interval<=0 表示不定时运行
type Schedule struct {
	Job      Job
	Interval time.Duration
}

// Runner 任务调度器
type Runner struct {
	schedules []Schedule
	byName    map[string]Job
	state     *State
	store     StateStore
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

// RunnerOption 可选项
type RunnerOption func(*Runner)

// WithStateStore 每次运行后持久化状态
func WithStateStore(store StateStore) RunnerOption {
	return func(r *Runner) { r.store = store }
}

// WithMetrics 记录任务指标
func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithClock 替换时间源
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner 创建调度器
func NewRunner(schedules []Schedule, logger *zap.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		schedules: schedules,
		byName:    make(map[string]Job, len(schedules)),
		state:     NewState(),
		logger:    logger,
		now:       time.Now,
	}
	for _, s := range schedules {
		r.byName[s.Job.Name()] = s.Job
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State 返回调度器状态
func (r *Runner) State() *State { return r.state }

// RunOnce 运行一次指定任务，并把开始时的状态传给任务。任务失败（包括 panic）只记录，不向上返回
func (r *Runner) RunOnce(ctx context.Context, name string) (Status, error) {
	job, ok := r.byName[name]
	if !ok {
		return Status{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	start := r.now()
	run, ok := r.state.Begin(name, start)
	if !ok {
		return run, fmt.Errorf("%w: %s", ErrAlreadyRunning, name)
	}

	runErr := r.guard(ctx, job, run)
	finish := r.now()
	st := r.state.Finish(name, finish, runErr)

	outcome := OutcomeSuccess
	if runErr != nil {
		outcome = OutcomeFailure
		r.logger.Error("Job failed", zap.String("job", name), zap.Error(runErr))
	} else {
		r.logger.Debug("Job completed", zap.String("job", name), zap.Duration("duration", finish.Sub(start)))
	}
	r.metrics.ObserveJob(name, outcome, finish.Sub(start))

	if r.store != nil {
		if err := r.store.Save(ctx, st); err != nil {
			r.logger.Warn("Failed to persist job state", zap.String("job", name), zap.Error(err))
		}
	}
	return st, nil
}

func (r *Runner) guard(ctx context.Context, job Job, run Status) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
			r.logger.Error("Job panicked",
				zap.String("job", job.Name()),
				zap.Any("panic", p),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	return job.Run(ctx, run)
}

// Start 为每个任务启动独立的定时循环，ctx 取消后退出
func (r *Runner) Start(ctx context.Context) {
	for _, s := range r.schedules {
		if s.Interval <= 0 {
			continue
		}
		r.wg.Add(1)
		go r.loop(ctx, s)
	}
}

// Wait 等待所有定时循环退出
func (r *Runner) Wait() { r.wg.Wait() }

func (r *Runner) loop(ctx context.Context, s Schedule) {
	defer r.wg.Done()
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	r.logger.Info("Starting job schedule",
		zap.String("job", s.Job.Name()),
		zap.Duration("interval", s.Interval),
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx, s.Job.Name()); err != nil {
				r.logger.Debug("Skipped job tick", zap.String("job", s.Job.Name()), zap.Error(err))
			}
		}
	}
}

// Statuses 返回所有任务状态；配置了持久化时优先读取共享状态
func (r *Runner) Statuses(ctx context.Context) ([]Status, error) {
	local := r.state.Snapshot()
	if r.store == nil {
		return r.withIdle(local), nil
	}
	shared, err := r.store.LoadAll(ctx)
	if err != nil {
		r.logger.Warn("Failed to load shared job state", zap.Error(err))
		return r.withIdle(local), nil
	}
	merged := make(map[string]Status, len(shared)+len(local))
	for _, st := range shared {
		merged[st.Name] = st
	}
	for _, st := range local {
		if st.Running {
			merged[st.Name] = st
		}
	}
	out := make([]Status, 0, len(merged))
	for _, st := range merged {
		out = append(out, st)
	}
	return r.withIdle(out), nil
}

// withIdle 补齐从未运行的任务，并按注册顺序返回
func (r *Runner) withIdle(in []Status) []Status {
	seen := make(map[string]Status, len(in))
	for _, st := range in {
		seen[st.Name] = st
	}
	out := make([]Status, 0, len(r.schedules))
	for _, s := range r.schedules {
		name := s.Job.Name()
		if st, ok := seen[name]; ok {
			out = append(out, st)
		} else {
			out = append(out, Status{Name: name})
		}
	}
	return out
}
