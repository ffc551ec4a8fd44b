package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	logpkg "owl-crm/common/logger"
	"owl-crm/internal/app"
	"owl-crm/internal/config"
	"owl-crm/internal/jobs"

	"go.uber.org/zap"
)

// 单次运行一个任务，供 cron 等外部调度器使用。任务失败只记录，退出码始终为 0
func main() {
	job := flag.String("job", "", "job to run: heartbeat | low_stock | reminders | report")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *job == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -job <%s|%s|%s|%s>\n", os.Args[0],
			jobs.JobHeartbeat, jobs.JobLowStock, jobs.JobReminders, jobs.JobReport)
		os.Exit(2)
	}

	logger, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "owl-crm-jobs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger, app.WithoutMemoryFallback())
	if err != nil {
		logger.Error("Failed to initialize owl-crm-jobs", zap.String("job", *job), zap.Error(err))
		return
	}
	defer a.Close()

	st, err := a.JobsRunner().RunOnce(ctx, *job)
	if err != nil {
		logger.Error("Job not run", zap.String("job", *job), zap.Error(err))
		return
	}
	logger.Info("Job finished",
		zap.String("job", st.Name),
		zap.String("outcome", st.LastOutcome),
		zap.String("error", st.LastError),
	)
}
