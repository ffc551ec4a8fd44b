package httpapi

import (
	"context"
	"errors"
	"net/http"

	"owl-crm/internal/jobs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JobRunner 任务状态查询与手动触发
type JobRunner interface {
	Statuses(ctx context.Context) ([]jobs.Status, error)
	RunOnce(ctx context.Context, name string) (jobs.Status, error)
}

// JobsHandler 任务接口
type JobsHandler struct {
	runner JobRunner
	logger *zap.Logger
}

func NewJobsHandler(runner JobRunner, logger *zap.Logger) *JobsHandler {
	return &JobsHandler{runner: runner, logger: logger}
}

// List GET /jobs
func (h *JobsHandler) List(c *gin.Context) {
	statuses, err := h.runner.Statuses(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(statuses))
}

// Run POST /jobs/:name/run 同步运行一次；任务本身的失败体现在状态中
func (h *JobsHandler) Run(c *gin.Context) {
	name := c.Param("name")
	st, err := h.runner.RunOnce(c.Request.Context(), name)
	switch {
	case errors.Is(err, jobs.ErrUnknownJob):
		c.JSON(http.StatusNotFound, Fail("unknown job: "+name))
	case errors.Is(err, jobs.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, Result[jobs.Status]{Code: ResultError, Type: "error", Message: "job already running", Result: st})
	case err != nil:
		writeError(c, h.logger, err)
	default:
		c.JSON(http.StatusOK, Ok(st))
	}
}
