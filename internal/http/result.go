package httpapi

import (
	"net/http"

	"owl-crm/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Result 统一响应包
// - code: 2000 成功，-1 失败
// - type: 'success' | 'error'
// - message: string
// - result: any
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// ErrorBody 失败时 result 字段内容
type ErrorBody struct {
	Kind domain.Kind `json:"kind,omitempty"`
}

// statusFor 领域错误 kind -> HTTP 状态码
func statusFor(err error) int {
	switch {
	case domain.KindOf(err) == domain.KindDuplicateEmail:
		return http.StatusConflict
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError 领域错误原样返回 message；其他错误只记录日志，对外返回通用提示
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, Fail("internal error"))
		return
	}
	c.JSON(status, Result[ErrorBody]{
		Code:    ResultError,
		Type:    "error",
		Message: err.Error(),
		Result:  ErrorBody{Kind: domain.KindOf(err)},
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Fail(message))
}
