package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"
	"owl-crm/internal/service"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const apiPrefix = "/crm/api/v1"

// envelope 服务端统一响应包
type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// APIError 服务端返回的失败响应
type APIError struct {
	Status  int
	Message string
	Kind    domain.Kind
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crm api error (status %d): %s", e.Status, e.Message)
}

// Client CRM HTTP API 客户端（有上限的重试）
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// New 创建客户端。retries 为额外重试次数，< 0 视为 0
func New(baseURL string, retries int, logger *zap.Logger) *Client {
	if retries < 0 {
		retries = 0
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetRetryCount(retries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// 网络错误或 5xx 重试；4xx 是确定性的失败
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: httpClient, logger: logger}
}

// Hello 调用 hello 查询
func (c *Client) Hello(ctx context.Context) (string, error) {
	var msg string
	if err := c.do(ctx, resty.MethodGet, "/hello", nil, nil, &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// UpdateLowStockProducts 触发低库存补货
func (c *Client) UpdateLowStockProducts(ctx context.Context) (*service.ReplenishResult, error) {
	var res service.ReplenishResult
	if err := c.do(ctx, resty.MethodPost, "/products/low-stock/replenish", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListOrders 按过滤条件查询订单
func (c *Client) ListOrders(ctx context.Context, f filter.OrderFilter) ([]domain.Order, error) {
	q := url.Values{}
	f.Encode(q)
	var orders []domain.Order
	if err := c.do(ctx, resty.MethodGet, "/orders", q, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ReportSummary 查询汇总报表
func (c *Client) ReportSummary(ctx context.Context) (domain.Summary, error) {
	var sum domain.Summary
	err := c.do(ctx, resty.MethodGet, "/reports/summary", nil, nil, &sum)
	return sum, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	req := c.httpClient.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, apiPrefix+path)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return &APIError{Status: resp.StatusCode(), Message: fmt.Sprintf("unexpected response: %s", truncate(resp.Body(), 200))}
	}
	if resp.IsError() || env.Code != 2000 {
		apiErr := &APIError{Status: resp.StatusCode(), Message: env.Message}
		var kind struct {
			Kind domain.Kind `json:"kind"`
		}
		if len(env.Result) > 0 && json.Unmarshal(env.Result, &kind) == nil {
			apiErr.Kind = kind.Kind
		}
		c.logger.Debug("CRM API returned error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.String("message", env.Message),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", path, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
