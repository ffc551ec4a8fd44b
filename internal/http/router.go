package httpapi

import (
	"net/http"

	"owl-crm/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// APIPrefix 所有 CRM 接口的前缀
const APIPrefix = "/crm/api/v1"

// Router 基于 gin 的路由
type Router struct {
	engine  *gin.Engine
	api     *gin.RouterGroup
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewRouter 创建路由并挂载日志、指标与 panic 恢复中间件
func NewRouter(logger *zap.Logger, m *metrics.Metrics) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(RequestLogger(logger), RequestMetrics(m), gin.Recovery())

	r := &Router{
		engine:  engine,
		logger:  logger,
		metrics: m,
	}
	r.api = engine.Group(APIPrefix)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Fail("not found"))
	})
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(w, req)
}

// RegisterCRMRoutes 注册查询与变更接口
func (r *Router) RegisterCRMRoutes(h *CRMHandler) {
	r.api.GET("/hello", h.Hello)

	customers := r.api.Group("/customers")
	{
		customers.GET("", h.ListCustomers)
		customers.POST("", h.CreateCustomer)
		customers.POST("/bulk", h.BulkCreateCustomers)
	}

	products := r.api.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.POST("/low-stock/replenish", h.ReplenishLowStock)
	}

	orders := r.api.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
	}

	reports := r.api.Group("/reports")
	{
		reports.GET("/summary", h.ReportSummary)
		reports.GET("/export", h.ExportReport)
	}
}

// RegisterJobRoutes 注册任务状态与手动触发接口
func (r *Router) RegisterJobRoutes(h *JobsHandler) {
	r.api.GET("/jobs", h.List)
	r.api.POST("/jobs/:name/run", h.Run)
}
