package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"
	"owl-crm/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CRMHandler 客户、商品、订单及报表接口
type CRMHandler struct {
	svc    *service.Services
	logger *zap.Logger
}

func NewCRMHandler(svc *service.Services, logger *zap.Logger) *CRMHandler {
	return &CRMHandler{svc: svc, logger: logger}
}

// Hello GET /hello
func (h *CRMHandler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, Ok(service.HelloMessage))
}

// ListCustomers GET /customers?nameIcontains=&emailIcontains=&createdAtGte=&createdAtLte=&phonePattern=&orderBy=
func (h *CRMHandler) ListCustomers(c *gin.Context) {
	q, err := filter.CustomerQueryFromValues(c.Request.URL.Query())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	items, err := h.svc.Customers.ListCustomers(c.Request.Context(), q)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(items))
}

// CreateCustomer POST /customers
func (h *CRMHandler) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	res, err := h.svc.Customers.CreateCustomer(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, Result[*service.CreateCustomerResult]{
		Code:    ResultSuccess,
		Type:    "success",
		Message: res.Message,
		Result:  res,
	})
}

// BulkCreateCustomers POST /customers/bulk，body 为数组。
// 部分失败仍返回 200，失败原因在 errors 中
func (h *CRMHandler) BulkCreateCustomers(c *gin.Context) {
	var reqs []customerRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		badRequest(c, "invalid body: expected an array of customers")
		return
	}
	inputs := make([]domain.CustomerInput, 0, len(reqs))
	for _, r := range reqs {
		inputs = append(inputs, r.input())
	}
	c.JSON(http.StatusOK, Ok(h.svc.Customers.BulkCreateCustomers(c.Request.Context(), inputs)))
}

// ListProducts GET /products?nameIcontains=&priceGte=&priceLte=&stockGte=&stockLte=&orderBy=
func (h *CRMHandler) ListProducts(c *gin.Context) {
	q, err := filter.ProductQueryFromValues(c.Request.URL.Query())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	items, err := h.svc.Products.ListProducts(c.Request.Context(), q)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(items))
}

// CreateProduct POST /products
func (h *CRMHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	p, err := h.svc.Products.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, Ok(p))
}

// ReplenishLowStock POST /products/low-stock/replenish
func (h *CRMHandler) ReplenishLowStock(c *gin.Context) {
	res, err := h.svc.Inventory.UpdateLowStockProducts(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Result[*service.ReplenishResult]{
		Code:    ResultSuccess,
		Type:    "success",
		Message: res.Message,
		Result:  res,
	})
}

// ListOrders GET /orders?totalAmountGte=&orderDateLte=&customerName=&productName=&productId=&orderBy=
func (h *CRMHandler) ListOrders(c *gin.Context) {
	q, err := filter.OrderQueryFromValues(c.Request.URL.Query())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	items, err := h.svc.Orders.ListOrders(c.Request.Context(), q)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(items))
}

// CreateOrder POST /orders
func (h *CRMHandler) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	o, err := h.svc.Orders.CreateOrder(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, Ok(o))
}

// ReportSummary GET /reports/summary
func (h *CRMHandler) ReportSummary(c *gin.Context) {
	sum, err := h.svc.Reports.Summary(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, Ok(sum))
}

// ExportReport GET /reports/export，返回 xlsx
func (h *CRMHandler) ExportReport(c *gin.Context) {
	snap, err := h.svc.Reports.Export(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	data, err := GenerateCRMWorkbook(snap)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	filename := fmt.Sprintf("crm_report_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
