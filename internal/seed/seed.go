package seed

import (
	"context"
	"errors"
	"fmt"

	"owl-crm/internal/domain"
	"owl-crm/internal/service"

	"go.uber.org/zap"
)

// ErrAlreadySeeded 存储中已有数据时拒绝重复写入
var ErrAlreadySeeded = errors.New("store already contains data")

// Result 写入的演示数据
type Result struct {
	Customers []domain.Customer
	Products  []domain.Product
	Orders    []domain.Order
}

func ptr[T any](v T) *T { return &v }

var (
	customers = []domain.CustomerInput{
		{Name: "Alice", Email: "alice@example.com", Phone: ptr("+1234567890")},
		{Name: "Bob", Email: "bob@example.com", Phone: ptr("123-456-7890")},
		{Name: "Carol", Email: "carol@example.com"},
	}
	products = []domain.ProductInput{
		{Name: "Laptop", Price: "999.99", Stock: ptr(10)},
		{Name: "Mouse", Price: "29.99", Stock: ptr(100)},
		{Name: "Keyboard", Price: "49.99", Stock: ptr(50)},
	}
	// 下标分别对应 customers / products
	orders = []struct {
		customer int
		products []int
	}{
		{customer: 0, products: []int{0, 1}},
		{customer: 1, products: []int{2}},
	}
)

// Run 通过业务服务写入演示数据，只允许在空存储上执行
func Run(ctx context.Context, svc *service.Services, logger *zap.Logger) (*Result, error) {
	sum, err := svc.Reports.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect store: %w", err)
	}
	if sum.Customers > 0 || sum.Orders > 0 {
		return nil, ErrAlreadySeeded
	}

	res := &Result{}
	for _, in := range customers {
		c, err := svc.Customers.CreateCustomer(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to seed customer %s: %w", in.Email, err)
		}
		res.Customers = append(res.Customers, c.Customer)
	}
	for _, in := range products {
		p, err := svc.Products.CreateProduct(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to seed product %s: %w", in.Name, err)
		}
		res.Products = append(res.Products, *p)
	}
	for _, o := range orders {
		in := domain.OrderInput{CustomerID: res.Customers[o.customer].ID}
		for _, i := range o.products {
			in.ProductIDs = append(in.ProductIDs, res.Products[i].ID)
		}
		order, err := svc.Orders.CreateOrder(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to seed order: %w", err)
		}
		res.Orders = append(res.Orders, *order)
	}

	logger.Info("Seed complete",
		zap.Int("customers", len(res.Customers)),
		zap.Int("products", len(res.Products)),
		zap.Int("orders", len(res.Orders)),
	)
	return res, nil
}
