package repository

import (
	"context"
	"errors"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"

	"github.com/shopspring/decimal"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// CustomerRepository 客户数据访问
type CustomerRepository interface {
	// Create 插入客户并回填 ID。email 冲突返回 domain.ErrDuplicateEmail
	Create(ctx context.Context, c *domain.Customer) error
	Get(ctx context.Context, id int64) (*domain.Customer, error)
	// ExistsEmail email 需已规范化（trim + 小写）
	ExistsEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, plan filter.Plan[domain.Customer]) ([]domain.Customer, error)
	Count(ctx context.Context) (int64, error)
}

// ProductRepository 商品数据访问
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, plan filter.Plan[domain.Product]) ([]domain.Product, error)
	// ListLowStock 查询 stock < threshold 的商品并加行锁，按 id 排序
	ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error)
	// AddStock 增加库存，返回更新后的商品
	AddStock(ctx context.Context, id int64, qty int) (*domain.Product, error)
}

// OrderRepository 订单数据访问
type OrderRepository interface {
	// Create 插入订单及其商品关联。重复的商品 ID 只关联一次
	Create(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, plan filter.Plan[domain.Order]) ([]domain.Order, error)
	Count(ctx context.Context) (int64, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
}

// Store 聚合三个仓库并提供事务边界
type Store interface {
	Customers() CustomerRepository
	Products() ProductRepository
	Orders() OrderRepository
	// WithTx 在一个事务中执行 fn。fn 返回错误则全部回滚。
	// 已处于事务中时直接复用当前事务。
	WithTx(ctx context.Context, fn func(Store) error) error
}
