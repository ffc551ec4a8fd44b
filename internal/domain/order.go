package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StaleOrderAge 超过该时长的订单需要提醒
const StaleOrderAge = 7 * 24 * time.Hour

// Order 订单：一个客户、一个或多个商品。TotalAmount 为创建时的价格合计，之后不再重算
type Order struct {
	ID          int64           `json:"id"`
	Customer    Customer        `json:"customer"`
	Products    []Product       `json:"products"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderDate   time.Time       `json:"order_date"`
}

// OrderInput 创建订单的原始输入
type OrderInput struct {
	CustomerID int64      `json:"customer_id"`
	ProductIDs []int64    `json:"product_ids"`
	OrderDate  *time.Time `json:"order_date,omitempty"`
}

// NewOrder 由已查到的客户与商品构造订单
func NewOrder(customer Customer, products []Product, orderDate *time.Time, now time.Time) (Order, error) {
	if len(products) == 0 {
		return Order{}, ErrEmptyProductList
	}
	date := now
	if orderDate != nil {
		date = *orderDate
	}
	return Order{
		Customer:    customer,
		Products:    products,
		TotalAmount: SumPrices(products),
		OrderDate:   date,
	}, nil
}

// SumPrices 精确累加商品价格
func SumPrices(products []Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	return total
}

// ProductIDs 去重后的商品 ID，保持首次出现的顺序
func (o Order) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.Products))
	ids := make([]int64, 0, len(o.Products))
	for _, p := range o.Products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		ids = append(ids, p.ID)
	}
	return ids
}

// StaleBefore 相对 now 的过期分界时间
func StaleBefore(now time.Time) time.Time {
	return now.Add(-StaleOrderAge)
}

// IsStale 下单时间早于 now 超过 7 天（恰好 7 天不算）
func (o Order) IsStale(now time.Time) bool {
	return o.OrderDate.Before(StaleBefore(now))
}
