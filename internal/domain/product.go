package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// LowStockThreshold 库存严格小于该值时补货
	LowStockThreshold = 10
	// RestockQuantity 每次补货数量
	RestockQuantity = 10
)

// Product 商品。库存只通过补货改变
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProductInput 创建商品的原始输入。价格保持文本直到解析，避免经过 float
type ProductInput struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock *int   `json:"stock,omitempty"`
}

// ParsePrice 解析精确的十进制价格，必须为正
func ParsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	if !price.IsPositive() {
		return decimal.Decimal{}, ErrPriceNotPositive
	}
	return price, nil
}

// NewProduct 校验输入，stock 缺省为 0
func NewProduct(in ProductInput, now time.Time) (Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Product{}, ErrEmptyName
	}
	price, err := ParsePrice(in.Price)
	if err != nil {
		return Product{}, err
	}
	stock := 0
	if in.Stock != nil {
		stock = *in.Stock
	}
	if stock < 0 {
		return Product{}, ErrNegativeStock
	}
	return Product{
		Name:      name,
		Price:     price,
		Stock:     stock,
		CreatedAt: now,
	}, nil
}

// LowStock 是否需要补货
func (p Product) LowStock() bool {
	return p.Stock < LowStockThreshold
}
