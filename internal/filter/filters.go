package filter

import (
	"strings"
	"time"

	"owl-crm/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
)

// CustomerFilter 客户过滤条件，nil 字段不参与过滤
type CustomerFilter struct {
	NameIcontains  *string
	EmailIcontains *string
	CreatedAtGte   *time.Time
	CreatedAtLte   *time.Time
	PhonePattern   *string
}

// ProductFilter 商品过滤条件
type ProductFilter struct {
	NameIcontains *string
	PriceGte      *decimal.Decimal
	PriceLte      *decimal.Decimal
	StockGte      *int
	StockLte      *int
}

// OrderFilter 订单过滤条件。CustomerName、ProductName、ProductID 作用于关联行
type OrderFilter struct {
	TotalAmountGte *decimal.Decimal
	TotalAmountLte *decimal.Decimal
	OrderDateGte   *time.Time
	OrderDateLte   *time.Time
	CustomerName   *string
	ProductName    *string
	ProductID      *int64
}

// CustomerPredicates 编译客户条件，nil 过滤器得到空集合
func CustomerPredicates(f *CustomerFilter) Set[domain.Customer] {
	var set Set[domain.Customer]
	if f == nil {
		return set
	}
	if present(f.NameIcontains) {
		v := *f.NameIcontains
		set.add("nameIcontains", sq.ILike{"customers.name": containsPattern(v)},
			func(c domain.Customer) bool { return containsFold(c.Name, v) })
	}
	if present(f.EmailIcontains) {
		v := *f.EmailIcontains
		set.add("emailIcontains", sq.ILike{"customers.email": containsPattern(v)},
			func(c domain.Customer) bool { return containsFold(c.Email, v) })
	}
	if f.CreatedAtGte != nil {
		v := *f.CreatedAtGte
		set.add("createdAtGte", sq.GtOrEq{"customers.created_at": v},
			func(c domain.Customer) bool { return !c.CreatedAt.Before(v) })
	}
	if f.CreatedAtLte != nil {
		v := *f.CreatedAtLte
		set.add("createdAtLte", sq.LtOrEq{"customers.created_at": v},
			func(c domain.Customer) bool { return !c.CreatedAt.After(v) })
	}
	if present(f.PhonePattern) {
		v := *f.PhonePattern
		set.add("phonePattern", sq.Like{"customers.phone": prefixPattern(v)},
			func(c domain.Customer) bool { return c.Phone != nil && strings.HasPrefix(*c.Phone, v) })
	}
	return set
}

// ProductPredicates 编译商品条件
func ProductPredicates(f *ProductFilter) Set[domain.Product] {
	var set Set[domain.Product]
	if f == nil {
		return set
	}
	if present(f.NameIcontains) {
		v := *f.NameIcontains
		set.add("nameIcontains", sq.ILike{"products.name": containsPattern(v)},
			func(p domain.Product) bool { return containsFold(p.Name, v) })
	}
	if f.PriceGte != nil {
		v := *f.PriceGte
		set.add("priceGte", sq.GtOrEq{"products.price": v},
			func(p domain.Product) bool { return p.Price.GreaterThanOrEqual(v) })
	}
	if f.PriceLte != nil {
		v := *f.PriceLte
		set.add("priceLte", sq.LtOrEq{"products.price": v},
			func(p domain.Product) bool { return p.Price.LessThanOrEqual(v) })
	}
	if f.StockGte != nil {
		v := *f.StockGte
		set.add("stockGte", sq.GtOrEq{"products.stock": v},
			func(p domain.Product) bool { return p.Stock >= v })
	}
	if f.StockLte != nil {
		v := *f.StockLte
		set.add("stockLte", sq.LtOrEq{"products.stock": v},
			func(p domain.Product) bool { return p.Stock <= v })
	}
	return set
}

// OrderPredicates 编译订单条件。关联条件使用 EXISTS，多个商品命中时订单仍只出现一次
func OrderPredicates(f *OrderFilter) Set[domain.Order] {
	var set Set[domain.Order]
	if f == nil {
		return set
	}
	if f.TotalAmountGte != nil {
		v := *f.TotalAmountGte
		set.add("totalAmountGte", sq.GtOrEq{"orders.total_amount": v},
			func(o domain.Order) bool { return o.TotalAmount.GreaterThanOrEqual(v) })
	}
	if f.TotalAmountLte != nil {
		v := *f.TotalAmountLte
		set.add("totalAmountLte", sq.LtOrEq{"orders.total_amount": v},
			func(o domain.Order) bool { return o.TotalAmount.LessThanOrEqual(v) })
	}
	if f.OrderDateGte != nil {
		v := *f.OrderDateGte
		set.add("orderDateGte", sq.GtOrEq{"orders.order_date": v},
			func(o domain.Order) bool { return !o.OrderDate.Before(v) })
	}
	if f.OrderDateLte != nil {
		v := *f.OrderDateLte
		set.add("orderDateLte", sq.LtOrEq{"orders.order_date": v},
			func(o domain.Order) bool { return !o.OrderDate.After(v) })
	}
	if present(f.CustomerName) {
		v := *f.CustomerName
		set.add("customerName",
			sq.Expr("EXISTS (SELECT 1 FROM customers c WHERE c.id = orders.customer_id AND c.name ILIKE ?)", containsPattern(v)),
			func(o domain.Order) bool { return containsFold(o.Customer.Name, v) })
	}
	if present(f.ProductName) {
		v := *f.ProductName
		set.add("productName",
			sq.Expr("EXISTS (SELECT 1 FROM order_products op JOIN products p ON p.id = op.product_id WHERE op.order_id = orders.id AND p.name ILIKE ?)", containsPattern(v)),
			func(o domain.Order) bool {
				for _, p := range o.Products {
					if containsFold(p.Name, v) {
						return true
					}
				}
				return false
			})
	}
	if f.ProductID != nil {
		v := *f.ProductID
		set.add("productId",
			sq.Expr("EXISTS (SELECT 1 FROM order_products op WHERE op.order_id = orders.id AND op.product_id = ?)", v),
			func(o domain.Order) bool {
				for _, p := range o.Products {
					if p.ID == v {
						return true
					}
				}
				return false
			})
	}
	return set
}
