package filter

import (
	"cmp"

	"owl-crm/internal/domain"
)

var CustomerSchema = &Schema[domain.Customer]{
	Table: "customers",
	ID:    func(c domain.Customer) int64 { return c.ID },
	Fields: map[string]Field[domain.Customer]{
		"id":         {Column: "customers.id", Compare: func(a, b domain.Customer) int { return cmp.Compare(a.ID, b.ID) }},
		"name":       {Column: "customers.name", Compare: func(a, b domain.Customer) int { return cmp.Compare(a.Name, b.Name) }},
		"email":      {Column: "customers.email", Compare: func(a, b domain.Customer) int { return cmp.Compare(a.Email, b.Email) }},
		"phone":      {Column: "customers.phone", Compare: func(a, b domain.Customer) int { return comparePtr(a.Phone, b.Phone) }},
		"created_at": {Column: "customers.created_at", Compare: func(a, b domain.Customer) int { return a.CreatedAt.Compare(b.CreatedAt) }},
	},
}

var ProductSchema = &Schema[domain.Product]{
	Table: "products",
	ID:    func(p domain.Product) int64 { return p.ID },
	Fields: map[string]Field[domain.Product]{
		"id":         {Column: "products.id", Compare: func(a, b domain.Product) int { return cmp.Compare(a.ID, b.ID) }},
		"name":       {Column: "products.name", Compare: func(a, b domain.Product) int { return cmp.Compare(a.Name, b.Name) }},
		"price":      {Column: "products.price", Compare: func(a, b domain.Product) int { return a.Price.Cmp(b.Price) }},
		"stock":      {Column: "products.stock", Compare: func(a, b domain.Product) int { return cmp.Compare(a.Stock, b.Stock) }},
		"created_at": {Column: "products.created_at", Compare: func(a, b domain.Product) int { return a.CreatedAt.Compare(b.CreatedAt) }},
	},
}

var OrderSchema = &Schema[domain.Order]{
	Table: "orders",
	ID:    func(o domain.Order) int64 { return o.ID },
	Fields: map[string]Field[domain.Order]{
		"id":           {Column: "orders.id", Compare: func(a, b domain.Order) int { return cmp.Compare(a.ID, b.ID) }},
		"order_date":   {Column: "orders.order_date", Compare: func(a, b domain.Order) int { return a.OrderDate.Compare(b.OrderDate) }},
		"total_amount": {Column: "orders.total_amount", Compare: func(a, b domain.Order) int { return a.TotalAmount.Cmp(b.TotalAmount) }},
	},
}

// CompileCustomers 编译客户查询
func CompileCustomers(q Query[CustomerFilter]) (Plan[domain.Customer], error) {
	s, err := ParseOrdering(CustomerSchema, q.OrderBy)
	if err != nil {
		return Plan[domain.Customer]{}, err
	}
	return Plan[domain.Customer]{Schema: CustomerSchema, Where: CustomerPredicates(q.Filter), Sort: s, Page: q.Page}, nil
}

// CompileProducts 编译商品查询
func CompileProducts(q Query[ProductFilter]) (Plan[domain.Product], error) {
	s, err := ParseOrdering(ProductSchema, q.OrderBy)
	if err != nil {
		return Plan[domain.Product]{}, err
	}
	return Plan[domain.Product]{Schema: ProductSchema, Where: ProductPredicates(q.Filter), Sort: s, Page: q.Page}, nil
}

// CompileOrders 编译订单查询
func CompileOrders(q Query[OrderFilter]) (Plan[domain.Order], error) {
	s, err := ParseOrdering(OrderSchema, q.OrderBy)
	if err != nil {
		return Plan[domain.Order]{}, err
	}
	return Plan[domain.Order]{Schema: OrderSchema, Where: OrderPredicates(q.Filter), Sort: s, Page: q.Page}, nil
}
