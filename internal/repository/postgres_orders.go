package repository

import (
	"context"
	"database/sql"
	"fmt"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
)

type postgresOrders struct {
	run dbRunner
}

var orderColumns = append([]string{
	"orders.id", "orders.total_amount", "orders.order_date",
}, customerColumns...)

func (r *postgresOrders) Create(ctx context.Context, o *domain.Order) error {
	query, args, err := psql.Insert("orders").
		Columns("customer_id", "total_amount", "order_date").
		Values(o.Customer.ID, o.TotalAmount, o.OrderDate).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if err := r.run.QueryRowContext(ctx, query, args...).Scan(&o.ID); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	link := psql.Insert("order_products").Columns("order_id", "product_id")
	for _, pid := range o.ProductIDs() {
		link = link.Values(o.ID, pid)
	}
	query, args, err = link.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := r.run.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to link order products: %w", err)
	}

	o.Products = distinctProducts(o.Products)
	return nil
}

func (r *postgresOrders) Get(ctx context.Context, id int64) (*domain.Order, error) {
	orders, err := r.query(ctx, r.base().Where(sq.Eq{"orders.id": id}))
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("order: %w", ErrNotFound)
	}
	return &orders[0], nil
}

func (r *postgresOrders) List(ctx context.Context, plan filter.Plan[domain.Order]) ([]domain.Order, error) {
	return r.query(ctx, plan.Select(r.base()))
}

func (r *postgresOrders) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.run.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

func (r *postgresOrders) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.run.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM orders`).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return total, nil
}

func (r *postgresOrders) base() sq.SelectBuilder {
	return psql.Select(orderColumns...).
		From("orders").
		Join("customers ON customers.id = orders.customer_id")
}

// query 先查订单主表，再一次性加载所有订单的商品
func (r *postgresOrders) query(ctx context.Context, b sq.SelectBuilder) ([]domain.Order, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := r.run.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	out := []domain.Order{}
	index := map[int64]int{}
	for rows.Next() {
		var o domain.Order
		var phone sql.NullString
		c := &o.Customer
		if err := rows.Scan(&o.ID, &o.TotalAmount, &o.OrderDate, &c.ID, &c.Name, &c.Email, &phone, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if phone.Valid {
			p := phone.String
			c.Phone = &p
		}
		o.Products = []domain.Product{}
		index[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(out) == 0 {
		return out, nil
	}
	if err := r.loadProducts(ctx, out, index); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresOrders) loadProducts(ctx context.Context, orders []domain.Order, index map[int64]int) error {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	query, args, err := psql.Select(append([]string{"order_products.order_id"}, productColumns...)...).
		From("order_products").
		Join("products ON products.id = order_products.product_id").
		Where(sq.Eq{"order_products.order_id": ids}).
		OrderBy("order_products.order_id ASC", "products.id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := r.run.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load order products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var p domain.Product
		if err := rows.Scan(&orderID, &p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan order product: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Products = append(orders[i].Products, p)
		}
	}
	return rows.Err()
}

func distinctProducts(products []domain.Product) []domain.Product {
	seen := make(map[int64]struct{}, len(products))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
