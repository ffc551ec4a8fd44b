package repository

import (
	"context"
	"fmt"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"

	sq "github.com/Masterminds/squirrel"
)

type postgresProducts struct {
	run dbRunner
}

func (r *postgresProducts) Create(ctx context.Context, p *domain.Product) error {
	query, args, err := psql.Insert("products").
		Columns("name", "price", "stock", "created_at").
		Values(p.Name, p.Price, p.Stock, p.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if err := r.run.QueryRowContext(ctx, query, args...).Scan(&p.ID); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *postgresProducts) Get(ctx context.Context, id int64) (*domain.Product, error) {
	query, args, err := psql.Select(productColumns...).
		From("products").
		Where(sq.Eq{"products.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var p domain.Product
	if err := scanProduct(r.run.QueryRowContext(ctx, query, args...), &p); err != nil {
		return nil, notFound(err, "product")
	}
	return &p, nil
}

func (r *postgresProducts) List(ctx context.Context, plan filter.Plan[domain.Product]) ([]domain.Product, error) {
	return r.query(ctx, plan.Select(psql.Select(productColumns...).From("products")))
}

func (r *postgresProducts) ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	return r.query(ctx, psql.Select(productColumns...).
		From("products").
		Where(sq.Lt{"products.stock": threshold}).
		OrderBy("products.id ASC").
		Suffix("FOR UPDATE"))
}

func (r *postgresProducts) AddStock(ctx context.Context, id int64, qty int) (*domain.Product, error) {
	query, args, err := psql.Update("products").
		Set("stock", sq.Expr("stock + ?", qty)).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, name, price, stock, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}

	var p domain.Product
	if err := scanProduct(r.run.QueryRowContext(ctx, query, args...), &p); err != nil {
		return nil, notFound(err, "product")
	}
	return &p, nil
}

func (r *postgresProducts) query(ctx context.Context, b sq.SelectBuilder) ([]domain.Product, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := r.run.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
