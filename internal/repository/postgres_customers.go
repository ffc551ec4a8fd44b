package repository

import (
	"context"
	"fmt"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"

	sq "github.com/Masterminds/squirrel"
)

type postgresCustomers struct {
	run dbRunner
}

func (r *postgresCustomers) Create(ctx context.Context, c *domain.Customer) error {
	query, args, err := psql.Insert("customers").
		Columns("name", "email", "phone", "created_at").
		Values(c.Name, c.Email, c.Phone, c.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if err := r.run.QueryRowContext(ctx, query, args...).Scan(&c.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

func (r *postgresCustomers) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	query, args, err := psql.Select(customerColumns...).
		From("customers").
		Where(sq.Eq{"customers.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var c domain.Customer
	if err := scanCustomer(r.run.QueryRowContext(ctx, query, args...), &c); err != nil {
		return nil, notFound(err, "customer")
	}
	return &c, nil
}

func (r *postgresCustomers) ExistsEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.run.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (r *postgresCustomers) List(ctx context.Context, plan filter.Plan[domain.Customer]) ([]domain.Customer, error) {
	query, args, err := plan.Select(psql.Select(customerColumns...).From("customers")).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := r.run.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	out := []domain.Customer{}
	for rows.Next() {
		var c domain.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresCustomers) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.run.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return n, nil
}
