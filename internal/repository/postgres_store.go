package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"owl-crm/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// dbRunner *sql.DB 和 *sql.Tx 的公共子集
type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore Store 的 PostgreSQL 实现
type PostgresStore struct {
	db  *sql.DB
	run dbRunner
	tx  *sql.Tx
}

// NewPostgresStore 创建 PostgresStore
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, run: db}
}

var _ Store = (*PostgresStore)(nil)

func (s *PostgresStore) Customers() CustomerRepository {
	return &postgresCustomers{run: s.run}
}

func (s *PostgresStore) Products() ProductRepository {
	return &postgresProducts{run: s.run}
}

func (s *PostgresStore) Orders() OrderRepository {
	return &postgresOrders{run: s.run}
}

// WithTx 开启事务执行 fn，fn 成功则提交
func (s *PostgresStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&PostgresStore{db: s.db, run: tx, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation 23505 unique_violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// rowScanner *sql.Row 和 *sql.Rows 都实现 Scan
type rowScanner interface {
	Scan(dest ...any) error
}

var customerColumns = []string{
	"customers.id", "customers.name", "customers.email", "customers.phone", "customers.created_at",
}

func scanCustomer(row rowScanner, c *domain.Customer) error {
	var phone sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &phone, &c.CreatedAt); err != nil {
		return err
	}
	c.Phone = nil
	if phone.Valid {
		p := phone.String
		c.Phone = &p
	}
	return nil
}

var productColumns = []string{
	"products.id", "products.name", "products.price", "products.stock", "products.created_at",
}

func scanProduct(row rowScanner, p *domain.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt)
}
