package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresStore(db)
}

var (
	customerCols = []string{"id", "name", "email", "phone", "created_at"}
	productCols  = []string{"id", "name", "price", "stock", "created_at"}
)

func TestPostgresCustomers_Create(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO customers \(name,email,phone,created_at\) VALUES \(\$1,\$2,\$3,\$4\) RETURNING id`).
		WithArgs("Alice", "alice@example.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	c := &domain.Customer{Name: "Alice", Email: "alice@example.com", CreatedAt: time.Now()}
	require.NoError(t, store.Customers().Create(context.Background(), c))
	assert.Equal(t, int64(42), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCustomers_CreateDuplicateEmail(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO customers`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "customers_email_key"})

	err := store.Customers().Create(context.Background(), &domain.Customer{Name: "A", Email: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCustomers_GetNotFound(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT customers.id, .* FROM customers WHERE customers.id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(customerCols))

	_, err := store.Customers().Get(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCustomers_ListWithFilter(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM customers WHERE \(customers.name ILIKE \$1\) ORDER BY customers.email DESC, customers.id ASC`).
		WithArgs("%ali%").
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow(int64(1), "Alice", "alice@example.com", "+1234567890", now).
			AddRow(int64(3), "Alina", "alina@example.com", nil, now))

	name := "ali"
	plan, err := filter.CompileCustomers(filter.Query[filter.CustomerFilter]{
		Filter:  &filter.CustomerFilter{NameIcontains: &name},
		OrderBy: "-email",
	})
	require.NoError(t, err)

	got, err := store.Customers().List(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Phone)
	assert.Equal(t, "+1234567890", *got[0].Phone)
	assert.Nil(t, got[1].Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplenishInTransaction(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM products WHERE products.stock < \$1 ORDER BY products.id ASC FOR UPDATE`).
		WithArgs(int64(domain.LowStockThreshold)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(int64(1), "Cable", "10.00", 3, now).
			AddRow(int64(3), "Hub", "25.00", 7, now))
	mock.ExpectQuery(`UPDATE products SET stock = stock \+ \$1 WHERE id = \$2 RETURNING`).
		WithArgs(int64(domain.RestockQuantity), int64(1)).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(int64(1), "Cable", "10.00", 13, now))
	mock.ExpectQuery(`UPDATE products SET stock = stock \+ \$1 WHERE id = \$2 RETURNING`).
		WithArgs(int64(domain.RestockQuantity), int64(3)).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(int64(3), "Hub", "25.00", 17, now))
	mock.ExpectCommit()

	var updated []domain.Product
	err := store.WithTx(context.Background(), func(tx Store) error {
		low, err := tx.Products().ListLowStock(context.Background(), domain.LowStockThreshold)
		if err != nil {
			return err
		}
		for _, p := range low {
			u, err := tx.Products().AddStock(context.Background(), p.ID, domain.RestockQuantity)
			if err != nil {
				return err
			}
			updated = append(updated, *u)
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.Equal(t, 13, updated[0].Stock)
	assert.Equal(t, 17, updated[1].Stock)
	assert.True(t, updated[0].Price.Equal(decimal.RequireFromString("10")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_WithTxRollsBackOnError(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := store.WithTx(context.Background(), func(Store) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrders_CreateLinksDistinctProducts(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO orders \(customer_id,total_amount,order_date\) VALUES \(\$1,\$2,\$3\) RETURNING id`).
		WithArgs(int64(7), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectExec(`INSERT INTO order_products \(order_id,product_id\) VALUES \(\$1,\$2\),\(\$3,\$4\) ON CONFLICT DO NOTHING`).
		WithArgs(int64(100), int64(1), int64(100), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	o := &domain.Order{
		Customer:    domain.Customer{ID: 7},
		Products:    []domain.Product{{ID: 1}, {ID: 2}, {ID: 1}},
		TotalAmount: decimal.RequireFromString("25.50"),
		OrderDate:   time.Now(),
	}
	require.NoError(t, store.Orders().Create(context.Background(), o))
	assert.Equal(t, int64(100), o.ID)
	assert.Len(t, o.Products, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrders_ListLoadsProducts(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT orders.id, orders.total_amount, orders.order_date, customers.id, .* FROM orders JOIN customers ON customers.id = orders.customer_id WHERE \(EXISTS \(SELECT 1 FROM order_products op JOIN products p`).
		WithArgs("%key%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_amount", "order_date", "cid", "name", "email", "phone", "created_at"}).
			AddRow(int64(5), "79.98", now, int64(1), "Alice", "alice@example.com", nil, now))
	mock.ExpectQuery(`SELECT order_products.order_id, .* FROM order_products JOIN products ON products.id = order_products.product_id WHERE order_products.order_id IN \(\$1\)`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(append([]string{"order_id"}, productCols...)).
			AddRow(int64(5), int64(2), "Keyboard", "49.99", 50, now).
			AddRow(int64(5), int64(4), "Keycaps", "29.99", 5, now))

	name := "key"
	plan, err := filter.CompileOrders(filter.Query[filter.OrderFilter]{Filter: &filter.OrderFilter{ProductName: &name}})
	require.NoError(t, err)

	orders, err := store.Orders().List(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Alice", orders[0].Customer.Name)
	assert.Len(t, orders[0].Products, 2)
	assert.Equal(t, "79.98", orders[0].TotalAmount.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrders_Aggregates(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_amount\), 0\) FROM orders`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("1079.97"))

	n, err := store.Orders().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	total, err := store.Orders().TotalRevenue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1079.97", total.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
