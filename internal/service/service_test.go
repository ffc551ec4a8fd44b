package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"owl-crm/internal/domain"
	"owl-crm/internal/events"
	"owl-crm/internal/filter"
	"owl-crm/internal/metrics"
	"owl-crm/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, e events.Event) error {
	return m.Called(e.Type).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestServices(t *testing.T, pub events.Publisher) (*Services, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return New(Deps{
		Store:     store,
		Publisher: pub,
		Metrics:   metrics.New(nil),
		Logger:    zap.NewNop(),
		Now:       func() time.Time { return fixedNow },
	}), store
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreateCustomer_NormalizesEmail(t *testing.T) {
	svc, _ := newTestServices(t, nil)
	ctx := context.Background()

	res, err := svc.Customers.CreateCustomer(ctx, domain.CustomerInput{Name: "  Alice ", Email: " Alice@Example.com ", Phone: strPtr("+1234567890")})
	require.NoError(t, err)
	assert.Equal(t, "Customer created", res.Message)
	assert.Equal(t, "alice@example.com", res.Customer.Email)
	assert.Equal(t, "Alice", res.Customer.Name)
	assert.Equal(t, fixedNow, res.Customer.CreatedAt)

	list, err := svc.Customers.ListCustomers(ctx, filter.Query[filter.CustomerFilter]{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice@example.com", list[0].Email)
}

func TestCreateCustomer_DuplicateEmailDiffersOnlyByCase(t *testing.T) {
	svc, _ := newTestServices(t, nil)
	ctx := context.Background()

	_, err := svc.Customers.CreateCustomer(ctx, domain.CustomerInput{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	// 判重先于手机号校验
	_, err = svc.Customers.CreateCustomer(ctx, domain.CustomerInput{Name: "Bob2", Email: "BOB@example.com", Phone: strPtr("bad")})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	assert.Equal(t, "Email already exists", err.Error())
}

func TestCreateCustomer_InvalidPhone(t *testing.T) {
	svc, store := newTestServices(t, nil)

	_, err := svc.Customers.CreateCustomer(context.Background(), domain.CustomerInput{Name: "C", Email: "c@example.com", Phone: strPtr("12-34")})
	assert.ErrorIs(t, err, domain.ErrInvalidPhoneFormat)

	n, _ := store.Customers().Count(context.Background())
	assert.Zero(t, n)
}

func TestBulkCreateCustomers_CollectsIndexedErrors(t *testing.T) {
	svc, _ := newTestServices(t, nil)

	res := svc.Customers.BulkCreateCustomers(context.Background(), []domain.CustomerInput{
		{Name: "A", Email: "a@example.com"},
		{Name: "B", Email: "b@example.com", Phone: strPtr("nope")},
		{Name: "C", Email: "c@example.com", Phone: strPtr("123-456-7890")},
		{Name: "A again", Email: "A@example.com"},
		{Name: "D", Email: "d@example.com"},
	})

	require.Len(t, res.Customers, 3)
	assert.Equal(t, []string{"a@example.com", "c@example.com", "d@example.com"},
		[]string{res.Customers[0].Email, res.Customers[1].Email, res.Customers[2].Email})
	assert.Equal(t, []string{
		"Record 1: Invalid phone format",
		"Record 3: Email already exists",
	}, res.Errors)
}

func TestCreateProduct_Validation(t *testing.T) {
	svc, _ := newTestServices(t, nil)
	ctx := context.Background()

	p, err := svc.Products.CreateProduct(ctx, domain.ProductInput{Name: "Laptop", Price: "999.99", Stock: intPtr(10)})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "999.99", p.Price.String())

	_, err = svc.Products.CreateProduct(ctx, domain.ProductInput{Name: "X", Price: "0"})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Products.CreateProduct(ctx, domain.ProductInput{Name: "X", Price: "1", Stock: intPtr(-3)})
	assert.ErrorIs(t, err, domain.ErrNegativeStock)
}

func seedProducts(t *testing.T, svc *Services, specs ...string) []int64 {
	t.Helper()
	var ids []int64
	for i := 0; i+2 < len(specs); i += 3 {
		var stock int
		_, err := fmt.Sscanf(specs[i+2], "%d", &stock)
		require.NoError(t, err)
		p, err := svc.Products.CreateProduct(context.Background(), domain.ProductInput{Name: specs[i], Price: specs[i+1], Stock: &stock})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	return ids
}

func TestCreateOrder_SnapshotTotal(t *testing.T) {
	svc, _ := newTestServices(t, nil)
	ctx := context.Background()

	c, err := svc.Customers.CreateCustomer(ctx, domain.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	ids := seedProducts(t, svc, "Cable", "10.00", "5", "Adapter", "5.50", "5")

	o, err := svc.Orders.CreateOrder(ctx, domain.OrderInput{CustomerID: c.Customer.ID, ProductIDs: ids})
	require.NoError(t, err)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("15.50")))
	assert.Equal(t, fixedNow, o.OrderDate)
	assert.Len(t, o.Products, 2)
}

func TestCreateOrder_Failures(t *testing.T) {
	svc, store := newTestServices(t, nil)
	ctx := context.Background()

	c, err := svc.Customers.CreateCustomer(ctx, domain.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	ids := seedProducts(t, svc, "Cable", "10.00", "5")

	_, err = svc.Orders.CreateOrder(ctx, domain.OrderInput{CustomerID: 999, ProductIDs: nil})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound, "customer is checked before the product list")

	_, err = svc.Orders.CreateOrder(ctx, domain.OrderInput{CustomerID: c.Customer.ID})
	assert.ErrorIs(t, err, domain.ErrEmptyProductList)

	_, err = svc.Orders.CreateOrder(ctx, domain.OrderInput{CustomerID: c.Customer.ID, ProductIDs: []int64{ids[0], 404}})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	n, err := store.Orders().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateLowStockProducts(t *testing.T) {
	svc, _ := newTestServices(t, nil)
	ctx := context.Background()

	seedProducts(t, svc, "A", "1", "3", "B", "1", "15", "C", "1", "7")

	res, err := svc.Inventory.UpdateLowStockProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Low stock products updated successfully", res.Message)
	require.Len(t, res.Products, 2)
	assert.Equal(t, 13, res.Products[0].Stock)
	assert.Equal(t, 17, res.Products[1].Stock)

	all, err := svc.Products.ListProducts(ctx, filter.Query[filter.ProductFilter]{})
	require.NoError(t, err)
	assert.Equal(t, []int{13, 15, 17}, []int{all[0].Stock, all[1].Stock, all[2].Stock})

	res, err = svc.Inventory.UpdateLowStockProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Products)
	assert.Equal(t, LowStockUpdatedMessage, res.Message)
}

func TestReportSummary(t *testing.T) {
	svc, _ := newTestServices(t, nil)
	ctx := context.Background()

	c, err := svc.Customers.CreateCustomer(ctx, domain.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = svc.Customers.CreateCustomer(ctx, domain.CustomerInput{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	ids := seedProducts(t, svc, "Laptop", "999.99", "10", "Mouse", "29.99", "100")
	_, err = svc.Orders.CreateOrder(ctx, domain.OrderInput{CustomerID: c.Customer.ID, ProductIDs: ids})
	require.NoError(t, err)
	_, err = svc.Orders.CreateOrder(ctx, domain.OrderInput{CustomerID: c.Customer.ID, ProductIDs: ids[1:]})
	require.NoError(t, err)

	sum, err := svc.Reports.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Customers)
	assert.Equal(t, int64(2), sum.Orders)
	assert.Equal(t, "1059.97", sum.Revenue.String())

	snap, err := svc.Reports.Export(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Summary.Revenue.Equal(sum.Revenue))
	assert.Len(t, snap.Orders, 2)
}

func TestEventsArePublishedBestEffort(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", events.CustomerCreated).Return(errors.New("broker down")).Once()
	svc, _ := newTestServices(t, pub)

	res, err := svc.Customers.CreateCustomer(context.Background(), domain.CustomerInput{Name: "A", Email: "a@example.com"})
	require.NoError(t, err, "publish failures never fail the mutation")
	assert.NotZero(t, res.Customer.ID)
	pub.AssertExpectations(t)
}

func TestFailedMutationPublishesNothing(t *testing.T) {
	pub := new(mockPublisher)
	svc, _ := newTestServices(t, pub)

	_, err := svc.Orders.CreateOrder(context.Background(), domain.OrderInput{CustomerID: 1})
	assert.Error(t, err)
	pub.AssertNotCalled(t, "Publish", mock.Anything)
}
