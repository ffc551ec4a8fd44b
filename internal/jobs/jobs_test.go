package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"owl-crm/internal/domain"
	"owl-crm/internal/repository"
	"owl-crm/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func startedNow() Status {
	at := fixedNow
	return Status{Name: "test", Running: true, LastStart: &at}
}

func newLocalAPI(t *testing.T) (*LocalAPI, *service.Services) {
	t.Helper()
	svc := service.New(service.Deps{
		Store:  repository.NewMemoryStore(),
		Logger: zap.NewNop(),
		Now:    fixedClock,
	})
	return NewLocalAPI(svc), svc
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
}

type stubGreeter struct{ err error }

func (p stubGreeter) Hello(context.Context) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return service.HelloMessage, nil
}

func TestFileSink_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	sink := NewFileSink(path)

	require.NoError(t, sink.Append("one"))
	require.NoError(t, sink.Append("two", "three"))
	require.NoError(t, sink.Append())

	assert.Equal(t, []string{"one", "two", "three"}, readLines(t, path))
}

func TestHeartbeat(t *testing.T) {
	tests := []struct {
		name    string
		greeter Greeter
		want    string
	}{
		{"responsive", stubGreeter{}, "01/06/2024-12:00:00 CRM is alive (GraphQL Responsive)"},
		{"hello fails", stubGreeter{err: errors.New("connection refused")}, "01/06/2024-12:00:00 CRM is alive"},
		{"no greeter", nil, "01/06/2024-12:00:00 CRM is alive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "heartbeat.txt")
			job := &Heartbeat{Greeter: tt.greeter, Sink: NewFileSink(path), Logger: zap.NewNop()}

			require.NoError(t, job.Run(context.Background(), startedNow()))
			assert.Equal(t, []string{tt.want}, readLines(t, path))
		})
	}
}

func TestLowStock_LogsUpdatedProducts(t *testing.T) {
	api, svc := newLocalAPI(t)
	ctx := context.Background()
	for _, spec := range []struct {
		name  string
		stock int
	}{{"Cable", 3}, {"Monitor", 15}, {"Mouse", 7}} {
		stock := spec.stock
		_, err := svc.Products.CreateProduct(ctx, domain.ProductInput{Name: spec.name, Price: "1.00", Stock: &stock})
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "low_stock.txt")
	job := &LowStock{API: api, Sink: NewFileSink(path)}
	require.NoError(t, job.Run(ctx, startedNow()))

	assert.Equal(t, []string{
		"2024-06-01 12:00:00 - Updated Cable to stock 13",
		"2024-06-01 12:00:00 - Updated Mouse to stock 17",
	}, readLines(t, path))
}

func TestReminders_OnlyStaleOrders(t *testing.T) {
	api, svc := newLocalAPI(t)
	ctx := context.Background()

	c, err := svc.Customers.CreateCustomer(ctx, domain.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	stock := 5
	p, err := svc.Products.CreateProduct(ctx, domain.ProductInput{Name: "Laptop", Price: "999.99", Stock: &stock})
	require.NoError(t, err)

	old := fixedNow.Add(-10 * 24 * time.Hour)
	boundary := fixedNow.Add(-7 * 24 * time.Hour)
	recent := fixedNow.Add(-24 * time.Hour)
	stale, err := svc.Orders.CreateOrder(ctx, domain.OrderInput{CustomerID: c.Customer.ID, ProductIDs: []int64{p.ID}, OrderDate: &old})
	require.NoError(t, err)
	_, err = svc.Orders.CreateOrder(ctx, domain.OrderInput{CustomerID: c.Customer.ID, ProductIDs: []int64{p.ID}, OrderDate: &recent})
	require.NoError(t, err)
	// 恰好 7 天不算过期
	_, err = svc.Orders.CreateOrder(ctx, domain.OrderInput{CustomerID: c.Customer.ID, ProductIDs: []int64{p.ID}, OrderDate: &boundary})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reminders.txt")
	job := &Reminders{API: api, Sink: NewFileSink(path), Logger: zap.NewNop()}
	require.NoError(t, job.Run(ctx, startedNow()))

	assert.Equal(t, []string{
		"2024-06-01 12:00:00 - Order ID: " + strconv.FormatInt(stale.ID, 10) + ", Email: alice@example.com",
	}, readLines(t, path))
}

func TestReport_Summary(t *testing.T) {
	api, svc := newLocalAPI(t)
	ctx := context.Background()

	c, err := svc.Customers.CreateCustomer(ctx, domain.CustomerInput{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	stock := 20
	a, err := svc.Products.CreateProduct(ctx, domain.ProductInput{Name: "A", Price: "10.00", Stock: &stock})
	require.NoError(t, err)
	b, err := svc.Products.CreateProduct(ctx, domain.ProductInput{Name: "B", Price: "5.50", Stock: &stock})
	require.NoError(t, err)
	_, err = svc.Orders.CreateOrder(ctx, domain.OrderInput{CustomerID: c.Customer.ID, ProductIDs: []int64{a.ID, b.ID}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.txt")
	job := &Report{API: api, Sink: NewFileSink(path)}
	require.NoError(t, job.Run(ctx, startedNow()))

	assert.Equal(t, []string{"2024-06-01 12:00:00 - Report: 1 customers, 1 orders, 15.5 revenue"}, readLines(t, path))
}

func TestRunner_PassesRunStatusToJob(t *testing.T) {
	api, svc := newLocalAPI(t)
	ctx := context.Background()
	c, err := svc.Customers.CreateCustomer(ctx, domain.CustomerInput{Name: "Dan", Email: "dan@example.com"})
	require.NoError(t, err)
	stock := 1
	p, err := svc.Products.CreateProduct(ctx, domain.ProductInput{Name: "Pen", Price: "2", Stock: &stock})
	require.NoError(t, err)
	_, err = svc.Orders.CreateOrder(ctx, domain.OrderInput{CustomerID: c.Customer.ID, ProductIDs: []int64{p.ID}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.txt")
	runAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	r := NewRunner([]Schedule{{Job: &Report{API: api, Sink: NewFileSink(path)}}}, zap.NewNop(),
		WithClock(func() time.Time { return runAt }))

	st, err := r.RunOnce(ctx, JobReport)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, st.LastOutcome)
	assert.Equal(t, []string{"2025-01-02 03:04:05 - Report: 1 customers, 1 orders, 2 revenue"}, readLines(t, path))
}
