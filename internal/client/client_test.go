package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHello(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/api/v1/hello", r.URL.Path)
		_, _ = w.Write([]byte(`{"code":2000,"type":"success","message":"ok","result":"Hello, GraphQL!"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 0, zap.NewNop())
	msg, err := c.Hello(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello, GraphQL!", msg)
}

func TestRetriesAreBounded(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"code":-1,"type":"error","message":"down","result":null}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2, zap.NewNop())
	c.httpClient.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(2 * time.Millisecond)

	_, err := c.Hello(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1,"type":"error","message":"Invalid ordering: x","result":{"kind":"InvalidOrdering"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 3, zap.NewNop())
	_, err := c.ReportSummary(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, domain.KindInvalidOrdering, apiErr.Kind)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestListOrdersEncodesFilter(t *testing.T) {
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/api/v1/orders", r.URL.Path)
		assert.Equal(t, "2024-01-01T00:00:00Z", r.URL.Query().Get("orderDateLte"))
		_, _ = w.Write([]byte(`{"code":2000,"type":"success","message":"ok","result":[
			{"id":1,"customer":{"id":1,"name":"Alice","email":"alice@example.com"},"products":[],"total_amount":"15.5","order_date":"2023-12-01T00:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 0, zap.NewNop())
	orders, err := c.ListOrders(context.Background(), filter.OrderFilter{OrderDateLte: &cutoff})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "alice@example.com", orders[0].Customer.Email)
	assert.Equal(t, "15.5", orders[0].TotalAmount.String())
}

func TestUpdateLowStockProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"code":2000,"type":"success","message":"Low stock products updated successfully","result":{
			"products":[{"id":1,"name":"Cable","price":"10","stock":13}],
			"message":"Low stock products updated successfully"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 0, zap.NewNop())
	res, err := c.UpdateLowStockProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, 13, res.Products[0].Stock)
}
