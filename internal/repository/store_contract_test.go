package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract 两种 Store 实现共用的行为用例
func testStoreContract(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	alice := &domain.Customer{Name: "Alice", Email: "alice@example.com", CreatedAt: now}
	require.NoError(t, store.Customers().Create(ctx, alice))
	assert.NotZero(t, alice.ID)

	err := store.Customers().Create(ctx, &domain.Customer{Name: "Dup", Email: "alice@example.com", CreatedAt: now})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	exists, err := store.Customers().ExistsEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	var ids []int64
	for i, stock := range []int{3, 15, 7} {
		p := &domain.Product{
			Name:      []string{"Cable", "Mouse", "Keyboard"}[i],
			Price:     decimal.RequireFromString([]string{"10.00", "5.50", "20"}[i]),
			Stock:     stock,
			CreatedAt: now,
		}
		require.NoError(t, store.Products().Create(ctx, p))
		ids = append(ids, p.ID)
	}

	// 事务失败时不留下任何写入
	boom := errors.New("boom")
	err = store.WithTx(ctx, func(tx Store) error {
		if _, err := tx.Products().AddStock(ctx, ids[0], 100); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	p, err := store.Products().Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)

	var updated []domain.Product
	err = store.WithTx(ctx, func(tx Store) error {
		low, err := tx.Products().ListLowStock(ctx, domain.LowStockThreshold)
		if err != nil {
			return err
		}
		for _, p := range low {
			u, err := tx.Products().AddStock(ctx, p.ID, domain.RestockQuantity)
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

	all, err := store.Products().List(ctx, filter.Plan[domain.Product]{Schema: filter.ProductSchema})
	require.NoError(t, err)
	stocks := []int{}
	for _, p := range all {
		stocks = append(stocks, p.Stock)
	}
	assert.Equal(t, []int{13, 15, 17}, stocks)

	products := []domain.Product{all[0], all[1]}
	order := &domain.Order{
		Customer:    *alice,
		Products:    products,
		TotalAmount: domain.SumPrices(products),
		OrderDate:   now,
	}
	require.NoError(t, store.Orders().Create(ctx, order))

	got, err := store.Orders().Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Customer.Email)
	assert.Len(t, got.Products, 2)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("15.50")))

	name := "e"
	plan, err := filter.CompileOrders(filter.Query[filter.OrderFilter]{Filter: &filter.OrderFilter{ProductName: &name}})
	require.NoError(t, err)
	orders, err := store.Orders().List(ctx, plan)
	require.NoError(t, err)
	assert.Len(t, orders, 1, "an order matching through two products is listed once")

	revenue, err := store.Orders().TotalRevenue(ctx)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.RequireFromString("15.5")))

	n, err := store.Customers().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Customers().Get(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
}
