package service

import (
	"context"
	"errors"

	"owl-crm/internal/domain"
	"owl-crm/internal/events"
	"owl-crm/internal/filter"
	"owl-crm/internal/repository"
)

// OrderService 订单服务
type OrderService struct {
	d Deps
}

// CreateOrder 在一个事务内完成客户/商品查找、总额计算与写入。
// 校验顺序：客户 -> 商品列表非空 -> 逐个商品（遇到第一个不存在即失败）
func (s *OrderService) CreateOrder(ctx context.Context, in domain.OrderInput) (*domain.Order, error) {
	var order domain.Order
	err := s.d.Store.WithTx(ctx, func(tx repository.Store) error {
		customer, err := tx.Customers().Get(ctx, in.CustomerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.ErrCustomerNotFound
			}
			return err
		}
		if len(in.ProductIDs) == 0 {
			return domain.ErrEmptyProductList
		}

		products := make([]domain.Product, 0, len(in.ProductIDs))
		for _, pid := range in.ProductIDs {
			p, err := tx.Products().Get(ctx, pid)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.ErrProductNotFound
				}
				return err
			}
			products = append(products, *p)
		}

		order, err = domain.NewOrder(*customer, products, in.OrderDate, s.d.Now())
		if err != nil {
			return err
		}
		return tx.Orders().Create(ctx, &order)
	})
	s.d.record("createOrder", err)
	if err != nil {
		return nil, err
	}

	s.d.emit(ctx, events.OrderCreated, order)
	return &order, nil
}

// ListOrders 按过滤条件查询订单（结果去重）
func (s *OrderService) ListOrders(ctx context.Context, q filter.Query[filter.OrderFilter]) ([]domain.Order, error) {
	plan, err := filter.CompileOrders(q)
	if err != nil {
		return nil, err
	}
	return s.d.Store.Orders().List(ctx, plan)
}
