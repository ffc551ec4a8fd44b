package service

import (
	"context"

	"owl-crm/internal/domain"
	"owl-crm/internal/events"
	"owl-crm/internal/filter"
	"owl-crm/internal/repository"
)

// ProductService 商品服务
type ProductService struct {
	d Deps
}

// CreateProduct 校验价格与库存后创建商品
func (s *ProductService) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	p, err := domain.NewProduct(in, s.d.Now())
	if err == nil {
		err = s.d.Store.WithTx(ctx, func(tx repository.Store) error {
			return tx.Products().Create(ctx, &p)
		})
	}
	s.d.record("createProduct", err)
	if err != nil {
		return nil, err
	}

	s.d.emit(ctx, events.ProductCreated, p)
	return &p, nil
}

// ListProducts 按过滤条件查询商品
func (s *ProductService) ListProducts(ctx context.Context, q filter.Query[filter.ProductFilter]) ([]domain.Product, error) {
	plan, err := filter.CompileProducts(q)
	if err != nil {
		return nil, err
	}
	return s.d.Store.Products().List(ctx, plan)
}
