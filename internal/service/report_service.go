package service

import (
	"context"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"
	"owl-crm/internal/repository"
)

// ReportService 报表服务
type ReportService struct {
	d Deps
}

// Summary 客户数、订单数与订单总额之和
func (s *ReportService) Summary(ctx context.Context) (domain.Summary, error) {
	var sum domain.Summary
	err := s.d.Store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		if sum.Customers, err = tx.Customers().Count(ctx); err != nil {
			return err
		}
		if sum.Orders, err = tx.Orders().Count(ctx); err != nil {
			return err
		}
		sum.Revenue, err = tx.Orders().TotalRevenue(ctx)
		return err
	})
	return sum, err
}

// Snapshot 导出用的全量数据
type Snapshot struct {
	Summary   domain.Summary
	Customers []domain.Customer
	Products  []domain.Product
	Orders    []domain.Order
}

// Export 读取全部客户、商品、订单，用于生成工作簿
func (s *ReportService) Export(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	err := s.d.Store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		if snap.Customers, err = tx.Customers().List(ctx, filter.Plan[domain.Customer]{Schema: filter.CustomerSchema}); err != nil {
			return err
		}
		if snap.Products, err = tx.Products().List(ctx, filter.Plan[domain.Product]{Schema: filter.ProductSchema}); err != nil {
			return err
		}
		if snap.Orders, err = tx.Orders().List(ctx, filter.Plan[domain.Order]{Schema: filter.OrderSchema}); err != nil {
			return err
		}
		snap.Summary.Customers = int64(len(snap.Customers))
		snap.Summary.Orders = int64(len(snap.Orders))
		snap.Summary.Revenue = domain.SumOrderTotals(snap.Orders)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
