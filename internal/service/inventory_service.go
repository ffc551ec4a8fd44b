package service

import (
	"context"

	"owl-crm/internal/domain"
	"owl-crm/internal/events"
	"owl-crm/internal/repository"

	"go.uber.org/zap"
)

// LowStockUpdatedMessage updateLowStockProducts 的固定提示，无商品需要补货时也返回
const LowStockUpdatedMessage = "Low stock products updated successfully"

// InventoryService 库存服务
type InventoryService struct {
	d Deps
}

// ReplenishResult updateLowStockProducts 返回，Products 为补货后的状态
type ReplenishResult struct {
	Products []domain.Product `json:"products"`
	Message  string           `json:"message"`
}

// UpdateLowStockProducts 将所有 stock < 10 的商品库存加 10，整体原子执行
func (s *InventoryService) UpdateLowStockProducts(ctx context.Context) (*ReplenishResult, error) {
	updated := []domain.Product{}
	err := s.d.Store.WithTx(ctx, func(tx repository.Store) error {
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
	s.d.record("updateLowStockProducts", err)
	if err != nil {
		return nil, err
	}

	s.d.Metrics.AddReplenished(len(updated))
	if len(updated) > 0 {
		s.d.Logger.Info("Low stock products replenished", zap.Int("count", len(updated)))
		s.d.emit(ctx, events.ProductsReplenished, updated)
	}
	return &ReplenishResult{Products: updated, Message: LowStockUpdatedMessage}, nil
}
