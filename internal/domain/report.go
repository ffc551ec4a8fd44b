package domain

import "github.com/shopspring/decimal"

// Summary 报表汇总：客户数、订单数、总收入
type Summary struct {
	Customers int64           `json:"customers"`
	Orders    int64           `json:"orders"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SumOrderTotals 精确累加订单金额
func SumOrderTotals(orders []Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}
	return total
}
