package filter

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"owl-crm/internal/domain"

	"github.com/shopspring/decimal"
)

// 日期过滤支持的时间格式，无时区按 UTC
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime 解析时间参数
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// values 包装 url.Values，记录第一个解析失败的参数
type values struct {
	v   url.Values
	err error
}

func (p *values) strVal(key string) *string {
	s := strings.TrimSpace(p.v.Get(key))
	if s == "" {
		return nil
	}
	return &s
}

func (p *values) timeVal(key string) *time.Time {
	s := p.strVal(key)
	if s == nil {
		return nil
	}
	t, ok := ParseTime(*s)
	if !ok {
		p.fail(key)
		return nil
	}
	return &t
}

func (p *values) decimalVal(key string) *decimal.Decimal {
	s := p.strVal(key)
	if s == nil {
		return nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		p.fail(key)
		return nil
	}
	return &d
}

func (p *values) intVal(key string) *int {
	s := p.strVal(key)
	if s == nil {
		return nil
	}
	i, err := strconv.Atoi(*s)
	if err != nil {
		p.fail(key)
		return nil
	}
	return &i
}

func (p *values) int64Val(key string) *int64 {
	s := p.strVal(key)
	if s == nil {
		return nil
	}
	i, err := strconv.ParseInt(*s, 10, 64)
	if err != nil {
		p.fail(key)
		return nil
	}
	return &i
}

func (p *values) fail(key string) {
	if p.err == nil {
		p.err = domain.InvalidFilter(key)
	}
}

// ParsePage 读取 limit/offset，负数报错
func ParsePage(v url.Values) (Page, error) {
	p := &values{v: v}
	var page Page
	if l := p.intVal("limit"); l != nil {
		if *l < 0 {
			p.fail("limit")
		} else {
			page.Limit = *l
		}
	}
	if o := p.intVal("offset"); o != nil {
		if *o < 0 {
			p.fail("offset")
		} else {
			page.Offset = *o
		}
	}
	return page, p.err
}

// CustomerQueryFromValues 由请求参数构造客户查询
func CustomerQueryFromValues(v url.Values) (Query[CustomerFilter], error) {
	p := &values{v: v}
	f := &CustomerFilter{
		NameIcontains:  p.strVal("nameIcontains"),
		EmailIcontains: p.strVal("emailIcontains"),
		CreatedAtGte:   p.timeVal("createdAtGte"),
		CreatedAtLte:   p.timeVal("createdAtLte"),
		PhonePattern:   p.strVal("phonePattern"),
	}
	if p.err != nil {
		return Query[CustomerFilter]{}, p.err
	}
	page, err := ParsePage(v)
	if err != nil {
		return Query[CustomerFilter]{}, err
	}
	return Query[CustomerFilter]{Filter: f, OrderBy: v.Get("orderBy"), Page: page}, nil
}

// ProductQueryFromValues 由请求参数构造商品查询
func ProductQueryFromValues(v url.Values) (Query[ProductFilter], error) {
	p := &values{v: v}
	f := &ProductFilter{
		NameIcontains: p.strVal("nameIcontains"),
		PriceGte:      p.decimalVal("priceGte"),
		PriceLte:      p.decimalVal("priceLte"),
		StockGte:      p.intVal("stockGte"),
		StockLte:      p.intVal("stockLte"),
	}
	if p.err != nil {
		return Query[ProductFilter]{}, p.err
	}
	page, err := ParsePage(v)
	if err != nil {
		return Query[ProductFilter]{}, err
	}
	return Query[ProductFilter]{Filter: f, OrderBy: v.Get("orderBy"), Page: page}, nil
}

// OrderQueryFromValues 由请求参数构造订单查询
func OrderQueryFromValues(v url.Values) (Query[OrderFilter], error) {
	p := &values{v: v}
	f := &OrderFilter{
		TotalAmountGte: p.decimalVal("totalAmountGte"),
		TotalAmountLte: p.decimalVal("totalAmountLte"),
		OrderDateGte:   p.timeVal("orderDateGte"),
		OrderDateLte:   p.timeVal("orderDateLte"),
		CustomerName:   p.strVal("customerName"),
		ProductName:    p.strVal("productName"),
		ProductID:      p.int64Val("productId"),
	}
	if p.err != nil {
		return Query[OrderFilter]{}, p.err
	}
	page, err := ParsePage(v)
	if err != nil {
		return Query[OrderFilter]{}, err
	}
	return Query[OrderFilter]{Filter: f, OrderBy: v.Get("orderBy"), Page: page}, nil
}

// Encode 把过滤条件写回请求参数（API 客户端使用）
func (f *OrderFilter) Encode(v url.Values) {
	if f == nil {
		return
	}
	setDecimal(v, "totalAmountGte", f.TotalAmountGte)
	setDecimal(v, "totalAmountLte", f.TotalAmountLte)
	setTime(v, "orderDateGte", f.OrderDateGte)
	setTime(v, "orderDateLte", f.OrderDateLte)
	setString(v, "customerName", f.CustomerName)
	setString(v, "productName", f.ProductName)
	if f.ProductID != nil {
		v.Set("productId", strconv.FormatInt(*f.ProductID, 10))
	}
}

func setString(v url.Values, key string, s *string) {
	if s != nil {
		v.Set(key, *s)
	}
}

func setTime(v url.Values, key string, t *time.Time) {
	if t != nil {
		v.Set(key, t.Format(time.RFC3339Nano))
	}
}

func setDecimal(v url.Values, key string, d *decimal.Decimal) {
	if d != nil {
		v.Set(key, d.String())
	}
}
