package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"

	"github.com/shopspring/decimal"
)

// MemoryStore Store 的内存实现（DB_ENABLED=false 及单元测试使用）。
// 写操作在状态副本上进行，成功后整体替换，失败则丢弃副本。
// 写事务之间通过 txMu 串行。
type MemoryStore struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state *memState
}

type orderRow struct {
	id         int64
	customerID int64
	productIDs []int64
	total      decimal.Decimal
	date       time.Time
}

type memState struct {
	customers map[int64]domain.Customer
	emails    map[string]int64
	products  map[int64]domain.Product
	orders    map[int64]orderRow
	lastID    map[string]int64
}

// NewMemoryStore 创建空的内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		customers: map[int64]domain.Customer{},
		emails:    map[string]int64{},
		products:  map[int64]domain.Product{},
		orders:    map[int64]orderRow{},
		lastID:    map[string]int64{},
	}}
}

var _ Store = (*MemoryStore)(nil)

func (s *memState) clone() *memState {
	c := &memState{
		customers: make(map[int64]domain.Customer, len(s.customers)),
		emails:    make(map[string]int64, len(s.emails)),
		products:  make(map[int64]domain.Product, len(s.products)),
		orders:    make(map[int64]orderRow, len(s.orders)),
		lastID:    make(map[string]int64, len(s.lastID)),
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.emails {
		c.emails[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.lastID {
		c.lastID[k] = v
	}
	return c
}

func (s *memState) nextID(table string) int64 {
	s.lastID[table]++
	return s.lastID[table]
}

func (s *MemoryStore) Customers() CustomerRepository {
	return memCustomers{memView{store: s}}
}

func (s *MemoryStore) Products() ProductRepository {
	return memProducts{memView{store: s}}
}

func (s *MemoryStore) Orders() OrderRepository {
	return memOrders{memView{store: s}}
}

// WithTx 在状态副本上执行 fn，成功后提交副本
func (s *MemoryStore) WithTx(ctx context.Context, fn func(Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.state.clone()
	s.mu.RUnlock()

	if err := fn(&memTx{view: memView{store: s, tx: work}}); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = work
	s.mu.Unlock()
	return nil
}

// memTx 事务内视图，直接读写副本
type memTx struct {
	view memView
}

func (t *memTx) Customers() CustomerRepository { return memCustomers{t.view} }
func (t *memTx) Products() ProductRepository   { return memProducts{t.view} }
func (t *memTx) Orders() OrderRepository       { return memOrders{t.view} }

func (t *memTx) WithTx(_ context.Context, fn func(Store) error) error {
	return fn(t)
}

// memView 事务外的读在 mu 读锁下进行，写则包装成单语句事务
type memView struct {
	store *MemoryStore
	tx    *memState
}

func (v memView) read(fn func(st *memState) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.state)
}

func (v memView) write(ctx context.Context, fn func(st *memState) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	return v.store.WithTx(ctx, func(s Store) error {
		return fn(s.(*memTx).view.tx)
	})
}

type memCustomers struct{ memView }

func (r memCustomers) Create(ctx context.Context, c *domain.Customer) error {
	return r.write(ctx, func(st *memState) error {
		if _, ok := st.emails[c.Email]; ok {
			return domain.ErrDuplicateEmail
		}
		c.ID = st.nextID("customers")
		st.customers[c.ID] = *c
		st.emails[c.Email] = c.ID
		return nil
	})
}

func (r memCustomers) Get(_ context.Context, id int64) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.read(func(st *memState) error {
		c, ok := st.customers[id]
		if !ok {
			return fmt.Errorf("customer: %w", ErrNotFound)
		}
		out = &c
		return nil
	})
	return out, err
}

func (r memCustomers) ExistsEmail(_ context.Context, email string) (bool, error) {
	var exists bool
	_ = r.read(func(st *memState) error {
		_, exists = st.emails[email]
		return nil
	})
	return exists, nil
}

func (r memCustomers) List(_ context.Context, plan filter.Plan[domain.Customer]) ([]domain.Customer, error) {
	var out []domain.Customer
	_ = r.read(func(st *memState) error {
		out = plan.Apply(sortedValues(st.customers))
		return nil
	})
	return out, nil
}

func (r memCustomers) Count(_ context.Context) (int64, error) {
	var n int64
	_ = r.read(func(st *memState) error {
		n = int64(len(st.customers))
		return nil
	})
	return n, nil
}

type memProducts struct{ memView }

func (r memProducts) Create(ctx context.Context, p *domain.Product) error {
	return r.write(ctx, func(st *memState) error {
		p.ID = st.nextID("products")
		st.products[p.ID] = *p
		return nil
	})
}

func (r memProducts) Get(_ context.Context, id int64) (*domain.Product, error) {
	var out *domain.Product
	err := r.read(func(st *memState) error {
		p, ok := st.products[id]
		if !ok {
			return fmt.Errorf("product: %w", ErrNotFound)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r memProducts) List(_ context.Context, plan filter.Plan[domain.Product]) ([]domain.Product, error) {
	var out []domain.Product
	_ = r.read(func(st *memState) error {
		out = plan.Apply(sortedValues(st.products))
		return nil
	})
	return out, nil
}

func (r memProducts) ListLowStock(_ context.Context, threshold int) ([]domain.Product, error) {
	out := []domain.Product{}
	_ = r.read(func(st *memState) error {
		for _, p := range sortedValues(st.products) {
			if p.Stock < threshold {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, nil
}

func (r memProducts) AddStock(ctx context.Context, id int64, qty int) (*domain.Product, error) {
	var out *domain.Product
	err := r.write(ctx, func(st *memState) error {
		p, ok := st.products[id]
		if !ok {
			return fmt.Errorf("product: %w", ErrNotFound)
		}
		p.Stock += qty
		if p.Stock < 0 {
			return domain.ErrNegativeStock
		}
		st.products[id] = p
		out = &p
		return nil
	})
	return out, err
}

type memOrders struct{ memView }

func (r memOrders) Create(ctx context.Context, o *domain.Order) error {
	return r.write(ctx, func(st *memState) error {
		if _, ok := st.customers[o.Customer.ID]; !ok {
			return fmt.Errorf("customer: %w", ErrNotFound)
		}
		ids := o.ProductIDs()
		for _, pid := range ids {
			if _, ok := st.products[pid]; !ok {
				return fmt.Errorf("product: %w", ErrNotFound)
			}
		}
		o.ID = st.nextID("orders")
		st.orders[o.ID] = orderRow{
			id:         o.ID,
			customerID: o.Customer.ID,
			productIDs: ids,
			total:      o.TotalAmount,
			date:       o.OrderDate,
		}
		o.Products = distinctProducts(o.Products)
		return nil
	})
}

func (r memOrders) Get(_ context.Context, id int64) (*domain.Order, error) {
	var out *domain.Order
	err := r.read(func(st *memState) error {
		row, ok := st.orders[id]
		if !ok {
			return fmt.Errorf("order: %w", ErrNotFound)
		}
		o := st.hydrate(row)
		out = &o
		return nil
	})
	return out, err
}

func (r memOrders) List(_ context.Context, plan filter.Plan[domain.Order]) ([]domain.Order, error) {
	var out []domain.Order
	_ = r.read(func(st *memState) error {
		rows := sortedValues(st.orders)
		orders := make([]domain.Order, 0, len(rows))
		for _, row := range rows {
			orders = append(orders, st.hydrate(row))
		}
		out = plan.Apply(orders)
		return nil
	})
	return out, nil
}

func (r memOrders) Count(_ context.Context) (int64, error) {
	var n int64
	_ = r.read(func(st *memState) error {
		n = int64(len(st.orders))
		return nil
	})
	return n, nil
}

func (r memOrders) TotalRevenue(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	_ = r.read(func(st *memState) error {
		for _, row := range st.orders {
			total = total.Add(row.total)
		}
		return nil
	})
	return total, nil
}

// hydrate 组装订单的客户与商品（商品按 id 排序，与 Postgres 一致）
func (s *memState) hydrate(row orderRow) domain.Order {
	o := domain.Order{
		ID:          row.id,
		Customer:    s.customers[row.customerID],
		TotalAmount: row.total,
		OrderDate:   row.date,
		Products:    make([]domain.Product, 0, len(row.productIDs)),
	}
	for _, pid := range row.productIDs {
		o.Products = append(o.Products, s.products[pid])
	}
	sort.Slice(o.Products, func(i, j int) bool { return o.Products[i].ID < o.Products[j].ID })
	return o
}

type identified interface {
	domain.Customer | domain.Product | orderRow
}

func idOf[T identified](v T) int64 {
	switch x := any(v).(type) {
	case domain.Customer:
		return x.ID
	case domain.Product:
		return x.ID
	case orderRow:
		return x.id
	}
	return 0
}

// sortedValues 按 id 返回，即插入顺序
func sortedValues[T identified](m map[int64]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return idOf(out[i]) < idOf(out[j]) })
	return out
}
