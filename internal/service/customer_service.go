package service

import (
	"context"
	"fmt"

	"owl-crm/internal/domain"
	"owl-crm/internal/events"
	"owl-crm/internal/filter"
	"owl-crm/internal/repository"
)

// CustomerCreatedMessage createCustomer 成功时的提示
const CustomerCreatedMessage = "Customer created"

// CustomerService 客户服务
type CustomerService struct {
	d Deps
}

// CreateCustomerResult createCustomer 返回
type CreateCustomerResult struct {
	Customer domain.Customer `json:"customer"`
	Message  string          `json:"message"`
}

// BulkCreateResult bulkCreateCustomers 返回。Errors 形如 "Record <idx>: <reason>"
type BulkCreateResult struct {
	Customers []domain.Customer `json:"customers"`
	Errors    []string          `json:"errors"`
}

// CreateCustomer 校验并创建客户。email 先规范化再判重，判重先于手机号校验
func (s *CustomerService) CreateCustomer(ctx context.Context, in domain.CustomerInput) (*CreateCustomerResult, error) {
	var c domain.Customer
	err := s.d.Store.WithTx(ctx, func(tx repository.Store) error {
		created, err := s.create(ctx, tx, in)
		c = created
		return err
	})
	s.d.record("createCustomer", err)
	if err != nil {
		return nil, err
	}

	s.d.emit(ctx, events.CustomerCreated, c)
	return &CreateCustomerResult{Customer: c, Message: CustomerCreatedMessage}, nil
}

// BulkCreateCustomers 每条记录独立事务，单条失败不影响后续记录
func (s *CustomerService) BulkCreateCustomers(ctx context.Context, inputs []domain.CustomerInput) *BulkCreateResult {
	res := &BulkCreateResult{Customers: []domain.Customer{}, Errors: []string{}}
	for idx, in := range inputs {
		var c domain.Customer
		err := s.d.Store.WithTx(ctx, func(tx repository.Store) error {
			created, err := s.create(ctx, tx, in)
			c = created
			return err
		})
		s.d.record("bulkCreateCustomers", err)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Record %d: %s", idx, err.Error()))
			continue
		}
		res.Customers = append(res.Customers, c)
		s.d.emit(ctx, events.CustomerCreated, c)
	}

	s.d.Logger.Sugar().Infow("Bulk customer creation finished",
		"requested", len(inputs),
		"created", len(res.Customers),
		"failed", len(res.Errors),
	)
	return res
}

func (s *CustomerService) create(ctx context.Context, tx repository.Store, in domain.CustomerInput) (domain.Customer, error) {
	in = in.Normalize()
	if in.Email != "" {
		exists, err := tx.Customers().ExistsEmail(ctx, in.Email)
		if err != nil {
			return domain.Customer{}, err
		}
		if exists {
			return domain.Customer{}, domain.ErrDuplicateEmail
		}
	}

	c, err := domain.NewCustomer(in, s.d.Now())
	if err != nil {
		return domain.Customer{}, err
	}
	if err := tx.Customers().Create(ctx, &c); err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}

// ListCustomers 按过滤条件查询客户
func (s *CustomerService) ListCustomers(ctx context.Context, q filter.Query[filter.CustomerFilter]) ([]domain.Customer, error) {
	plan, err := filter.CompileCustomers(q)
	if err != nil {
		return nil, err
	}
	return s.d.Store.Customers().List(ctx, plan)
}
