package domain

import (
	"regexp"
	"strings"
	"time"
)

var phonePattern = regexp.MustCompile(`^(\+?\d{7,15}|\d{3}-\d{3}-\d{4})$`)

// Customer 客户。email 唯一，统一存小写
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomerInput 创建客户的原始输入
type CustomerInput struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// Normalize 去除 name 首尾空白，email 去空白并转小写；空 phone 记为 nil
func (in CustomerInput) Normalize() CustomerInput {
	out := CustomerInput{
		Name:  strings.TrimSpace(in.Name),
		Email: NormalizeEmail(in.Email),
	}
	if in.Phone != nil && *in.Phone != "" {
		p := *in.Phone
		out.Phone = &p
	}
	return out
}

// NormalizeEmail 判重使用的规范形式
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidPhone 手机号格式校验：可选 "+" 加 7-15 位数字，或 ddd-ddd-dddd
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// NewCustomer 校验已规范化的输入。email 判重依赖存储，由调用方先行检查
func NewCustomer(in CustomerInput, now time.Time) (Customer, error) {
	if in.Name == "" {
		return Customer{}, ErrEmptyName
	}
	if in.Email == "" {
		return Customer{}, ErrEmptyEmail
	}
	if in.Phone != nil && !ValidPhone(*in.Phone) {
		return Customer{}, ErrInvalidPhoneFormat
	}
	return Customer{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
	}, nil
}
