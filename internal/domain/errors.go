package domain

import "errors"

// Kind 领域错误分类，调用方按 kind 判断而不是按 message
type Kind string

const (
	KindDuplicateEmail     Kind = "DuplicateEmail"
	KindInvalidPhoneFormat Kind = "InvalidPhoneFormat"
	KindInvalidPrice       Kind = "InvalidPrice"
	KindNegativeStock      Kind = "NegativeStock"
	KindCustomerNotFound   Kind = "CustomerNotFound"
	KindProductNotFound    Kind = "ProductNotFound"
	KindEmptyProductList   Kind = "EmptyProductList"
	KindEmptyName          Kind = "EmptyName"
	KindEmptyEmail         Kind = "EmptyEmail"
	KindInvalidOrdering    Kind = "InvalidOrdering"
	KindInvalidFilter      Kind = "InvalidFilter"
)

// Error 领域错误，Message 直接返回给调用方
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is 同 kind 即匹配，errors.Is(ErrPriceNotPositive, ErrInvalidPrice) 成立
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateEmail, Message: "Email already exists"}
	ErrInvalidPhoneFormat = &Error{Kind: KindInvalidPhoneFormat, Message: "Invalid phone format"}
	ErrInvalidPrice       = &Error{Kind: KindInvalidPrice, Message: "Invalid price"}
	ErrPriceNotPositive   = &Error{Kind: KindInvalidPrice, Message: "Price must be positive"}
	ErrNegativeStock      = &Error{Kind: KindNegativeStock, Message: "Stock cannot be negative"}
	ErrCustomerNotFound   = &Error{Kind: KindCustomerNotFound, Message: "Invalid customer ID"}
	ErrProductNotFound    = &Error{Kind: KindProductNotFound, Message: "Invalid product ID"}
	ErrEmptyProductList   = &Error{Kind: KindEmptyProductList, Message: "At least one product must be selected"}
	ErrEmptyName          = &Error{Kind: KindEmptyName, Message: "Name is required"}
	ErrEmptyEmail         = &Error{Kind: KindEmptyEmail, Message: "Email is required"}
	ErrInvalidOrdering    = &Error{Kind: KindInvalidOrdering, Message: "Invalid ordering"}
)

// InvalidFilter 无法解析的过滤参数
func InvalidFilter(field string) *Error {
	return &Error{Kind: KindInvalidFilter, Message: "Invalid filter value for " + field}
}

// InvalidOrdering 不支持的排序字段
func InvalidOrdering(key string) *Error {
	return &Error{Kind: KindInvalidOrdering, Message: "Invalid ordering: " + key}
}

// KindOf 返回错误链中第一个 *Error 的 kind，没有则为空
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsValidation 是否为输入校验错误
func IsValidation(err error) bool {
	switch KindOf(err) {
	case KindInvalidPhoneFormat, KindInvalidPrice, KindNegativeStock, KindEmptyProductList,
		KindEmptyName, KindEmptyEmail, KindInvalidOrdering, KindInvalidFilter:
		return true
	}
	return false
}

// IsNotFound 是否为引用的实体不存在
func IsNotFound(err error) bool {
	switch KindOf(err) {
	case KindCustomerNotFound, KindProductNotFound:
		return true
	}
	return false
}
