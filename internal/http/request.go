package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"owl-crm/internal/domain"
	"owl-crm/internal/filter"
)

// flexText 接受 JSON 字符串或数字，保留原始文本（价格不经过 float）
type flexText string

func (t *flexText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = flexText(s)
	default:
		*t = flexText(b)
	}
	return nil
}

// flexID 接受 "12" 或 12。无法解析的 ID 记为 0，后续按不存在处理
type flexID int64

func (id *flexID) UnmarshalJSON(b []byte) error {
	var t flexText
	if err := t.UnmarshalJSON(b); err != nil {
		return err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(t)), 10, 64)
	if err != nil {
		n = 0
	}
	*id = flexID(n)
	return nil
}

// flexTime 接受 RFC3339 及常见的无时区格式
type flexTime time.Time

func (ft *flexTime) UnmarshalJSON(b []byte) error {
	var t flexText
	if err := t.UnmarshalJSON(b); err != nil {
		return err
	}
	parsed, ok := filter.ParseTime(string(t))
	if !ok {
		return fmt.Errorf("invalid order_date %q", string(t))
	}
	*ft = flexTime(parsed)
	return nil
}

type customerRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

func (r customerRequest) input() domain.CustomerInput {
	return domain.CustomerInput{Name: r.Name, Email: r.Email, Phone: r.Phone}
}

type productRequest struct {
	Name  string   `json:"name"`
	Price flexText `json:"price"`
	Stock *int     `json:"stock"`
}

func (r productRequest) input() domain.ProductInput {
	return domain.ProductInput{Name: r.Name, Price: string(r.Price), Stock: r.Stock}
}

type orderRequest struct {
	CustomerID flexID    `json:"customer_id"`
	ProductIDs []flexID  `json:"product_ids"`
	OrderDate  *flexTime `json:"order_date"`
}

func (r orderRequest) input() domain.OrderInput {
	in := domain.OrderInput{CustomerID: int64(r.CustomerID)}
	for _, id := range r.ProductIDs {
		in.ProductIDs = append(in.ProductIDs, int64(id))
	}
	if r.OrderDate != nil {
		t := time.Time(*r.OrderDate)
		in.OrderDate = &t
	}
	return in
}
