package filter

import (
	"cmp"
	"sort"
	"strings"
	"unicode"

	"owl-crm/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

// Field 可排序列及其内存比较函数
type Field[T any] struct {
	Column  string
	Compare func(a, b T) int
}

// Schema 实体的表名、主键与可排序字段
type Schema[T any] struct {
	Table  string
	ID     func(T) int64
	Fields map[string]Field[T]
}

// Sort 解析后的排序
type Sort[T any] struct {
	Key   string
	Field Field[T]
	Desc  bool
}

// Page 分页，Limit 为 0 表示不限制
type Page struct {
	Limit  int
	Offset int
}

// Query 单类实体的列表查询
type Query[F any] struct {
	Filter  *F
	OrderBy string
	Page    Page
}

// Plan 编译后的查询，Postgres 与内存存储共用
type Plan[T any] struct {
	Schema *Schema[T]
	Where  Set[T]
	Sort   *Sort[T]
	Page   Page
}

// ParseOrdering 解析排序字段："-" 前缀为降序，camelCase 与 snake_case 均可，空值按 id 排序
func ParseOrdering[T any](s *Schema[T], key string) (*Sort[T], error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	desc := false
	name := key
	if strings.HasPrefix(name, "-") {
		desc = true
		name = name[1:]
	}
	field, ok := s.Fields[snakeCase(name)]
	if !ok {
		return nil, domain.InvalidOrdering(key)
	}
	return &Sort[T]{Key: snakeCase(name), Field: field, Desc: desc}, nil
}

// Select 把 plan 应用到 squirrel 查询，按 id 兜底排序保证分页稳定
func (p Plan[T]) Select(b sq.SelectBuilder) sq.SelectBuilder {
	if where := p.Where.Where(); where != nil {
		b = b.Where(where)
	}
	idCol := p.Schema.Table + ".id"
	if p.Sort != nil && p.Sort.Field.Column != idCol {
		dir := " ASC"
		if p.Sort.Desc {
			dir = " DESC"
		}
		b = b.OrderBy(p.Sort.Field.Column+dir, idCol+" ASC")
	} else if p.Sort != nil && p.Sort.Desc {
		b = b.OrderBy(idCol + " DESC")
	} else {
		b = b.OrderBy(idCol + " ASC")
	}
	if p.Page.Limit > 0 {
		b = b.Limit(uint64(p.Page.Limit))
	}
	if p.Page.Offset > 0 {
		b = b.Offset(uint64(p.Page.Offset))
	}
	return b
}

// Apply 在内存中过滤、排序、分页。items 需按 id 有序，不修改入参
func (p Plan[T]) Apply(items []T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if p.Where.Match(it) {
			out = append(out, it)
		}
	}
	if p.Sort != nil {
		compare := p.Sort.Field.Compare
		desc := p.Sort.Desc
		id := p.Schema.ID
		sort.SliceStable(out, func(i, j int) bool {
			c := compare(out[i], out[j])
			if desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
			return id(out[i]) < id(out[j])
		})
	}
	if p.Page.Offset > 0 {
		if p.Page.Offset >= len(out) {
			return out[:0]
		}
		out = out[p.Page.Offset:]
	}
	if p.Page.Limit > 0 && p.Page.Limit < len(out) {
		out = out[:p.Page.Limit]
	}
	return out
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// comparePtr nil 排在最后（NULLS LAST）
func comparePtr(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}
