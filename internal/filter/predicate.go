package filter

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Predicate 单个过滤条件：SQL 供 Postgres 使用，Match 供内存存储使用，两者语义一致
type Predicate[T any] struct {
	Name  string
	SQL   sq.Sqlizer
	Match func(T) bool
}

// Set 以 AND 组合的条件集合，空集合匹配全部
type Set[T any] []Predicate[T]

// Match 是否满足全部条件
func (s Set[T]) Match(v T) bool {
	for _, p := range s {
		if !p.Match(v) {
			return false
		}
	}
	return true
}

// Where 返回全部 SQL 条件的 AND，空集合返回 nil
func (s Set[T]) Where() sq.Sqlizer {
	if len(s) == 0 {
		return nil
	}
	and := make(sq.And, 0, len(s))
	for _, p := range s {
		and = append(and, p.SQL)
	}
	return and
}

// Names 生效的条件名，用于日志
func (s Set[T]) Names() []string {
	names := make([]string, 0, len(s))
	for _, p := range s {
		names = append(names, p.Name)
	}
	return names
}

func (s *Set[T]) add(name string, sql sq.Sqlizer, match func(T) bool) {
	*s = append(*s, Predicate[T]{Name: name, SQL: sql, Match: match})
}

// containsFold 内存版 ILIKE '%needle%'
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func prefixPattern(s string) string {
	return likeEscaper.Replace(s) + "%"
}

// present nil 与空字符串都视为未设置
func present(s *string) bool {
	return s != nil && *s != ""
}
