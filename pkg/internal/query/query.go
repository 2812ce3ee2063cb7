// Package query 将原始查询参数解析为列级过滤谓词与分页边界.
// 过滤语法：column=value（等值）或 column=op:value，op 取 eq/ne/lt/le/gt/ge/like/in，
// in 的值用逗号分隔。列名必须出现在调用方给定的白名单中.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Op 过滤操作符.
type Op string

const (
	OpEq   Op = "eq"
	OpNe   Op = "ne"
	OpLt   Op = "lt"
	OpLe   Op = "le"
	OpGt   Op = "gt"
	OpGe   Op = "ge"
	OpLike Op = "like"
	OpIn   Op = "in"
)

const (
	// DefaultPageSize 默认页大小.
	DefaultPageSize = 50
	// MaxPageSize 页大小上限.
	MaxPageSize = 200
)

// 保留分页参数，不参与过滤解析.
const (
	paramPage     = "page"
	paramPageSize = "page_size"
)

var sqlOps = map[Op]string{
	OpEq: "=",
	OpNe: "<>",
	OpLt: "<",
	OpLe: "<=",
	OpGt: ">",
	OpGe: ">=",
}

// Predicate 单个列级过滤条件.
type Predicate struct {
	Column string
	Op     Op
	Values []string
}

// Query 解析后的分页与过滤条件.
// Page 从 0 开始，偏移量为 PageSize * Page.
type Query struct {
	Page       int
	PageSize   int
	Predicates []Predicate
}

// Parse 从 URL 查询参数构建 Query，列名必须在 allowed 白名单内.
func Parse(values url.Values, allowed []string) (*Query, error) {
	q := &Query{Page: 0, PageSize: DefaultPageSize}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, col := range allowed {
		allowedSet[col] = struct{}{}
	}

	if raw := values.Get(paramPage); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			return nil, fmt.Errorf("invalid page: %q", raw)
		}

		q.Page = page
	}

	if raw := values.Get(paramPageSize); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid page_size: %q", raw)
		}

		if size > MaxPageSize {
			size = MaxPageSize
		}

		q.PageSize = size
	}

	for column, raws := range values {
		if column == paramPage || column == paramPageSize {
			continue
		}

		if _, ok := allowedSet[column]; !ok {
			return nil, fmt.Errorf("unknown filter column: %q", column)
		}

		for _, raw := range raws {
			pred, err := parsePredicate(column, raw)
			if err != nil {
				return nil, err
			}

			q.Predicates = append(q.Predicates, pred)
		}
	}

	return q, nil
}

// parsePredicate 解析单个 "op:value" 或裸 value（等值）表达式.
func parsePredicate(column, raw string) (Predicate, error) {
	op := OpEq
	value := raw

	if idx := strings.Index(raw, ":"); idx > 0 {
		if candidate := Op(raw[:idx]); isKnownOp(candidate) {
			op = candidate
			value = raw[idx+1:]
		}
	}

	if value == "" {
		return Predicate{}, fmt.Errorf("empty filter value for column %q", column)
	}

	if op == OpIn {
		return Predicate{Column: column, Op: op, Values: strings.Split(value, ",")}, nil
	}

	return Predicate{Column: column, Op: op, Values: []string{value}}, nil
}

func isKnownOp(op Op) bool {
	if op == OpLike || op == OpIn {
		return true
	}

	_, ok := sqlOps[op]

	return ok
}

// Offset 返回偏移量（PageSize * Page）.
func (q *Query) Offset() int {
	return q.PageSize * q.Page
}

// Apply 将过滤与分页条件施加到 GORM 查询上.
// 列名来自白名单，可安全拼接；值一律走占位符.
func (q *Query) Apply(tx *gorm.DB) *gorm.DB {
	for _, pred := range q.Predicates {
		switch pred.Op {
		case OpLike:
			tx = tx.Where(pred.Column+" LIKE ?", pred.Values[0])
		case OpIn:
			tx = tx.Where(pred.Column+" IN ?", pred.Values)
		default:
			tx = tx.Where(fmt.Sprintf("%s %s ?", pred.Column, sqlOps[pred.Op]), pred.Values[0])
		}
	}

	return tx.Limit(q.PageSize).Offset(q.Offset())
}
