package query_test

import (
	"net/url"
	"testing"

	"github.com/yeisme/ingestvault/pkg/internal/query"
)

var allowedColumns = []string{"id", "state", "source_id", "created_on"}

// TestParseDefaults 测试无参数时的默认分页.
func TestParseDefaults(t *testing.T) {
	q, err := query.Parse(url.Values{}, allowedColumns)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if q.Page != 0 {
		t.Errorf("expected page 0, got %d", q.Page)
	}

	if q.PageSize != query.DefaultPageSize {
		t.Errorf("expected page_size %d, got %d", query.DefaultPageSize, q.PageSize)
	}

	if len(q.Predicates) != 0 {
		t.Errorf("expected no predicates, got %d", len(q.Predicates))
	}
}

// TestParsePagination 测试分页参数与偏移计算（offset = page_size * page）.
func TestParsePagination(t *testing.T) {
	values := url.Values{}
	values.Set("page", "3")
	values.Set("page_size", "20")

	q, err := query.Parse(values, allowedColumns)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if q.Offset() != 60 {
		t.Errorf("expected offset 60, got %d", q.Offset())
	}
}

// TestParsePageSizeCap 测试页大小超过上限时被截断.
func TestParsePageSizeCap(t *testing.T) {
	values := url.Values{}
	values.Set("page_size", "10000")

	q, err := query.Parse(values, allowedColumns)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if q.PageSize != query.MaxPageSize {
		t.Errorf("expected page_size capped to %d, got %d", query.MaxPageSize, q.PageSize)
	}
}

// TestParseInvalidPage 测试非法 page 参数报错.
func TestParseInvalidPage(t *testing.T) {
	for _, raw := range []string{"-1", "abc", "1.5"} {
		values := url.Values{}
		values.Set("page", raw)

		if _, err := query.Parse(values, allowedColumns); err == nil {
			t.Errorf("expected error for page=%q, got nil", raw)
		}
	}
}

// TestParsePredicates 测试各操作符的解析.
func TestParsePredicates(t *testing.T) {
	values := url.Values{}
	values.Set("state", "pending")
	values.Set("source_id", "in:1,2,3")
	values.Set("created_on", "gt:2024-01-01")

	q, err := query.Parse(values, allowedColumns)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if len(q.Predicates) != 3 {
		t.Fatalf("expected 3 predicates, got %d", len(q.Predicates))
	}

	byColumn := map[string]query.Predicate{}
	for _, p := range q.Predicates {
		byColumn[p.Column] = p
	}

	if p := byColumn["state"]; p.Op != query.OpEq || p.Values[0] != "pending" {
		t.Errorf("unexpected state predicate: %+v", p)
	}

	if p := byColumn["source_id"]; p.Op != query.OpIn || len(p.Values) != 3 {
		t.Errorf("unexpected source_id predicate: %+v", p)
	}

	if p := byColumn["created_on"]; p.Op != query.OpGt || p.Values[0] != "2024-01-01" {
		t.Errorf("unexpected created_on predicate: %+v", p)
	}
}

// TestParseUnknownColumn 测试白名单外的列名报错.
func TestParseUnknownColumn(t *testing.T) {
	values := url.Values{}
	values.Set("password", "eq:x")

	if _, err := query.Parse(values, allowedColumns); err == nil {
		t.Error("expected error for unknown column, got nil")
	}
}

// TestParseColonInValue 测试值中包含冒号但前缀不是操作符时按等值处理.
func TestParseColonInValue(t *testing.T) {
	values := url.Values{}
	values.Set("state", "weird:value")

	q, err := query.Parse(values, allowedColumns)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	p := q.Predicates[0]
	if p.Op != query.OpEq || p.Values[0] != "weird:value" {
		t.Errorf("unexpected predicate: %+v", p)
	}
}
