// Package store defines the tabular storage contract shared by every backend.
//
// Rows are header-keyed string maps. Backends may return ragged rows (missing
// trailing cells); callers pad them with Row.Pad before comparing. A RowRef is
// whatever the backend needs to address a row again and must be treated as
// opaque: a sheet row number for the spreadsheet backend, a primary key for
// the relational one.
package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
)

const (
	TableProducts  = "products"
	TableLogs      = "logs"
	TableProjects  = "projects"
	TableAnalytics = "data_analytics"
	TableIssues    = "issue_reports"
)

type RowRef string

type Row map[string]string

type Record struct {
	Ref RowRef
	Row Row
}

// Filter matches rows whose columns equal every given value.
type Filter map[string]string

type Store interface {
	ReadTable(ctx context.Context, table string, filter Filter) ([]Record, error)
	AppendRow(ctx context.Context, table string, row Row) (RowRef, error)
	UpdateRow(ctx context.Context, table string, ref RowRef, row Row) error
	UpsertRows(ctx context.Context, table string, rows []Row, conflictKey string) error
}

// Columns lists the known column order per table. Backends use it when a
// table has no header yet.
var Columns = map[string][]string{
	TableProducts: {
		"id", "article_number", "product_name", "product_description", "stock",
		"safety_stock", "category", "location", "unit", "comment_on_stock",
	},
	TableLogs: {
		"id", "article_number", "quantity", "action", "user_name", "timestamp",
		"status", "project_ref",
	},
	TableProjects: {
		"id", "project_number", "start_date", "end_date", "created_by", "created_at",
		"status", "workers", "items", "customer_name", "taken_by_worker",
		"returned_by_worker",
	},
	TableAnalytics: {
		"article_number", "order_time", "order_status", "warehouse", "driller",
		"project_number", "pickup_time", "item_name", "projected_quantity",
		"taken_quantity", "returned_quantity", "comments",
	},
	TableIssues: {
		"id", "issue", "article_number", "product_name", "count", "timestamp",
		"user_name", "created_at",
	},
}

// Get returns the trimmed value of a column, empty when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Int parses a column leniently: blanks, "none" and garbage become def,
// floats are truncated.
func (r Row) Int(column string, def int) int {
	return ParseInt(r[column], def)
}

// Pad returns a copy of r holding every column, missing ones as "".
func (r Row) Pad(columns []string) Row {
	padded := make(Row, len(columns))
	for _, c := range columns {
		padded[c] = r[c]
	}
	return padded
}

// ColumnsOf is the known column set of table plus anything extra the row
// carries, so padding never drops a column a backend returned.
func ColumnsOf(table string, row Row) []string {
	columns := append([]string{}, Columns[table]...)
	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}
	extra := make([]string, 0)
	for c := range row {
		if _, ok := known[c]; !ok {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(columns, extra...)
}

func (r Row) Clone() Row {
	clone := make(Row, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}

// Matches reports whether the row satisfies the filter.
func (r Row) Matches(filter Filter) bool {
	for column, want := range filter {
		if r[column] != want {
			return false
		}
	}
	return true
}

func ParseInt(value string, def int) int {
	s := strings.TrimSpace(value)
	if s == "" || strings.EqualFold(s, "none") {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return int(f)
}
