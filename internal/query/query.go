// Package query turns list-endpoint query strings into an immutable Spec.
//
// Supported syntax:
//
//	field=value            equality
//	field[gt]=value        also gte, lt, lte
//	field[in]=a,b,c        membership
//	select=a,b             response projection
//	sort=a,-b              ordering, "-" for descending
//	page=2&limit=10        pagination
//
// Field names are the JSON names of the resource and are whitelisted per resource by a Schema.
package query

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/restaurantbooking/backend/internal/apperrors"
)

// Pagination defaults
const (
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 100
)

// reserved keys never become filters
var reserved = []string{"select", "sort", "page", "limit"}

var operatorKey = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\[(gt|gte|lt|lte|in)\]$`)

// Op is a comparison operator
type Op string

// Operators
const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

var opSQL = map[Op]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// Schema whitelists the queryable fields of a resource
type Schema struct {
	// Fields maps JSON field names to column names
	Fields map[string]string
	// DefaultSort is used when no sort parameter is given
	DefaultSort []SortField
}

// Filter is one comparison on a column
type Filter struct {
	Field  string
	Column string
	Op     Op
	Values []string
}

// SortField orders by one column
type SortField struct {
	Field string
	Desc  bool
}

// Spec is a validated list query. It is never mutated after Parse.
type Spec struct {
	filters []Filter
	fields  []string
	sort    []SortField
	columns map[string]string
	page    int
	limit   int
}

// Parse validates values against schema and builds a Spec
func Parse(values url.Values, schema Schema) (Spec, error) {
	spec := Spec{
		columns: schema.Fields,
		page:    DefaultPage,
		limit:   DefaultLimit,
	}

	var err error
	if raw := values.Get("page"); raw != "" {
		if spec.page, err = positiveInt("page", raw); err != nil {
			return Spec{}, err
		}
	}
	if raw := values.Get("limit"); raw != "" {
		if spec.limit, err = positiveInt("limit", raw); err != nil {
			return Spec{}, err
		}
		spec.limit = min(spec.limit, MaxLimit)
	}
	// page*limit must stay representable for the offset and the next-page check
	if spec.page > math.MaxInt/spec.limit {
		return Spec{}, apperrors.Validation("page is out of range")
	}

	if raw := values.Get("select"); raw != "" {
		for _, field := range splitList(raw) {
			if _, ok := schema.Fields[field]; !ok {
				return Spec{}, apperrors.Validation("unknown select field: %s", field)
			}
			spec.fields = append(spec.fields, field)
		}
	}

	if raw := values.Get("sort"); raw != "" {
		for _, item := range splitList(raw) {
			sf := SortField{Field: item}
			if name, ok := strings.CutPrefix(item, "-"); ok {
				sf = SortField{Field: name, Desc: true}
			}
			if _, ok := schema.Fields[sf.Field]; !ok {
				return Spec{}, apperrors.Validation("unknown sort field: %s", sf.Field)
			}
			spec.sort = append(spec.sort, sf)
		}
	} else {
		spec.sort = slices.Clone(schema.DefaultSort)
	}

	// Iterate keys in a stable order so the rendered SQL is deterministic
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if slices.Contains(reserved, key) {
			continue
		}

		field, op := key, OpEq
		if m := operatorKey.FindStringSubmatch(key); m != nil {
			field, op = m[1], Op(m[2])
		}

		column, ok := schema.Fields[field]
		if !ok {
			return Spec{}, apperrors.Validation("unknown filter field: %s", field)
		}

		var vals []string
		if op == OpIn {
			for _, v := range values[key] {
				vals = append(vals, splitList(v)...)
			}
			if len(vals) == 0 {
				return Spec{}, apperrors.Validation("empty list for %s[in]", field)
			}
		} else {
			vals = []string{values.Get(key)}
		}

		spec.filters = append(spec.filters, Filter{Field: field, Column: column, Op: op, Values: vals})
	}

	return spec, nil
}

// Page returns the 1-based page number
func (s Spec) Page() int { return s.page }

// Limit returns the page size
func (s Spec) Limit() int { return s.limit }

// Offset returns the number of rows to skip
func (s Spec) Offset() int { return (s.page - 1) * s.limit }

// Select returns the projected JSON fields, or nil for all fields
func (s Spec) Select() []string { return slices.Clone(s.fields) }

// Filters returns a deep copy of the filters
func (s Spec) Filters() []Filter {
	out := make([]Filter, len(s.filters))
	for i, f := range s.filters {
		f.Values = slices.Clone(f.Values)
		out[i] = f
	}
	return out
}

// Sort returns a copy of the sort fields
func (s Spec) Sort() []SortField { return slices.Clone(s.sort) }

// Where renders the filters as a SQL WHERE clause with placeholders.
// It returns an empty clause when there are no filters.
func (s Spec) Where() (string, []any) {
	if len(s.filters) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(s.filters))
	var args []any
	for _, f := range s.filters {
		if f.Op == OpIn {
			placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(f.Values)), ", ")
			parts = append(parts, fmt.Sprintf("%s IN (%s)", f.Column, placeholders))
			for _, v := range f.Values {
				args = append(args, v)
			}
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", f.Column, opSQL[f.Op]))
		args = append(args, f.Values[0])
	}

	return "WHERE " + strings.Join(parts, " AND "), args
}

// OrderBy renders the sort fields as a SQL ORDER BY clause, always ending with id for a stable order
func (s Spec) OrderBy() string {
	parts := make([]string, 0, len(s.sort)+1)
	hasID := false
	for _, sf := range s.sort {
		column := s.columns[sf.Field]
		if column == "id" {
			hasID = true
		}
		if sf.Desc {
			parts = append(parts, column+" DESC")
		} else {
			parts = append(parts, column+" ASC")
		}
	}
	if !hasID {
		parts = append(parts, "id ASC")
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

// PageRef points at a neighbouring page
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination holds links to the neighbouring pages that exist
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Pagination computes neighbouring pages for a result set of total rows
func (s Spec) Pagination(total int) Pagination {
	var p Pagination
	if s.page*s.limit < total {
		p.Next = &PageRef{Page: s.page + 1, Limit: s.limit}
	}
	if s.Offset() > 0 {
		p.Prev = &PageRef{Page: s.page - 1, Limit: s.limit}
	}
	return p
}

func positiveInt(name, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, apperrors.Validation("%s must be a positive integer", name)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
