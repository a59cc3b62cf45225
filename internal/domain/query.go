package domain

import (
	"strings"
	"time"
)

type FilterOp string

const (
	OpEq  FilterOp = "eq"
	OpGte FilterOp = "gte"
	OpGt  FilterOp = "gt"
	OpLte FilterOp = "lte"
	OpLt  FilterOp = "lt"
)

// ProductFilter is one typed predicate. Value is a string for title and
// category, a float64 for price and a time.Time for timestamps.
type ProductFilter struct {
	Field string
	Op    FilterOp
	Value interface{}
}

type SortKey struct {
	Field string
	Desc  bool
}

// ProductQuery is the storage-neutral form of a catalog listing request.
// Backends translate it; none of them ever sees raw request parameters.
type ProductQuery struct {
	Filters []ProductFilter
	Search  string
	Sort    []SortKey
	Skip    int
	Limit   int
}

// Matches evaluates the filters and search term against a product in memory.
func (q ProductQuery) Matches(p Product) bool {
	if q.Search != "" && !containsFold(p.Title, q.Search) {
		return false
	}
	for _, f := range q.Filters {
		if !f.matches(p) {
			return false
		}
	}
	return true
}

func (f ProductFilter) matches(p Product) bool {
	switch f.Field {
	case FieldTitle:
		v, _ := f.Value.(string)
		return p.Title == v
	case FieldCategory:
		v, _ := f.Value.(string)
		return p.CategoryID == v
	case FieldPrice:
		v, _ := f.Value.(float64)
		return compare(cmpFloat(p.Price, v), f.Op)
	case FieldCreatedAt:
		v, _ := f.Value.(time.Time)
		return compare(p.CreatedAt.Compare(v), f.Op)
	case FieldUpdatedAt:
		v, _ := f.Value.(time.Time)
		return compare(p.UpdatedAt.Compare(v), f.Op)
	}
	return false
}

// Less reports whether a sorts before b under the query's sort keys, falling
// back to ascending id.
func (q ProductQuery) Less(a, b Product) bool {
	for _, k := range q.Sort {
		var c int
		switch k.Field {
		case FieldTitle:
			c = cmpString(a.Title, b.Title)
		case FieldPrice:
			c = cmpFloat(a.Price, b.Price)
		case FieldCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		case FieldUpdatedAt:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if c == 0 {
			continue
		}
		if k.Desc {
			return c > 0
		}
		return c < 0
	}
	return a.ID < b.ID
}

func compare(c int, op FilterOp) bool {
	switch op {
	case OpEq:
		return c == 0
	case OpGte:
		return c >= 0
	case OpGt:
		return c > 0
	case OpLte:
		return c <= 0
	case OpLt:
		return c < 0
	}
	return false
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
