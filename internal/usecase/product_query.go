package usecase

import (
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/quad400/kaydee-boutique/internal/domain"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// reservedParams are never interpreted as filters.
var reservedParams = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
	"search": true,
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindID
	kindNumber
	kindTime
)

type filterRule struct {
	kind fieldKind
	ops  map[domain.FilterOp]bool
}

var (
	eqOnly   = map[domain.FilterOp]bool{domain.OpEq: true}
	rangeOps = map[domain.FilterOp]bool{
		domain.OpEq: true, domain.OpGte: true, domain.OpGt: true, domain.OpLte: true, domain.OpLt: true,
	}
)

// filterable is the allow-list of product fields a listing may filter on.
var filterable = map[string]filterRule{
	domain.FieldTitle:     {kind: kindString, ops: eqOnly},
	domain.FieldCategory:  {kind: kindID, ops: eqOnly},
	domain.FieldPrice:     {kind: kindNumber, ops: rangeOps},
	domain.FieldCreatedAt: {kind: kindTime, ops: rangeOps},
	domain.FieldUpdatedAt: {kind: kindTime, ops: rangeOps},
}

var sortable = map[string]bool{
	domain.FieldTitle:     true,
	domain.FieldPrice:     true,
	domain.FieldCreatedAt: true,
	domain.FieldUpdatedAt: true,
}

// DefaultFields is the projection used when none is requested.
var DefaultFields = []string{
	domain.FieldTitle,
	domain.FieldDescription,
	domain.FieldPrice,
	domain.FieldCategory,
	domain.FieldAttributes,
	domain.FieldCreatedAt,
	domain.FieldUpdatedAt,
}

var projectable = func() map[string]bool {
	m := make(map[string]bool, len(DefaultFields))
	for _, f := range DefaultFields {
		m[f] = true
	}
	return m
}()

// filterKey matches "price" and "price[gte]".
var filterKey = regexp.MustCompile(`^([A-Za-z]+)(?:\[([a-z]+)\])?$`)

// ListParams is a parsed catalog listing request.
type ListParams struct {
	Query domain.ProductQuery
	// Fields is the projection, never empty.
	Fields []string
	Page   int
	Limit  int
	// PageRequested is set when the caller named a page explicitly; only
	// then is a page past the end reported as not found.
	PageRequested bool
}

// ParseListParams turns raw query parameters into a typed listing request.
// Every filter key must be on the allow-list.
func ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{Page: 1, Limit: defaultPageLimit}

	filters, err := parseFilters(values)
	if err != nil {
		return params, err
	}
	params.Query.Filters = filters
	params.Query.Search = strings.TrimSpace(values.Get("search"))

	if params.Query.Sort, err = parseSort(values.Get("sort")); err != nil {
		return params, err
	}
	if params.Fields, err = parseFields(values.Get("fields")); err != nil {
		return params, err
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page <= 0 {
			return params, domain.Validationf("page must be a positive integer, got %q", raw)
		}
		params.Page = page
		params.PageRequested = true
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return params, domain.Validationf("limit must be a positive integer, got %q", raw)
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
		params.Limit = limit
	}

	if params.Page-1 > math.MaxInt/params.Limit {
		return params, domain.Validationf("page %d is out of range", params.Page)
	}
	params.Query.Skip = (params.Page - 1) * params.Limit
	params.Query.Limit = params.Limit
	return params, nil
}

func parseFilters(values url.Values) ([]domain.ProductFilter, error) {
	var filters []domain.ProductFilter
	for key, vals := range values {
		if reservedParams[key] {
			continue
		}
		m := filterKey.FindStringSubmatch(key)
		if m == nil {
			return nil, domain.Validationf("unsupported filter %q", key)
		}
		field, op := m[1], domain.FilterOp(m[2])
		if op == "" {
			op = domain.OpEq
		}
		rule, ok := filterable[field]
		if !ok {
			return nil, domain.Validationf("filtering on %q is not supported", field)
		}
		if !rule.ops[op] {
			return nil, domain.Validationf("operator %q is not supported for %q", op, field)
		}
		for _, raw := range vals {
			value, err := parseFilterValue(rule.kind, field, raw)
			if err != nil {
				return nil, err
			}
			filters = append(filters, domain.ProductFilter{Field: field, Op: op, Value: value})
		}
	}
	// map iteration order is random; keep the query deterministic
	sortFilters(filters)
	return filters, nil
}

func parseFilterValue(kind fieldKind, field, raw string) (interface{}, error) {
	switch kind {
	case kindNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, domain.Validationf("%s must be a number, got %q", field, raw)
		}
		return v, nil
	case kindTime:
		v, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, domain.Validationf("%s must be an RFC 3339 timestamp, got %q", field, raw)
		}
		return v, nil
	case kindID:
		return parseID(field, raw)
	}
	return raw, nil
}

func sortFilters(filters []domain.ProductFilter) {
	sort.SliceStable(filters, func(i, j int) bool {
		if filters[i].Field != filters[j].Field {
			return filters[i].Field < filters[j].Field
		}
		return filters[i].Op < filters[j].Op
	})
}

func parseSort(raw string) ([]domain.SortKey, error) {
	if strings.TrimSpace(raw) == "" {
		return []domain.SortKey{{Field: domain.FieldCreatedAt, Desc: true}}, nil
	}
	var keys []domain.SortKey
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := domain.SortKey{Field: part}
		if strings.HasPrefix(part, "-") {
			key = domain.SortKey{Field: part[1:], Desc: true}
		}
		if !sortable[key.Field] {
			return nil, domain.Validationf("sorting by %q is not supported", key.Field)
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return []domain.SortKey{{Field: domain.FieldCreatedAt, Desc: true}}, nil
	}
	return keys, nil
}

func parseFields(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultFields, nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if f == "" || f == domain.FieldID {
			continue
		}
		if !projectable[f] {
			return nil, domain.Validationf("field %q cannot be selected", f)
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return DefaultFields, nil
	}
	return fields, nil
}
