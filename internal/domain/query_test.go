package domain

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProductQueryMatches(t *testing.T) {
	p := Product{ID: "a", Title: "Linen Shirt", Price: 25, CategoryID: "c1"}

	cases := []struct {
		name  string
		query ProductQuery
		want  bool
	}{
		{"no filters", ProductQuery{}, true},
		{"search is case-insensitive", ProductQuery{Search: "linen"}, true},
		{"search miss", ProductQuery{Search: "wool"}, false},
		{"price gte", ProductQuery{Filters: []ProductFilter{{FieldPrice, OpGte, 25.0}}}, true},
		{"price lt", ProductQuery{Filters: []ProductFilter{{FieldPrice, OpLt, 25.0}}}, false},
		{"category eq", ProductQuery{Filters: []ProductFilter{{FieldCategory, OpEq, "c1"}}}, true},
		{"title eq miss", ProductQuery{Filters: []ProductFilter{{FieldTitle, OpEq, "Shirt"}}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.query.Matches(p))
		})
	}
}

func TestProductQueryLess_StableOrdering(t *testing.T) {
	now := time.Now()
	products := []Product{
		{ID: "c", Price: 10, CreatedAt: now},
		{ID: "a", Price: 10, CreatedAt: now.Add(time.Hour)},
		{ID: "b", Price: 5, CreatedAt: now.Add(-time.Hour)},
	}

	q := ProductQuery{Sort: []SortKey{{Field: FieldPrice, Desc: true}}}
	sort.SliceStable(products, func(i, j int) bool { return q.Less(products[i], products[j]) })

	assert.Equal(t, []string{"a", "c", "b"}, []string{products[0].ID, products[1].ID, products[2].ID})
}

func TestProductProject(t *testing.T) {
	p := Product{ID: "a", Title: "Hat", Price: 0, Version: 3}

	got := p.Project([]string{FieldTitle, FieldPrice})

	assert.Equal(t, map[string]interface{}{"id": "a", "title": "Hat", "price": 0.0}, got)
}

func TestErrorKinds(t *testing.T) {
	err := NotFoundf("product with id %s not found", "x")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "product with id x not found", err.Error())
}

func TestValidatePrice(t *testing.T) {
	for _, ok := range []float64{0, 0.01, 10.99, 19.9, 9999999999.99} {
		assert.NoError(t, ValidatePrice(ok), "%v", ok)
	}
	for _, bad := range []float64{-0.01, 10.999, 0.005, 1e10} {
		assert.True(t, errors.Is(ValidatePrice(bad), ErrValidation), "%v", bad)
	}
}
