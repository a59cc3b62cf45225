package mongodb

import (
	"regexp"

	"github.com/quad400/kaydee-boutique/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
)

// productField maps product field names to document keys.
var productField = map[string]string{
	domain.FieldTitle:       "title",
	domain.FieldDescription: "description",
	domain.FieldPrice:       "price",
	domain.FieldCategory:    "category_id",
	domain.FieldAttributes:  "attributes",
	domain.FieldCreatedAt:   "created_at",
	domain.FieldUpdatedAt:   "updated_at",
}

var filterOperator = map[domain.FilterOp]string{
	domain.OpEq:  "$eq",
	domain.OpGte: "$gte",
	domain.OpGt:  "$gt",
	domain.OpLte: "$lte",
	domain.OpLt:  "$lt",
}

// buildProductFilter renders the typed query as a filter document. Each
// predicate is its own $and clause so two bounds on one field never collide.
func buildProductFilter(q domain.ProductQuery) bson.D {
	conds := bson.A{}
	for _, f := range q.Filters {
		key, ok := productField[f.Field]
		op, okOp := filterOperator[f.Op]
		if !ok || !okOp {
			continue
		}
		conds = append(conds, bson.D{{Key: key, Value: bson.D{{Key: op, Value: f.Value}}}})
	}
	if q.Search != "" {
		conds = append(conds, bson.D{{Key: "title", Value: bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(q.Search)},
			{Key: "$options", Value: "i"},
		}}})
	}
	if len(conds) == 0 {
		return bson.D{}
	}
	return bson.D{{Key: "$and", Value: conds}}
}

// buildProductSort always ends on _id so equal keys page deterministically.
func buildProductSort(q domain.ProductQuery) bson.D {
	out := make(bson.D, 0, len(q.Sort)+1)
	for _, k := range q.Sort {
		key, ok := productField[k.Field]
		if !ok {
			continue
		}
		dir := 1
		if k.Desc {
			dir = -1
		}
		out = append(out, bson.E{Key: key, Value: dir})
	}
	return append(out, bson.E{Key: "_id", Value: 1})
}

// buildProductUpdate turns a validated update map into $set and $unset
// stages. An empty category detaches the product.
func buildProductUpdate(updates map[string]interface{}) (set, unset bson.D) {
	for _, key := range sortedKeys(updates) {
		field, ok := productField[key]
		if !ok || key == domain.FieldCreatedAt || key == domain.FieldUpdatedAt {
			continue
		}
		if key == domain.FieldCategory {
			if id, _ := updates[key].(string); id == "" {
				unset = append(unset, bson.E{Key: field, Value: ""})
				continue
			}
		}
		set = append(set, bson.E{Key: field, Value: updates[key]})
	}
	return set, unset
}
