package resource

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/CR-8/clubcore/pkg/apperrors"
)

// Page holds optional pagination inputs. Zero values mean "absent".
// Callers must supply both Page and Limit or neither.
type Page struct {
	Page  int
	Limit int
}

// Pagination describes the slice a listing returned.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// ListResult is the outcome of a paginated listing.
type ListResult struct {
	Records []map[string]interface{}
	Total   int64

	// Pagination is nil when the caller requested the full set.
	Pagination *Pagination
}

// ResolveSort validates a caller-supplied sort key against the schema and
// falls back to the schema default. Direction defaults to the schema's
// when order is empty; otherwise "asc"/"desc".
func ResolveSort(schema *Schema, key, order string) (Sort, error) {
	sort := schema.DefaultSort
	if key != "" {
		field, ok := schema.FieldByName(key)
		if !ok || !field.Sortable {
			return Sort{}, apperrors.NewInvalidFieldError(key)
		}
		sort.Field = field.Name
	}
	switch order {
	case "":
	case "asc":
		sort.Desc = false
	case "desc":
		sort.Desc = true
	default:
		return Sort{}, apperrors.NewInvalidArgumentError("order must be \"asc\" or \"desc\"")
	}
	return sort, nil
}

// Paginate applies sort plus offset/limit over the filtered collection and
// returns the records with page metadata. With an absent Page both the
// slicing and the metadata are omitted and every matching record is
// returned; out-of-range pages yield an empty record list, not an error.
func Paginate(ctx context.Context, coll Collection, filter bson.M, sort Sort, page Page) (*ListResult, error) {
	if (page.Page == 0) != (page.Limit == 0) {
		return nil, apperrors.NewInvalidArgumentError("page and limit must be supplied together")
	}
	if page.Page < 0 || page.Limit < 0 {
		return nil, apperrors.NewInvalidArgumentError("page and limit must be positive")
	}

	total, err := coll.Count(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to count records", err)
	}

	order := sortDocument(sort)

	if page.Page == 0 {
		records, err := coll.Find(ctx, filter, order, 0, 0)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to list records", err)
		}
		return &ListResult{Records: records, Total: total}, nil
	}

	skip := int64(page.Page-1) * int64(page.Limit)
	records, err := coll.Find(ctx, filter, order, skip, int64(page.Limit))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list records", err)
	}

	return &ListResult{
		Records: records,
		Total:   total,
		Pagination: &Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			TotalPages: totalPages(total, int64(page.Limit)),
		},
	}, nil
}

// sortDocument renders a Sort as a Mongo sort spec with "_id" as a
// tiebreaker, so page boundaries are deterministic for equal keys.
func sortDocument(sort Sort) bson.D {
	direction := 1
	if sort.Desc {
		direction = -1
	}
	doc := bson.D{}
	if sort.Field != "" {
		doc = append(doc, bson.E{Key: sort.Field, Value: direction})
	}
	if sort.Field != "_id" {
		doc = append(doc, bson.E{Key: "_id", Value: 1})
	}
	return doc
}

func totalPages(total, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
