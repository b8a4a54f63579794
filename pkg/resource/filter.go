package resource

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/CR-8/clubcore/pkg/apperrors"
)

// Range suffixes recognized on date and numeric filterable fields.
const (
	suffixFrom = "From"
	suffixTo   = "To"
	suffixMin  = "Min"
	suffixMax  = "Max"
)

// Criteria holds the raw, optional filter inputs of one request. Values
// come straight from the query string; coercion happens here, driven by
// the schema.
type Criteria struct {
	// Fields maps criterion name to requested value. The sentinel ""
	// or "all" means no constraint. Date fields accept "<name>From" and
	// "<name>To" range keys; numeric fields "<name>Min" and "<name>Max".
	Fields map[string]string

	// Search is the free-text search string, matched case-insensitively
	// across the schema's searchable fields.
	Search string
}

// BuildFilter translates criteria into a single MongoDB predicate with AND
// semantics across fields and OR semantics within the free-text search.
// Unknown criterion names are rejected, never silently ignored. The empty
// criteria produce the identity predicate plus the schema's default
// visibility constraint.
func BuildFilter(criteria Criteria, schema *Schema) (bson.M, error) {
	filter := bson.M{}
	visibilityOverridden := false

	for name, raw := range criteria.Fields {
		field, rangeOp, err := resolveCriterion(schema, name)
		if err != nil {
			return nil, err
		}
		if field.Name == schema.VisibilityField {
			visibilityOverridden = true
		}
		if isSentinel(raw) {
			continue
		}
		value, err := coerceValue(field, raw)
		if err != nil {
			return nil, err
		}
		applyCriterion(filter, field.Name, rangeOp, value)
	}

	if search := strings.TrimSpace(criteria.Search); search != "" {
		searchable := schema.SearchableFields()
		if len(searchable) == 0 {
			return nil, apperrors.NewInvalidArgumentError(
				fmt.Sprintf("%s does not support text search", schema.Name))
		}
		pattern := regexp.QuoteMeta(search)
		or := make([]bson.M, 0, len(searchable))
		for _, f := range searchable {
			or = append(or, bson.M{f: bson.M{"$regex": pattern, "$options": "i"}})
		}
		filter["$or"] = or
	}

	if schema.VisibilityField != "" && !visibilityOverridden {
		filter[schema.VisibilityField] = schema.VisibilityValue
	}

	return filter, nil
}

// VisibilityFilter returns the predicate selecting the live (visible) set.
// Global statistics are always computed over it.
func VisibilityFilter(schema *Schema) bson.M {
	if schema.VisibilityField == "" {
		return bson.M{}
	}
	return bson.M{schema.VisibilityField: schema.VisibilityValue}
}

// resolveCriterion maps a raw criterion name to its declared field,
// recognizing range suffixes on date and numeric fields.
func resolveCriterion(schema *Schema, name string) (Field, string, error) {
	if f, ok := schema.FieldByName(name); ok {
		if !f.Filterable {
			return Field{}, "", apperrors.NewInvalidFieldError(name)
		}
		return f, "", nil
	}
	for _, suffix := range []string{suffixFrom, suffixTo, suffixMin, suffixMax} {
		base, found := strings.CutSuffix(name, suffix)
		if !found {
			continue
		}
		f, ok := schema.FieldByName(base)
		if !ok || !f.Filterable {
			continue
		}
		switch {
		case f.Type == FieldDate && (suffix == suffixFrom || suffix == suffixTo):
			return f, suffix, nil
		case f.Type == FieldNumber && (suffix == suffixMin || suffix == suffixMax):
			return f, suffix, nil
		}
	}
	return Field{}, "", apperrors.NewInvalidFieldError(name)
}

func applyCriterion(filter bson.M, name, rangeOp string, value interface{}) {
	switch rangeOp {
	case suffixFrom, suffixMin:
		mergeRange(filter, name, "$gte", value)
	case suffixTo, suffixMax:
		mergeRange(filter, name, "$lte", value)
	default:
		filter[name] = value
	}
}

func mergeRange(filter bson.M, name, op string, value interface{}) {
	if existing, ok := filter[name].(bson.M); ok {
		existing[op] = value
		return
	}
	filter[name] = bson.M{op: value}
}

// isSentinel reports whether a requested value means "no constraint".
func isSentinel(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || strings.EqualFold(trimmed, "all")
}

// coerceValue converts a raw query-string value to the field's native type.
func coerceValue(field Field, raw string) (interface{}, error) {
	raw = strings.TrimSpace(raw)
	switch field.Type {
	case FieldText, FieldList:
		// A list criterion matches records whose array contains the
		// value, which is Mongo's native equality-on-array behavior.
		return raw, nil
	case FieldEnum:
		if len(field.Values) > 0 && !containsFold(field.Values, raw) {
			return nil, apperrors.NewValidationError(field.Name,
				fmt.Sprintf("must be one of %s", strings.Join(field.Values, ", ")))
		}
		return canonicalEnum(field.Values, raw), nil
	case FieldBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(field.Name, "must be a boolean")
		}
		return b, nil
	case FieldNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperrors.NewValidationError(field.Name, "must be a number")
		}
		return n, nil
	case FieldDate:
		t, err := parseDate(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(field.Name, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
		}
		return t, nil
	default:
		return raw, nil
	}
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}

// canonicalEnum returns the declared spelling for a case-insensitive match,
// so stored values stay uniform regardless of caller casing.
func canonicalEnum(values []string, v string) string {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return candidate
		}
	}
	return v
}
