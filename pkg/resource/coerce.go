package resource

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/CR-8/clubcore/pkg/apperrors"
)

// coerceInput converts a create/update payload value to the field's native
// stored type. JSON bodies deliver native types; multipart forms deliver
// strings, so both are accepted.
func coerceInput(field Field, raw interface{}) (interface{}, error) {
	switch field.Type {
	case FieldText:
		s, ok := raw.(string)
		if !ok {
			return nil, apperrors.NewValidationError(field.Name, "must be a string")
		}
		return s, nil

	case FieldEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, apperrors.NewValidationError(field.Name, "must be a string")
		}
		if len(field.Values) > 0 && !containsFold(field.Values, s) {
			return nil, apperrors.NewValidationError(field.Name,
				fmt.Sprintf("must be one of %s", strings.Join(field.Values, ", ")))
		}
		return canonicalEnum(field.Values, s), nil

	case FieldBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, apperrors.NewValidationError(field.Name, "must be a boolean")
			}
			return b, nil
		default:
			return nil, apperrors.NewValidationError(field.Name, "must be a boolean")
		}

	case FieldNumber:
		n, err := toFloat(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(field.Name, "must be a number")
		}
		return n, nil

	case FieldDate:
		switch v := raw.(type) {
		case time.Time:
			return v.UTC(), nil
		case primitive.DateTime:
			return v.Time().UTC(), nil
		case string:
			t, err := parseDate(v)
			if err != nil {
				return nil, apperrors.NewValidationError(field.Name, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
			}
			return t, nil
		default:
			return nil, apperrors.NewValidationError(field.Name, "must be a date")
		}

	case FieldList:
		return toStringList(field, raw)

	default:
		return raw, nil
	}
}

func toFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("not a number: %T", raw)
	}
}

// toStringList accepts a JSON array of strings or a comma-separated form
// value.
func toStringList(field Field, raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, apperrors.NewValidationError(field.Name, "must be a list of strings")
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, nil
	default:
		return nil, apperrors.NewValidationError(field.Name, "must be a list of strings")
	}
}
