package replicate

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// isIDColumn reports whether a column holds a single unique identifier.
func isIDColumn(column string) bool {
	return column == "id" || strings.HasSuffix(column, "_id")
}

// isIDListColumn reports whether a column holds a list of identifiers.
func isIDListColumn(column string) bool {
	return strings.HasSuffix(column, "_ids")
}

// coerceValue maps a decoded JSON value to a store-native parameter based
// on the value's shape and the target column name:
//
//   - null becomes a typed null matching the inferred column kind
//   - bool and numbers pass through natively (integers preferred when exact)
//   - strings on identifier columns parse to UUIDs when syntactically valid
//   - string arrays on identifier-list columns parse element-wise, but only
//     when every element parses; otherwise they stay a plain string list
//   - mixed arrays and all objects stay structured (jsonb documents)
//
// Columns on the jsonb allow-list always keep their structured value.
func coerceValue(column string, value any) any {
	if jsonbColumns[column] {
		return value
	}

	switch v := value.(type) {
	case nil:
		if isIDColumn(column) {
			return pgtype.UUID{}
		}
		if isIDListColumn(column) {
			return []uuid.UUID(nil)
		}
		return pgtype.Text{}

	case bool:
		return v

	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f

	case float64:
		// encoding/json default number decoding
		if i := int64(v); float64(i) == v {
			return i
		}
		return v

	case string:
		if isIDColumn(column) {
			if id, err := uuid.Parse(v); err == nil {
				return id
			}
		}
		return v

	case []any:
		if len(v) == 0 {
			return []string{}
		}
		strs, uniform := stringElements(v)
		if !uniform {
			return v // mixed content, jsonb document
		}
		if isIDListColumn(column) {
			ids := make([]uuid.UUID, 0, len(strs))
			for _, s := range strs {
				id, err := uuid.Parse(s)
				if err != nil {
					return strs
				}
				ids = append(ids, id)
			}
			return ids
		}
		return strs

	default:
		// nested objects and anything else ride through as jsonb
		return v
	}
}

// coerceRow applies coerceValue to every field of a normalized payload.
func coerceRow(payload map[string]any) map[string]any {
	row := make(map[string]any, len(payload))
	for column, value := range payload {
		row[column] = coerceValue(column, value)
	}
	return row
}

// stringElements extracts a []string from an array value, reporting
// whether every element was a string.
func stringElements(arr []any) ([]string, bool) {
	strs := make([]string, 0, len(arr))
	for _, el := range arr {
		s, ok := el.(string)
		if !ok {
			return nil, false
		}
		strs = append(strs, s)
	}
	return strs, true
}
