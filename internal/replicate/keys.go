package replicate

import "strings"

// jsonbColumns are remote columns holding arbitrary structured values.
// Their payloads survive as objects/arrays all the way to the store
// instead of being coerced into scalar or array column types.
var jsonbColumns = map[string]bool{
	"core_field_config":  true,
	"custom_fields":      true,
	"metadata":           true,
	"authors":            true,
	"geometry":           true,
	"style":              true,
	"avatar_crop_region": true,
	"points":             true,
	"bounding_box":       true,
}

// toSnakeCase converts a camelCase field name to the store's snake_case
// convention, e.g. "createdAt" -> "created_at".
func toSnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, ch := range s {
		if ch >= 'A' && ch <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(ch + ('a' - 'A'))
		} else {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// normalizeKeys converts every payload field name to snake_case. Values
// are carried over unchanged; structured values for jsonb columns are
// preserved as-is for the coercion step to recognize.
func normalizeKeys(payload map[string]any) map[string]any {
	result := make(map[string]any, len(payload))
	for key, value := range payload {
		result[toSnakeCase(key)] = value
	}
	return result
}
