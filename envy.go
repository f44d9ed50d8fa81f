package nestenv

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/spf13/cast"
)

// Envy is the reverse transform: it flattens a nested configuration
// object into a flat SCREAMING_SNAKE_CASE map ready for .env-style
// serialization. Nil leaves are omitted, arrays are comma-joined
// (object elements JSON-serialized), and scalars use their default
// string form, so Envy(Objectify(src)) round-trips src whenever no
// lossy coercion occurred.
func Envy(config ConfigObject) map[string]string {
	flat := make(map[string]string, len(config))
	flattenInto(flat, "", config)

	return flat
}

func flattenInto(flat map[string]string, prefix string, value any) {
	switch v := value.(type) {
	case nil:
		// Omitted from output.
	case ConfigObject:
		for key, field := range v {
			screaming := camelToScreamingSnake(key)
			if prefix != "" {
				screaming = prefix + "_" + screaming
			}
			flattenInto(flat, screaming, field)
		}
	case []any:
		if prefix != "" {
			flat[prefix] = joinArray(v)
		}
	default:
		if prefix != "" {
			flat[prefix] = cast.ToString(v)
		}
	}
}

// joinArray stringifies each element and comma-joins them. Object
// elements have no scalar form, so they are JSON-serialized.
func joinArray(values []any) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		if obj, ok := value.(ConfigObject); ok {
			encoded, err := json.Marshal(obj)
			if err != nil {
				continue
			}
			parts = append(parts, string(encoded))
			continue
		}
		parts = append(parts, cast.ToString(value))
	}

	return strings.Join(parts, ",")
}

// camelToScreamingSnake converts a camelCase key to
// SCREAMING_SNAKE_CASE: an underscore lands before every uppercase
// letter preceded by a lowercase letter or digit, then the whole key
// is uppercased. "portNumber" -> "PORT_NUMBER".
func camelToScreamingSnake(key string) string {
	var b strings.Builder
	runes := []rune(key)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}

	return b.String()
}
