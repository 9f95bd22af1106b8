// Package normalize parses raw response bodies and applies the upstream
// date and key-casing conventions.
package normalize

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/ferryline/wsdot/internal/wsdate"
)

// ErrEmptyBody reports a response with no content where a payload was expected.
var ErrEmptyBody = errors.New("invalid response: empty body")

// Parse decodes raw as JSON. Malformed input yields an error that classifies
// as an invalid response.
func Parse(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyBody
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, errors.Join(errors.New("invalid response: malformed JSON"), err)
	}
	return value, nil
}

// ConvertDates walks value recursively and replaces every string matching an
// upstream date convention with a time.Time. All other scalars pass through.
func ConvertDates(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			v[key] = ConvertDates(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = ConvertDates(item)
		}
		return v
	case string:
		if t, ok := wsdate.Parse(v); ok {
			return t
		}
		return v
	default:
		return value
	}
}

// CamelKeys walks value recursively and renames object keys from the
// upstream PascalCase convention to camelCase. Values are untouched.
func CamelKeys(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[camel(key)] = CamelKeys(item)
		}
		return out
	case []any:
		for i, item := range v {
			v[i] = CamelKeys(item)
		}
		return v
	default:
		return value
	}
}

func camel(key string) string {
	if key == "" {
		return key
	}
	r, size := utf8.DecodeRuneInString(key)
	if !unicode.IsUpper(r) {
		return key
	}
	return string(unicode.ToLower(r)) + key[size:]
}
