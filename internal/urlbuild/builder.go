// Package urlbuild interpolates typed parameters into upstream URL templates.
package urlbuild

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ferryline/wsdot/errs"
	"github.com/ferryline/wsdot/internal/wsdate"
)

// The credential query parameter name depends on the service family: ferry
// endpoints take apiaccesscode, traveler endpoints take AccessCode.
const (
	ferriesPathMarker  = "/ferries/"
	ferriesCredential  = "apiaccesscode"
	travelerCredential = "AccessCode"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Builder substitutes parameters into URL templates and appends the access
// credential. It is pure over its inputs plus the configured credential.
type Builder struct {
	accessCode string
}

// New creates a builder holding the upstream access credential.
func New(accessCode string) *Builder {
	return &Builder{accessCode: strings.TrimSpace(accessCode)}
}

// Build interpolates params into template, strips unfilled optional
// placeholders, and appends the credential parameter. The endpoint id is
// used only for error context.
func (b *Builder) Build(endpointID, template string, params map[string]any) (string, error) {
	placeholders := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		placeholders[m[1]] = struct{}{}
	}

	for key := range params {
		if _, ok := placeholders[key]; !ok {
			return "", errs.Invalid(endpointID, fmt.Sprintf("unknown parameter %q for template %s", key, template))
		}
	}

	built := template
	for key, value := range params {
		formatted, err := formatValue(value)
		if err != nil {
			return "", errs.Invalid(endpointID, fmt.Sprintf("parameter %q: %v", key, err))
		}
		built = strings.ReplaceAll(built, "{"+key+"}", url.PathEscape(formatted))
	}

	built = stripUnfilled(built)

	credential := travelerCredential
	if strings.Contains(built, ferriesPathMarker) {
		credential = ferriesCredential
	}
	separator := "?"
	if strings.Contains(built, "?") {
		separator = "&"
	}
	return built + separator + credential + "=" + url.QueryEscape(b.accessCode), nil
}

func formatValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case time.Time:
		return wsdate.FormatParam(v), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}

// stripUnfilled removes placeholders the caller omitted: query pairs drop the
// whole key=value segment, path segments drop the segment, and leftover
// separators are collapsed.
func stripUnfilled(built string) string {
	// query pairs: key={Name} including the adjoining separator
	built = regexp.MustCompile(`[?&][A-Za-z0-9_]+=\{[A-Za-z0-9_]+\}`).ReplaceAllStringFunc(built, func(m string) string {
		if strings.HasPrefix(m, "?") {
			return "?"
		}
		return ""
	})
	// path segments: /{Name}
	built = regexp.MustCompile(`/\{[A-Za-z0-9_]+\}`).ReplaceAllString(built, "")
	// anything else left over
	built = placeholderPattern.ReplaceAllString(built, "")

	built = strings.ReplaceAll(built, "?&", "?")
	for strings.Contains(built, "&&") {
		built = strings.ReplaceAll(built, "&&", "&")
	}
	built = strings.TrimRight(built, "?&")
	return built
}
