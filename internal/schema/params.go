package schema

import (
	"context"
	"fmt"
	"time"

	goskema "github.com/reoring/goskema"

	"github.com/ferryline/wsdot/internal/endpoint"
)

// ParamKind names the accepted value kinds for one caller parameter.
type ParamKind int

const (
	// KindString accepts string values.
	KindString ParamKind = iota
	// KindInt accepts integer values.
	KindInt
	// KindBool accepts boolean values.
	KindBool
	// KindDate accepts time.Time values.
	KindDate
)

// ParamSpec declares one permitted caller parameter.
type ParamSpec struct {
	Name     string
	Kind     ParamKind
	Required bool
}

type paramsValidator struct {
	specs map[string]ParamSpec
}

// Params builds an input validator over caller-supplied parameter records.
// Caller params are native Go values rather than wire data, so checks run
// directly on the record; failures surface as goskema issues to keep one
// validation error model.
func Params(specs ...ParamSpec) endpoint.Validator {
	byName := make(map[string]ParamSpec, len(specs))
	for _, spec := range specs {
		byName[spec.Name] = spec
	}
	return paramsValidator{specs: byName}
}

func (v paramsValidator) Parse(_ context.Context, data any) (any, error) {
	params, ok := data.(endpoint.Params)
	if !ok {
		if m, isMap := data.(map[string]any); isMap {
			params = m
		} else if data == nil {
			params = endpoint.Params{}
		} else {
			return nil, goskema.Issues{goskema.Issue{
				Path:    "/",
				Code:    goskema.CodeInvalidType,
				Message: fmt.Sprintf("expected parameter record, got %T", data),
			}}
		}
	}

	var issues goskema.Issues
	for name, spec := range v.specs {
		value, present := params[name]
		if !present {
			if spec.Required {
				issues = append(issues, goskema.Issue{
					Path:    "/" + name,
					Code:    goskema.CodeRequired,
					Message: "required parameter missing",
				})
			}
			continue
		}
		if !kindMatches(spec.Kind, value) {
			issues = append(issues, goskema.Issue{
				Path:    "/" + name,
				Code:    goskema.CodeInvalidType,
				Message: fmt.Sprintf("unexpected value type %T", value),
			})
		}
	}
	for name := range params {
		if _, known := v.specs[name]; !known {
			issues = append(issues, goskema.Issue{
				Path:    "/" + name,
				Code:    goskema.CodeUnknownKey,
				Message: "unknown parameter",
			})
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return params, nil
}

func kindMatches(kind ParamKind, value any) bool {
	switch kind {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindInt:
		switch value.(type) {
		case int, int32, int64:
			return true
		}
		return false
	case KindBool:
		_, ok := value.(bool)
		return ok
	case KindDate:
		_, ok := value.(time.Time)
		return ok
	default:
		return false
	}
}
