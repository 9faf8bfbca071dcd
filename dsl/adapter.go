package dsl

import (
	"context"
	"fmt"

	"github.com/aymenmerabta5/actionize"
	"github.com/aymenmerabta5/actionize/i18n"
	js "github.com/aymenmerabta5/actionize/jsonschema"
)

// Adaptable is implemented by every schema that can be placed into an
// object with Field.
type Adaptable interface {
	Adapter() AnyAdapter
}

// AnyAdapter adapts a typed schema to the any-typed wrapper used by object
// fields.
type AnyAdapter struct {
	parse      func(context.Context, any) (any, error)
	jsonSchema func() *js.Schema
	// emptyAsMissing treats a submitted "" as an absent value. Set for every
	// non-string schema since empty inputs cannot be coerced.
	emptyAsMissing bool
	// absent supplies the value used when the field is not submitted at all
	// (an unchecked checkbox, for example).
	absent       func() (any, bool)
	applyDefault func(context.Context) (any, error)
}

// Adapter lets an AnyAdapter be passed wherever an Adaptable is expected.
func (ad AnyAdapter) Adapter() AnyAdapter { return ad }

// SchemaOf adapts an arbitrary actionize.Schema[T] into a field adapter.
// JSON Schema projection is kept when s implements actionize.JSONSchemer.
func SchemaOf[T any](s actionize.Schema[T]) AnyAdapter {
	var zero T
	_, isString := any(zero).(string)
	ad := AnyAdapter{
		parse:          func(ctx context.Context, v any) (any, error) { return s.Parse(ctx, v) },
		emptyAsMissing: !isString,
	}
	if jsr, ok := any(s).(actionize.JSONSchemer); ok {
		ad.jsonSchema = jsr.JSONSchema
	}
	return ad
}

func (ad AnyAdapter) schema() *js.Schema {
	if ad.jsonSchema == nil {
		return &js.Schema{}
	}
	if s := ad.jsonSchema(); s != nil {
		return s
	}
	return &js.Schema{}
}

// issue builds a root-level issue, translating the message unless msg
// overrides it.
func issue(code, msg string, params map[string]any) actionize.Issue {
	if msg == "" {
		msg = i18n.T(code, stringParams(params))
	}
	return actionize.Issue{Path: "/", Code: code, Message: msg, Params: params}
}

func stringParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func invalidType(expected, msg string) error {
	return actionize.Issues{issue(actionize.CodeInvalidType, msg, map[string]any{"expected": expected})}
}

func firstMsg(msg []string) string {
	if len(msg) == 0 {
		return ""
	}
	return msg[0]
}
