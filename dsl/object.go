package dsl

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aymenmerabta5/actionize"
	"github.com/aymenmerabta5/actionize/i18n"
	js "github.com/aymenmerabta5/actionize/jsonschema"
)

// UnknownPolicy decides what happens to submitted keys the object does not
// declare.
type UnknownPolicy int

const (
	// UnknownStrip drops undeclared keys (submit buttons, CSRF tokens, ...).
	UnknownStrip UnknownPolicy = iota
	// UnknownStrict reports undeclared keys as unknown_key issues.
	UnknownStrict
)

type objRefine struct {
	name string
	fn   func(context.Context, map[string]any) error
}

// ObjectBuilder declares an object schema field by field.
type ObjectBuilder struct {
	fields   map[string]AnyAdapter
	order    []string
	required map[string]struct{}
	unknown  UnknownPolicy
	refines  []objRefine
	title    string
}

// FieldStep configures the field most recently added with Field.
type FieldStep struct {
	b    *ObjectBuilder
	name string
}

// Object creates a new object builder. Unknown keys are stripped by default.
func Object() *ObjectBuilder {
	return &ObjectBuilder{
		fields:   map[string]AnyAdapter{},
		required: map[string]struct{}{},
		unknown:  UnknownStrip,
	}
}

// Field registers a field. Redeclaring a name replaces its schema but keeps
// its position.
func (b *ObjectBuilder) Field(name string, s Adaptable) *FieldStep {
	if _, exists := b.fields[name]; !exists {
		b.order = append(b.order, name)
	}
	b.fields[name] = s.Adapter()
	return &FieldStep{b: b, name: name}
}

// Required marks the field as required and returns the builder.
func (f *FieldStep) Required() *ObjectBuilder {
	f.b.required[f.name] = struct{}{}
	return f.b
}

// Optional marks the field as optional (default) and returns the builder.
func (f *FieldStep) Optional() *ObjectBuilder {
	delete(f.b.required, f.name)
	return f.b
}

// Default sets a value used when the field is missing. The default is
// parsed through the field schema.
func (f *FieldStep) Default(v any) *ObjectBuilder {
	ad := f.b.fields[f.name]
	parse := ad.parse
	ad.applyDefault = func(ctx context.Context) (any, error) { return parse(ctx, v) }
	prev := ad.jsonSchema
	ad.jsonSchema = func() *js.Schema {
		s := &js.Schema{}
		if prev != nil {
			if p := prev(); p != nil {
				cp := *p
				s = &cp
			}
		}
		s.Default = v
		return s
	}
	f.b.fields[f.name] = ad
	return f.b
}

func (f *FieldStep) Field(name string, s Adaptable) *FieldStep { return f.b.Field(name, s) }
func (f *FieldStep) Require(names ...string) *ObjectBuilder     { return f.b.Require(names...) }
func (f *FieldStep) UnknownStrict() *ObjectBuilder              { return f.b.UnknownStrict() }
func (f *FieldStep) UnknownStrip() *ObjectBuilder               { return f.b.UnknownStrip() }
func (f *FieldStep) Refine(name string, fn func(context.Context, map[string]any) error) *ObjectBuilder {
	return f.b.Refine(name, fn)
}
func (f *FieldStep) Build() (*ObjectSchema, error) { return f.b.Build() }
func (f *FieldStep) MustBuild() *ObjectSchema      { return f.b.MustBuild() }

// Require marks one or more fields as required.
func (b *ObjectBuilder) Require(names ...string) *ObjectBuilder {
	for _, n := range names {
		b.required[n] = struct{}{}
	}
	return b
}

// UnknownStrict sets unknown policy to Strict.
func (b *ObjectBuilder) UnknownStrict() *ObjectBuilder {
	b.unknown = UnknownStrict
	return b
}

// UnknownStrip sets unknown policy to Strip.
func (b *ObjectBuilder) UnknownStrip() *ObjectBuilder {
	b.unknown = UnknownStrip
	return b
}

// Title sets the title exported to JSON Schema.
func (b *ObjectBuilder) Title(title string) *ObjectBuilder {
	b.title = title
	return b
}

// Refine registers a cross-field check run after every field parsed. fn may
// return actionize.Issues to attach failures to specific fields; any other
// error becomes a form-level custom issue.
func (b *ObjectBuilder) Refine(name string, fn func(context.Context, map[string]any) error) *ObjectBuilder {
	b.refines = append(b.refines, objRefine{name: name, fn: fn})
	return b
}

// Build validates the declaration and returns the schema.
func (b *ObjectBuilder) Build() (*ObjectSchema, error) {
	for name := range b.required {
		if _, ok := b.fields[name]; !ok {
			return nil, fmt.Errorf("dsl: required field %q is not declared", name)
		}
	}
	for _, r := range b.refines {
		if r.fn == nil {
			return nil, fmt.Errorf("dsl: refine %q has no function", r.name)
		}
	}
	o := &ObjectSchema{
		fields:   make(map[string]AnyAdapter, len(b.fields)),
		order:    append([]string(nil), b.order...),
		required: make(map[string]struct{}, len(b.required)),
		unknown:  b.unknown,
		refines:  append([]objRefine(nil), b.refines...),
		title:    b.title,
	}
	for k, v := range b.fields {
		o.fields[k] = v
	}
	for k := range b.required {
		o.required[k] = struct{}{}
	}
	return o, nil
}

// MustBuild is Build that panics on error.
func (b *ObjectBuilder) MustBuild() *ObjectSchema {
	o, err := b.Build()
	if err != nil {
		panic(err)
	}
	return o
}

// ObjectSchema validates a flat form submission into map[string]any.
type ObjectSchema struct {
	fields   map[string]AnyAdapter
	order    []string
	required map[string]struct{}
	unknown  UnknownPolicy
	refines  []objRefine
	title    string
}

var _ actionize.ObjectSchema[map[string]any] = (*ObjectSchema)(nil)

// Fields lists the declared field names in declaration order.
func (o *ObjectSchema) Fields() []string { return append([]string(nil), o.order...) }

// Required reports whether name must be present.
func (o *ObjectSchema) Required(name string) bool {
	_, ok := o.required[name]
	return ok
}

// Field returns the single-field validator for name.
func (o *ObjectSchema) Field(name string) (actionize.FieldSchema, bool) {
	ad, ok := o.fields[name]
	if !ok {
		return nil, false
	}
	return fieldSchema{ad: ad, required: o.Required(name)}, true
}

// Parse validates v, which must be a map[string]any, field by field in
// declaration order. Refinements run only when every field parsed.
func (o *ObjectSchema) Parse(ctx context.Context, v any) (map[string]any, error) {
	src, ok := v.(map[string]any)
	if !ok {
		return nil, actionize.Issues{{Path: "/", Code: actionize.CodeInvalidType, Message: i18n.T(actionize.CodeInvalidType, map[string]string{"expected": "object"}), Hint: "expected object"}}
	}
	out := make(map[string]any, len(o.fields))
	var iss actionize.Issues
	for _, k := range o.order {
		val, i2, present := o.parseField(ctx, k, src)
		if len(i2) > 0 {
			iss = actionize.AppendIssues(iss, i2...)
			continue
		}
		if present {
			out[k] = val
		}
	}
	iss = append(iss, o.collectUnknown(src)...)
	if len(iss) > 0 {
		return nil, iss
	}
	if err := actionize.ApplyRefine[map[string]any](ctx, out, o); err != nil {
		return nil, err
	}
	return out, nil
}

// parseField handles one declared field: present values are parsed, missing
// ones fall back to the default, then the absent value, then the required
// check.
func (o *ObjectSchema) parseField(ctx context.Context, k string, src map[string]any) (any, actionize.Issues, bool) {
	ad := o.fields[k]
	raw, exists := src[k]
	if exists && ad.emptyAsMissing && isEmpty(raw) {
		exists = false
	}
	if !exists {
		switch {
		case ad.applyDefault != nil:
			dv, err := ad.applyDefault(ctx)
			if err != nil {
				return nil, rebase(k, err), false
			}
			return dv, nil, true
		case ad.absent != nil:
			raw, _ = ad.absent()
		default:
			if o.Required(k) {
				return nil, actionize.Issues{requiredIssue(k)}, false
			}
			return nil, nil, false
		}
	}
	parsed, err := ad.parse(ctx, raw)
	if err != nil {
		return nil, rebase(k, err), false
	}
	return parsed, nil, true
}

func (o *ObjectSchema) collectUnknown(src map[string]any) actionize.Issues {
	if o.unknown != UnknownStrict {
		return nil
	}
	var uks []string
	for k := range src {
		if _, known := o.fields[k]; !known {
			uks = append(uks, k)
		}
	}
	sort.Strings(uks)
	var iss actionize.Issues
	for _, k := range uks {
		iss = actionize.AppendIssues(iss, actionize.Issue{Path: actionize.Pointer(k), Code: actionize.CodeUnknownKey, Message: i18n.T(actionize.CodeUnknownKey, nil)})
	}
	return iss
}

// Refine implements actionize.Refiner[map[string]any] using builder-registered hooks.
func (o *ObjectSchema) Refine(ctx context.Context, v map[string]any) error {
	var iss actionize.Issues
	for _, r := range o.refines {
		if err := r.fn(ctx, v); err != nil {
			if i2, ok := actionize.AsIssues(err); ok {
				iss = actionize.AppendIssues(iss, i2...)
			} else {
				iss = actionize.AppendIssues(iss, actionize.Issue{Path: "/", Code: actionize.CodeCustom, Message: err.Error(), Cause: err, Hint: r.name})
			}
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// JSONSchema projects the object and its fields.
func (o *ObjectSchema) JSONSchema() *js.Schema {
	props := make(map[string]*js.Schema, len(o.fields))
	for k, ad := range o.fields {
		props[k] = ad.schema()
	}
	req := make([]string, 0, len(o.required))
	for _, k := range o.order {
		if o.Required(k) {
			req = append(req, k)
		}
	}
	return &js.Schema{
		Title:                o.title,
		Type:                 "object",
		Properties:           props,
		Required:             req,
		AdditionalProperties: o.unknown != UnknownStrict,
	}
}

// fieldSchema validates one field the same way Parse would for a submitted
// value.
type fieldSchema struct {
	ad       AnyAdapter
	required bool
}

func (f fieldSchema) ParseField(ctx context.Context, v any) (any, error) {
	if v == nil || (f.ad.emptyAsMissing && isEmpty(v)) {
		if f.ad.applyDefault != nil {
			return f.ad.applyDefault(ctx)
		}
		if f.required {
			return nil, actionize.Issues{requiredIssue("")}
		}
		if f.ad.absent == nil {
			return nil, nil
		}
		v, _ = f.ad.absent()
	}
	return f.ad.parse(ctx, v)
}

func requiredIssue(field string) actionize.Issue {
	return actionize.Issue{Path: actionize.Pointer(field), Code: actionize.CodeRequired, Message: i18n.T(actionize.CodeRequired, nil), Hint: "required field missing"}
}

func isEmpty(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// rebase moves child issues under "/field".
func rebase(field string, err error) actionize.Issues {
	base := actionize.Pointer(field)
	child, ok := actionize.AsIssues(err)
	if !ok {
		return actionize.Issues{{Path: base, Code: actionize.CodeCustom, Message: err.Error(), Cause: err}}
	}
	out := make(actionize.Issues, 0, len(child))
	for _, it := range child {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}
