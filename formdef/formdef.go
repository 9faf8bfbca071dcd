// Package formdef loads declarative form definitions from YAML and turns them
// into dsl object schemas.
//
//	title: Sign up
//	fields:
//	  - name: email
//	    type: email
//	    required: true
//	  - name: password
//	    type: password
//	    min: 8
//	  - name: confirm
//	    type: password
//	rules:
//	  - kind: match
//	    field: confirm
//	    other: password
package formdef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/aymenmerabta5/actionize/codec"
	"github.com/aymenmerabta5/actionize/dsl"
	"github.com/aymenmerabta5/actionize/rules"
	"gopkg.in/yaml.v3"
)

// Field types understood by Schema.
const (
	TypeString        = "string"
	TypeText          = "text"
	TypePassword      = "password"
	TypeEmail         = "email"
	TypeURL           = "url"
	TypeNumber        = "number"
	TypeInt           = "int"
	TypeBool          = "bool"
	TypeEnum          = "enum"
	TypeDate          = "date"
	TypeDateTimeLocal = "datetime-local"
	TypeDateTime      = "datetime"
)

// Rule kinds understood by Schema.
const (
	RuleMatch      = "match"
	RuleRequiredIf = "required_if"
	RuleAtLeastOne = "at_least_one"
	RuleBefore     = "before"
)

// Definition is one form.
type Definition struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Unknown     string     `yaml:"unknown"` // strip (default) or strict
	Fields      []FieldDef `yaml:"fields"`
	Rules       []RuleDef  `yaml:"rules"`
}

// FieldDef declares one field.
type FieldDef struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Help     string   `yaml:"help"`
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required"`
	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`
	Pattern  string   `yaml:"pattern"`
	Options  []string `yaml:"options"`
	Default  any      `yaml:"default"`
	Trim     bool     `yaml:"trim"`
	Sanitize bool     `yaml:"sanitize"`
	Message  string   `yaml:"message"`
}

// RuleDef declares one cross-field rule.
type RuleDef struct {
	Kind    string   `yaml:"kind"`
	Field   string   `yaml:"field"`
	Other   string   `yaml:"other"`
	Fields  []string `yaml:"fields"`
	Equals  any      `yaml:"equals"`
	In      []any    `yaml:"in"`
	Message string   `yaml:"message"`
}

// DisplayName returns the label, falling back to the field name.
func (f FieldDef) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Load reads and validates a definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formdef: read %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("formdef: %s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a single YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty definition")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var def Definition
	if err := dec.Decode(&def); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks names, types and rule references.
func (d *Definition) Validate() error {
	if len(d.Fields) == 0 {
		return errors.New("no fields declared")
	}
	switch d.Unknown {
	case "", "strip", "strict":
	default:
		return fmt.Errorf("unknown policy %q (want strip or strict)", d.Unknown)
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for i, f := range d.Fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return fmt.Errorf("fields[%d]: name is empty", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("fields[%d]: duplicate field %q", i, name)
		}
		seen[name] = struct{}{}
		if _, err := f.adapter(); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	for i, r := range d.Rules {
		refs := append([]string{r.Field, r.Other}, r.Fields...)
		for _, ref := range refs {
			if ref == "" {
				continue
			}
			if _, ok := seen[ref]; !ok {
				return fmt.Errorf("rules[%d]: unknown field %q", i, ref)
			}
		}
		if _, err := r.rule(); err != nil {
			return fmt.Errorf("rules[%d]: %w", i, err)
		}
	}
	return nil
}

// Field looks up a field declaration.
func (d *Definition) Field(name string) (FieldDef, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Schema builds the object schema described by d.
func (d *Definition) Schema() (*dsl.ObjectSchema, error) {
	b := dsl.Object().Title(d.Title)
	if d.Unknown == "strict" {
		b.UnknownStrict()
	}
	for _, f := range d.Fields {
		ad, err := f.adapter()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		step := b.Field(f.Name, ad)
		switch {
		case f.Default != nil:
			step.Default(f.Default)
		case f.Required && f.Type != TypeBool:
			step.Required()
		}
	}
	for i, r := range d.Rules {
		fn, err := r.rule()
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		b.Refine(r.Kind, fn)
	}
	return b.Build()
}

func (f FieldDef) adapter() (dsl.AnyAdapter, error) {
	switch f.Type {
	case "", TypeString, TypeText, TypePassword, TypeEmail, TypeURL, TypeEnum:
		return f.stringSchema()
	case TypeNumber, TypeInt:
		n := dsl.Number()
		if f.Type == TypeInt {
			n = dsl.Int()
		}
		if f.Min != nil {
			n.Min(*f.Min, f.Message)
		}
		if f.Max != nil {
			n.Max(*f.Max, f.Message)
		}
		if f.Message != "" {
			n.TypeMessage(f.Message)
		}
		return n.Adapter(), nil
	case TypeBool:
		b := dsl.Bool()
		if f.Required {
			b.True(f.Message)
		}
		return b.Adapter(), nil
	case TypeDate, TypeDateTimeLocal, TypeDateTime:
		var t *codec.TimeSchema
		switch f.Type {
		case TypeDate:
			t = codec.Date()
		case TypeDateTimeLocal:
			t = codec.DateTimeLocal()
		default:
			t = codec.TimeRFC3339()
		}
		if f.Message != "" {
			t.Message(f.Message)
		}
		return t.Adapter(), nil
	default:
		return dsl.AnyAdapter{}, fmt.Errorf("unsupported type %q", f.Type)
	}
}

func (f FieldDef) stringSchema() (dsl.AnyAdapter, error) {
	s := dsl.String()
	if f.Sanitize {
		s.Sanitize()
	}
	if f.Trim || f.Type == TypeEmail || f.Type == TypeURL {
		s.Trim()
	}
	if f.Min != nil {
		s.Min(int(*f.Min), f.Message)
	}
	if f.Max != nil {
		s.Max(int(*f.Max), f.Message)
	}
	switch f.Type {
	case TypeEmail:
		s.Email(f.Message)
	case TypeURL:
		s.URL(f.Message)
	case TypeEnum:
		if len(f.Options) == 0 {
			return dsl.AnyAdapter{}, errors.New("enum requires options")
		}
	}
	if len(f.Options) > 0 {
		s.OneOf(f.Options...)
	}
	if f.Pattern != "" {
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return dsl.AnyAdapter{}, fmt.Errorf("pattern: %w", err)
		}
		s.Pattern(re, f.Message)
	}
	if f.Message != "" {
		s.TypeMessage(f.Message)
	}
	return s.Adapter(), nil
}

func (r RuleDef) rule() (rules.Rule, error) {
	switch r.Kind {
	case RuleMatch:
		if r.Field == "" || r.Other == "" {
			return nil, errors.New("match requires field and other")
		}
		return rules.Match(r.Field, r.Other, r.Message), nil
	case RuleRequiredIf:
		if r.Field == "" || r.Other == "" {
			return nil, errors.New("required_if requires field and other")
		}
		if r.Equals != nil && len(r.In) > 0 {
			return nil, errors.New("required_if takes equals or in, not both")
		}
		return rules.RequiredIf(r.Field, r.condition(), r.Message), nil
	case RuleAtLeastOne:
		if len(r.Fields) == 0 {
			return nil, errors.New("at_least_one requires fields")
		}
		return rules.AtLeastOne(r.Fields...), nil
	case RuleBefore:
		if r.Field == "" || r.Other == "" {
			return nil, errors.New("before requires field and other")
		}
		return rules.Before(r.Field, r.Other, r.Message), nil
	default:
		return nil, fmt.Errorf("unknown rule kind %q", r.Kind)
	}
}

// condition matches Other against Equals, or against any value listed in In.
func (r RuleDef) condition() rules.Conditional {
	if len(r.In) == 0 {
		return rules.If(r.Other, rules.Eq, r.Equals)
	}
	c := rules.If(r.Other, rules.Eq, r.In[0])
	rest := make([]rules.Conditional, 0, len(r.In)-1)
	for _, v := range r.In[1:] {
		rest = append(rest, rules.If(r.Other, rules.Eq, v))
	}
	return c.Or(rest...)
}
