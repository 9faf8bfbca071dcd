package dsl

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/aymenmerabta5/actionize"
	js "github.com/aymenmerabta5/actionize/jsonschema"
)

// NumberSchema validates numeric inputs. Form values arrive as strings and
// are coerced; float64, int, int64 and json.Number are accepted as-is.
type NumberSchema struct {
	integer  bool
	min, max *float64
	minMsg   string
	maxMsg   string
	typeMsg  string
}

// Number returns a float64 schema.
func Number() *NumberSchema { return &NumberSchema{} }

// Int returns an integer schema. Its field adapter yields int64 values.
func Int() *NumberSchema { return &NumberSchema{integer: true} }

// Min requires v >= n.
func (s *NumberSchema) Min(n float64, msg ...string) *NumberSchema {
	s.min, s.minMsg = &n, firstMsg(msg)
	return s
}

// Max requires v <= n.
func (s *NumberSchema) Max(n float64, msg ...string) *NumberSchema {
	s.max, s.maxMsg = &n, firstMsg(msg)
	return s
}

// TypeMessage overrides the message used when the input is not a number.
func (s *NumberSchema) TypeMessage(msg string) *NumberSchema {
	s.typeMsg = msg
	return s
}

func (s *NumberSchema) expected() string {
	if s.integer {
		return "integer"
	}
	return "number"
}

// Parse coerces v and checks the bounds.
func (s *NumberSchema) Parse(_ context.Context, v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, invalidType(s.expected(), s.typeMsg)
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, invalidType(s.expected(), s.typeMsg)
		}
		f = n
	default:
		return 0, invalidType(s.expected(), s.typeMsg)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalidType(s.expected(), s.typeMsg)
	}
	if s.integer && f != math.Trunc(f) {
		return 0, invalidType(s.expected(), s.typeMsg)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if s.integer && (f < math.MinInt64 || f >= math.MaxInt64) {
		return 0, invalidType(s.expected(), s.typeMsg)
	}
	var iss actionize.Issues
	if s.min != nil && f < *s.min {
		iss = actionize.AppendIssues(iss, issue(actionize.CodeTooSmall, s.minMsg, map[string]any{"min": formatNum(*s.min)}))
	}
	if s.max != nil && f > *s.max {
		iss = actionize.AppendIssues(iss, issue(actionize.CodeTooBig, s.maxMsg, map[string]any{"max": formatNum(*s.max)}))
	}
	if len(iss) > 0 {
		return 0, iss
	}
	return f, nil
}

func formatNum(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// JSONSchema projects the schema.
func (s *NumberSchema) JSONSchema() *js.Schema {
	return &js.Schema{Type: s.expected(), Minimum: s.min, Maximum: s.max}
}

// Adapter implements Adaptable.
func (s *NumberSchema) Adapter() AnyAdapter {
	return AnyAdapter{
		parse: func(ctx context.Context, v any) (any, error) {
			f, err := s.Parse(ctx, v)
			if err != nil {
				return nil, err
			}
			if s.integer {
				return int64(f), nil
			}
			return f, nil
		},
		jsonSchema:     s.JSONSchema,
		emptyAsMissing: true,
	}
}

// BoolSchema validates checkbox-style inputs.
type BoolSchema struct {
	mustBeTrue bool
	trueMsg    string
	typeMsg    string
}

// Bool returns a boolean schema. A field that is not submitted at all parses
// as false, matching unchecked HTML checkboxes.
func Bool() *BoolSchema { return &BoolSchema{} }

// True requires the value to be true ("accept the terms").
func (s *BoolSchema) True(msg ...string) *BoolSchema {
	s.mustBeTrue, s.trueMsg = true, firstMsg(msg)
	return s
}

// TypeMessage overrides the message used when the input is not a boolean.
func (s *BoolSchema) TypeMessage(msg string) *BoolSchema {
	s.typeMsg = msg
	return s
}

// Parse coerces "on", "true", "1", "yes" to true and "", "off", "false",
// "0", "no" to false.
func (s *BoolSchema) Parse(_ context.Context, v any) (bool, error) {
	var b bool
	switch t := v.(type) {
	case bool:
		b = t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "on", "true", "1", "yes":
			b = true
		case "", "off", "false", "0", "no":
			b = false
		default:
			return false, invalidType("boolean", s.typeMsg)
		}
	default:
		return false, invalidType("boolean", s.typeMsg)
	}
	if s.mustBeTrue && !b {
		return false, actionize.Issues{issue(actionize.CodeCustom, s.trueMsg, nil)}
	}
	return b, nil
}

// JSONSchema projects the schema.
func (s *BoolSchema) JSONSchema() *js.Schema { return &js.Schema{Type: "boolean"} }

// Adapter implements Adaptable.
func (s *BoolSchema) Adapter() AnyAdapter {
	return AnyAdapter{
		parse:      func(ctx context.Context, v any) (any, error) { return s.Parse(ctx, v) },
		jsonSchema: s.JSONSchema,
		absent:     func() (any, bool) { return false, true },
	}
}
