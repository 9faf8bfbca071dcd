// Package rules provides cross-field checks for dsl.Object().Refine.
// Every rule reports its failures as actionize.Issues attached to a field, so
// they surface next to that field on submit.
package rules

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/aymenmerabta5/actionize"
	"github.com/aymenmerabta5/actionize/i18n"
)

// Rule is a refinement over the parsed form values.
type Rule func(ctx context.Context, m map[string]any) error

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of rules.
type Conditional struct {
	field string
	op    Op
	want  any
	all   []Conditional // composite AND
	any   []Conditional // composite OR
}

// If builds a conditional comparing the parsed value of field with want.
func If(field string, op Op, want any) Conditional {
	return Conditional{field: field, op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Then runs rules only when the condition holds. Failures of every rule are
// collected.
func (c Conditional) Then(rules ...Rule) Rule {
	return func(ctx context.Context, m map[string]any) error {
		if !c.eval(m) {
			return nil
		}
		return All(rules...)(ctx, m)
	}
}

// All runs every rule and merges their issues.
func All(rules ...Rule) Rule {
	return func(ctx context.Context, m map[string]any) error {
		var all actionize.Issues
		for _, r := range rules {
			if r == nil {
				continue
			}
			err := r(ctx, m)
			if err == nil {
				continue
			}
			iss, ok := actionize.AsIssues(err)
			if !ok {
				return err
			}
			all = actionize.AppendIssues(all, iss...)
		}
		if len(all) > 0 {
			return all
		}
		return nil
	}
}

// Match requires field to equal other ("confirm password").
func Match(field, other string, msg ...string) Rule {
	return func(_ context.Context, m map[string]any) error {
		if reflect.DeepEqual(m[field], m[other]) {
			return nil
		}
		return issue(field, actionize.CodeCustom, pick(msg, fmt.Sprintf("Must match %s", other)), map[string]any{"other": other})
	}
}

// RequiredIf requires field whenever cond holds.
func RequiredIf(field string, cond Conditional, msg ...string) Rule {
	return func(_ context.Context, m map[string]any) error {
		if !cond.eval(m) || present(m[field]) {
			return nil
		}
		return issue(field, actionize.CodeRequired, pick(msg, i18n.T(actionize.CodeRequired, nil)), nil)
	}
}

// AtLeastOne requires at least one of fields to carry a value. The issue is
// attached to the first field.
func AtLeastOne(fields ...string) Rule {
	return func(_ context.Context, m map[string]any) error {
		if len(fields) == 0 {
			return nil
		}
		for _, f := range fields {
			if present(m[f]) {
				return nil
			}
		}
		return issue(fields[0], actionize.CodeRequired, fmt.Sprintf("At least one of %s is required", strings.Join(fields, ", ")), map[string]any{"fields": fields})
	}
}

// Before requires the time in field to be strictly before the one in later.
// The rule is skipped when either value is missing.
func Before(field, later string, msg ...string) Rule {
	return func(_ context.Context, m map[string]any) error {
		a, ok1 := m[field].(time.Time)
		b, ok2 := m[later].(time.Time)
		if !ok1 || !ok2 || a.Before(b) {
			return nil
		}
		return issue(later, actionize.CodeCustom, pick(msg, fmt.Sprintf("Must be after %s", field)), map[string]any{"other": field})
	}
}

// ------- helpers -------

func issue(field, code, msg string, params map[string]any) error {
	return actionize.Issues{actionize.IssueAt(field, code, msg, params)}
}

func pick(msg []string, def string) string {
	if len(msg) > 0 && msg[0] != "" {
		return msg[0]
	}
	return def
}

func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	case bool:
		return x
	default:
		return true
	}
}

func (c Conditional) eval(m map[string]any) bool {
	// composite AND
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.eval(m) {
				return false
			}
		}
		return true
	}
	// composite OR
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.eval(m) {
				return true
			}
		}
		return false
	}
	cur, ok := m[c.field]
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return equal(cur, want)
	case Ne:
		return !equal(cur, want)
	case Lt, Le, Gt, Ge:
		return compareOrdered(cur, op, want)
	default:
		return false
	}
}

// equal treats numbers of different kinds (int from YAML, int64 from a parsed
// field) as equal when their values are.
func equal(cur, want any) bool {
	a, ok1 := toFloat64(reflect.ValueOf(cur))
	b, ok2 := toFloat64(reflect.ValueOf(want))
	if ok1 && ok2 {
		return a == b
	}
	return reflect.DeepEqual(cur, want)
}

// compareOrdered compares numbers of any kind as float64.
func compareOrdered(cur any, op Op, want any) bool {
	a, ok1 := toFloat64(reflect.ValueOf(cur))
	b, ok2 := toFloat64(reflect.ValueOf(want))
	if !ok1 || !ok2 {
		return false
	}
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}

func toFloat64(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}
