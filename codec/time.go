// Package codec provides field schemas that decode form strings into richer
// Go values.
package codec

import (
	"context"
	"strings"
	"time"

	"github.com/aymenmerabta5/actionize"
	"github.com/aymenmerabta5/actionize/dsl"
	"github.com/aymenmerabta5/actionize/i18n"
	js "github.com/aymenmerabta5/actionize/jsonschema"
)

// Layouts of the HTML inputs the time schemas accept.
const (
	LayoutDate          = "2006-01-02"       // <input type="date">
	LayoutDateTimeLocal = "2006-01-02T15:04" // <input type="datetime-local">
)

// TimeSchema decodes a string into time.Time with a fixed layout.
type TimeSchema struct {
	layouts []string
	format  string
	loc     *time.Location
	after   *time.Time
	before  *time.Time
	msg     string
}

// Date accepts "2006-01-02" and yields midnight UTC.
func Date() *TimeSchema {
	return &TimeSchema{layouts: []string{LayoutDate}, format: "date", loc: time.UTC}
}

// DateTimeLocal accepts "2006-01-02T15:04" (seconds optional) in UTC.
func DateTimeLocal() *TimeSchema {
	return &TimeSchema{layouts: []string{LayoutDateTimeLocal, "2006-01-02T15:04:05"}, format: "datetime-local", loc: time.UTC}
}

// TimeRFC3339 accepts RFC 3339 timestamps with optional fractional seconds.
func TimeRFC3339() *TimeSchema {
	return &TimeSchema{layouts: []string{time.RFC3339Nano, time.RFC3339}, format: "date-time"}
}

// In interprets layouts without a zone in loc instead of UTC.
func (s *TimeSchema) In(loc *time.Location) *TimeSchema {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// After requires the value to be strictly after t.
func (s *TimeSchema) After(t time.Time) *TimeSchema {
	s.after = &t
	return s
}

// Before requires the value to be strictly before t.
func (s *TimeSchema) Before(t time.Time) *TimeSchema {
	s.before = &t
	return s
}

// Message overrides the message for malformed input.
func (s *TimeSchema) Message(msg string) *TimeSchema {
	s.msg = msg
	return s
}

// Parse accepts a string in one of the layouts, or a time.Time as-is.
func (s *TimeSchema) Parse(_ context.Context, v any) (time.Time, error) {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case string:
		var err error
		t, err = s.parse(strings.TrimSpace(x))
		if err != nil {
			msg := s.msg
			if msg == "" {
				msg = i18n.T(actionize.CodeInvalidFormat, map[string]string{"format": s.format})
			}
			return time.Time{}, actionize.Issues{{Path: "/", Code: actionize.CodeInvalidFormat, Message: msg, Cause: err, Params: map[string]any{"format": s.format}}}
		}
	default:
		return time.Time{}, actionize.Issues{{Path: "/", Code: actionize.CodeInvalidType, Message: i18n.T(actionize.CodeInvalidType, map[string]string{"expected": "string"})}}
	}
	if s.after != nil && !t.After(*s.after) {
		min := s.Format(*s.after)
		return time.Time{}, actionize.Issues{{Path: "/", Code: actionize.CodeTooSmall, Message: i18n.T(actionize.CodeTooSmall, map[string]string{"min": min}), Params: map[string]any{"min": min}}}
	}
	if s.before != nil && !t.Before(*s.before) {
		max := s.Format(*s.before)
		return time.Time{}, actionize.Issues{{Path: "/", Code: actionize.CodeTooBig, Message: i18n.T(actionize.CodeTooBig, map[string]string{"max": max}), Params: map[string]any{"max": max}}}
	}
	return t, nil
}

func (s *TimeSchema) parse(str string) (time.Time, error) {
	var first error
	for _, layout := range s.layouts {
		var (
			t   time.Time
			err error
		)
		if s.loc != nil {
			t, err = time.ParseInLocation(layout, str, s.loc)
		} else {
			t, err = time.Parse(layout, str)
		}
		if err == nil {
			return t, nil
		}
		if first == nil {
			first = err
		}
	}
	return time.Time{}, first
}

// Format renders t in the schema's primary layout. RFC 3339 values are
// normalized to UTC.
func (s *TimeSchema) Format(t time.Time) string {
	if s.loc == nil {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t.In(s.loc).Format(s.layouts[0])
}

// JSONSchema projects the schema.
func (s *TimeSchema) JSONSchema() *js.Schema {
	return &js.Schema{Type: "string", Format: s.format}
}

// Adapter lets the schema be used in dsl.Object().Field.
func (s *TimeSchema) Adapter() dsl.AnyAdapter {
	return dsl.SchemaOf[time.Time](s)
}
