package dsl

import (
	"context"
	"html"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/aymenmerabta5/actionize"
	js "github.com/aymenmerabta5/actionize/jsonschema"
	"github.com/microcosm-cc/bluemonday"
)

// StringSchema validates string inputs. Builder methods mutate and return
// the receiver.
type StringSchema struct {
	checks   []stringCheck
	trim     bool
	sanitize bool
	typeMsg  string

	minLen, maxLen *int
	pattern        string
	format         string
	options        []string
}

type stringCheck struct {
	code   string
	msg    string
	params map[string]any
	ok     func(string) bool
}

// String returns a string schema with no constraints.
func String() *StringSchema { return &StringSchema{} }

// Enum returns a string schema that only accepts one of values.
func Enum(values ...string) *StringSchema { return String().OneOf(values...) }

// Min requires at least n characters.
func (s *StringSchema) Min(n int, msg ...string) *StringSchema {
	s.minLen = &n
	s.checks = append(s.checks, stringCheck{
		code:   actionize.CodeTooShort,
		msg:    firstMsg(msg),
		params: map[string]any{"min": n},
		ok:     func(v string) bool { return utf8.RuneCountInString(v) >= n },
	})
	return s
}

// Max allows at most n characters.
func (s *StringSchema) Max(n int, msg ...string) *StringSchema {
	s.maxLen = &n
	s.checks = append(s.checks, stringCheck{
		code:   actionize.CodeTooLong,
		msg:    firstMsg(msg),
		params: map[string]any{"max": n},
		ok:     func(v string) bool { return utf8.RuneCountInString(v) <= n },
	})
	return s
}

// Length requires exactly n characters.
func (s *StringSchema) Length(n int, msg ...string) *StringSchema {
	return s.Min(n, msg...).Max(n, msg...)
}

// NonEmpty is Min(1).
func (s *StringSchema) NonEmpty(msg ...string) *StringSchema { return s.Min(1, msg...) }

// Email requires a bare e-mail address.
func (s *StringSchema) Email(msg ...string) *StringSchema {
	s.format = "email"
	s.checks = append(s.checks, stringCheck{
		code:   actionize.CodeInvalidFormat,
		msg:    firstMsg(msg),
		params: map[string]any{"format": "email"},
		ok: func(v string) bool {
			addr, err := mail.ParseAddress(v)
			return err == nil && addr.Address == v
		},
	})
	return s
}

// URL requires an absolute http or https URL.
func (s *StringSchema) URL(msg ...string) *StringSchema {
	s.format = "uri"
	s.checks = append(s.checks, stringCheck{
		code:   actionize.CodeInvalidFormat,
		msg:    firstMsg(msg),
		params: map[string]any{"format": "url"},
		ok: func(v string) bool {
			u, err := url.Parse(v)
			return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
		},
	})
	return s
}

// Pattern requires the value to match re.
func (s *StringSchema) Pattern(re *regexp.Regexp, msg ...string) *StringSchema {
	s.pattern = re.String()
	s.checks = append(s.checks, stringCheck{
		code:   actionize.CodePattern,
		msg:    firstMsg(msg),
		params: map[string]any{"pattern": re.String()},
		ok:     re.MatchString,
	})
	return s
}

// OneOf restricts the value to the given options.
func (s *StringSchema) OneOf(options ...string) *StringSchema {
	s.options = append(s.options, options...)
	allowed := make(map[string]struct{}, len(options))
	for _, o := range options {
		allowed[o] = struct{}{}
	}
	s.checks = append(s.checks, stringCheck{
		code:   actionize.CodeInvalidEnum,
		params: map[string]any{"options": strings.Join(options, ", ")},
		ok: func(v string) bool {
			_, ok := allowed[v]
			return ok
		},
	})
	return s
}

// Trim strips leading and trailing white space before validation.
func (s *StringSchema) Trim() *StringSchema {
	s.trim = true
	return s
}

// Sanitize strips HTML markup before validation.
func (s *StringSchema) Sanitize() *StringSchema {
	s.sanitize = true
	return s
}

// TypeMessage overrides the message used when the input is not a string.
func (s *StringSchema) TypeMessage(msg string) *StringSchema {
	s.typeMsg = msg
	return s
}

// Normalize applies Trim and Sanitize. Sanitized values are plain text:
// entities escaped by the policy are decoded again.
func (s *StringSchema) Normalize(_ context.Context, v string) (string, error) {
	if s.sanitize {
		v = html.UnescapeString(sanitizer().Sanitize(v))
	}
	if s.trim {
		v = strings.TrimSpace(v)
	}
	return v, nil
}

// Parse normalizes v and runs every check in declaration order, collecting
// all failures.
func (s *StringSchema) Parse(ctx context.Context, v any) (string, error) {
	str, ok := v.(string)
	if !ok {
		return "", invalidType("string", s.typeMsg)
	}
	str, err := actionize.ApplyNormalize[string](ctx, str, s)
	if err != nil {
		return "", err
	}
	var iss actionize.Issues
	for _, c := range s.checks {
		if !c.ok(str) {
			iss = actionize.AppendIssues(iss, issue(c.code, c.msg, c.params))
		}
	}
	if len(iss) > 0 {
		return "", iss
	}
	return str, nil
}

// JSONSchema projects the schema.
func (s *StringSchema) JSONSchema() *js.Schema {
	out := &js.Schema{Type: "string", Format: s.format, Pattern: s.pattern, MinLength: s.minLen, MaxLength: s.maxLen}
	for _, o := range s.options {
		out.Enum = append(out.Enum, o)
	}
	return out
}

// Adapter implements Adaptable.
func (s *StringSchema) Adapter() AnyAdapter {
	return AnyAdapter{
		parse:      func(ctx context.Context, v any) (any, error) { return s.Parse(ctx, v) },
		jsonSchema: s.JSONSchema,
	}
}

var (
	sanitizerOnce   sync.Once
	sanitizerPolicy *bluemonday.Policy
)

func sanitizer() *bluemonday.Policy {
	sanitizerOnce.Do(func() {
		sanitizerPolicy = bluemonday.StrictPolicy()
	})
	return sanitizerPolicy
}
