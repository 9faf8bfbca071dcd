package dsl_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/aymenmerabta5/actionize"
	g "github.com/aymenmerabta5/actionize/dsl"
)

func codes(t *testing.T, err error) []string {
	t.Helper()
	iss, ok := actionize.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %T: %v", err, err)
	}
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		out = append(out, it.Code)
	}
	return out
}

func TestString_Checks(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		s     *g.StringSchema
		in    any
		want  string
		codes []string
	}{
		{name: "ok", s: g.String().Min(2).Max(5), in: "abc", want: "abc"},
		{name: "too short", s: g.String().Min(2), in: "a", codes: []string{actionize.CodeTooShort}},
		{name: "too long counts runes", s: g.String().Max(2), in: "日本語", codes: []string{actionize.CodeTooLong}},
		{name: "runes within max", s: g.String().Max(3), in: "日本語", want: "日本語"},
		{name: "not a string", s: g.String(), in: 12, codes: []string{actionize.CodeInvalidType}},
		{name: "email ok", s: g.String().Email(), in: "a@example.com", want: "a@example.com"},
		{name: "email with name rejected", s: g.String().Email(), in: "A <a@example.com>", codes: []string{actionize.CodeInvalidFormat}},
		{name: "url", s: g.String().URL(), in: "ftp://example.com", codes: []string{actionize.CodeInvalidFormat}},
		{name: "pattern", s: g.String().Pattern(regexp.MustCompile(`^[a-z]+$`)), in: "abc1", codes: []string{actionize.CodePattern}},
		{name: "enum", s: g.Enum("red", "blue"), in: "green", codes: []string{actionize.CodeInvalidEnum}},
		{name: "all failures collected", s: g.String().Min(5).Email(), in: "ab", codes: []string{actionize.CodeTooShort, actionize.CodeInvalidFormat}},
		{name: "trim before checks", s: g.String().Trim().NonEmpty(), in: "   ", codes: []string{actionize.CodeTooShort}},
		{name: "sanitize strips markup", s: g.String().Sanitize(), in: "<b>hi</b>", want: "hi"},
		{name: "sanitize keeps text verbatim", s: g.String().Sanitize(), in: "Tom & Jerry <b>x</b>", want: "Tom & Jerry x"},
		{name: "sanitize keeps comparisons", s: g.String().Sanitize(), in: "1 < 2 & 3 > 2", want: "1 < 2 & 3 > 2"},
		{name: "sanitize counts decoded runes", s: g.String().Sanitize().Max(11), in: "Tom & Jerry", want: "Tom & Jerry"},
		{name: "length", s: g.String().Length(3), in: "ab", codes: []string{actionize.CodeTooShort}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.s.Parse(ctx, tt.in)
			if len(tt.codes) == 0 {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				if got != tt.want {
					t.Fatalf("got %q want %q", got, tt.want)
				}
				return
			}
			gotCodes := codes(t, err)
			if len(gotCodes) != len(tt.codes) {
				t.Fatalf("codes = %v, want %v", gotCodes, tt.codes)
			}
			for i := range gotCodes {
				if gotCodes[i] != tt.codes[i] {
					t.Fatalf("codes = %v, want %v", gotCodes, tt.codes)
				}
			}
		})
	}
}

func TestString_MessageOverrideAndTranslation(t *testing.T) {
	ctx := context.Background()
	_, err := g.String().Min(2, "Name is too short").Parse(ctx, "a")
	iss, _ := actionize.AsIssues(err)
	if len(iss) != 1 || iss[0].Message != "Name is too short" {
		t.Fatalf("override not applied: %#v", iss)
	}
	_, err = g.String().Min(3).Parse(ctx, "a")
	iss, _ = actionize.AsIssues(err)
	if len(iss) != 1 || iss[0].Message != "Must contain at least 3 character(s)" {
		t.Fatalf("translated message mismatch: %#v", iss)
	}
	if iss[0].Params["min"] != 3 {
		t.Fatalf("params not kept: %#v", iss[0].Params)
	}
}

func TestNumber_Coercion(t *testing.T) {
	ctx := context.Background()
	n := g.Number().Min(0).Max(10)
	for _, in := range []any{"2.5", " 2.5 ", 2.5} {
		v, err := n.Parse(ctx, in)
		if err != nil || v != 2.5 {
			t.Fatalf("Parse(%#v) = %v, %v", in, v, err)
		}
	}
	if _, err := n.Parse(ctx, "abc"); codes(t, err)[0] != actionize.CodeInvalidType {
		t.Fatalf("want invalid_type, got %v", err)
	}
	if _, err := n.Parse(ctx, "-1"); codes(t, err)[0] != actionize.CodeTooSmall {
		t.Fatalf("want too_small, got %v", err)
	}
	if _, err := n.Parse(ctx, "11"); codes(t, err)[0] != actionize.CodeTooBig {
		t.Fatalf("want too_big, got %v", err)
	}
	if _, err := n.Parse(ctx, "NaN"); err == nil {
		t.Fatalf("NaN must be rejected")
	}
	if _, err := g.Int().Parse(ctx, "1.5"); codes(t, err)[0] != actionize.CodeInvalidType {
		t.Fatalf("Int must reject fractions, got %v", err)
	}
	if v, err := g.Int().Parse(ctx, "42"); err != nil || v != 42 {
		t.Fatalf("Int Parse = %v, %v", v, err)
	}
	for _, in := range []any{"1e30", "-1e30", "9223372036854775808", 1e19} {
		if _, err := g.Int().Min(0).Parse(ctx, in); codes(t, err)[0] != actionize.CodeInvalidType {
			t.Fatalf("Int must reject out-of-range %v, got %v", in, err)
		}
	}
}

func TestInt_OutOfRangeInObject(t *testing.T) {
	obj := g.Object().Field("age", g.Int().Min(0)).Required().MustBuild()
	out, err := obj.Parse(context.Background(), map[string]any{"age": "1e30"})
	if err == nil {
		t.Fatalf("want error, got %v", out)
	}
	iss, _ := actionize.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/age" || iss[0].Code != actionize.CodeInvalidType {
		t.Fatalf("unexpected issues: %v", iss)
	}
	out, err = obj.Parse(context.Background(), map[string]any{"age": "9007199254740992"})
	if err != nil || out["age"] != int64(9007199254740992) {
		t.Fatalf("large in-range value: %v, %v", out, err)
	}
}

func TestBool_Checkbox(t *testing.T) {
	ctx := context.Background()
	b := g.Bool()
	for in, want := range map[string]bool{"on": true, "TRUE": true, "1": true, "yes": true, "": false, "off": false, "0": false, "no": false} {
		got, err := b.Parse(ctx, in)
		if err != nil || got != want {
			t.Fatalf("Parse(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := b.Parse(ctx, "maybe"); codes(t, err)[0] != actionize.CodeInvalidType {
		t.Fatalf("want invalid_type, got %v", err)
	}
	_, err := g.Bool().True("accept it").Parse(ctx, "off")
	iss, _ := actionize.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != actionize.CodeCustom || iss[0].Message != "accept it" {
		t.Fatalf("True() issue mismatch: %#v", iss)
	}
}
