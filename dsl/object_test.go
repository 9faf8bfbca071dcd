package dsl_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aymenmerabta5/actionize"
	g "github.com/aymenmerabta5/actionize/dsl"
	"github.com/google/go-cmp/cmp"
)

func signupObject() *g.ObjectSchema {
	return g.Object().
		Field("email", g.String().Trim().Email()).Required().
		Field("password", g.String().Min(8)).Required().
		Field("age", g.Int().Min(18)).Optional().
		Field("plan", g.Enum("free", "pro")).Default("free").
		Field("terms", g.Bool()).
		MustBuild()
}

func TestObject_ParseValid(t *testing.T) {
	got, err := signupObject().Parse(context.Background(), map[string]any{
		"email":    " a@example.com ",
		"password": "longenough",
		"age":      "30",
		"terms":    "on",
		"submit":   "Sign up",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{
		"email":    "a@example.com",
		"password": "longenough",
		"age":      int64(30),
		"plan":     "free",
		"terms":    true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestObject_MissingAndEmpty(t *testing.T) {
	got, err := signupObject().Parse(context.Background(), map[string]any{
		"email":    "a@example.com",
		"password": "longenough",
		"age":      "",
	})
	if err != nil {
		t.Fatalf("empty optional number must count as missing: %v", err)
	}
	if _, ok := got["age"]; ok {
		t.Fatalf("age should be absent: %#v", got)
	}
	if got["terms"] != false {
		t.Fatalf("missing checkbox should parse as false: %#v", got["terms"])
	}

	_, err = signupObject().Parse(context.Background(), map[string]any{"password": "short"})
	iss, ok := actionize.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	type pc struct{ Path, Code string }
	var gotPC []pc
	for _, it := range iss {
		gotPC = append(gotPC, pc{it.Path, it.Code})
	}
	wantPC := []pc{{"/email", actionize.CodeRequired}, {"/password", actionize.CodeTooShort}}
	if diff := cmp.Diff(wantPC, gotPC); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestObject_UnknownStrict(t *testing.T) {
	obj := g.Object().Field("name", g.String()).UnknownStrict().MustBuild()
	_, err := obj.Parse(context.Background(), map[string]any{"name": "x", "b": "1", "a": "2"})
	iss, _ := actionize.AsIssues(err)
	if len(iss) != 2 || iss[0].Path != "/a" || iss[1].Path != "/b" || iss[0].Code != actionize.CodeUnknownKey {
		t.Fatalf("unexpected issues: %#v", iss)
	}
	if obj.JSONSchema().AdditionalProperties != false {
		t.Fatalf("strict objects must export additionalProperties=false")
	}
}

func TestObject_RefineRunsAfterFields(t *testing.T) {
	called := 0
	obj := g.Object().
		Field("a", g.String()).Required().
		Field("b", g.String()).Required().
		Refine("same", func(_ context.Context, m map[string]any) error {
			called++
			if m["a"] != m["b"] {
				return actionize.Issues{actionize.IssueAt("b", actionize.CodeCustom, "must match a", nil)}
			}
			return nil
		}).
		Refine("plain", func(context.Context, map[string]any) error { return errors.New("form-level") }).
		MustBuild()

	if _, err := obj.Parse(context.Background(), map[string]any{"a": "x"}); err == nil || called != 0 {
		t.Fatalf("refine must not run when a field fails (called=%d)", called)
	}
	_, err := obj.Parse(context.Background(), map[string]any{"a": "x", "b": "y"})
	iss, _ := actionize.AsIssues(err)
	if called != 1 || len(iss) != 2 {
		t.Fatalf("called=%d issues=%#v", called, iss)
	}
	if iss[0].Path != "/b" || iss[1].Path != "/" || iss[1].Message != "form-level" {
		t.Fatalf("unexpected issues: %#v", iss)
	}
}

func TestObject_FieldValidator(t *testing.T) {
	obj := signupObject()
	if diff := cmp.Diff([]string{"email", "password", "age", "plan", "terms"}, obj.Fields()); diff != "" {
		t.Fatalf("field order (-want +got):\n%s", diff)
	}
	fs, ok := obj.Field("email")
	if !ok {
		t.Fatalf("email not found")
	}
	ctx := context.Background()
	_, err := fs.ParseField(ctx, "")
	if iss, _ := actionize.AsIssues(err); len(iss) != 1 || iss[0].Code != actionize.CodeInvalidFormat {
		t.Fatalf("empty string field: %#v", err)
	}
	if _, err := fs.ParseField(ctx, nil); err == nil {
		t.Fatalf("nil required field must fail")
	}
	age, _ := obj.Field("age")
	if v, err := age.ParseField(ctx, ""); err != nil || v != nil {
		t.Fatalf("optional empty age = %v, %v", v, err)
	}
	plan, _ := obj.Field("plan")
	if v, err := plan.ParseField(ctx, nil); err != nil || v != "free" {
		t.Fatalf("default plan = %v, %v", v, err)
	}
	if _, ok := obj.Field("nope"); ok {
		t.Fatalf("unknown field must not resolve")
	}
}

func TestObject_BuildErrors(t *testing.T) {
	if _, err := g.Object().Field("a", g.String()).Require("b").Build(); err == nil {
		t.Fatalf("expected error for undeclared required field")
	}
}

func TestObject_JSONSchema(t *testing.T) {
	sch := signupObject().JSONSchema()
	if sch.Type != "object" {
		t.Fatalf("type = %q", sch.Type)
	}
	if diff := cmp.Diff([]string{"email", "password"}, sch.Required); diff != "" {
		t.Fatalf("required (-want +got):\n%s", diff)
	}
	if sch.Properties["email"].Format != "email" {
		t.Fatalf("email format missing: %#v", sch.Properties["email"])
	}
	if sch.Properties["plan"].Default != "free" || len(sch.Properties["plan"].Enum) != 2 {
		t.Fatalf("plan schema: %#v", sch.Properties["plan"])
	}
	if sch.Properties["age"].Type != "integer" || *sch.Properties["age"].Minimum != 18 {
		t.Fatalf("age schema: %#v", sch.Properties["age"])
	}
}
