package dsl_test

import (
	"context"
	"testing"

	"github.com/aymenmerabta5/actionize"
	g "github.com/aymenmerabta5/actionize/dsl"
)

type signup struct {
	Email string `json:"email"`
	Age   int    `json:"age"`
	Terms bool   `json:"terms"`
}

func TestBind_ProjectsOntoStruct(t *testing.T) {
	obj := g.Object().
		Field("email", g.String().Email()).Required().
		Field("age", g.Int()).
		Field("terms", g.Bool()).
		MustBuild()
	s := g.MustBind[signup](obj)

	got, err := s.Parse(context.Background(), map[string]any{"email": "a@example.com", "age": "21", "terms": "on"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != (signup{Email: "a@example.com", Age: 21, Terms: true}) {
		t.Fatalf("got %#v", got)
	}
	if len(s.Fields()) != 3 {
		t.Fatalf("fields = %v", s.Fields())
	}
	if _, err := s.Parse(context.Background(), map[string]any{}); err == nil {
		t.Fatalf("expected required issue")
	} else if iss, ok := actionize.AsIssues(err); !ok || iss[0].Path != "/email" {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestBind_RejectsNonStruct(t *testing.T) {
	if _, err := g.Bind[map[string]any](g.Object().MustBuild()); err == nil {
		t.Fatalf("expected error for non-struct T")
	}
}
