package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const signupDef = "testdata/signup.yaml"

func TestCheckCmd_DefinitionOnly(t *testing.T) {
	var out bytes.Buffer
	if err := checkCmd(context.Background(), []string{"-f", signupDef}, nil, &out); err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.HasPrefix(out.String(), "ok: ") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestCheckCmd_Submission(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader(`{"email":"nope","password":"longenough","confirm":"longenough","terms":true}`)
	err := checkCmd(context.Background(), []string{"-f", signupDef, "-data", "-"}, in, &out)
	if !errors.Is(err, errInvalidSubmission) {
		t.Fatalf("err = %v", err)
	}
	if out.String() != "email: Invalid email (invalid_format)\n" {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	in = strings.NewReader(`{"email":"a@example.com","password":"longenough","confirm":"longenough","terms":true}`)
	if err := checkCmd(context.Background(), []string{"-f", signupDef, "-data", "-"}, in, &out); err != nil {
		t.Fatalf("valid submission: %v (%s)", err, out.String())
	}
}

func TestSchemaCmd(t *testing.T) {
	var out bytes.Buffer
	if err := schemaCmd([]string{"-f", signupDef, "-indent=false"}, &out); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if !strings.Contains(out.String(), `"title":"Sign up"`) || !strings.Contains(out.String(), `"format":"email"`) {
		t.Fatalf("output = %s", out.String())
	}
	if err := schemaCmd(nil, io.Discard); err == nil {
		t.Fatalf("expected error without -f")
	}
}

// scriptedDriver replays answers per prompt message. Input answers go
// through the validator until one passes, as survey would re-prompt.
type scriptedDriver struct {
	answers map[string][]string
	asked   []string
}

func (d *scriptedDriver) next(msg string) (string, error) {
	d.asked = append(d.asked, msg)
	q := d.answers[msg]
	if len(q) == 0 {
		return "", errAborted
	}
	d.answers[msg] = q[1:]
	return q[0], nil
}

func (d *scriptedDriver) Input(_ context.Context, cfg inputConfig) (string, error) {
	for {
		v, err := d.next(cfg.Message)
		if err != nil {
			return "", err
		}
		if v == "" {
			v = cfg.Default
		}
		if cfg.Validator == nil || cfg.Validator(v) == nil {
			return v, nil
		}
	}
}

func (d *scriptedDriver) Password(ctx context.Context, cfg inputConfig) (string, error) {
	return d.Input(ctx, cfg)
}

func (d *scriptedDriver) Confirm(_ context.Context, cfg confirmConfig) (bool, error) {
	v, err := d.next(cfg.Message)
	return v == "y", err
}

func (d *scriptedDriver) Select(_ context.Context, cfg selectConfig) (string, error) {
	return d.next(cfg.Message)
}

func TestFillCmd(t *testing.T) {
	d := &scriptedDriver{answers: map[string][]string{
		"E-mail":           {"bad", "a@example.com"},
		"password":         {"short", "longenough", "longenough"},
		"Confirm password": {"mismatch", "longenough"},
		"account":          {"personal"},
		"company":          {""},
		"age":              {"", ""},
		"starts":           {""},
		"terms":            {"n", "y"},
	}}
	var out bytes.Buffer
	if err := fillCmd(context.Background(), []string{"-f", signupDef}, d, &out); err != nil {
		t.Fatalf("fill: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "Confirm password: Passwords do not match") {
		t.Fatalf("expected the match rule to surface on submit:\n%s", out.String())
	}
	if !strings.Contains(out.String(), `"email": "a@example.com"`) {
		t.Fatalf("result not printed:\n%s", out.String())
	}
	want := []string{"E-mail", "E-mail", "password", "password", "Confirm password", "account", "company", "age", "starts", "terms", "terms", "Confirm password"}
	if diff := cmp.Diff(want, d.asked); diff != "" {
		t.Fatalf("prompt order (-want +got):\n%s", diff)
	}
}

func TestLoadServeConfig(t *testing.T) {
	t.Setenv("ACTIONIZE_ADDR", ":9999")
	t.Setenv("ACTIONIZE_DEFINITION", signupDef)
	t.Setenv("ACTIONIZE_LANG", "ja")
	cfg, err := loadServeConfig(nil)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	want := serveConfig{Addr: ":9999", Definition: signupDef, Lang: "ja", LogLevel: "info"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
	cfg, err = loadServeConfig([]string{"-addr", ":1234", "-log-level", "debug"})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Addr != ":1234" || parseLevel(cfg.LogLevel) != slog.LevelDebug {
		t.Fatalf("flags should override env: %+v", cfg)
	}
}

func TestFormServer_SubmitAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "form.yaml")
	if err := os.WriteFile(path, []byte("title: A\nfields:\n  - name: name\n    required: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := newFormServer(path, log)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	h := s.routes()

	submit := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	if code := submit("name=x"); code != http.StatusOK {
		t.Fatalf("submit status = %d", code)
	}

	if err := os.WriteFile(path, []byte("title: B\nfields:\n  - name: name\n    min: 3\n    required: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if code := submit("name=x"); code != http.StatusBadRequest {
		t.Fatalf("reloaded definition not applied, status = %d", code)
	}

	if err := os.WriteFile(path, []byte("fields: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.reload(); err == nil {
		t.Fatalf("expected reload error")
	}
	if s.current.Load().def.Title != "B" {
		t.Fatalf("previous definition must stay active")
	}
}
