package actionize_test

import (
	"net/url"
	"testing"

	"github.com/aymenmerabta5/actionize"
	"github.com/google/go-cmp/cmp"
)

func TestParseURLEncoded_PreservesOrder(t *testing.T) {
	fd, err := actionize.ParseURLEncoded("b=2&a=1&b=3&name=Jane+Doe&empty=&&flag")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []actionize.Entry{
		{Name: "b", Value: "2"},
		{Name: "a", Value: "1"},
		{Name: "b", Value: "3"},
		{Name: "name", Value: "Jane Doe"},
		{Name: "empty", Value: ""},
		{Name: "flag", Value: ""},
	}
	if diff := cmp.Diff(want, fd.Entries()); diff != "" {
		t.Fatalf("entries (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"2", "3"}, fd.GetAll("b")); diff != "" {
		t.Fatalf("GetAll (-want +got):\n%s", diff)
	}
	if got := fd.ToMap()["b"]; got != "3" {
		t.Fatalf("ToMap must keep the last value, got %v", got)
	}
	if _, err := actionize.ParseURLEncoded("a=%zz"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFormData_Mutations(t *testing.T) {
	fd := actionize.NewFormData(actionize.Entry{Name: "a", Value: "1"}, actionize.Entry{Name: "b", Value: "2"}, actionize.Entry{Name: "a", Value: "3"})
	fd.Set("a", "x")
	if diff := cmp.Diff("b=2&a=x", fd.Encode()); diff != "" {
		t.Fatalf("encode (-want +got):\n%s", diff)
	}
	fd.Delete("b")
	if v, ok := fd.Get("b"); ok || v != "" {
		t.Fatalf("b should be gone")
	}
	if fd.Len() != 1 {
		t.Fatalf("len = %d", fd.Len())
	}

	var nilFD *actionize.FormData
	if nilFD.Len() != 0 || len(nilFD.ToMap()) != 0 || nilFD.Encode() != "" {
		t.Fatalf("nil FormData must behave as empty")
	}
}

func TestFormDataFromMap_Stringifies(t *testing.T) {
	fd := actionize.FormDataFromMap(map[string]any{"name": "Alice", "age": 30, "ok": true, "ratio": 0.5, "none": nil})
	want := []actionize.Entry{
		{Name: "age", Value: "30"},
		{Name: "name", Value: "Alice"},
		{Name: "none", Value: ""},
		{Name: "ok", Value: "true"},
		{Name: "ratio", Value: "0.5"},
	}
	if diff := cmp.Diff(want, fd.Entries()); diff != "" {
		t.Fatalf("entries (-want +got):\n%s", diff)
	}
	if actionize.FormDataFromMap(nil).Len() != 0 {
		t.Fatalf("nil map must yield an empty FormData")
	}
}

func TestFormDataFromValues(t *testing.T) {
	fd := actionize.FormDataFromValues(url.Values{"z": {"1"}, "a": {"2", "3"}})
	if diff := cmp.Diff("a=2&a=3&z=1", fd.Encode()); diff != "" {
		t.Fatalf("encode (-want +got):\n%s", diff)
	}
}
