package actionize_test

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aymenmerabta5/actionize"
	"github.com/google/go-cmp/cmp"
)

func TestParseRequest_ContentTypes(t *testing.T) {
	var mp bytes.Buffer
	mw := multipart.NewWriter(&mp)
	_ = mw.WriteField("name", "Alice")
	fw, _ := mw.CreateFormFile("avatar", "a.png")
	_, _ = fw.Write([]byte("binary"))
	_ = mw.WriteField("age", "30")
	_ = mw.Close()

	tests := []struct {
		name  string
		ctype string
		body  string
		want  map[string]any
	}{
		{name: "urlencoded", ctype: "application/x-www-form-urlencoded; charset=utf-8", body: "name=Alice&age=30", want: map[string]any{"name": "Alice", "age": "30"}},
		{name: "no content type", body: "name=Alice", want: map[string]any{"name": "Alice"}},
		{name: "json", ctype: "application/json", body: `{"name":"Alice","age":30,"tags":["a","b"],"ok":true,"none":null}`, want: map[string]any{"name": "Alice", "age": "30", "tags": `["a","b"]`, "ok": "true", "none": ""}},
		{name: "multipart skips files", ctype: mw.FormDataContentType(), body: mp.String(), want: map[string]any{"name": "Alice", "age": "30"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.ctype != "" {
				req.Header.Set("Content-Type", tt.ctype)
			}
			fd, err := actionize.ParseRequest(req, 0)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if diff := cmp.Diff(tt.want, fd.ToMap()); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRequest_QueryAndErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?q=go&page=2", nil)
	fd, err := actionize.ParseRequest(req, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v, _ := fd.Get("q"); v != "go" {
		t.Fatalf("q = %q", v)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/csv")
	if _, err := actionize.ParseRequest(req, 0); !errors.Is(err, actionize.ErrUnsupportedMedia) {
		t.Fatalf("want ErrUnsupportedMedia, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 100)))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err = actionize.ParseRequest(req, 10)
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("want MaxBytesError, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[1,2]`))
	req.Header.Set("Content-Type", "application/json")
	if _, err := actionize.ParseRequest(req, 0); err == nil {
		t.Fatalf("a JSON array is not a form")
	}
}
