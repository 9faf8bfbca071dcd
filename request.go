package actionize

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elnormous/contenttype"
	json "github.com/goccy/go-json"
)

// DefaultMaxBytes bounds request bodies read by ParseRequest.
const DefaultMaxBytes int64 = 10 << 20

var (
	urlEncodedMediaType = contenttype.NewMediaType("application/x-www-form-urlencoded")
	multipartMediaType  = contenttype.NewMediaType("multipart/form-data")
	jsonMediaType       = contenttype.NewMediaType("application/json")
)

// ParseRequest reads a form submission from r. GET and HEAD requests use the
// query string; other methods read the body as urlencoded, multipart or JSON.
// File parts of multipart bodies are skipped. maxBytes <= 0 selects
// DefaultMaxBytes.
func ParseRequest(r *http.Request, maxBytes int64) (*FormData, error) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return ParseURLEncoded(r.URL.RawQuery)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	body := r.Body
	if r.Header.Get("Content-Type") == "" {
		return readURLEncoded(body)
	}
	ctype, err := contenttype.GetMediaType(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMedia, err)
	}
	switch {
	case ctype.Matches(urlEncodedMediaType):
		return readURLEncoded(body)
	case ctype.Matches(multipartMediaType):
		return parseMultipart(r)
	case ctype.Matches(jsonMediaType):
		return ParseJSON(body)
	default:
		return nil, fmt.Errorf("%w: %s/%s", ErrUnsupportedMedia, ctype.Type, ctype.Subtype)
	}
}

func readURLEncoded(body io.Reader) (*FormData, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read form body: %w", err)
	}
	return ParseURLEncoded(string(raw))
}

func parseMultipart(r *http.Request) (*FormData, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("open multipart body: %w", err)
	}
	fd := &FormData{}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return fd, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read multipart part: %w", err)
		}
		name := part.FormName()
		if name == "" || part.FileName() != "" {
			_ = part.Close()
			continue
		}
		raw, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, fmt.Errorf("read multipart field %q: %w", name, err)
		}
		fd.Append(name, string(raw))
	}
}

// ParseJSON decodes a JSON object into FormData. Scalars are stringified;
// nested arrays and objects are kept as their JSON text.
func ParseJSON(r io.Reader) (*FormData, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("decode JSON form body: %w", err)
	}
	for k, v := range obj {
		switch v.(type) {
		case map[string]any, []any:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode JSON field %q: %w", k, err)
			}
			obj[k] = string(raw)
		}
	}
	return FormDataFromMap(obj), nil
}
