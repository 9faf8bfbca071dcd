package actionize

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Entry is one name/value pair of a form submission.
type Entry struct {
	Name  string
	Value string
}

// FormData is an ordered collection of name/value pairs, as produced by an
// HTML form submission. The zero value is empty and ready to use.
type FormData struct {
	entries []Entry
}

// NewFormData returns a FormData holding entries in order.
func NewFormData(entries ...Entry) *FormData {
	fd := &FormData{entries: make([]Entry, 0, len(entries))}
	fd.entries = append(fd.entries, entries...)
	return fd
}

// FormDataFromValues converts url.Values. Keys are emitted in sorted order;
// repeated values keep their relative order.
func FormDataFromValues(v url.Values) *FormData {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fd := &FormData{}
	for _, k := range keys {
		for _, val := range v[k] {
			fd.Append(k, val)
		}
	}
	return fd
}

// FormDataFromMap builds a synthetic submission from data, stringifying each
// value. Keys are emitted in sorted order. A nil map yields an empty FormData.
func FormDataFromMap(data map[string]any) *FormData {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fd := &FormData{}
	for _, k := range keys {
		fd.Append(k, Stringify(data[k]))
	}
	return fd
}

// ParseURLEncoded decodes an application/x-www-form-urlencoded payload,
// preserving the order of pairs.
func ParseURLEncoded(raw string) (*FormData, error) {
	fd := &FormData{}
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		n, err := url.QueryUnescape(name)
		if err != nil {
			return nil, fmt.Errorf("decode form name %q: %w", name, err)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("decode form value for %q: %w", n, err)
		}
		fd.Append(n, v)
	}
	return fd, nil
}

// Append adds a pair after the existing ones.
func (f *FormData) Append(name, value string) {
	f.entries = append(f.entries, Entry{Name: name, Value: value})
}

// Set replaces every pair named name with a single one.
func (f *FormData) Set(name, value string) {
	f.Delete(name)
	f.Append(name, value)
}

// Delete removes every pair named name.
func (f *FormData) Delete(name string) {
	kept := f.entries[:0]
	for _, e := range f.entries {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	f.entries = kept
}

// Get returns the first value for name.
func (f *FormData) Get(name string) (string, bool) {
	if f == nil {
		return "", false
	}
	for _, e := range f.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// GetAll returns every value for name in submission order.
func (f *FormData) GetAll(name string) []string {
	if f == nil {
		return nil
	}
	var out []string
	for _, e := range f.entries {
		if e.Name == name {
			out = append(out, e.Value)
		}
	}
	return out
}

// Len reports the number of pairs.
func (f *FormData) Len() int {
	if f == nil {
		return 0
	}
	return len(f.entries)
}

// Entries returns a copy of the pairs in order.
func (f *FormData) Entries() []Entry {
	if f == nil {
		return nil
	}
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// ToMap converts the pairs into a plain mapping. When a name repeats, the
// last value wins.
func (f *FormData) ToMap() map[string]any {
	out := make(map[string]any, f.Len())
	if f == nil {
		return out
	}
	for _, e := range f.entries {
		out[e.Name] = e.Value
	}
	return out
}

// Encode renders the pairs as application/x-www-form-urlencoded in order.
func (f *FormData) Encode() string {
	if f == nil {
		return ""
	}
	b := &strings.Builder{}
	for i, e := range f.entries {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(e.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(e.Value))
	}
	return b.String()
}

// Stringify renders a value the way it would appear in a submitted form.
// nil becomes the empty string.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
