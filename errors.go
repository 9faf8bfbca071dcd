package actionize

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeUnknownKey    = "unknown_key"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodePattern       = "pattern"
	CodeInvalidEnum   = "invalid_enum"
	CodeInvalidFormat = "invalid_format"
	// CodeCustom is used for refinements that return a plain error.
	CodeCustom = "custom"
)

// Sentinel errors returned by constructors and submission paths.
var (
	ErrNilSchema          = errors.New("actionize: schema is nil")
	ErrNilAction          = errors.New("actionize: action is nil")
	ErrSubmissionInFlight = errors.New("actionize: a submission is already in flight")
	ErrUnsupportedMedia   = errors.New("actionize: unsupported content type")
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /email). "/" or "" for form-level issues.
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, format names, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":1}) for i18n.
	Params map[string]any
}

// Field returns the first path segment of the issue, unescaped per RFC 6901.
// It is empty when the issue is not attached to a field.
func (it Issue) Field() string {
	p := strings.TrimPrefix(it.Path, "/")
	if p == "" {
		return ""
	}
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return strings.ReplaceAll(strings.ReplaceAll(p, "~1", "/"), "~0", "~")
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. too_short at /name
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Messages returns the issue messages in order.
func (iss Issues) Messages() []string {
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		out = append(out, it.Message)
	}
	return out
}

// Join concatenates every issue message with sep.
func (iss Issues) Join(sep string) string {
	return strings.Join(iss.Messages(), sep)
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssueAt creates an Issue attached to the named field.
func IssueAt(field, code, msg string, params map[string]any) Issue {
	return Issue{Path: Pointer(field), Code: code, Message: msg, Params: params}
}

// Pointer renders a field name as a single-segment JSON Pointer.
func Pointer(field string) string {
	if field == "" {
		return "/"
	}
	return "/" + strings.ReplaceAll(strings.ReplaceAll(field, "~", "~0"), "/", "~1")
}

// issuesOf converts an arbitrary validation error into Issues, wrapping plain
// errors as a form-level custom issue.
func issuesOf(err error) Issues {
	if err == nil {
		return nil
	}
	if iss, ok := AsIssues(err); ok {
		return iss
	}
	return Issues{{Path: "/", Code: CodeCustom, Message: err.Error(), Cause: err}}
}
