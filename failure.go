package actionize

import (
	"errors"
	"sort"
	"strings"
)

// FailureKind tags which shape a ValidationError carries.
type FailureKind int

const (
	// FailurePerField carries one FieldError per failing field.
	FailurePerField FailureKind = iota + 1
	// FailureJoined carries every issue message joined into one string.
	FailureJoined
)

func (k FailureKind) String() string {
	switch k {
	case FailurePerField:
		return "per_field"
	case FailureJoined:
		return "joined"
	default:
		return "unknown"
	}
}

// FieldError is the last known validation failure for one field, reduced to
// its first issue.
type FieldError struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

func fieldErrorOf(it Issue) FieldError {
	return FieldError{Message: it.Message, Kind: it.Code}
}

// ValidationError reports a failed validation in one of two shapes. Call
// sites pick the shape through NewJoinedError or NewPerFieldError.
type ValidationError struct {
	Kind FailureKind
	// Message is set for FailureJoined.
	Message string
	// Fields is set for FailurePerField.
	Fields map[string]FieldError
	// Issues keeps the underlying issues for either shape.
	Issues Issues
}

// NewJoinedError builds a FailureJoined error whose message is every issue
// message joined by ", ".
func NewJoinedError(iss Issues) *ValidationError {
	return &ValidationError{Kind: FailureJoined, Message: iss.Join(", "), Issues: iss}
}

// NewPerFieldError builds a FailurePerField error keyed by each issue's first
// path segment. The first issue wins when a field fails more than once.
// Issues without a field, or whose field is rejected by allow, are dropped.
func NewPerFieldError(iss Issues, allow func(field string) bool) *ValidationError {
	fields := make(map[string]FieldError, len(iss))
	for _, it := range iss {
		name := it.Field()
		if name == "" {
			continue
		}
		if allow != nil && !allow(name) {
			continue
		}
		if _, seen := fields[name]; seen {
			continue
		}
		fields[name] = fieldErrorOf(it)
	}
	return &ValidationError{Kind: FailurePerField, Fields: fields, Issues: iss}
}

func (e *ValidationError) Error() string {
	if e.Kind == FailureJoined {
		return e.Message
	}
	msgs := e.FieldMessages()
	names := make([]string, 0, len(msgs))
	for name := range msgs {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+msgs[name])
	}
	return strings.Join(parts, ", ")
}

// Unwrap exposes the underlying Issues to errors.As.
func (e *ValidationError) Unwrap() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e.Issues
}

// FieldMessages flattens the error into field -> message. A FailureJoined
// error is reported under the empty key.
func (e *ValidationError) FieldMessages() map[string]string {
	if e.Kind == FailureJoined {
		return map[string]string{"": e.Message}
	}
	out := make(map[string]string, len(e.Fields))
	for name, fe := range e.Fields {
		out[name] = fe.Message
	}
	return out
}

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
