package actionize

import (
	"context"

	js "github.com/aymenmerabta5/actionize/jsonschema"
)

// Schema is the validation capability consumed by actions and controllers.
// Parse transforms an untyped input into T (Coerce -> Normalize -> Validate ->
// Refine) and returns Issues when validation fails.
type Schema[T any] interface {
	Parse(ctx context.Context, v any) (T, error)
}

// FieldSchema validates a single form field in isolation.
type FieldSchema interface {
	ParseField(ctx context.Context, v any) (any, error)
}

// ObjectSchema is an object-shaped Schema whose fields can be validated one
// at a time.
type ObjectSchema[T any] interface {
	Schema[T]
	// Fields lists the declared field names in declaration order.
	Fields() []string
	// Field returns the sub-validator for name, if declared.
	Field(name string) (FieldSchema, bool)
}

// JSONSchemer is implemented by schemas that can project themselves into a
// JSON Schema document.
type JSONSchemer interface {
	JSONSchema() *js.Schema
}

// Normalizer provides an optional hook to normalize typed values during the
// Normalize phase of parsing. If it is not implemented, the phase is skipped.
type Normalizer[T any] interface {
	Normalize(ctx context.Context, v T) (T, error)
}

// Refiner provides an optional hook at the end of parsing to perform
// cross-field validation or external I/O. If it is not implemented, the phase
// is skipped.
type Refiner[T any] interface {
	Refine(ctx context.Context, v T) error
}

// ApplyNormalize calls Normalizer[T] if implemented.
func ApplyNormalize[T any](ctx context.Context, v T, s any) (T, error) {
	if n, ok := s.(Normalizer[T]); ok {
		return n.Normalize(ctx, v)
	}
	return v, nil
}

// ApplyRefine calls Refiner[T] if implemented.
func ApplyRefine[T any](ctx context.Context, v T, s any) error {
	if r, ok := s.(Refiner[T]); ok {
		return r.Refine(ctx, v)
	}
	return nil
}
