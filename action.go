package actionize

import "context"

// Handler receives a validated input and produces a result.
type Handler[T, R any] func(ctx context.Context, input T) (R, error)

// Action is a form action: it receives the previous result and a raw form
// submission and produces the next result.
type Action[R any] func(ctx context.Context, prev R, in *FormData) (R, error)

// Build wraps handler with schema validation. The returned Action converts
// its input into a plain mapping, parses it with schema and, on success,
// returns handler's result unchanged. On validation failure it returns a
// FailureJoined *ValidationError and handler is not invoked. Errors returned
// by handler are passed through without wrapping.
func Build[T, R any](schema Schema[T], handler Handler[T, R]) Action[R] {
	return func(ctx context.Context, _ R, in *FormData) (R, error) {
		var zero R
		parsed, err := schema.Parse(ctx, in.ToMap())
		if err != nil {
			return zero, NewJoinedError(issuesOf(err))
		}
		return handler(ctx, parsed)
	}
}

// Config bundles a built action with its schema and initial state for a
// Controller.
type Config[T, R any] struct {
	Schema      ObjectSchema[T]
	Action      Action[R]
	InitialData R
}

// BuildConfig returns a Config holding the given values as-is.
func BuildConfig[T, R any](schema ObjectSchema[T], action Action[R], initialData R) Config[T, R] {
	return Config[T, R]{Schema: schema, Action: action, InitialData: initialData}
}
