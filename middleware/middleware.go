// Package middleware exposes actionize schemas and actions over net/http.
// Framework adapters live in the echo and gin submodules.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aymenmerabta5/actionize"
	json "github.com/goccy/go-json"
)

// ctxKeyResult is a typed context key for storing a parsed value.
// Using a generic struct type ensures uniqueness per T.
type ctxKeyResult[T any] struct{}

// ContextWithResult attaches a parsed value to the context.
func ContextWithResult[T any](ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, ctxKeyResult[T]{}, v)
}

// ResultFromContext retrieves a parsed value from context.
func ResultFromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(ctxKeyResult[T]{}).(T)
	return v, ok
}

// Options configures the HTTP helpers.
type Options struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// MaxBytes caps request bodies; zero means actionize.DefaultMaxBytes.
	MaxBytes int64
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o Options) maxBytes() int64 {
	if o.MaxBytes <= 0 {
		return actionize.DefaultMaxBytes
	}
	return o.MaxBytes
}

// IssuePayload is the wire shape of one issue.
type IssuePayload struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// ErrorPayload shapes a validation or request error for JSON responses.
func ErrorPayload(err error) map[string]any {
	if verr, ok := actionize.AsValidationError(err); ok {
		out := map[string]any{"error": verr.Error(), "kind": verr.Kind.String()}
		if verr.Kind == actionize.FailurePerField {
			out["fields"] = verr.Fields
		}
		return out
	}
	if iss, ok := actionize.AsIssues(err); ok {
		items := make([]IssuePayload, 0, len(iss))
		for _, it := range iss {
			items = append(items, IssuePayload{Path: it.Path, Code: it.Code, Message: it.Message, Params: it.Params})
		}
		return map[string]any{"error": iss.Join(", "), "issues": items}
	}
	return map[string]any{"error": err.Error()}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// statusOf maps request-reading failures to HTTP statuses.
func statusOf(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, actionize.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

// Validate parses the request submission with s, stores the parsed value in
// the request context on success, or responds 400 with the issues.
func Validate[T any](s actionize.Schema[T], opts Options) func(http.Handler) http.Handler {
	log := opts.logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fd, err := actionize.ParseRequest(r, opts.maxBytes())
			if err != nil {
				log.DebugContext(r.Context(), "request.rejected", slog.String("err", err.Error()))
				_ = WriteJSON(w, statusOf(err), ErrorPayload(err))
				return
			}
			v, err := s.Parse(r.Context(), fd.ToMap())
			if err != nil {
				log.DebugContext(r.Context(), "request.invalid", slog.String("err", err.Error()))
				_ = WriteJSON(w, http.StatusBadRequest, ErrorPayload(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithResult(r.Context(), v)))
		})
	}
}

// Handler serves a form action as a POST endpoint. The submission is
// validated first and reported per field (400); the action then runs with
// cfg.InitialData as its previous state and its result is written as JSON.
// Errors returned by the action are 400 when they carry validation issues
// and 500 otherwise.
func Handler[T, R any](cfg actionize.Config[T, R], opts Options) http.Handler {
	log := opts.logger()
	isField := func(name string) bool {
		_, ok := cfg.Schema.Field(name)
		return ok
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			_ = WriteJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}
		ctx := r.Context()
		fd, err := actionize.ParseRequest(r, opts.maxBytes())
		if err != nil {
			log.DebugContext(ctx, "request.rejected", slog.String("err", err.Error()))
			_ = WriteJSON(w, statusOf(err), ErrorPayload(err))
			return
		}
		if _, err := cfg.Schema.Parse(ctx, fd.ToMap()); err != nil {
			iss, ok := actionize.AsIssues(err)
			if !ok {
				iss = actionize.Issues{{Path: "/", Code: actionize.CodeCustom, Message: err.Error(), Cause: err}}
			}
			verr := actionize.NewPerFieldError(iss, isField)
			if len(verr.Fields) == 0 {
				verr = actionize.NewJoinedError(iss)
			}
			log.DebugContext(ctx, "form.invalid", slog.Int("fields", len(verr.Fields)))
			_ = WriteJSON(w, http.StatusBadRequest, ErrorPayload(verr))
			return
		}
		result, err := cfg.Action(ctx, cfg.InitialData, fd)
		if err != nil {
			if _, ok := actionize.AsIssues(err); ok {
				_ = WriteJSON(w, http.StatusBadRequest, ErrorPayload(err))
				return
			}
			log.ErrorContext(ctx, "action.error", slog.String("err", err.Error()))
			_ = WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
			return
		}
		_ = WriteJSON(w, http.StatusOK, map[string]any{"data": result})
	})
}

// SchemaHandler serves the JSON Schema projection of s on GET.
func SchemaHandler(s actionize.JSONSchemer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			_ = WriteJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}
		_ = WriteJSON(w, http.StatusOK, s.JSONSchema())
	})
}
