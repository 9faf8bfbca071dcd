package dsl

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aymenmerabta5/actionize"
	js "github.com/aymenmerabta5/actionize/jsonschema"
	json "github.com/goccy/go-json"
)

// Bind projects an object schema onto struct type T. Parsed values are
// mapped onto T through its json tags.
func Bind[T any](o *ObjectSchema) (actionize.ObjectSchema[T], error) {
	if o == nil {
		return nil, actionize.ErrNilSchema
	}
	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("dsl: Bind[T] requires a struct type, got %v", rt)
	}
	return &typedObject[T]{inner: o}, nil
}

// MustBind is like Bind but panics on error.
func MustBind[T any](o *ObjectSchema) actionize.ObjectSchema[T] {
	s, err := Bind[T](o)
	if err != nil {
		panic(err)
	}
	return s
}

type typedObject[T any] struct {
	inner *ObjectSchema
}

func (t *typedObject[T]) Parse(ctx context.Context, v any) (T, error) {
	var out T
	m, err := t.inner.Parse(ctx, v)
	if err != nil {
		return out, err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return out, actionize.Issues{{Path: "/", Code: actionize.CodeInvalidType, Message: err.Error(), Cause: err}}
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, actionize.Issues{{Path: "/", Code: actionize.CodeInvalidType, Message: err.Error(), Cause: err}}
	}
	return out, nil
}

func (t *typedObject[T]) Fields() []string { return t.inner.Fields() }

func (t *typedObject[T]) Field(name string) (actionize.FieldSchema, bool) {
	return t.inner.Field(name)
}

func (t *typedObject[T]) JSONSchema() *js.Schema { return t.inner.JSONSchema() }
