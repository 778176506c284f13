package weft

import (
	"context"
	"fmt"
	"reflect"
)

// AsyncContextDef declares a scoped value that survives cooperative
// suspension points by riding an explicit context.Context key, rather than
// goroutine-local storage (Go has none). Provide attaches a value for the
// remainder of a context's lineage; Use/Require read it back.
type AsyncContextDef[T any] struct {
	base
	key ctxKey
}

type ctxKey struct{ id string }

// NewAsyncContext declares a scoped value of type T.
func NewAsyncContext[T any](id string) *AsyncContextDef[T] {
	return &AsyncContextDef[T]{base: newBase(id), key: ctxKey{id: id}}
}

func (a *AsyncContextDef[T]) Kind() Kind { return KindAsyncContext }

// Provide returns a child of ctx carrying value, retrievable by Use/Require
// from ctx or any context derived from it.
func (a *AsyncContextDef[T]) Provide(ctx context.Context, value T) context.Context {
	return context.WithValue(ctx, a.key, value)
}

// Use retrieves the value provided earlier on ctx's lineage, if any.
func (a *AsyncContextDef[T]) Use(ctx context.Context) (T, bool) {
	v, ok := ctx.Value(a.key).(T)
	return v, ok
}

// Require retrieves the value or returns an ExecutionError identifying
// this context as missing.
func (a *AsyncContextDef[T]) Require(ctx context.Context) (T, error) {
	v, ok := a.Use(ctx)
	if !ok {
		return v, newExecutionError("runner.errors.asyncContextMissing",
			"required async context \""+a.ID()+"\" is not present", nil)
	}
	return v, nil
}

// anyAsyncContext is the non-generic face of AsyncContextDef[T], letting
// RequireMiddleware inspect a context's retrieved value without knowing T.
type anyAsyncContext interface {
	ID() string
	rawValue(ctx context.Context) (any, bool)
}

func (a *AsyncContextDef[T]) rawValue(ctx context.Context) (any, bool) {
	v, ok := a.Use(ctx)
	if !ok {
		return nil, false
	}
	return v, true
}

// RequireMiddleware builds task middleware implementing spec.md §4.6's
// ctx.require([keys]): before next runs, it calls req's Use and fails the
// call with an ExecutionError if the context is absent; if keys are given,
// it additionally asserts each one is present on the retrieved value
// itself (a non-zero struct field or a map key — e.g. required fields on a
// request-scoped object) rather than letting the task discover a missing
// one partway through its own run body.
func RequireMiddleware(req anyAsyncContext, keys ...string) TaskMiddlewareFunc {
	return func(ctx *TaskContext, task AnyTask, input any, next func() (any, error)) (any, error) {
		v, ok := req.rawValue(ctx.Context())
		if !ok {
			return nil, newExecutionError("runner.errors.asyncContextMissing",
				fmt.Sprintf("required async context %q is not present", req.ID()), nil)
		}
		for _, key := range keys {
			if !hasKey(v, key) {
				return nil, newExecutionError("runner.errors.asyncContextKeyMissing",
					fmt.Sprintf("required async context %q is missing key %q", req.ID(), key), nil)
			}
		}
		return next()
	}
}

// hasKey reports whether key names a present map key on v, or a struct
// field of v holding a non-zero value, following any number of pointer
// indirections. Any other shape (a scalar,
// a slice, a nil interface) has no keys and always reports absent.
func hasKey(v any, key string) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		for _, k := range rv.MapKeys() {
			if fmt.Sprint(k.Interface()) == key {
				return true
			}
		}
		return false
	case reflect.Struct:
		f := rv.FieldByName(key)
		return f.IsValid() && !f.IsZero()
	default:
		return false
	}
}

// cycleFrame keys the in-flight event-emission stack carried on the
// context, used by the Event Manager to detect an event re-entering its
// own emission before it completes.
type cycleFrameKey struct{}

type cycleFrame struct {
	eventIDs []string
	parent   *cycleFrame
}

func withCycleFrame(ctx context.Context, eventID string) (context.Context, bool) {
	frame, _ := ctx.Value(cycleFrameKey{}).(*cycleFrame)
	for f := frame; f != nil; f = f.parent {
		for _, id := range f.eventIDs {
			if id == eventID {
				return ctx, false
			}
		}
	}
	next := &cycleFrame{eventIDs: []string{eventID}, parent: frame}
	return context.WithValue(ctx, cycleFrameKey{}, next), true
}
