package weft

import (
	"context"
	"strings"
	"testing"

	"github.com/weftrun/weft/pkg/schema"
)

// TestTaskRunner_MiddlewareOrder covers P10: declared middleware runs in
// declaration order, outermost first, wrapping the task's own function.
func TestTaskRunner_MiddlewareOrder(t *testing.T) {
	var order []string
	record := func(name string) TaskMiddlewareFunc {
		return func(ctx *TaskContext, task AnyTask, input any, next func() (any, error)) (any, error) {
			order = append(order, "before:"+name)
			out, err := next()
			order = append(order, "after:"+name)
			return out, err
		}
	}
	outer := NewTaskMiddleware("outer", record("outer"))
	inner := NewTaskMiddleware("inner", record("inner"))

	task := NewTask("greet", func(ctx *TaskContext, in string, deps Deps) (string, error) {
		order = append(order, "run")
		return in, nil
	}, WithTaskMiddleware[string, string](outer, inner))

	rt := mustRun(t, NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil },
		WithResourceRegister[struct{}, int](task)))

	if _, err := RunTask(rt, context.Background(), task, "hi"); err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	want := []string{"before:outer", "before:inner", "run", "after:inner", "after:outer"}
	if len(order) != len(want) {
		t.Fatalf("expected order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

// TestTaskRunner_EverywhereMiddlewareRunsOnce covers the rest of P10: an
// everywhere middleware wraps a task exactly once, ahead of its own
// declared middleware.
func TestTaskRunner_EverywhereMiddlewareRunsOnce(t *testing.T) {
	var order []string
	everywhere := NewTaskMiddleware("everywhere", func(ctx *TaskContext, task AnyTask, input any, next func() (any, error)) (any, error) {
		order = append(order, "everywhere")
		return next()
	}, WithTaskMiddlewareEverywhere())
	own := NewTaskMiddleware("own", func(ctx *TaskContext, task AnyTask, input any, next func() (any, error)) (any, error) {
		order = append(order, "own")
		return next()
	})
	task := NewTask("greet", func(ctx *TaskContext, in string, deps Deps) (string, error) { return in, nil },
		WithTaskMiddleware[string, string](own))

	rt := mustRun(t, NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil },
		WithResourceRegister[struct{}, int](task, everywhere)))

	if _, err := RunTask(rt, context.Background(), task, "hi"); err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if _, err := RunTask(rt, context.Background(), task, "hi again"); err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if len(order) != 4 || order[0] != "everywhere" || order[1] != "own" {
		t.Fatalf("expected everywhere to run once ahead of own on each call, got %v", order)
	}
}

// TestTaskRunner_InputValidationFailureShape covers P9: a schema
// violation fails before the task body runs and names the field/task.
func TestTaskRunner_InputValidationFailureShape(t *testing.T) {
	task := NewTask("greet", func(ctx *TaskContext, in string, deps Deps) (string, error) {
		t.Fatal("task body should not run when input validation fails")
		return in, nil
	}, WithTaskSchemas[string, string](schema.Func(func(v any) (any, error) {
		return nil, &schema.ValidationError{Message: "must not be empty"}
	}), nil))

	rt := mustRun(t, NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil },
		WithResourceRegister[struct{}, int](task)))

	_, err := RunTask(rt, context.Background(), task, "")
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	if !strings.Contains(msg, "greet") || !strings.Contains(strings.ToLower(msg), "input") {
		t.Errorf("expected the error to name the task and the input side, got %q", msg)
	}
}

// TestTaskRunner_DeclaredErrorPassesThroughUnwrapped covers the §4.4
// distinction between a declared ErrorDef and an arbitrary task error:
// the former passes through as-is, not wrapped in a TaskRunError.
func TestTaskRunner_DeclaredErrorPassesThroughUnwrapped(t *testing.T) {
	notFound := NewErrorDef[string]("lookup.notFound")
	task := NewTask("lookup", func(ctx *TaskContext, in string, deps Deps) (string, error) {
		return "", notFound.Throw(in)
	})
	rt := mustRun(t, NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil },
		WithResourceRegister[struct{}, int](task)))

	_, err := RunTask(rt, context.Background(), task, "missing-key")
	if err == nil {
		t.Fatal("expected the declared error to propagate")
	}
	if !notFound.Is(err) {
		t.Errorf("expected the declared error to pass through unwrapped, got %v (%T)", err, err)
	}
}

// TestTaskRunner_UndeclaredErrorWrapped ensures a plain error returned
// from a task is wrapped as a TaskRunError rather than passed through.
func TestTaskRunner_UndeclaredErrorWrapped(t *testing.T) {
	task := NewTask("boom", func(ctx *TaskContext, in string, deps Deps) (string, error) {
		return "", context.DeadlineExceeded
	})
	rt := mustRun(t, NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil },
		WithResourceRegister[struct{}, int](task)))

	_, err := RunTask(rt, context.Background(), task, "x")
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := err.(*TaskRunError); !ok {
		t.Errorf("expected a *TaskRunError wrapping the undeclared error, got %T", err)
	}
}

// TestTaskRunner_TunnelExclusivity covers P8: two resources claiming the
// same tunneled task id fails registration.
func TestTaskRunner_TunnelExclusivity(t *testing.T) {
	task := NewTask("fetch", func(ctx *TaskContext, in string, deps Deps) (string, error) { return in, nil })
	r1 := NewResource("r1", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 1, nil },
		WithResourceTunnelsTask[struct{}, int]("fetch"))
	r2 := NewResource("r2", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 2, nil },
		WithResourceTunnelsTask[struct{}, int]("fetch"))

	_, err := Run(NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil },
		WithResourceRegister[struct{}, int](task, r1, r2)))
	if err == nil {
		t.Fatal("expected tunnel exclusivity violation to fail boot")
	}
}
