package weft

import (
	"context"
	"testing"
)

func TestAsyncContext_ProvideUseRequire(t *testing.T) {
	requestID := NewAsyncContext[string]("requestID")

	ctx := context.Background()
	if _, ok := requestID.Use(ctx); ok {
		t.Fatal("expected Use to report absent before Provide")
	}
	if _, err := requestID.Require(ctx); err == nil {
		t.Fatal("expected Require to fail before Provide")
	}

	ctx = requestID.Provide(ctx, "req-123")
	got, ok := requestID.Use(ctx)
	if !ok || got != "req-123" {
		t.Fatalf("expected Use to retrieve the provided value, got (%q, %v)", got, ok)
	}
	if got, err := requestID.Require(ctx); err != nil || got != "req-123" {
		t.Fatalf("expected Require to retrieve the provided value, got (%q, %v)", got, err)
	}
}

func TestAsyncContext_RequireMiddlewareBlocksMissing(t *testing.T) {
	requestID := NewAsyncContext[string]("requestID")
	mw := NewTaskMiddleware("require-request-id", RequireMiddleware(requestID))

	ran := false
	task := NewTask("whoami", func(ctx *TaskContext, in string, deps Deps) (string, error) {
		ran = true
		return in, nil
	}, WithTaskMiddleware[string, string](mw))

	rt := mustRun(t, NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil },
		WithResourceRegister[struct{}, int](task)))

	if _, err := RunTask(rt, context.Background(), task, "x"); err == nil {
		t.Fatal("expected RequireMiddleware to block a call missing the async context")
	}
	if ran {
		t.Fatal("expected the task body not to run when its required async context is missing")
	}

	ran = false
	provided := requestID.Provide(context.Background(), "req-1")
	if _, err := RunTask(rt, provided, task, "x"); err != nil {
		t.Fatalf("expected the call to succeed once the async context is provided, got %v", err)
	}
	if !ran {
		t.Fatal("expected the task body to run once the async context is provided")
	}
}

func TestAsyncContext_RequireMiddlewareChecksKeysOnValue(t *testing.T) {
	type session struct {
		UserID string
		Role   string
	}
	sessionCtx := NewAsyncContext[session]("session")
	mw := NewTaskMiddleware("require-session-fields", RequireMiddleware(sessionCtx, "UserID", "Role"))

	ran := false
	task := NewTask("whoami", func(ctx *TaskContext, in string, deps Deps) (string, error) {
		ran = true
		return in, nil
	}, WithTaskMiddleware[string, string](mw))

	rt := mustRun(t, NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil },
		WithResourceRegister[struct{}, int](task)))

	incomplete := sessionCtx.Provide(context.Background(), session{UserID: "u1"})
	if _, err := RunTask(rt, incomplete, task, "x"); err == nil {
		t.Fatal("expected RequireMiddleware to block a call whose value is missing a required key")
	}
	if ran {
		t.Fatal("expected the task body not to run when a required key is missing from the value")
	}

	ran = false
	complete := sessionCtx.Provide(context.Background(), session{UserID: "u1", Role: "admin"})
	if _, err := RunTask(rt, complete, task, "x"); err != nil {
		t.Fatalf("expected the call to succeed once every required key is present, got %v", err)
	}
	if !ran {
		t.Fatal("expected the task body to run once every required key is present")
	}
}

func TestAsyncContext_RequireMiddlewareChecksKeysOnMapValue(t *testing.T) {
	claimsCtx := NewAsyncContext[map[string]string]("claims")
	mw := NewTaskMiddleware("require-claims", RequireMiddleware(claimsCtx, "sub"))

	task := NewTask("whoami", func(ctx *TaskContext, in string, deps Deps) (string, error) {
		return in, nil
	}, WithTaskMiddleware[string, string](mw))

	rt := mustRun(t, NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil },
		WithResourceRegister[struct{}, int](task)))

	missing := claimsCtx.Provide(context.Background(), map[string]string{"iss": "weft"})
	if _, err := RunTask(rt, missing, task, "x"); err == nil {
		t.Fatal("expected RequireMiddleware to block a call whose map value lacks a required key")
	}

	present := claimsCtx.Provide(context.Background(), map[string]string{"iss": "weft", "sub": "u1"})
	if _, err := RunTask(rt, present, task, "x"); err != nil {
		t.Fatalf("expected the call to succeed once the required map key is present, got %v", err)
	}
}
