package weft

import (
	"context"
	"strings"
	"testing"
)

func mustRun(t *testing.T, roots ...AnyDefinition) *Runtime {
	t.Helper()
	rt, err := Run(roots...)
	if err != nil {
		t.Fatalf("expected Run to succeed, got %v", err)
	}
	return rt
}

// TestEvent_SnapshotIsolation covers P4/S4: a listener added from inside
// an in-flight emission never runs during that emission, only the next.
func TestEvent_SnapshotIsolation(t *testing.T) {
	root := NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil })
	rt := mustRun(t, root)

	evt := NewEvent[string]("pinged")
	g2Count := 0

	var detachG2 func()
	rt.AddGlobalListener(func(hc *HookContext, eventID string, payload any, deps Deps) error {
		if eventID != evt.ID() {
			return nil
		}
		if detachG2 == nil {
			detachG2 = rt.AddListener(evt.ID(), func(hc *HookContext, eventID string, payload any, deps Deps) error {
				g2Count++
				return nil
			}, WithHookOrder(100))
		}
		return nil
	})

	if _, err := EmitEvent(rt, context.Background(), evt, "first"); err != nil {
		t.Fatalf("first emit: %v", err)
	}
	if g2Count != 0 {
		t.Fatalf("expected g2 not to run during the emission that registered it, got count %d", g2Count)
	}

	if _, err := EmitEvent(rt, context.Background(), evt, "second"); err != nil {
		t.Fatalf("second emit: %v", err)
	}
	if g2Count != 1 {
		t.Fatalf("expected g2 to run exactly once on the next emission, got count %d", g2Count)
	}
	_ = detachG2
}

// TestEvent_CycleDetection covers P5/S5: a hook re-emitting the same event
// it is currently handling fails with "cycle detected".
func TestEvent_CycleDetection(t *testing.T) {
	root := NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil })
	rt := mustRun(t, root)

	evt := NewEvent[string]("loopy")
	var reentryErr error
	rt.AddListener(evt.ID(), func(hc *HookContext, eventID string, payload any, deps Deps) error {
		_, reentryErr = EmitEvent(rt, hc.Context(), evt, "again")
		return nil
	})

	if _, err := EmitEvent(rt, context.Background(), evt, "once"); err != nil {
		t.Fatalf("outer emit should not itself fail, got %v", err)
	}
	if reentryErr == nil {
		t.Fatal("expected the re-entrant emission to fail")
	}
	if !strings.Contains(strings.ToLower(reentryErr.Error()), "cycle detected") {
		t.Errorf("expected a cycle detected error, got %v", reentryErr)
	}
}

// TestEvent_FailFastStopsRemainingListeners ensures the default failure
// mode surfaces the first error and does not run subsequent listeners in
// a sequential emission.
func TestEvent_FailFastStopsRemainingListeners(t *testing.T) {
	root := NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil })
	rt := mustRun(t, root)

	evt := NewEvent[string]("seq")
	ran := []string{}
	rt.AddListener(evt.ID(), func(hc *HookContext, eventID string, payload any, deps Deps) error {
		ran = append(ran, "first")
		return context.DeadlineExceeded
	}, WithHookOrder(0))
	rt.AddListener(evt.ID(), func(hc *HookContext, eventID string, payload any, deps Deps) error {
		ran = append(ran, "second")
		return nil
	}, WithHookOrder(1))

	_, err := EmitEvent(rt, context.Background(), evt, "x")
	if err == nil {
		t.Fatal("expected fail-fast to surface the first listener's error")
	}
	if len(ran) != 1 || ran[0] != "first" {
		t.Errorf("expected only the first listener to run, got %v", ran)
	}
}

// TestEvent_AggregateRunsEveryListener ensures AggregateErrors runs every
// listener regardless of earlier failures and reports every error.
func TestEvent_AggregateRunsEveryListener(t *testing.T) {
	root := NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil })
	rt := mustRun(t, root)

	evt := NewEvent[string]("agg", WithEventAggregateErrors[string]())
	ran := []string{}
	rt.AddListener(evt.ID(), func(hc *HookContext, eventID string, payload any, deps Deps) error {
		ran = append(ran, "first")
		return context.DeadlineExceeded
	}, WithHookOrder(0))
	rt.AddListener(evt.ID(), func(hc *HookContext, eventID string, payload any, deps Deps) error {
		ran = append(ran, "second")
		return nil
	}, WithHookOrder(1))

	report, err := EmitEvent(rt, context.Background(), evt, "x", WithReport(true))
	if err == nil {
		t.Fatal("expected the aggregated error to be non-nil")
	}
	if len(ran) != 2 {
		t.Fatalf("expected both listeners to run under AggregateErrors, got %v", ran)
	}
	if report == nil || len(report.HookErrors) != 1 {
		t.Fatalf("expected exactly one hook error recorded in the report, got %+v", report)
	}
}

// TestEvent_ParallelReturnUnsupported covers the §4.5 rule that
// emitWithResult rejects parallel events.
func TestEvent_ParallelReturnUnsupported(t *testing.T) {
	root := NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil })
	rt := mustRun(t, root)

	evt := NewEvent[string]("par", WithEventParallel[string]())
	payload := "x"
	if _, err := EmitEventWithResult(rt, context.Background(), evt, &payload); err == nil {
		t.Fatal("expected emitWithResult on a parallel event to fail")
	}
}
