package weft

import (
	"context"
	"sync"
)

// Internal lifecycle event ids the task runner emits around every call,
// per spec.md's beforeRun/afterRun/onError (C8). These never appear in a
// registration tree's own event list; a hook subscribes to them with a
// plain On([]string{EventTaskOnError}) the same way it would any declared
// event id.
const (
	EventTaskBeforeRun = "weft.task.beforeRun"
	EventTaskAfterRun  = "weft.task.afterRun"
	EventTaskOnError   = "weft.task.onError"
)

// TaskBeforeRunPayload is delivered to EventTaskBeforeRun listeners before
// a task's chain runs.
type TaskBeforeRunPayload struct {
	TaskID string
	Input  any
}

// TaskAfterRunPayload is delivered to EventTaskAfterRun listeners once a
// task's chain succeeds.
type TaskAfterRunPayload struct {
	TaskID string
	Input  any
	Result any
}

// TaskOnErrorPayload is delivered to EventTaskOnError listeners
// synchronously, before the error (or its TaskRunError wrapper) is
// returned to the caller. A listener can call Suppress to resolve the
// task with its zero value instead of propagating the error.
type TaskOnErrorPayload struct {
	TaskID     string
	Input      any
	Err        error
	suppressed bool
}

// Suppress swallows the error this payload describes: Run returns the
// task's zero value and a nil error instead.
func (p *TaskOnErrorPayload) Suppress() { p.suppressed = true }

// taskChain is a fully composed, reusable invocation: middleware already
// wrapped around the task's own function. Built once per task id and
// cached, since middleware composition itself is pure given a task's
// static middleware list.
type taskChain func(ctx *TaskContext, input any, deps Deps) (any, error)

// taskRunner executes tasks through their middleware chain, validating
// input/result against any declared schema and recording a per-call
// Journal. A task id with an implementation installed via setTunnel runs
// that implementation instead of its chain. Claims made with
// WithResourceTunnelsTask are only checked for exclusivity at boot; they
// install no implementation, so a claimed task still runs its own chain.
type taskRunner struct {
	store    *Store
	sched    *scheduler
	pools    *pools
	events   *EventManager
	chains   sync.Map // task id -> taskChain
	tunneled map[string]func(ctx *TaskContext, input any, deps Deps) (any, error)
}

func newTaskRunner(store *Store, sched *scheduler, p *pools, events *EventManager) *taskRunner {
	return &taskRunner{store: store, sched: sched, pools: p, events: events, tunneled: make(map[string]func(*TaskContext, any, Deps) (any, error))}
}

// setTunnel installs a tunneling implementation for a task id. Nothing in
// this package calls it: a resource's tunnel claim does not install one.
func (tr *taskRunner) setTunnel(taskID string, fn func(ctx *TaskContext, input any, deps Deps) (any, error)) {
	tr.tunneled[taskID] = fn
}

func (tr *taskRunner) chainFor(task AnyTask) taskChain {
	if cached, ok := tr.chains.Load(task.ID()); ok {
		return cached.(taskChain)
	}
	own := make(map[string]bool, len(task.Middleware()))
	for _, mw := range task.Middleware() {
		own[mw.ID()] = true
	}
	candidates := make([]AnyTaskMiddleware, 0, len(tr.sched.everywhereTM))
	for _, mw := range tr.sched.everywhereTM {
		if mw.AppliesEverywhere(task) && !own[mw.ID()] {
			candidates = append(candidates, mw)
		}
	}
	mws := append(candidates, task.Middleware()...)
	chain := taskChain(func(ctx *TaskContext, input any, deps Deps) (any, error) {
		next := func() (any, error) { return task.invoke(ctx, input, deps) }
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := next
			next = func() (any, error) { return mw.Wrap(ctx, task, input, prev) }
		}
		return next()
	})
	tr.chains.Store(task.ID(), chain)
	return chain
}

// Run executes task with input: it checks ctx for cancellation before
// starting, validates input and result against any declared schemas, and
// calls a tunnel implementation installed with setTunnel in place of the
// middleware chain when one exists for the task's id.
func (tr *taskRunner) Run(ctx context.Context, runtime *Runtime, task AnyTask, input any) (any, error) {
	select {
	case <-ctx.Done():
		return nil, newExecutionError("runner.errors.canceled", "context canceled before task ran", ctx.Err())
	default:
	}

	if err := validateWith(task.InputSchema(), &input); err != nil {
		return nil, errValidationFailed("input", task.ID(), err)
	}

	deps, err := tr.sched.resolveDeps(task.ID(), task.Dependencies())
	if err != nil {
		return nil, err
	}

	journal := tr.pools.acquireJournal(task.ID())
	defer tr.pools.releaseJournal(journal)
	tc := tr.pools.acquireTaskCtx()
	tc.ctx, tc.runtime, tc.journal = ctx, runtime, journal
	defer tr.pools.releaseTaskCtx(tc)

	_ = tr.events.emitInternal(ctx, runtime, EventTaskBeforeRun, &TaskBeforeRunPayload{TaskID: task.ID(), Input: input})

	var result any
	if fn, tunneled := tr.tunneled[task.ID()]; tunneled {
		result, err = fn(tc, input, deps)
	} else {
		result, err = tr.chainFor(task)(tc, input, deps)
	}
	if err != nil {
		errPayload := &TaskOnErrorPayload{TaskID: task.ID(), Input: input, Err: err}
		_ = tr.events.emitInternal(ctx, runtime, EventTaskOnError, errPayload)
		if errPayload.suppressed {
			return nil, nil
		}
		if runtime != nil {
			runtime.logger.FlushOnError()
		}
		if isDeclaredError(err) {
			return nil, err
		}
		return nil, newTaskRunError(task.ID(), err)
	}

	if err := validateWith(task.ResultSchema(), &result); err != nil {
		return nil, errValidationFailed("result", task.ID(), err)
	}

	_ = tr.events.emitInternal(ctx, runtime, EventTaskAfterRun, &TaskAfterRunPayload{TaskID: task.ID(), Input: input, Result: result})
	return result, nil
}
