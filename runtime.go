package weft

import (
	"context"
	"fmt"
	"os"

	"github.com/weftrun/weft/internal/idgen"
	"github.com/weftrun/weft/internal/shutdown"
)

// execNodeKey threads the id of the innermost in-flight RunTask call on
// the context, so a nested RunTask issued from within a task's run body
// can be recorded as a child node in the Runtime's ExecutionTree.
type execNodeKey struct{}

func withExecNode(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, execNodeKey{}, id)
}

func currentExecNode(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(execNodeKey{}).(string)
	return id, ok
}

// Runtime is the booted, running application: a sealed Store, a resolved
// resource dependency graph with every resource's value computed, an
// Event Manager with every ready hook attached, and the task runner
// everything executes through.
type Runtime struct {
	store     *Store
	tagIndex  *TagIndex
	sched     *scheduler
	events    *EventManager
	tasks     *taskRunner
	pools     *pools
	logger    *Logger
	opts      RunOptions
	shutdown  *shutdown.Hub
	execTree  *ExecutionTree
}

// disposeCtx carries just what disposeResources needs, kept distinct from
// InitCtx/TaskContext since dispose runs outside any single resource's normal
// lifecycle.
type disposeCtx struct {
	ctx context.Context
}

// Run wires the registration tree rooted at roots into a running Runtime:
// walk and register every reachable definition, build the tag index,
// compute the resource dependency graph, initialize resources (unless
// DryRun or Lazy), resolve hook dependency closures and attach them to the
// Event Manager, then return.
func Run(roots ...AnyDefinition) (rt *Runtime, err error) {
	return RunWithOptions(roots, nil)
}

// RunWithOptions is Run plus RunOption configuration, split out because a
// variadic roots list and a variadic opts list can't coexist in one
// signature.
func RunWithOptions(roots []AnyDefinition, opts []RunOption) (rt *Runtime, err error) {
	cfg := defaultRunOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := newLogger(cfg.Logs)

	if cfg.ErrorBoundary {
		defer func() {
			if r := recover(); r != nil {
				err = newWiringError("runtime.panicDuringBoot", fmt.Sprintf("panic during boot: %v", r), nil)
			}
		}()
	}

	store, err := buildRegistrationTree(roots)
	if err != nil {
		logger.FlushOnError()
		return nil, err
	}

	tagIndex := newTagIndex(store)
	sched := newScheduler(store, tagIndex)
	sched.collectEverywhere()
	if err := sched.buildResourceGraph(); err != nil {
		logger.FlushOnError()
		return nil, err
	}

	applyPresets(store, sched, &cfg)

	p := newPools()
	rt = &Runtime{
		store:    store,
		tagIndex: tagIndex,
		sched:    sched,
		events:   newEventManager(),
		pools:    p,
		logger:   logger,
		opts:     cfg,
		execTree: newExecutionTree(1000),
	}
	rt.tasks = newTaskRunner(store, sched, p, rt.events)
	tagIndex.resourceValue = sched.value
	tagIndex.runTask = func(ctx context.Context, taskID string, input any) (any, error) {
		def, ok := store.Get(KindTask, taskID)
		if !ok {
			return nil, errTaskNotFound(taskID)
		}
		return rt.tasks.Run(ctx, rt, def.(AnyTask), input)
	}

	if !cfg.DryRun {
		ic := p.acquireInitCtx()
		ic.ctx, ic.runtime = context.Background(), rt
		defer p.releaseInitCtx(ic)
		var initErr error
		switch {
		case cfg.Lazy:
			// No resource initializes at boot: each waits for
			// GetLazyResourceValue, which initializes it together with its
			// dependency closure.
		case cfg.InitMode == InitParallel:
			initErr = sched.initResourcesParallel(ic)
		default:
			initErr = sched.initResources(ic)
		}
		if initErr != nil {
			logger.FlushOnError()
			if disposeErr := sched.disposeResources(&disposeCtx{ctx: context.Background()}); disposeErr != nil {
				logger.Error("dispose after aborted boot failed", "error", disposeErr)
			}
			return nil, initErr
		}
	}

	if err := sched.computeHookStates(rt.events); err != nil {
		logger.FlushOnError()
		return nil, err
	}

	store.Seal()
	logger.Discard()

	if cfg.ShutdownHooks {
		rt.shutdown = shutdown.NewHub(func(sig os.Signal) {
			logger.Info("received shutdown signal", "signal", sig)
			_ = rt.Dispose(context.Background())
		})
	}

	return rt, nil
}

// applyPresets swaps in test-provided resource/task values ahead of init,
// per the teacher's WithPreset (scope.go).
func applyPresets(store *Store, sched *scheduler, cfg *RunOptions) {
	for id, preset := range cfg.ResourcePresets {
		if preset.hasValue {
			sched.values[id] = preset.value
		}
	}
}

// RunTask invokes task with input through its middleware chain, recording
// the call in rt.ExecutionTree() as a child of whatever RunTask (if any) is
// already in flight on ctx. The definition registered under task's id
// (an override, if one replaced it) runs in place of task itself, and a
// WithTaskExecutorPreset replacement runs in place of both.
func RunTask[In, Out any](rt *Runtime, ctx context.Context, task *TaskDef[In, Out], input In) (Out, error) {
	var zero Out

	nodeID := idgen.Prefixed("exec")
	parent, _ := currentExecNode(ctx)
	node := &ExecutionNode{ID: nodeID, ParentID: parent, Label: task.ID()}
	ctx = withExecNode(ctx, nodeID)

	var target AnyTask = task
	if def, ok := rt.store.Get(KindTask, task.ID()); ok {
		target = def.(AnyTask)
	}
	if preset, ok := rt.opts.TaskPresets[task.ID()]; ok {
		if preset.hasValue {
			rt.execTree.Add(node)
			out, _ := preset.value.(Out)
			return out, nil
		}
		if preset.task != nil {
			target = preset.task
		}
	}

	result, err := rt.tasks.Run(ctx, rt, target, input)
	node.Err = err
	rt.execTree.Add(node)
	if err != nil {
		return zero, err
	}
	out, _ := result.(Out)
	return out, nil
}

// EmitEvent dispatches payload to event's attached hooks.
func EmitEvent[P any](rt *Runtime, ctx context.Context, event *EventDef[P], payload P, opts ...EmitOption) (*EventEmitReport, error) {
	return rt.events.emit(ctx, rt, event, payload, opts...)
}

// EmitEventWithResult dispatches payload (by reference) to event's hooks
// sequentially and returns the possibly-mutated payload.
func EmitEventWithResult[P any](rt *Runtime, ctx context.Context, event *EventDef[P], payload *P) (*P, error) {
	result, err := rt.events.emitWithResult(ctx, rt, event, payload)
	if err != nil {
		return nil, err
	}
	out, _ := result.(*P)
	return out, nil
}

// GetResourceValue returns the initialized value of a resource by id. The
// second return is false if the resource hasn't been initialized yet — in
// lazy mode, call GetLazyResourceValue instead, which initializes it (and
// its still-missing dependencies) on demand.
func GetResourceValue[V any](rt *Runtime, res AnyResource) (V, bool) {
	var zero V
	raw, ok := rt.sched.value(res.ID())
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	return v, ok
}

// GetLazyResourceValue resolves res's value, initializing it and every
// still-missing resource in its transitive dependency closure (in
// dependency order) first. Safe to call repeatedly: a resource already
// initialized is never re-run.
func GetLazyResourceValue[V any](rt *Runtime, res AnyResource) (V, error) {
	var zero V
	if _, ok := rt.sched.value(res.ID()); !ok {
		ic := rt.pools.acquireInitCtx()
		ic.ctx, ic.runtime = context.Background(), rt
		err := rt.sched.initClosure(ic, res.ID())
		rt.pools.releaseInitCtx(ic)
		if err != nil {
			return zero, err
		}
	}
	raw, ok := rt.sched.value(res.ID())
	if !ok {
		return zero, newExecutionError("runner.errors.resourceNotInitialized",
			fmt.Sprintf("resource %q did not initialize", res.ID()), nil)
	}
	v, _ := raw.(V)
	return v, nil
}

// GetResourceConfig returns the config passed to res.With(...), or nil if
// none was supplied.
func GetResourceConfig(rt *Runtime, res AnyResource) any {
	cfg, _ := res.Config()
	return cfg
}

// DependencyGraph returns the resource dependency graph as id -> the ids
// it directly depends on, for diagnostic rendering (see
// extensions.NewGraphDebugExtension).
func (rt *Runtime) DependencyGraph() map[string][]string {
	out := make(map[string][]string, len(rt.sched.graph.downstream))
	for k, v := range rt.sched.graph.downstream {
		out[k] = append([]string{}, v...)
	}
	return out
}

// ResourceInitialized reports whether a resource id already has a
// computed value.
func (rt *Runtime) ResourceInitialized(id string) bool {
	_, ok := rt.sched.value(id)
	return ok
}

// AddListener attaches fn to a single event id after boot, returning a
// function that detaches it. Hooks registered this way never see an
// emission already in flight when they attach (P4): only the next one.
func (rt *Runtime) AddListener(eventID string, fn HookFunc, opts ...HookOption) func() {
	return rt.events.AddListener(eventID, fn, opts...)
}

// AddGlobalListener attaches fn to every event emitted through rt after
// boot.
func (rt *Runtime) AddGlobalListener(fn HookFunc, opts ...HookOption) func() {
	return rt.events.AddGlobalListener(fn, opts...)
}

// ExecutionTree returns the runtime-scoped call history.
func (rt *Runtime) ExecutionTree() *ExecutionTree { return rt.execTree }

// Logger returns the ambient structured logger.
func (rt *Runtime) Logger() *Logger { return rt.logger }

// Dispose tears down every initialized resource in dependents-first order
// and stops the shutdown signal handler, if one was installed.
func (rt *Runtime) Dispose(ctx context.Context) error {
	if rt.shutdown != nil {
		rt.shutdown.Stop()
	}
	return rt.sched.disposeResources(&disposeCtx{ctx: ctx})
}
