package weft

import (
	"context"

	"github.com/weftrun/weft/pkg/schema"
)

// TaskFunc is the shape of a task's run function: given a context, its
// resolved dependencies, and a typed input, produce a typed output or an
// error.
type TaskFunc[In, Out any] func(ctx *TaskContext, input In, deps Deps) (Out, error)

// AnyTask is the non-generic face a TaskDef presents to the runner.
type AnyTask interface {
	AnyDefinition
	Dependencies() DepMap
	Middleware() []AnyTaskMiddleware
	InputSchema() schema.Schema
	ResultSchema() schema.Schema
	invoke(ctx *TaskContext, input any, deps Deps) (any, error)
}

// TaskDef is a typed, invocable unit of work.
type TaskDef[In, Out any] struct {
	base
	deps         DepMap
	middleware   []AnyTaskMiddleware
	inputSchema  schema.Schema
	resultSchema schema.Schema
	fn           TaskFunc[In, Out]
}

// TaskOption configures a TaskDef at construction time.
type TaskOption[In, Out any] func(*TaskDef[In, Out])

// NewTask constructs a task definition.
func NewTask[In, Out any](id string, fn TaskFunc[In, Out], opts ...TaskOption[In, Out]) *TaskDef[In, Out] {
	t := &TaskDef[In, Out]{base: newBase(id), fn: fn}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithTaskDeps attaches a dependency map, resolved by the scheduler before
// each invocation of the task.
func WithTaskDeps[In, Out any](deps DepMap) TaskOption[In, Out] {
	return func(t *TaskDef[In, Out]) { t.deps = deps }
}

// WithTaskTags attaches tags for discovery.
func WithTaskTags[In, Out any](tags ...AnyTag) TaskOption[In, Out] {
	return func(t *TaskDef[In, Out]) {
		for _, tg := range tags {
			attachTag(&t.base, tg)
		}
	}
}

// WithTaskMiddleware attaches middleware specific to this task, run inside
// any "everywhere" middleware already present in the chain.
func WithTaskMiddleware[In, Out any](mw ...AnyTaskMiddleware) TaskOption[In, Out] {
	return func(t *TaskDef[In, Out]) { t.middleware = append(t.middleware, mw...) }
}

// WithTaskSchemas attaches input/result validation.
func WithTaskSchemas[In, Out any](input, result schema.Schema) TaskOption[In, Out] {
	return func(t *TaskDef[In, Out]) {
		t.inputSchema = input
		t.resultSchema = result
	}
}

// WithTaskMeta attaches a metadata entry.
func WithTaskMeta[In, Out any](key string, value any) TaskOption[In, Out] {
	return func(t *TaskDef[In, Out]) { t.setMeta(key, value) }
}

func (t *TaskDef[In, Out]) Kind() Kind                      { return KindTask }
func (t *TaskDef[In, Out]) Dependencies() DepMap            { return t.deps }
func (t *TaskDef[In, Out]) Middleware() []AnyTaskMiddleware { return t.middleware }
func (t *TaskDef[In, Out]) InputSchema() schema.Schema      { return t.inputSchema }
func (t *TaskDef[In, Out]) ResultSchema() schema.Schema     { return t.resultSchema }

func (t *TaskDef[In, Out]) invoke(ctx *TaskContext, input any, deps Deps) (any, error) {
	in, _ := input.(In)
	return t.fn(ctx, in, deps)
}

// TaskContext is threaded through a task's run function and any wrapping
// middleware. It carries the caller's context.Context plus a handle back
// to the owning Runtime for nested RunTask/EmitEvent calls.
type TaskContext struct {
	ctx     context.Context
	runtime *Runtime
	journal *Journal
}

// Context returns the underlying context.Context, honoring cancellation
// and deadlines set by the caller of RunTask.
func (tc *TaskContext) Context() context.Context { return tc.ctx }

// Runtime returns the owning runtime, for nested RunTask/EmitEvent calls
// and resource lookups.
func (tc *TaskContext) Runtime() *Runtime { return tc.runtime }

// Journal returns this invocation's opaque, per-call execution journal.
func (tc *TaskContext) Journal() *Journal { return tc.journal }
