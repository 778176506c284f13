package weft

// TaskMiddlewareFunc wraps a task invocation. Call next to continue the
// chain (and obtain the eventual result); returning without calling next
// short-circuits the task.
type TaskMiddlewareFunc func(ctx *TaskContext, task AnyTask, input any, next func() (any, error)) (any, error)

// AnyTaskMiddleware is the face a TaskMiddlewareDef presents to the Task
// Runner's chain builder.
type AnyTaskMiddleware interface {
	AnyDefinition
	AppliesEverywhere(task AnyTask) bool
	Wrap(ctx *TaskContext, task AnyTask, input any, next func() (any, error)) (any, error)
}

// TaskMiddlewareDef is a reusable wrapper around task execution.
type TaskMiddlewareDef struct {
	base
	everywhere   bool
	everywhereFn func(AnyTask) bool
	fn           TaskMiddlewareFunc
}

// TaskMiddlewareOption configures a TaskMiddlewareDef at construction time.
type TaskMiddlewareOption func(*TaskMiddlewareDef)

// NewTaskMiddleware constructs a task middleware definition.
func NewTaskMiddleware(id string, fn TaskMiddlewareFunc, opts ...TaskMiddlewareOption) *TaskMiddlewareDef {
	m := &TaskMiddlewareDef{base: newBase(id), fn: fn}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithTaskMiddlewareEverywhere marks a middleware as applying to every
// task in the registration tree, prepended once ahead of each task's own
// declared middleware.
func WithTaskMiddlewareEverywhere() TaskMiddlewareOption {
	return func(m *TaskMiddlewareDef) { m.everywhere = true }
}

// WithTaskMiddlewareEverywhereFunc marks a middleware as applying to every
// task for which fn reports true, evaluated once per task at chain-build
// time rather than a single boot-time flag.
func WithTaskMiddlewareEverywhereFunc(fn func(AnyTask) bool) TaskMiddlewareOption {
	return func(m *TaskMiddlewareDef) { m.everywhereFn = fn }
}

func (m *TaskMiddlewareDef) Kind() Kind { return KindTaskMiddleware }

func (m *TaskMiddlewareDef) AppliesEverywhere(task AnyTask) bool {
	if m.everywhereFn != nil {
		return m.everywhereFn(task)
	}
	return m.everywhere
}

func (m *TaskMiddlewareDef) Wrap(ctx *TaskContext, task AnyTask, input any, next func() (any, error)) (any, error) {
	return m.fn(ctx, task, input, next)
}

// ResourceMiddlewareFunc wraps a resource's init. Call next to continue
// the chain and obtain the eventual value.
type ResourceMiddlewareFunc func(ctx *InitCtx, res AnyResource, config any, next func() (any, error)) (any, error)

// AnyResourceMiddleware is the face a ResourceMiddlewareDef presents to
// the Resource Runner's chain builder.
type AnyResourceMiddleware interface {
	AnyDefinition
	AppliesEverywhere(res AnyResource) bool
	Wrap(ctx *InitCtx, res AnyResource, config any, next func() (any, error)) (any, error)
}

// ResourceMiddlewareDef is a reusable wrapper around resource
// initialization.
type ResourceMiddlewareDef struct {
	base
	everywhere   bool
	everywhereFn func(AnyResource) bool
	fn           ResourceMiddlewareFunc
}

// ResourceMiddlewareOption configures a ResourceMiddlewareDef at
// construction time.
type ResourceMiddlewareOption func(*ResourceMiddlewareDef)

// NewResourceMiddleware constructs a resource middleware definition.
func NewResourceMiddleware(id string, fn ResourceMiddlewareFunc, opts ...ResourceMiddlewareOption) *ResourceMiddlewareDef {
	m := &ResourceMiddlewareDef{base: newBase(id), fn: fn}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithResourceMiddlewareEverywhere marks a middleware as applying to every
// resource in the registration tree.
func WithResourceMiddlewareEverywhere() ResourceMiddlewareOption {
	return func(m *ResourceMiddlewareDef) { m.everywhere = true }
}

// WithResourceMiddlewareEverywhereFunc marks a middleware as applying to
// every resource for which fn reports true, evaluated per resource at
// chain-build time.
func WithResourceMiddlewareEverywhereFunc(fn func(AnyResource) bool) ResourceMiddlewareOption {
	return func(m *ResourceMiddlewareDef) { m.everywhereFn = fn }
}

func (m *ResourceMiddlewareDef) Kind() Kind { return KindResourceMiddleware }

func (m *ResourceMiddlewareDef) AppliesEverywhere(res AnyResource) bool {
	if m.everywhereFn != nil {
		return m.everywhereFn(res)
	}
	return m.everywhere
}

func (m *ResourceMiddlewareDef) Wrap(ctx *InitCtx, res AnyResource, config any, next func() (any, error)) (any, error) {
	return m.fn(ctx, res, config, next)
}
