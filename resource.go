package weft

import (
	"context"

	"github.com/weftrun/weft/pkg/schema"
)

// ResourceInitFunc initializes a resource's long-lived value from its
// config and resolved dependencies.
type ResourceInitFunc[Cfg, Val any] func(ctx *InitCtx, config Cfg, deps Deps) (Val, error)

// ResourceDisposeFunc tears a resource's value down during runtime
// shutdown, in dependents-first order.
type ResourceDisposeFunc[Val any] func(ctx context.Context, value Val) error

// AnyResource is the non-generic face a ResourceDef presents to the
// Scheduler and Resource Runner.
type AnyResource interface {
	AnyDefinition
	Dependencies() DepMap
	Middleware() []AnyResourceMiddleware
	ConfigSchema() schema.Schema
	ResultSchema() schema.Schema
	Overrides() []AnyDefinition
	TunnelsTask() string
	Config() (any, bool)
	Register() []AnyDefinition
	invokeInit(ctx *InitCtx, config any, deps Deps) (any, error)
	invokeDispose(ctx context.Context, value any) error
}

// ResourceDef is a typed, long-lived singleton with an init/dispose
// lifecycle.
type ResourceDef[Cfg, Val any] struct {
	base
	deps         DepMap
	depsFn       func(Cfg) DepMap
	middleware   []AnyResourceMiddleware
	configSchema schema.Schema
	resultSchema schema.Schema
	overrides    []AnyDefinition
	tunnelsTask  string
	initFn       ResourceInitFunc[Cfg, Val]
	disposeFn    ResourceDisposeFunc[Val]
	config       Cfg
	hasConfig    bool
	register     []AnyDefinition
	registerFn   func(Cfg) []AnyDefinition
}

// ResourceOption configures a ResourceDef at construction time.
type ResourceOption[Cfg, Val any] func(*ResourceDef[Cfg, Val])

// NewResource constructs a resource definition.
func NewResource[Cfg, Val any](id string, initFn ResourceInitFunc[Cfg, Val], opts ...ResourceOption[Cfg, Val]) *ResourceDef[Cfg, Val] {
	r := &ResourceDef[Cfg, Val]{base: newBase(id), initFn: initFn}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithResourceDeps attaches a dependency map.
func WithResourceDeps[Cfg, Val any](deps DepMap) ResourceOption[Cfg, Val] {
	return func(r *ResourceDef[Cfg, Val]) { r.deps = deps }
}

// WithResourceTags attaches tags for discovery.
func WithResourceTags[Cfg, Val any](tags ...AnyTag) ResourceOption[Cfg, Val] {
	return func(r *ResourceDef[Cfg, Val]) {
		for _, tg := range tags {
			attachTag(&r.base, tg)
		}
	}
}

// WithResourceMiddleware attaches middleware specific to this resource.
func WithResourceMiddleware[Cfg, Val any](mw ...AnyResourceMiddleware) ResourceOption[Cfg, Val] {
	return func(r *ResourceDef[Cfg, Val]) { r.middleware = append(r.middleware, mw...) }
}

// WithResourceSchemas attaches config/value validation.
func WithResourceSchemas[Cfg, Val any](config, result schema.Schema) ResourceOption[Cfg, Val] {
	return func(r *ResourceDef[Cfg, Val]) {
		r.configSchema = config
		r.resultSchema = result
	}
}

// WithResourceDispose attaches a dispose function, invoked during runtime
// shutdown in dependents-first order.
func WithResourceDispose[Cfg, Val any](fn ResourceDisposeFunc[Val]) ResourceOption[Cfg, Val] {
	return func(r *ResourceDef[Cfg, Val]) { r.disposeFn = fn }
}

// WithResourceOverrides attaches a list of replacement definitions this
// resource introduces into the registration tree: each entry's id is
// reused from whatever is already registered under it — the original's
// own init/run/dependencies never run, and anything depending on that id
// receives the override's value instead. An entry may be of any
// definition kind (task, resource, event, hook, or middleware), per
// spec.md §4.1's "Each entry carries the same kind as one already
// registered". Overrides apply in the resource-nesting partial order:
// the innermost owner's overrides apply before outer ones, so when two
// owners both override the same id, the one declared by the
// outer/ancestor resource wins.
func WithResourceOverrides[Cfg, Val any](overrides ...AnyDefinition) ResourceOption[Cfg, Val] {
	return func(r *ResourceDef[Cfg, Val]) { r.overrides = append(r.overrides, overrides...) }
}

// WithResourceTunnelsTask records that this resource claims a task id for
// tunneling. At most one resource may tunnel a given task id; a second
// claim is a wiring error. The claim changes nothing else: the task still
// runs its own middleware chain and run function.
func WithResourceTunnelsTask[Cfg, Val any](taskID string) ResourceOption[Cfg, Val] {
	return func(r *ResourceDef[Cfg, Val]) { r.tunnelsTask = taskID }
}

// WithResourceMeta attaches a metadata entry.
func WithResourceMeta[Cfg, Val any](key string, value any) ResourceOption[Cfg, Val] {
	return func(r *ResourceDef[Cfg, Val]) { r.setMeta(key, value) }
}

// WithResourceDepsFunc attaches a function-form dependency map, evaluated
// against the resource's own config once With(cfg) has supplied one (or the
// zero value of Cfg otherwise).
func WithResourceDepsFunc[Cfg, Val any](fn func(Cfg) DepMap) ResourceOption[Cfg, Val] {
	return func(r *ResourceDef[Cfg, Val]) { r.depsFn = fn }
}

// WithResourceRegister attaches a static list of definitions the owning
// resource registers alongside itself (events, hooks, or sibling resources
// that nothing's dependency map reaches directly), mirroring the register
// tree spec.md describes.
func WithResourceRegister[Cfg, Val any](items ...AnyDefinition) ResourceOption[Cfg, Val] {
	return func(r *ResourceDef[Cfg, Val]) { r.register = append(r.register, items...) }
}

// WithResourceRegisterFunc attaches a function-form register list,
// evaluated against the resource's own config.
func WithResourceRegisterFunc[Cfg, Val any](fn func(Cfg) []AnyDefinition) ResourceOption[Cfg, Val] {
	return func(r *ResourceDef[Cfg, Val]) { r.registerFn = fn }
}

func (r *ResourceDef[Cfg, Val]) Kind() Kind                          { return KindResource }
func (r *ResourceDef[Cfg, Val]) Middleware() []AnyResourceMiddleware { return r.middleware }
func (r *ResourceDef[Cfg, Val]) ConfigSchema() schema.Schema         { return r.configSchema }
func (r *ResourceDef[Cfg, Val]) ResultSchema() schema.Schema         { return r.resultSchema }
func (r *ResourceDef[Cfg, Val]) Overrides() []AnyDefinition          { return r.overrides }
func (r *ResourceDef[Cfg, Val]) TunnelsTask() string                 { return r.tunnelsTask }

// Dependencies evaluates the static or function-form dependency map
// against this resource's own config (the zero value of Cfg if With was
// never called).
func (r *ResourceDef[Cfg, Val]) Dependencies() DepMap {
	if r.depsFn != nil {
		return r.depsFn(r.config)
	}
	return r.deps
}

// Register evaluates the static or function-form register list against
// this resource's own config.
func (r *ResourceDef[Cfg, Val]) Register() []AnyDefinition {
	if r.registerFn != nil {
		return r.registerFn(r.config)
	}
	return r.register
}

// Config returns the config passed via With, if any.
func (r *ResourceDef[Cfg, Val]) Config() (any, bool) {
	if !r.hasConfig {
		return nil, false
	}
	return r.config, true
}

// With returns a shallow copy of r carrying cfg as its config, the Go
// analogue of spec.md's resource.with(config) pairing. The copy keeps r's
// id, so registering it in place of r (or passing it as a dependency
// value) is the intended usage.
func (r *ResourceDef[Cfg, Val]) With(cfg Cfg) *ResourceDef[Cfg, Val] {
	cp := *r
	cp.config = cfg
	cp.hasConfig = true
	return &cp
}

func (r *ResourceDef[Cfg, Val]) invokeInit(ctx *InitCtx, config any, deps Deps) (any, error) {
	cfg, _ := config.(Cfg)
	return r.initFn(ctx, cfg, deps)
}

func (r *ResourceDef[Cfg, Val]) invokeDispose(ctx context.Context, value any) error {
	if r.disposeFn == nil {
		return nil
	}
	val, _ := value.(Val)
	return r.disposeFn(ctx, val)
}

// InitCtx is threaded through a resource's init function and any wrapping
// middleware.
type InitCtx struct {
	ctx     context.Context
	runtime *Runtime
}

// Context returns the underlying context.Context. Boot and
// GetLazyResourceValue both use context.Background(), so it is never
// canceled, not even when another resource's init fails.
func (ic *InitCtx) Context() context.Context { return ic.ctx }

// Runtime returns the owning runtime. During boot this is partially
// populated: only resources ordered earlier in the init sequence are
// available.
func (ic *InitCtx) Runtime() *Runtime { return ic.runtime }
