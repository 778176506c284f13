package weft

import "context"

// hookState tracks how far a hook's own dependency closure has resolved,
// gating when it becomes eligible to receive events: a hook only attaches
// to the event manager once its dependencies are Ready.
type hookState int

const (
	hookPending hookState = iota
	hookComputing
	hookReady
	hookError
)

// HookFunc handles one event delivery. payload is the value passed to the
// emission, boxed as any for every hook.
type HookFunc func(ctx *HookContext, eventID string, payload any, deps Deps) error

// HookDef listens for one or more events, each identified by id, or every
// emitted event when built with NewWildcardHook.
type HookDef struct {
	base
	on      []string
	onAny   bool
	deps    DepMap
	fn      HookFunc
	state   hookState
	order   int
}

// HookOption configures a HookDef at construction time.
type HookOption func(*HookDef)

// NewHook constructs a hook listening on the given event ids.
func NewHook(id string, on []string, fn HookFunc, opts ...HookOption) *HookDef {
	h := &HookDef{base: newBase(id), on: on, fn: fn}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewWildcardHook constructs a hook that receives every event emitted in
// the registration tree.
func NewWildcardHook(id string, fn HookFunc, opts ...HookOption) *HookDef {
	h := &HookDef{base: newBase(id), onAny: true, fn: fn}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WithHookDeps attaches a dependency closure. The hook only starts
// receiving events once this closure resolves (see hookState).
func WithHookDeps(deps DepMap) HookOption {
	return func(h *HookDef) { h.deps = deps }
}

// WithHookOrder sets delivery order relative to other hooks on the same
// event; lower runs first. Ties break by registration order.
func WithHookOrder(order int) HookOption {
	return func(h *HookDef) { h.order = order }
}

func (h *HookDef) Kind() Kind      { return KindHook }
func (h *HookDef) On() []string    { return h.on }
func (h *HookDef) OnAny() bool     { return h.onAny }
func (h *HookDef) Dependencies() DepMap { return h.deps }
func (h *HookDef) Order() int      { return h.order }

func (h *HookDef) listens(eventID string) bool {
	if h.onAny {
		return true
	}
	for _, id := range h.on {
		if id == eventID {
			return true
		}
	}
	return false
}

func (h *HookDef) invoke(ctx context.Context, runtime *Runtime, eventID string, payload any, deps Deps) error {
	return h.fn(&HookContext{ctx: ctx, runtime: runtime}, eventID, payload, deps)
}

// HookContext is threaded through a hook's run function.
type HookContext struct {
	ctx     context.Context
	runtime *Runtime
}

func (hc *HookContext) Context() context.Context { return hc.ctx }
func (hc *HookContext) Runtime() *Runtime         { return hc.runtime }
