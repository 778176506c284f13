package weft

import (
	"context"
	"sort"
	"sync"

	"github.com/weftrun/weft/internal/idgen"
	"go.uber.org/multierr"
)

// EventFailureMode controls how a sequential or parallel batch of hook
// errors is surfaced.
type EventFailureMode int

const (
	// FailFast returns as soon as any hook errors (sequential: stops the
	// remaining hooks from running; parallel: still waits for in-flight
	// hooks but returns only the first error observed).
	FailFast EventFailureMode = iota
	// AggregateErrors runs every hook regardless of earlier failures and
	// returns a combined error via go.uber.org/multierr.
	AggregateErrors
)

// EventMode controls whether an event's hooks run one after another or
// concurrently.
type EventMode int

const (
	Sequential EventMode = iota
	Parallel
)

// AnyEvent is the non-generic face an EventDef presents to the Event
// Manager.
type AnyEvent interface {
	AnyDefinition
	Mode() EventMode
	FailureMode() EventFailureMode
}

// EventDef declares a typed pub/sub channel.
type EventDef[P any] struct {
	base
	mode        EventMode
	failureMode EventFailureMode
}

// EventOption configures an EventDef at construction time.
type EventOption[P any] func(*EventDef[P])

// NewEvent constructs an event definition.
func NewEvent[P any](id string, opts ...EventOption[P]) *EventDef[P] {
	e := &EventDef[P]{base: newBase(id)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithEventParallel runs this event's hooks concurrently instead of in
// registration/order sequence. A parallel event cannot be used with
// EmitEventWithResult.
func WithEventParallel[P any]() EventOption[P] {
	return func(e *EventDef[P]) { e.mode = Parallel }
}

// WithEventAggregateErrors collects every hook failure instead of
// returning on the first.
func WithEventAggregateErrors[P any]() EventOption[P] {
	return func(e *EventDef[P]) { e.failureMode = AggregateErrors }
}

// WithEventTags attaches tags for discovery.
func WithEventTags[P any](tags ...AnyTag) EventOption[P] {
	return func(e *EventDef[P]) {
		for _, tg := range tags {
			attachTag(&e.base, tg)
		}
	}
}

func (e *EventDef[P]) Kind() Kind                  { return KindEvent }
func (e *EventDef[P]) Mode() EventMode             { return e.mode }
func (e *EventDef[P]) FailureMode() EventFailureMode { return e.failureMode }

// ErrStopPropagation, returned by a hook, ends the current sequential
// emission without treating it as a failure: hooks ordered after the one
// that returned it are skipped, but EmitEvent itself returns nil.
var ErrStopPropagation = newEventError("events.stopPropagation", "hook stopped event propagation", nil)

// EventEmitReport describes what happened during one emission.
type EventEmitReport struct {
	EventID      string
	HooksRun     []string
	Stopped      bool
	StoppedAt    string
	HookErrors   map[string]error
}

// EmitOption configures a single EmitEvent/EmitEventWithResult call.
type EmitOption func(*emitOptions)

type emitOptions struct {
	report bool
}

// WithReport makes EmitEvent populate and return a non-nil
// EventEmitReport.
func WithReport(want bool) EmitOption {
	return func(o *emitOptions) { o.report = want }
}

// hookBinding pairs a hook with the dependency view it resolved at attach
// time (computed once the hook's own deps became Ready). seq records
// attach order, used as the stable tiebreak when two hooks declare the
// same Order().
type hookBinding struct {
	hook *HookDef
	deps Deps
	seq  int
}

// EventManager dispatches events to the hooks attached to them. Hooks
// registered in the registration tree attach once, at boot, by the
// Scheduler; AddListener/AddGlobalListener let code already holding a
// Runtime attach more afterward. Either way, emit always reads a snapshot
// taken before it starts calling hooks (P4): a listener added mid-emission
// never joins that emission, only the next one.
type EventManager struct {
	mu       sync.Mutex
	bindings map[string][]hookBinding // eventID -> hooks, Order()-sorted
	wildcard []hookBinding
	nextSeq  int
}

func newEventManager() *EventManager {
	return &EventManager{bindings: make(map[string][]hookBinding)}
}

func (m *EventManager) attach(h *HookDef, deps Deps) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := hookBinding{hook: h, deps: deps, seq: m.nextSeq}
	m.nextSeq++
	if h.OnAny() {
		m.wildcard = append(m.wildcard, b)
		sortBindings(m.wildcard)
		return
	}
	for _, id := range h.On() {
		m.bindings[id] = append(m.bindings[id], b)
		sortBindings(m.bindings[id])
	}
}

// AddListener attaches fn to a single event id after boot, with no
// dependency closure (deps resolves empty). Returns a function that
// detaches it.
func (m *EventManager) AddListener(eventID string, fn HookFunc, opts ...HookOption) func() {
	h := NewHook(idgen.Prefixed("listener"), []string{eventID}, fn, opts...)
	h.state = hookReady
	m.attach(h, Deps{})
	return func() { m.detach(eventID, h) }
}

// AddGlobalListener attaches fn to every event after boot.
func (m *EventManager) AddGlobalListener(fn HookFunc, opts ...HookOption) func() {
	h := NewWildcardHook(idgen.Prefixed("listener"), fn, opts...)
	h.state = hookReady
	m.attach(h, Deps{})
	return func() { m.detach("", h) }
}

func (m *EventManager) detach(eventID string, h *HookDef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.OnAny() {
		m.wildcard = removeBinding(m.wildcard, h)
		return
	}
	m.bindings[eventID] = removeBinding(m.bindings[eventID], h)
}

func removeBinding(bindings []hookBinding, h *HookDef) []hookBinding {
	out := bindings[:0:0]
	for _, b := range bindings {
		if b.hook != h {
			out = append(out, b)
		}
	}
	return out
}

// sortBindings orders hooks by declared Order() ascending, breaking ties
// by attach sequence — stable regardless of sort.Slice's own stability
// guarantees, since seq is an explicit field.
func sortBindings(bindings []hookBinding) {
	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].hook.Order() != bindings[j].hook.Order() {
			return bindings[i].hook.Order() < bindings[j].hook.Order()
		}
		return bindings[i].seq < bindings[j].seq
	})
}

// snapshot returns the hooks bound to eventID, direct and wildcard
// combined and re-sorted by Order(), at the moment it's called — not
// re-read for the rest of that emission (P4).
func (m *EventManager) snapshot(eventID string) []hookBinding {
	m.mu.Lock()
	defer m.mu.Unlock()
	direct := m.bindings[eventID]
	out := make([]hookBinding, 0, len(direct)+len(m.wildcard))
	out = append(out, direct...)
	out = append(out, m.wildcard...)
	sortBindings(out)
	return out
}

// emit runs every hook bound to event.ID() against payload, honoring the
// event's declared Mode and FailureMode. It detects an event re-entering
// its own in-flight emission via the async-context cycle frame.
func (m *EventManager) emit(ctx context.Context, runtime *Runtime, event AnyEvent, payload any, opts ...EmitOption) (*EventEmitReport, error) {
	cfg := &emitOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	cycleCtx := ctx
	if runtime == nil || runtime.opts.EventCycleDetection {
		var ok bool
		cycleCtx, ok = withCycleFrame(ctx, event.ID())
		if !ok {
			return nil, errCycleDetected(event.ID())
		}
	}

	hooks := m.snapshot(event.ID())
	report := &EventEmitReport{EventID: event.ID(), HookErrors: make(map[string]error)}

	if event.Mode() == Parallel {
		err := m.emitParallel(cycleCtx, runtime, hooks, payload, event.FailureMode(), report)
		if !cfg.report {
			return nil, err
		}
		return report, err
	}

	err := m.emitSequential(cycleCtx, runtime, hooks, payload, event.FailureMode(), report)
	if !cfg.report {
		return nil, err
	}
	return report, err
}

func (m *EventManager) emitSequential(ctx context.Context, runtime *Runtime, hooks []hookBinding, payload any, mode EventFailureMode, report *EventEmitReport) error {
	var aggregated error
	for _, b := range hooks {
		report.HooksRun = append(report.HooksRun, b.hook.ID())
		err := b.hook.invoke(ctx, runtime, report.EventID, payload, b.deps)
		if err == nil {
			continue
		}
		if err == ErrStopPropagation {
			report.Stopped = true
			report.StoppedAt = b.hook.ID()
			return nil
		}
		report.HookErrors[b.hook.ID()] = err
		if mode == FailFast {
			return err
		}
		aggregated = multierr.Append(aggregated, err)
	}
	return aggregated
}

// emitParallel runs hooks in Order()-equal batches: batches run one after
// another, but every hook within a batch runs concurrently. hooks already
// arrives Order()-sorted from snapshot, so a batch is just a maximal run
// of equal Order() values.
func (m *EventManager) emitParallel(ctx context.Context, runtime *Runtime, hooks []hookBinding, payload any, mode EventFailureMode, report *EventEmitReport) error {
	var aggregated error
	var first error

	for start := 0; start < len(hooks); {
		end := start + 1
		for end < len(hooks) && hooks[end].hook.Order() == hooks[start].hook.Order() {
			end++
		}
		batch := hooks[start:end]
		start = end

		type outcome struct {
			id  string
			err error
		}
		results := make(chan outcome, len(batch))
		for _, b := range batch {
			go func(b hookBinding) {
				err := b.hook.invoke(ctx, runtime, report.EventID, payload, b.deps)
				results <- outcome{id: b.hook.ID(), err: err}
			}(b)
		}

		for range batch {
			o := <-results
			report.HooksRun = append(report.HooksRun, o.id)
			if o.err == nil || o.err == ErrStopPropagation {
				continue
			}
			report.HookErrors[o.id] = o.err
			if first == nil {
				first = o.err
			}
			aggregated = multierr.Append(aggregated, o.err)
		}
		if mode == FailFast && first != nil {
			return first
		}
	}

	if mode == FailFast {
		return first
	}
	return aggregated
}

// emitInternal runs every hook bound to eventID sequentially against
// payload, aggregating failures rather than honoring any event's
// FailureMode (internal lifecycle events, e.g. the task runner's
// beforeRun/afterRun/onError, are not declared EventDefs, just plain
// ids a hook can still register On()). A listener failing never stops
// the task it's observing.
func (m *EventManager) emitInternal(ctx context.Context, runtime *Runtime, eventID string, payload any) error {
	hooks := m.snapshot(eventID)
	if len(hooks) == 0 {
		return nil
	}
	report := &EventEmitReport{EventID: eventID, HookErrors: make(map[string]error)}
	return m.emitSequential(ctx, runtime, hooks, payload, AggregateErrors, report)
}

// emitWithResult runs event's hooks sequentially, letting them mutate
// payload (expected to be a pointer) in place, then returns it. Unsupported
// for parallel events since concurrent hooks mutating one payload would
// race.
func (m *EventManager) emitWithResult(ctx context.Context, runtime *Runtime, event AnyEvent, payload any) (any, error) {
	if event.Mode() == Parallel {
		return nil, errParallelReturnUnsupported(event.ID())
	}
	report := &EventEmitReport{EventID: event.ID(), HookErrors: make(map[string]error)}
	cycleCtx := ctx
	if runtime == nil || runtime.opts.EventCycleDetection {
		var ok bool
		cycleCtx, ok = withCycleFrame(ctx, event.ID())
		if !ok {
			return nil, errCycleDetected(event.ID())
		}
	}
	hooks := m.snapshot(event.ID())
	if err := m.emitSequential(cycleCtx, runtime, hooks, payload, event.FailureMode(), report); err != nil {
		return nil, err
	}
	return payload, nil
}
