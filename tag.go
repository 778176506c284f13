package weft

import (
	"context"
	"sync"

	"github.com/weftrun/weft/pkg/schema"
)

// TagDef is a typed tag definition. Attaching a TagDef to another
// definition (via WithTaskTags, WithResourceTags, ...) marks it for discovery by anything that
// depends on the tag directly; using a TagDef as a DepMap value resolves,
// at wiring time, to a TagAccessor over every definition in the
// registration tree that carries it.
//
// C is the shape of the tag's own configuration payload (use struct{} for
// tags that carry no config beyond their presence).
type TagDef[C any] struct {
	base
	config       C
	hasConfig    bool
	inputSchema  schema.Schema
	outputSchema schema.Schema
}

// TagOption configures a TagDef at construction time.
type TagOption[C any] func(*TagDef[C])

// NewTag constructs a tag definition. id should be namespaced
// ("http.route", "cache.evictable") the way the rest of the definition
// kinds are.
func NewTag[C any](id string, opts ...TagOption[C]) *TagDef[C] {
	t := &TagDef[C]{base: newBase(id)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithTagConfig attaches a default config payload, retrievable via
// RawConfig by anything that discovers this tag through the tag index.
func WithTagConfig[C any](cfg C) TagOption[C] {
	return func(t *TagDef[C]) {
		t.config = cfg
		t.hasConfig = true
	}
}

// WithTagContracts attaches input/output contract schemas to the tag,
// returned by Contracts. Boot does not check them: a tagged resource's
// config and value are validated only against the resource's own schemas.
func WithTagContracts[C any](input, output schema.Schema) TagOption[C] {
	return func(t *TagDef[C]) {
		t.inputSchema = input
		t.outputSchema = output
	}
}

func (t *TagDef[C]) Kind() Kind { return KindTag }

// boundAccessor builds this tag's TagAccessor against ti, boxed as any so
// callers resolving a DepMap (which only see the non-generic AnyTag face)
// can hand it straight into a Deps value without knowing C.
func (t *TagDef[C]) boundAccessor(ti *TagIndex) any {
	return accessorFor(ti, t)
}

func (t *TagDef[C]) RawConfig() (any, bool) {
	if !t.hasConfig {
		return nil, false
	}
	return t.config, true
}

func (t *TagDef[C]) Contracts() (input, output schema.Schema) {
	return t.inputSchema, t.outputSchema
}

// Config returns the tag's typed configuration payload and whether one was
// supplied.
func (t *TagDef[C]) Config() (C, bool) {
	return t.config, t.hasConfig
}

// attachTag appends t to b's tag list. Intended to be called from the
// With* option of each definition kind
// (WithTaskTags, WithResourceTags, ...), not directly by application code.
func attachTag(b *base, t AnyTag) {
	b.tags = append(b.tags, t)
}

// HasTag reports whether def carries a tag with the given id.
func HasTag(def AnyDefinition, tagID string) bool {
	for _, t := range def.TagList() {
		if t.ID() == tagID {
			return true
		}
	}
	return false
}

// TagMatch is one definition discovered through a TagAccessor, carrying
// whatever config the tag itself declared (WithTagConfig), not any config
// the matched definition carries separately.
type TagMatch struct {
	Definition AnyDefinition
	Config     any
	HasConfig  bool
}

// ResourceMatch is a TagMatch for a resource, adding a lazy Value
// accessor: it returns (nil, false) until the resource initializes, never
// triggering initialization itself (that stays the scheduler's job).
type ResourceMatch struct {
	TagMatch
	ti *TagIndex
}

// Value returns the matched resource's initialized value, or (nil, false)
// if it hasn't initialized yet (always false before boot's init phase
// reaches it, and in lazy mode, until GetLazyResourceValue is called).
func (m ResourceMatch) Value() (any, bool) {
	if m.ti == nil || m.ti.resourceValue == nil {
		return nil, false
	}
	return m.ti.resourceValue(m.Definition.ID())
}

// TaskMatch is a TagMatch for a task, adding a cached Run callable bound
// through the task runner — computed on first call and reused for the
// accessor's lifetime.
type TaskMatch struct {
	TagMatch
	ti      *TagIndex
	once    sync.Once
	runFunc func(ctx context.Context, input any) (any, error)
}

// Run invokes the matched task through the runtime's task runner.
func (m *TaskMatch) Run(ctx context.Context, input any) (any, error) {
	m.once.Do(func() {
		taskID := m.Definition.ID()
		m.runFunc = func(ctx context.Context, input any) (any, error) {
			if m.ti == nil || m.ti.runTask == nil {
				return nil, errTaskNotFound(taskID)
			}
			return m.ti.runTask(ctx, taskID, input)
		}
	})
	return m.runFunc(ctx, input)
}

// TagAccessor is what a DepMap entry resolves to when its value is a
// TagDef instead of a concrete definition: the live, per-kind sets of
// definitions carrying that tag, as registered in the current run.
//
// Each sub-array (Tasks, Resources, Events, Hooks, TaskMiddlewares,
// ResourceMiddlewares, Errors) is computed on first read and memoized for
// the accessor's lifetime: repeated reads return the exact same backing
// slice, not just an equal one (P6).
type TagAccessor[C any] struct {
	tag *TagDef[C]
	ti  *TagIndex
	all *[]AnyDefinition

	onceTasks    sync.Once
	tasks        []*TaskMatch
	onceResources sync.Once
	resources    []ResourceMatch
	onceEvents   sync.Once
	events       []TagMatch
	onceHooks    sync.Once
	hooks        []TagMatch
	onceTM       sync.Once
	taskMWs      []TagMatch
	onceRM       sync.Once
	resourceMWs  []TagMatch
	onceErrors   sync.Once
	errors       []TagMatch
}

func newTagAccessor[C any](tag *TagDef[C], ti *TagIndex, all *[]AnyDefinition) *TagAccessor[C] {
	return &TagAccessor[C]{tag: tag, ti: ti, all: all}
}

// match builds the TagMatch for def against this accessor's tag.
func (a *TagAccessor[C]) match(def AnyDefinition) TagMatch {
	cfg, hasCfg := a.tag.RawConfig()
	return TagMatch{Definition: def, Config: cfg, HasConfig: hasCfg}
}

// Definitions returns every definition carrying this accessor's tag, in
// registration order, as a single stable-reference slice.
func (a *TagAccessor[C]) Definitions() []AnyDefinition {
	return *a.all
}

// Tag returns the underlying tag definition.
func (a *TagAccessor[C]) Tag() *TagDef[C] { return a.tag }

// Tasks returns every task carrying this accessor's tag.
func (a *TagAccessor[C]) Tasks() []*TaskMatch {
	a.onceTasks.Do(func() {
		for _, def := range *a.all {
			if def.Kind() == KindTask {
				m := a.match(def)
				a.tasks = append(a.tasks, &TaskMatch{TagMatch: m, ti: a.ti})
			}
		}
	})
	return a.tasks
}

// Resources returns every resource carrying this accessor's tag.
func (a *TagAccessor[C]) Resources() []ResourceMatch {
	a.onceResources.Do(func() {
		for _, def := range *a.all {
			if def.Kind() == KindResource {
				a.resources = append(a.resources, ResourceMatch{TagMatch: a.match(def), ti: a.ti})
			}
		}
	})
	return a.resources
}

// Events returns every event carrying this accessor's tag.
func (a *TagAccessor[C]) Events() []TagMatch {
	a.onceEvents.Do(func() { a.events = a.matchKind(KindEvent) })
	return a.events
}

// Hooks returns every hook carrying this accessor's tag.
func (a *TagAccessor[C]) Hooks() []TagMatch {
	a.onceHooks.Do(func() { a.hooks = a.matchKind(KindHook) })
	return a.hooks
}

// TaskMiddlewares returns every task middleware carrying this accessor's
// tag.
func (a *TagAccessor[C]) TaskMiddlewares() []TagMatch {
	a.onceTM.Do(func() { a.taskMWs = a.matchKind(KindTaskMiddleware) })
	return a.taskMWs
}

// ResourceMiddlewares returns every resource middleware carrying this
// accessor's tag.
func (a *TagAccessor[C]) ResourceMiddlewares() []TagMatch {
	a.onceRM.Do(func() { a.resourceMWs = a.matchKind(KindResourceMiddleware) })
	return a.resourceMWs
}

// Errors returns every error helper carrying this accessor's tag.
func (a *TagAccessor[C]) Errors() []TagMatch {
	a.onceErrors.Do(func() { a.errors = a.matchKind(KindError) })
	return a.errors
}

func (a *TagAccessor[C]) matchKind(kind Kind) []TagMatch {
	var out []TagMatch
	for _, def := range *a.all {
		if def.Kind() == kind {
			out = append(out, a.match(def))
		}
	}
	return out
}
