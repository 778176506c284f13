package weft

import "github.com/weftrun/weft/pkg/schema"

// AnyDefinition is the non-generic face every definition kind presents to
// the Store, Writer, Tag Index, and Scheduler. Concrete kinds (TaskDef,
// ResourceDef, EventDef, HookDef, TaskMiddlewareDef, ResourceMiddlewareDef,
// TagDef, ErrorDef, AsyncContextDef) are generic structs that embed base and
// satisfy this interface directly — the same brand-and-dispatch idiom the
// teacher uses for Executor[T]/AnyExecutor, generalized from one kind with
// modes to nine kinds.
type AnyDefinition interface {
	ID() string
	Kind() Kind
	TagList() []AnyTag
	Meta() map[string]any
}

// AnyDepEntry is what may appear as a value in a DepMap: any definition, or
// that definition wrapped as Optional.
type AnyDepEntry interface {
	AnyDefinition
	Optional() bool
}

// AnyTag is the face a Tag definition presents when attached to another
// definition's Tags list or used as a dependency.
type AnyTag interface {
	AnyDefinition
	RawConfig() (any, bool)
	Contracts() (input, output schema.Schema)
	boundAccessor(ti *TagIndex) any
}

// DepMap is a dependency map: string keys to any definition kind (or
// Optional(definition)). A Tag used as a value resolves to a
// TagDependencyAccessor instead of a single value.
type DepMap map[string]AnyDepEntry

// Deps is the resolved dependency view passed into a task/hook/middleware
// run function. Use the Dep/TagDep/TaskDep free functions to pull a typed
// value out by key.
type Deps map[string]any

// base is embedded by every concrete definition struct.
type base struct {
	id   string
	tags []AnyTag
	meta map[string]any
}

func newBase(id string) base {
	return base{id: id, meta: make(map[string]any)}
}

func (b *base) ID() string             { return b.id }
func (b *base) TagList() []AnyTag      { return b.tags }
func (b *base) Meta() map[string]any   { return b.meta }
func (b *base) Optional() bool         { return false }
func (b *base) setMeta(k string, v any) { b.meta[k] = v }

// optionalEntry wraps a definition so the scheduler treats a missing
// resolution as "yields zero value" (I3) instead of a wiring error.
type optionalEntry struct {
	AnyDefinition
}

func (o optionalEntry) Optional() bool { return true }

// Optional marks a dependency-map entry as optional: if it cannot be
// resolved, the corresponding Deps key is simply absent instead of failing
// boot/run.
func Optional(def AnyDefinition) AnyDepEntry {
	return optionalEntry{def}
}

// Dep retrieves a typed value (usually a resource's initialized value, or a
// plain value placed by a custom resolver) out of a resolved Deps view.
func Dep[T any](d Deps, key string) T {
	v, _ := d[key].(T)
	return v
}

// DepOK is Dep plus a presence flag, for optional dependencies.
func DepOK[T any](d Deps, key string) (T, bool) {
	raw, present := d[key]
	if !present {
		var zero T
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}
