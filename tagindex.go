package weft

import (
	"context"
	"sync"
)

// TagIndex is the reverse index from tag id to every definition carrying
// that tag, built once after the registration walk completes. Each tag's
// result slice is computed lazily and cached so repeated TagAccessor.
// Definitions() calls within a run observe the exact same backing array,
// not just an equal one.
type TagIndex struct {
	store *Store
	mu    sync.Mutex
	cache map[string][]AnyDefinition

	// resourceValue, set once by the scheduler, lets a tag accessor's
	// resource matches expose a lazy Value() that returns (nil, false)
	// until the resource initializes.
	resourceValue func(id string) (any, bool)
	// runTask, set once by the scheduler/runtime, lets a tag accessor's
	// task matches expose a callable Run bound through the task runner.
	runTask func(ctx context.Context, taskID string, input any) (any, error)
}

func newTagIndex(store *Store) *TagIndex {
	return &TagIndex{store: store, cache: make(map[string][]AnyDefinition)}
}

// definitionsForTag returns (and memoizes) every definition in the store
// carrying tagID.
func (ti *TagIndex) definitionsForTag(tagID string) []AnyDefinition {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	if cached, ok := ti.cache[tagID]; ok {
		return cached
	}
	var out []AnyDefinition
	for _, def := range ti.store.Definitions() {
		if HasTag(def, tagID) {
			out = append(out, def)
		}
	}
	ti.cache[tagID] = out
	return out
}

// accessorFor builds (or reuses the backing slice for) a TagAccessor over
// tag's membership, handed to a task/resource when a DepMap entry names a
// TagDef instead of a concrete definition.
func accessorFor[C any](ti *TagIndex, tag *TagDef[C]) *TagAccessor[C] {
	ti.definitionsForTag(tag.ID()) // warm the cache entry
	slice := ti.cache[tag.ID()]
	return newTagAccessor(tag, ti, &slice)
}
