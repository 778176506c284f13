package weft

import (
	"sync"
	"sync/atomic"
)

// Store holds every definition discovered by the Registration Writer,
// bucketed by kind and keyed by id. Unlike the teacher's Scope cache
// (a sync.Map sized for hot concurrent reads after boot completes), Store
// only ever mutates during the single-threaded registration walk, so a
// plain RWMutex is the simpler, equally correct choice; sealed flips once,
// after which every write is rejected.
type Store struct {
	mu      sync.RWMutex
	sealed  atomic.Bool
	byKind  map[Kind]map[string]AnyDefinition
	order   []AnyDefinition
}

func newStore() *Store {
	s := &Store{byKind: make(map[Kind]map[string]AnyDefinition)}
	for _, k := range []Kind{
		KindTask, KindResource, KindEvent, KindHook,
		KindTaskMiddleware, KindResourceMiddleware, KindTag, KindError, KindAsyncContext,
	} {
		s.byKind[k] = make(map[string]AnyDefinition)
	}
	return s
}

// Put registers def, failing if the store is sealed or an id collision
// exists within def's kind.
func (s *Store) Put(def AnyDefinition) error {
	if s.sealed.Load() {
		return ErrStoreLocked
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.byKind[def.Kind()]
	if _, exists := bucket[def.ID()]; exists {
		return errDuplicateID(def.Kind(), def.ID())
	}
	bucket[def.ID()] = def
	s.order = append(s.order, def)
	return nil
}

// Replace overwrites an existing id within def's kind (used for resource
// overrides), failing if the store is sealed.
func (s *Store) Replace(def AnyDefinition) error {
	if s.sealed.Load() {
		return ErrStoreLocked
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKind[def.Kind()][def.ID()] = def
	for i, d := range s.order {
		if d.Kind() == def.Kind() && d.ID() == def.ID() {
			s.order[i] = def
			return nil
		}
	}
	s.order = append(s.order, def)
	return nil
}

// Get retrieves a definition by kind and id.
func (s *Store) Get(kind Kind, id string) (AnyDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byKind[kind][id]
	return d, ok
}

// All returns every definition of a given kind, in registration order.
func (s *Store) All(kind Kind) []AnyDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AnyDefinition, 0, len(s.byKind[kind]))
	for _, d := range s.order {
		if d.Kind() == kind {
			out = append(out, d)
		}
	}
	return out
}

// Definitions returns every definition in registration order, regardless
// of kind.
func (s *Store) Definitions() []AnyDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AnyDefinition, len(s.order))
	copy(out, s.order)
	return out
}

// Seal prevents any further writes. Idempotent.
func (s *Store) Seal() {
	s.sealed.Store(true)
}

// Sealed reports whether the store has been sealed.
func (s *Store) Sealed() bool {
	return s.sealed.Load()
}
