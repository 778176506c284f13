package weft

import "sync"

// scheduler computes the resource initialization order, drives resource
// init (through the resource middleware chain), wires everywhere
// middleware into every task/resource, resolves hook dependency closures,
// and attaches ready hooks to the Event Manager. It is the Go analogue of
// the teacher's ReactiveGraph-driven resolution in scope.go, generalized
// from "recompute on reactive update" to "compute once at boot".
type scheduler struct {
	store    *Store
	tagIndex *TagIndex
	graph    *dependencyGraph

	mu           sync.Mutex
	values       map[string]any // resolved resource values, by id
	configs      map[string]any // preset resource configs, by id (testing overrides)
	everywhereTM []AnyTaskMiddleware
	everywhereRM []AnyResourceMiddleware
	tunnels      map[string]string // task id -> tunneling resource id
}

func newScheduler(store *Store, tagIndex *TagIndex) *scheduler {
	return &scheduler{
		store:    store,
		tagIndex: tagIndex,
		graph:    newDependencyGraph(),
		values:   make(map[string]any),
		configs:  make(map[string]any),
		tunnels:  make(map[string]string),
	}
}

// collectEverywhere gathers every registered middleware as an "everywhere
// candidate", once, so a chain build only has to call AppliesEverywhere
// against its own target rather than re-scan the whole store each time —
// needed because a middleware's Everywhere can be a per-target predicate,
// not just a static flag, so the boolean itself can't be resolved until
// the target is known.
func (s *scheduler) collectEverywhere() {
	for _, def := range s.store.All(KindTaskMiddleware) {
		s.everywhereTM = append(s.everywhereTM, def.(AnyTaskMiddleware))
	}
	for _, def := range s.store.All(KindResourceMiddleware) {
		s.everywhereRM = append(s.everywhereRM, def.(AnyResourceMiddleware))
	}
}

// everywhereResourceMiddleware returns s.everywhereRM's candidates that
// apply to res.
func (s *scheduler) everywhereResourceMiddleware(res AnyResource) []AnyResourceMiddleware {
	out := make([]AnyResourceMiddleware, 0, len(s.everywhereRM))
	for _, mw := range s.everywhereRM {
		if mw.AppliesEverywhere(res) {
			out = append(out, mw)
		}
	}
	return out
}

// buildResourceGraph adds an edge for every resource dependency and
// records tunnel exclusivity claims, failing if two resources claim the
// same tunneled task.
func (s *scheduler) buildResourceGraph() error {
	for _, def := range s.store.All(KindResource) {
		res := def.(AnyResource)
		for _, entry := range res.Dependencies() {
			dep := unwrapEntry(entry)
			if dep.Kind() == KindResource {
				s.graph.addEdge(res.ID(), dep.ID())
			}
		}
		if taskID := res.TunnelsTask(); taskID != "" {
			if existing, claimed := s.tunnels[taskID]; claimed && existing != res.ID() {
				return errTunnelExclusivity(taskID)
			}
			s.tunnels[taskID] = res.ID()
		}
	}
	return nil
}

func (s *scheduler) resourceIDs() []string {
	defs := s.store.All(KindResource)
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID()
	}
	return ids
}

// resolveDeps turns a DepMap into a resolved Deps view, using already
// computed resource values, plain definitions passed through unchanged
// where no value has been computed yet (tasks/events/etc. as
// dependencies resolve to the definition itself, not a runtime value), and
// tag dependencies resolving to their TagAccessor.
func (s *scheduler) resolveDeps(ownerID string, deps DepMap) (Deps, error) {
	resolved := make(Deps, len(deps))
	for key, entry := range deps {
		def := unwrapEntry(entry)
		optional := entry.Optional()

		if tag, ok := def.(AnyTag); ok && def.Kind() == KindTag {
			resolved[key] = tag.boundAccessor(s.tagIndex)
			continue
		}

		if def.Kind() == KindResource {
			s.mu.Lock()
			val, ok := s.values[def.ID()]
			s.mu.Unlock()
			if !ok {
				if optional {
					continue
				}
				return nil, errMissingDependency(ownerID, key)
			}
			resolved[key] = val
			continue
		}

		// Tasks, events, hooks, middleware, error helpers resolve to the
		// definition itself: callers use it as a handle (e.g. for
		// RunTask(rt, ctx, dep, ...) or EmitEvent(rt, ctx, dep, ...) after a
		// type assertion), not a precomputed value.
		resolved[key] = def
	}
	return resolved, nil
}

// value returns a resource's resolved value and whether it has been set,
// safe to call concurrently with an in-flight parallel or lazy init.
func (s *scheduler) value(id string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[id]
	return v, ok
}

// byIDResources indexes every registered resource by id.
func (s *scheduler) byIDResources() map[string]AnyResource {
	byID := make(map[string]AnyResource)
	for _, def := range s.store.All(KindResource) {
		byID[def.ID()] = def.(AnyResource)
	}
	return byID
}

// initOne resolves deps, validates config, runs res's middleware-wrapped
// init, validates the result, and records the value. Shared by sequential,
// parallel, and lazy-closure init.
func (s *scheduler) initOne(ctx *InitCtx, res AnyResource) error {
	deps, err := s.resolveDeps(res.ID(), res.Dependencies())
	if err != nil {
		return err
	}

	var config any
	if cfg, ok := res.Config(); ok {
		config = cfg
	}
	if preset, ok := s.configs[res.ID()]; ok {
		config = preset
	}

	if schemaErr := validateWith(res.ConfigSchema(), &config); schemaErr != nil {
		return errValidationFailed("config", res.ID(), schemaErr)
	}

	chain := buildResourceChain(res, append(s.everywhereResourceMiddleware(res), res.Middleware()...))
	value, err := chain(ctx, config, deps)
	if err != nil {
		return err
	}

	if schemaErr := validateWith(res.ResultSchema(), &value); schemaErr != nil {
		return errValidationFailed("result", res.ID(), schemaErr)
	}

	s.mu.Lock()
	s.values[res.ID()] = value
	s.mu.Unlock()
	return nil
}

// initResources runs every not-yet-initialized resource's init function,
// in dependency order, through its middleware chain (everywhere middleware
// first, then its own, innermost call last). ctx.runtime should already be
// wired enough that resources initialized earlier are visible via
// ctx.Runtime().
func (s *scheduler) initResources(ctx *InitCtx) error {
	ids, err := s.graph.initOrder(s.resourceIDs())
	if err != nil {
		return err
	}
	byID := s.byIDResources()

	for _, id := range ids {
		res, ok := byID[id]
		if !ok {
			continue // id appeared only as a non-resource node, shouldn't happen
		}
		if _, done := s.values[id]; done {
			continue
		}
		if err := s.initOne(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

// initResourcesParallel starts every resource whose direct resource
// dependencies are all initialized concurrently, waits for that frontier to
// settle, then advances to the next frontier — per spec.md §4.3's parallel
// mode. No resource's init observes a partially initialized dependency.
func (s *scheduler) initResourcesParallel(ctx *InitCtx) error {
	ids, err := s.graph.initOrder(s.resourceIDs()) // validates acyclicity up front
	if err != nil {
		return err
	}
	byID := s.byIDResources()
	remaining := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, done := s.values[id]; !done {
			if _, ok := byID[id]; ok {
				remaining[id] = true
			}
		}
	}

	for len(remaining) > 0 {
		frontier := make([]string, 0)
		for id := range remaining {
			if s.depsInitialized(byID[id]) {
				frontier = append(frontier, id)
			}
		}
		if len(frontier) == 0 {
			// Every remaining resource is waiting on something not in
			// remaining and not yet initialized: a cycle the earlier
			// acyclicity check should have already caught, but guard
			// against infinite looping regardless.
			return errResourceCycle(frontier)
		}

		var wg sync.WaitGroup
		errs := make([]error, len(frontier))
		wg.Add(len(frontier))
		for i, id := range frontier {
			go func(i int, id string) {
				defer wg.Done()
				errs[i] = s.initOne(ctx, byID[id])
			}(i, id)
		}
		wg.Wait()

		for i, id := range frontier {
			delete(remaining, id)
			if errs[i] != nil && err == nil {
				err = errs[i]
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// depsInitialized reports whether every direct resource dependency of res
// (including resources reached through a tag accessor's resource set) has
// an initialized value already.
func (s *scheduler) depsInitialized(res AnyResource) bool {
	if res == nil {
		return false
	}
	for _, entry := range res.Dependencies() {
		def := unwrapEntry(entry)
		if tag, ok := def.(AnyTag); ok && def.Kind() == KindTag {
			for _, tdef := range s.tagIndex.definitionsForTag(tag.ID()) {
				if tdef.Kind() != KindResource {
					continue
				}
				if _, done := s.values[tdef.ID()]; !done {
					return false
				}
			}
			continue
		}
		if def.Kind() != KindResource {
			continue
		}
		if _, done := s.values[def.ID()]; !done {
			if entry.Optional() {
				continue
			}
			return false
		}
	}
	return true
}

// closure returns every resource id reachable by walking res's (and its
// dependencies') resource dependencies, in initialization order — used by
// lazy mode to initialize only what a single GetLazyResourceValue call
// needs instead of the whole graph.
func (s *scheduler) closure(rootIDs ...string) ([]string, error) {
	full, err := s.graph.initOrder(s.resourceIDs())
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool)
	var mark func(id string)
	mark = func(id string) {
		if wanted[id] {
			return
		}
		wanted[id] = true
		for _, dep := range s.graph.downstream[id] {
			mark(dep)
		}
	}
	for _, id := range rootIDs {
		mark(id)
	}
	out := make([]string, 0, len(wanted))
	for _, id := range full {
		if wanted[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// initClosure initializes exactly the not-yet-initialized resources in the
// transitive resource-dependency closure of rootIDs, in dependency order.
func (s *scheduler) initClosure(ctx *InitCtx, rootIDs ...string) error {
	ids, err := s.closure(rootIDs...)
	if err != nil {
		return err
	}
	byID := s.byIDResources()
	for _, id := range ids {
		res, ok := byID[id]
		if !ok {
			continue
		}
		if _, done := s.values[id]; done {
			continue
		}
		if err := s.initOne(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

// buildResourceChain composes a resource's middleware into a single
// next-based call, mirroring the teacher's extension-wrapping loop in
// scope.go's Resolve (iterate in reverse so the first-declared middleware
// is outermost).
func buildResourceChain(res AnyResource, mws []AnyResourceMiddleware) func(ctx *InitCtx, config any, deps Deps) (any, error) {
	return func(ctx *InitCtx, config any, deps Deps) (any, error) {
		next := func() (any, error) { return res.invokeInit(ctx, config, deps) }
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := next
			next = func() (any, error) { return mw.Wrap(ctx, res, config, prev) }
		}
		return next()
	}
}

// computeHookStates resolves each hook's own dependency closure and
// attaches every hook that reaches Ready to mgr, mirroring the "hooks
// attach once their deps are Ready" rule.
func (s *scheduler) computeHookStates(mgr *EventManager) error {
	for _, def := range s.store.All(KindHook) {
		hook := def.(*HookDef)
		hook.state = hookComputing
		deps, err := s.resolveDeps(hook.ID(), hook.Dependencies())
		if err != nil {
			hook.state = hookError
			return err
		}
		hook.state = hookReady
		mgr.attach(hook, deps)
	}
	return nil
}

// disposeResources runs dispose in dependents-first order.
func (s *scheduler) disposeResources(ctx *disposeCtx) error {
	ids, err := s.graph.disposeOrder(s.resourceIDs())
	if err != nil {
		return err
	}
	var firstErr error
	for _, id := range ids {
		def, ok := s.store.Get(KindResource, id)
		if !ok {
			continue
		}
		res := def.(AnyResource)
		val, ok := s.values[id]
		if !ok {
			continue
		}
		if err := res.invokeDispose(ctx.ctx, val); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
