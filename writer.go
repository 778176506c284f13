package weft

// writer performs the depth-first registration walk: starting from the
// roots passed to Run, it discovers every definition reachable through
// dependency maps, tag lists, and middleware lists, registers each exactly
// once, and applies resource overrides. It does not seal the store;
// RunWithOptions does that once hooks are attached.
type writer struct {
	store   *Store
	visited map[AnyDefinition]bool // by object identity, not id — an override
	// entry and the base it replaces legitimately share an id, and must be
	// tracked as two distinct objects rather than collapsed into one key.
}

func newWriter(store *Store) *writer {
	return &writer{store: store, visited: make(map[AnyDefinition]bool)}
}

// walk registers def and everything it transitively reaches.
func (w *writer) walk(def AnyDefinition) error {
	return w.visit(def, false)
}

// visit registers def and recurses into whatever it reaches. asOverride
// distinguishes the two ways a definition enters the tree: a normal
// reachable definition is Put under its own id (colliding with an
// existing id is fatal, per I1), while an entry found in some resource's
// Overrides() list is Replace'd into whatever id it shares with the
// definition it's replacing — never a collision, by design.
func (w *writer) visit(def AnyDefinition, asOverride bool) error {
	if w.visited[def] {
		return nil
	}
	w.visited[def] = true

	if err := checkDuplicateTags(def); err != nil {
		return err
	}

	if asOverride {
		if err := w.store.Replace(def); err != nil {
			return err
		}
	} else {
		if err := w.store.Put(def); err != nil {
			return err
		}
	}

	for _, tag := range def.TagList() {
		if err := w.visit(tag, false); err != nil {
			return err
		}
	}

	switch d := def.(type) {
	case AnyTask:
		if err := w.walkDeps(d.Dependencies()); err != nil {
			return err
		}
		for _, mw := range d.Middleware() {
			if err := w.visit(mw, false); err != nil {
				return err
			}
		}
	case AnyResource:
		if err := w.walkDeps(d.Dependencies()); err != nil {
			return err
		}
		for _, mw := range d.Middleware() {
			if err := w.visit(mw, false); err != nil {
				return err
			}
		}
		for _, child := range d.Register() {
			if err := w.visit(child, false); err != nil {
				return err
			}
		}
		// Overrides apply last, after this resource's own dependencies
		// and register tree are fully walked: any nested resource
		// reached through Register() has already applied its own
		// overrides by the time control returns here, so an outer
		// resource's override of the same id is applied after — and
		// therefore wins over — an inner one's, matching spec.md §4.1's
		// "innermost owner's overrides apply before outer ones".
		for _, override := range d.Overrides() {
			if err := w.visit(override, true); err != nil {
				return err
			}
		}
	case *HookDef:
		if err := w.walkDeps(d.Dependencies()); err != nil {
			return err
		}
	}
	return nil
}

// checkDuplicateTags enforces I2: a definition's own tags list may not name
// the same tag id twice.
func checkDuplicateTags(def AnyDefinition) error {
	seen := make(map[string]bool, len(def.TagList()))
	for _, tag := range def.TagList() {
		if seen[tag.ID()] {
			return errDuplicateTag(def.ID(), tag.ID())
		}
		seen[tag.ID()] = true
	}
	return nil
}

func (w *writer) walkDeps(deps DepMap) error {
	for _, entry := range deps {
		def := unwrapEntry(entry)
		if err := w.walk(def); err != nil {
			return err
		}
	}
	return nil
}

// unwrapEntry strips the Optional() wrapper to get at the underlying
// definition, since optionalEntry itself does not implement the kind
// switches in walk.
func unwrapEntry(entry AnyDepEntry) AnyDefinition {
	if oe, ok := entry.(optionalEntry); ok {
		return oe.AnyDefinition
	}
	return entry
}

// buildRegistrationTree walks every root and returns the populated,
// not-yet-sealed store. Sealing happens once the Tag Index and Scheduler
// have both finished reading it during boot.
func buildRegistrationTree(roots []AnyDefinition) (*Store, error) {
	store := newStore()
	w := newWriter(store)
	for _, root := range roots {
		if err := w.walk(root); err != nil {
			return nil, err
		}
	}
	return store, nil
}
