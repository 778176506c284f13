package weft

import "testing"

// TestTagAccessor_CachingReturnsStableReferences covers P6: repeated reads
// of the same sub-array on one accessor return the exact same backing
// slice, not merely an equal one.
func TestTagAccessor_CachingReturnsStableReferences(t *testing.T) {
	featureTag := NewTag[struct{}]("featureTag")
	task := NewTask("do-it", func(ctx *TaskContext, in string, deps Deps) (string, error) { return in, nil },
		WithTaskTags[string, string](featureTag))

	store, err := buildRegistrationTree([]AnyDefinition{task})
	if err != nil {
		t.Fatalf("expected registration to succeed, got %v", err)
	}
	ti := newTagIndex(store)
	accessor := accessorFor(ti, featureTag)

	first := accessor.Tasks()
	second := accessor.Tasks()
	if len(first) != 1 {
		t.Fatalf("expected one tagged task, got %d", len(first))
	}
	if &first[0] != &second[0] {
		t.Error("expected Tasks() to return the same backing slice on repeated reads")
	}
}

// TestTagIndex_S1_FullKindCoverage mirrors scenario S1: a task, event,
// hook, two middlewares and a resource all tagged "featureTag" are each
// discoverable through a single tag accessor, with every sub-array cached
// stably across repeated reads (P6).
func TestTagIndex_S1_FullKindCoverage(t *testing.T) {
	featureTag := NewTag[struct{}]("featureTag")

	event := NewEvent[string]("evt", WithEventTags[string](featureTag))
	hook := NewHook("hook", []string{"evt"},
		func(ctx *HookContext, eventID string, payload any, deps Deps) error { return nil },
	)
	hook.base.tags = append(hook.base.tags, featureTag)

	resource := NewResource("res", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 1, nil },
		WithResourceTags[struct{}, int](featureTag))
	taskMW := NewTaskMiddleware("tmw", func(ctx *TaskContext, task AnyTask, input any, next func() (any, error)) (any, error) { return next() })
	taskMW.base.tags = append(taskMW.base.tags, featureTag)
	resourceMW := NewResourceMiddleware("rmw", func(ctx *InitCtx, res AnyResource, config any, next func() (any, error)) (any, error) { return next() })
	resourceMW.base.tags = append(resourceMW.base.tags, featureTag)

	task := NewTask("task", func(ctx *TaskContext, in string, deps Deps) (string, error) { return in, nil },
		WithTaskTags[string, string](featureTag), WithTaskMiddleware[string, string](taskMW))

	root := NewResource("root", func(ctx *InitCtx, cfg struct{}, deps Deps) (int, error) { return 0, nil },
		WithResourceRegister[struct{}, int](event, hook, resource, task, resourceMW),
		WithResourceMiddleware[struct{}, int](resourceMW),
	)

	store, err := buildRegistrationTree([]AnyDefinition{root})
	if err != nil {
		t.Fatalf("expected registration to succeed, got %v", err)
	}
	ti := newTagIndex(store)
	accessor := accessorFor(ti, featureTag)

	if got := len(accessor.Tasks()); got != 1 {
		t.Errorf("expected 1 tagged task, got %d", got)
	}
	if got := len(accessor.Resources()); got != 1 {
		t.Errorf("expected 1 tagged resource, got %d", got)
	}
	if got := len(accessor.Events()); got != 1 {
		t.Errorf("expected 1 tagged event, got %d", got)
	}
	if got := len(accessor.Hooks()); got != 1 {
		t.Errorf("expected 1 tagged hook, got %d", got)
	}
	if got := len(accessor.TaskMiddlewares()); got != 1 {
		t.Errorf("expected 1 tagged task middleware, got %d", got)
	}
	if got := len(accessor.ResourceMiddlewares()); got != 1 {
		t.Errorf("expected 1 tagged resource middleware, got %d", got)
	}

	// Re-read every sub-array and confirm stable references (P6).
	if &accessor.Tasks()[0] != &accessor.Tasks()[0] {
		t.Error("Tasks() should be stable across repeated reads")
	}
	if &accessor.Resources()[0] != &accessor.Resources()[0] {
		t.Error("Resources() should be stable across repeated reads")
	}
	if &accessor.Events()[0] != &accessor.Events()[0] {
		t.Error("Events() should be stable across repeated reads")
	}
}
