package weft

// presetEntry holds a replacement value or executor installed for testing,
// adapted from the teacher's WithPreset (scope.go): a preset swaps in
// either a fixed value or an alternate implementation without touching the
// registration tree itself.
type presetEntry struct {
	value    any
	hasValue bool
	resource AnyResource
	task     AnyTask
}

// WithResourcePreset replaces res's initialized value with value, skipping
// its init function and dependency resolution entirely. Intended for
// tests that want to stub out a database/client resource.
func WithResourcePreset(res AnyResource, value any) RunOption {
	return func(o *RunOptions) {
		o.ResourcePresets[res.ID()] = presetEntry{value: value, hasValue: true}
	}
}

// WithResourceExecutorPreset records replacement under res's id in
// RunOptions.ResourcePresets. Boot does not read it: res's own definition
// still initializes, and replacement's init never runs.
func WithResourceExecutorPreset(res AnyResource, replacement AnyResource) RunOption {
	return func(o *RunOptions) {
		o.ResourcePresets[res.ID()] = presetEntry{resource: replacement}
	}
}

// WithTaskPreset replaces task's run function with one that always
// returns value, never invoking the task's own middleware chain.
func WithTaskPreset(task AnyTask, value any) RunOption {
	return func(o *RunOptions) {
		o.TaskPresets[task.ID()] = presetEntry{value: value, hasValue: true}
	}
}

// WithTaskExecutorPreset replaces task's definition with an alternate
// task (same id assumed), still run through the normal chain.
func WithTaskExecutorPreset(task AnyTask, replacement AnyTask) RunOption {
	return func(o *RunOptions) {
		o.TaskPresets[task.ID()] = presetEntry{task: replacement}
	}
}
