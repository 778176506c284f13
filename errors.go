package weft

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// CoreError is the shape every error raised by the runtime satisfies: a
// stable id (for programmatic matching, e.g. "runner.errors.tunnelTaskNotFound"),
// a human message, and optional remediation text.
type CoreError interface {
	error
	ErrorID() string
	Remediation() string
	Unwrap() error
}

type baseError struct {
	id          string
	message     string
	remediation string
	cause       error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) ErrorID() string     { return e.id }
func (e *baseError) Remediation() string { return e.remediation }
func (e *baseError) Unwrap() error       { return e.cause }

// DefinitionError covers registration-time faults: duplicate ids, duplicate
// tags on a single definition, unknown item kinds, writes to a sealed store,
// overrides of an incompatible base, invalid http codes, invalid throws
// entries.
type DefinitionError struct{ *baseError }

func newDefinitionError(id, message string, cause error) *DefinitionError {
	return &DefinitionError{&baseError{id: id, message: message, cause: cause}}
}

// WiringError covers boot-time dependency wiring faults: missing
// non-optional dependency, resource DAG cycle, hook dependency extraction
// failure, tunnel-exclusivity violation, impossible contract intersection.
//
// Wiring errors capture a stack trace at the point they are raised (via
// github.com/pkg/errors), independent of where the boot sequence later
// surfaces them, because the abort path in runtime.go only learns about the
// failure several call frames away from where it actually occurred.
type WiringError struct{ *baseError }

func newWiringError(id, message string, cause error) *WiringError {
	wrapped := cause
	if wrapped != nil {
		wrapped = pkgerrors.WithStack(wrapped)
	} else {
		wrapped = pkgerrors.New(message)
	}
	return &WiringError{&baseError{id: id, message: message, cause: wrapped}}
}

// ExecutionError covers task/middleware runtime faults: input/result/config
// validation failures, middleware timeouts, circuit-breaker-open,
// rate-limit-exceeded, required-context-missing, cancellation.
type ExecutionError struct{ *baseError }

func newExecutionError(id, message string, cause error) *ExecutionError {
	return &ExecutionError{&baseError{id: id, message: message, cause: cause}}
}

// EventError covers event-manager faults: re-entrant cycle detection,
// emitWithResult on a parallel event, aggregated listener failures.
type EventError struct{ *baseError }

func newEventError(id, message string, cause error) *EventError {
	return &EventError{&baseError{id: id, message: message, cause: cause}}
}

var (
	// ErrStoreLocked is returned by any write attempted after the store seals.
	ErrStoreLocked = newDefinitionError("store.locked", "LockableMapLocked: store is sealed", nil)
)

func errDuplicateID(kind Kind, id string) *DefinitionError {
	return newDefinitionError("store.duplicateId",
		fmt.Sprintf("duplicate id %q for kind %s", id, kind), nil)
}

func errDuplicateTag(ownerID, tagID string) *DefinitionError {
	return newDefinitionError("store.duplicateTag",
		fmt.Sprintf("duplicate tag %q on definition %q", tagID, ownerID), nil)
}

func errMissingDependency(ownerID, key string) *WiringError {
	return newWiringError("scheduler.missingDependency",
		fmt.Sprintf("unresolved non-optional dependency %q of %q", key, ownerID), nil)
}

func errResourceCycle(path []string) *WiringError {
	return newWiringError("scheduler.resourceCycle",
		fmt.Sprintf("cycle detected in resource dependency graph: %v", path), nil)
}

func errTunnelExclusivity(taskID string) *WiringError {
	return newWiringError("scheduler.tunnelExclusivity",
		fmt.Sprintf("task %q is tunneled by more than one resource", taskID), nil)
}

func errTaskNotFound(id string) *ExecutionError {
	return newExecutionError("runner.errors.taskNotFound", fmt.Sprintf("task %q not found", id), nil)
}

func errTunnelTaskNotFound(id string) *ExecutionError {
	return newExecutionError("runner.errors.tunnelTaskNotFound", fmt.Sprintf("tunneled task %q not found", id), nil)
}

func errValidationFailed(kind, ownerID string, cause error) *ExecutionError {
	return newExecutionError("runner.errors.validationFailed",
		fmt.Sprintf("Task %s validation failed for %s: %v", kind, ownerID, cause), cause)
}

// TaskRunError wraps a task failure that didn't match any declared error
// helper's Is(err) — spec's INTERNAL_ERROR kind.
type TaskRunError struct{ *baseError }

func newTaskRunError(taskID string, cause error) *TaskRunError {
	return &TaskRunError{&baseError{
		id:      "runner.errors.taskRunError",
		message: fmt.Sprintf("task %q failed", taskID),
		cause:   cause,
	}}
}

func errCycleDetected(eventID string) *EventError {
	return newEventError("events.cycleDetected",
		fmt.Sprintf("cycle detected: event %q re-entered during its own emission", eventID), nil)
}

func errParallelReturnUnsupported(eventID string) *EventError {
	return newEventError("events.parallelReturnUnsupported",
		fmt.Sprintf("emitWithResult is unsupported for parallel event %q", eventID), nil)
}
