package weft

import (
	"fmt"

	"github.com/weftrun/weft/pkg/schema"
)

// ErrorDef declares an application error kind carrying a typed data
// payload D, distinct from the runtime's own CoreError taxonomy
// (DefinitionError/WiringError/ExecutionError/EventError): ErrorDef is for
// the errors an application's own tasks/resources want to raise and match
// on by identity rather than by string comparison.
type ErrorDef[D any] struct {
	base
	format      func(D) string
	remediation string
	dataSchema  schema.Schema
	httpCode    int
}

// ErrorOption configures an ErrorDef at construction time.
type ErrorOption[D any] func(*ErrorDef[D])

// NewErrorDef declares an application error kind. By default its message
// is produced by fmt.Sprintf("%s: %+v", id, data); supply WithErrorFormat
// for a more specific one.
func NewErrorDef[D any](id string, opts ...ErrorOption[D]) *ErrorDef[D] {
	e := &ErrorDef[D]{base: newBase(id)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithErrorFormat overrides how this error's data renders into the
// human-readable message surfaced by Error().
func WithErrorFormat[D any](format func(D) string) ErrorOption[D] {
	return func(e *ErrorDef[D]) { e.format = format }
}

// WithErrorRemediation attaches operator-facing guidance for this error
// kind.
func WithErrorRemediation[D any](remediation string) ErrorOption[D] {
	return func(e *ErrorDef[D]) { e.remediation = remediation }
}

// WithErrorDataSchema validates data against schema at Throw time,
// failing Throw's caller early if it doesn't conform (see Throw).
func WithErrorDataSchema[D any](s schema.Schema) ErrorOption[D] {
	return func(e *ErrorDef[D]) { e.dataSchema = s }
}

// WithErrorHTTPCode attaches the HTTP status an external-facing layer
// should map this error kind to.
func WithErrorHTTPCode[D any](code int) ErrorOption[D] {
	return func(e *ErrorDef[D]) { e.httpCode = code }
}

func (e *ErrorDef[D]) Kind() Kind            { return KindError }
func (e *ErrorDef[D]) Remediation() string   { return e.remediation }
func (e *ErrorDef[D]) HTTPCode() (int, bool) { return e.httpCode, e.httpCode != 0 }

// appError is the concrete error value Throw produces.
type appError[D any] struct {
	def  *ErrorDef[D]
	data D
}

func (e *appError[D]) Error() string {
	if e.def.format != nil {
		return e.def.format(e.data)
	}
	return fmt.Sprintf("%s: %+v", e.def.ID(), e.data)
}

// Throw builds an error carrying data, identifiable later via Is/Data. If
// a dataSchema was declared, data is validated first and a validation
// ExecutionError is returned instead of the app error on failure.
func (e *ErrorDef[D]) Throw(data D) error {
	if e.dataSchema != nil {
		var boxed any = data
		if err := validateWith(e.dataSchema, &boxed); err != nil {
			return errValidationFailed("error-data", e.ID(), err)
		}
	}
	return &appError[D]{def: e, data: data}
}

// Is reports whether err was produced by this ErrorDef's Throw.
func (e *ErrorDef[D]) Is(err error) bool {
	ae, ok := err.(*appError[D])
	if !ok {
		return false
	}
	return ae.def == e
}

// Data extracts the payload from an error produced by this ErrorDef's
// Throw. The second return is false if err was not produced by this
// ErrorDef.
func (e *ErrorDef[D]) Data(err error) (D, bool) {
	ae, ok := err.(*appError[D])
	if !ok || ae.def != e {
		var zero D
		return zero, false
	}
	return ae.data, true
}

// anyAppError is the non-generic face of appError[D], letting the task
// runner recognize "this was raised through a declared ErrorDef.Throw"
// without knowing D.
type anyAppError interface {
	error
	declaredErrorID() string
}

func (e *appError[D]) declaredErrorID() string { return e.def.ID() }

// isDeclaredError reports whether err was produced by some ErrorDef's
// Throw, as opposed to an arbitrary Go error bubbling out of a task.
func isDeclaredError(err error) bool {
	_, ok := err.(anyAppError)
	return ok
}
