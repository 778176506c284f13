package weft

import (
	"testing"

	"github.com/weftrun/weft/pkg/schema"
)

type lookupFailure struct {
	Key string
}

func TestErrorDef_ThrowIsData(t *testing.T) {
	notFound := NewErrorDef[lookupFailure]("lookup.notFound",
		WithErrorFormat[lookupFailure](func(d lookupFailure) string { return "key not found: " + d.Key }))
	other := NewErrorDef[lookupFailure]("lookup.other")

	err := notFound.Throw(lookupFailure{Key: "abc"})
	if !notFound.Is(err) {
		t.Error("expected Is to report true for the throwing ErrorDef")
	}
	if other.Is(err) {
		t.Error("expected a distinct ErrorDef's Is to report false")
	}
	data, ok := notFound.Data(err)
	if !ok || data.Key != "abc" {
		t.Errorf("expected Data to recover the thrown payload, got (%+v, %v)", data, ok)
	}
	if err.Error() != "key not found: abc" {
		t.Errorf("expected the custom format, got %q", err.Error())
	}
	if !isDeclaredError(err) {
		t.Error("expected isDeclaredError to recognize a Throw-produced error")
	}
}

func TestErrorDef_ThrowValidatesData(t *testing.T) {
	strict := NewErrorDef[string]("strict.error",
		WithErrorDataSchema[string](schema.Func(func(v any) (any, error) {
			return nil, &schema.ValidationError{Message: "always invalid"}
		})))

	err := strict.Throw("anything")
	if strict.Is(err) {
		t.Error("expected a data-schema violation to not itself be the declared error")
	}
	if isDeclaredError(err) {
		t.Error("expected a data-schema violation to not be treated as a declared error")
	}
}

func TestErrorDef_DefaultFormatIncludesIDAndData(t *testing.T) {
	plain := NewErrorDef[int]("plain.error")
	err := plain.Throw(42)
	if got := err.Error(); got != "plain.error: 42" {
		t.Fatalf("expected the default message to carry the id and data, got %q", got)
	}
}
