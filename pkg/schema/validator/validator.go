// Package validator adapts github.com/go-playground/validator.v9 struct-tag
// validation to the schema.Schema interface, for definitions that would
// rather declare their shape as Go struct tags than assemble a
// schema.ObjectSchema by hand.
package validator

import (
	"reflect"

	playground "gopkg.in/go-playground/validator.v9"

	"github.com/weftrun/weft/pkg/schema"
)

// Struct validates a concrete struct type T against its `validate:"..."`
// tags. Parse requires its input already be a T (or *T); T's type name is
// recovered via reflect only to word the error for any other input.
type Struct[T any] struct {
	validate *playground.Validate
}

// New builds a struct-tag-backed schema for T.
func New[T any]() *Struct[T] {
	return &Struct[T]{validate: playground.New()}
}

func (s *Struct[T]) Parse(value any) (any, error) {
	v, ok := value.(T)
	if !ok {
		if ptr, ok := value.(*T); ok {
			v = *ptr
		} else {
			return nil, &schema.ValidationError{Message: "value is not a " + reflect.TypeOf((*T)(nil)).Elem().Name()}
		}
	}
	if err := s.validate.Struct(v); err != nil {
		return nil, &schema.ValidationError{Message: err.Error()}
	}
	return v, nil
}
