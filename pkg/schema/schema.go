// Package schema defines the validation-object capability the core
// consumes for a definition's input/result/config/payload shape: any value
// exposing a Parse(unknown) that either hands back a (possibly coerced)
// value or reports a structural violation.
package schema

import (
	"fmt"
	"reflect"
)

// ValidationError reports a structural violation, optionally scoped to a
// path within a composite value (object property, array index).
type ValidationError struct {
	Message string
	Path    []string
}

func (e *ValidationError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s at path %v", e.Message, e.Path)
	}
	return e.Message
}

// Schema validates, and may coerce, an unknown value.
type Schema interface {
	Parse(value any) (any, error)
}

// Func adapts a plain function to Schema.
type Func func(value any) (any, error)

func (f Func) Parse(value any) (any, error) { return f(value) }

// StringSchema validates strings.
type StringSchema struct {
	MinLength int
	MaxLength int
}

func String() *StringSchema { return &StringSchema{} }

func (s *StringSchema) Parse(value any) (any, error) {
	str, ok := value.(string)
	if !ok {
		return nil, &ValidationError{Message: "value is not a string"}
	}
	if s.MinLength > 0 && len(str) < s.MinLength {
		return nil, &ValidationError{Message: fmt.Sprintf("string length %d is less than minimum %d", len(str), s.MinLength)}
	}
	if s.MaxLength > 0 && len(str) > s.MaxLength {
		return nil, &ValidationError{Message: fmt.Sprintf("string length %d is greater than maximum %d", len(str), s.MaxLength)}
	}
	return str, nil
}

// NumberSchema validates numeric values, accepting any Go integer or
// floating-point kind.
type NumberSchema struct {
	Min, Max       float64
	HasMin, HasMax bool
	Integer        bool
}

func Number() *NumberSchema { return &NumberSchema{} }

func (s *NumberSchema) Parse(value any) (any, error) {
	var num float64
	switch v := value.(type) {
	case int:
		num = float64(v)
	case int32:
		num = float64(v)
	case int64:
		num = float64(v)
	case float32:
		num = float64(v)
	case float64:
		num = v
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			num = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			num = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			num = rv.Float()
		default:
			return nil, &ValidationError{Message: "value is not a number"}
		}
	}
	if s.HasMin && num < s.Min {
		return nil, &ValidationError{Message: fmt.Sprintf("number %v is less than minimum %v", num, s.Min)}
	}
	if s.HasMax && num > s.Max {
		return nil, &ValidationError{Message: fmt.Sprintf("number %v is greater than maximum %v", num, s.Max)}
	}
	if s.Integer && float64(int64(num)) != num {
		return nil, &ValidationError{Message: "number must be an integer"}
	}
	return num, nil
}

// BooleanSchema validates booleans.
type BooleanSchema struct{}

func Boolean() *BooleanSchema { return &BooleanSchema{} }

func (s *BooleanSchema) Parse(value any) (any, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, &ValidationError{Message: "value is not a boolean"}
	}
	return b, nil
}

// ArraySchema validates slices, optionally validating each item against a
// shared item schema.
type ArraySchema struct {
	ItemSchema         Schema
	MinItems, MaxItems int
}

func Array(item Schema) *ArraySchema { return &ArraySchema{ItemSchema: item} }

func (s *ArraySchema) Parse(value any) (any, error) {
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		return nil, &ValidationError{Message: "value is not an array"}
	}
	length := val.Len()
	if s.MinItems > 0 && length < s.MinItems {
		return nil, &ValidationError{Message: fmt.Sprintf("array length %d is less than minimum %d", length, s.MinItems)}
	}
	if s.MaxItems > 0 && length > s.MaxItems {
		return nil, &ValidationError{Message: fmt.Sprintf("array length %d is greater than maximum %d", length, s.MaxItems)}
	}
	if s.ItemSchema == nil {
		return value, nil
	}
	result := reflect.MakeSlice(val.Type(), 0, length)
	for i := 0; i < length; i++ {
		item, err := s.ItemSchema.Parse(val.Index(i).Interface())
		if err != nil {
			if ve, ok := err.(*ValidationError); ok {
				ve.Path = append([]string{fmt.Sprintf("[%d]", i)}, ve.Path...)
			}
			return nil, err
		}
		result = reflect.Append(result, reflect.ValueOf(item))
	}
	return result.Interface(), nil
}

// ObjectSchema validates maps against a known property set.
type ObjectSchema struct {
	Properties map[string]Schema
	Required   []string
}

func Object(props map[string]Schema) *ObjectSchema {
	return &ObjectSchema{Properties: props}
}

func (s *ObjectSchema) Parse(value any) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, &ValidationError{Message: "value is not an object"}
	}
	for _, req := range s.Required {
		if _, present := m[req]; !present {
			return nil, &ValidationError{Message: fmt.Sprintf("required property %q is missing", req)}
		}
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	for key, propSchema := range s.Properties {
		v, present := m[key]
		if !present {
			continue
		}
		parsed, err := propSchema.Parse(v)
		if err != nil {
			if ve, ok := err.(*ValidationError); ok {
				ve.Path = append([]string{key}, ve.Path...)
			}
			return nil, err
		}
		result[key] = parsed
	}
	return result, nil
}

// AnySchema accepts every value unchanged, for a call site that wants a
// Schema value which never rejects. A definition that declares no
// input/result/config shape carries a nil schema, not an AnySchema.
type AnySchema struct{}

func Any() *AnySchema { return &AnySchema{} }

func (s *AnySchema) Parse(value any) (any, error) { return value, nil }
