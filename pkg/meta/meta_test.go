package meta

import "testing"

func TestGet_DirectAndConvertedTypes(t *testing.T) {
	m := map[string]any{"count": 3, "raw": int32(7)}

	if v, err := Get[int](m, "count"); err != nil || v != 3 {
		t.Errorf("expected direct assertion to succeed, got (%v, %v)", v, err)
	}
	if v, err := Get[int64](m, "raw"); err != nil || v != 7 {
		t.Errorf("expected convertible types to succeed, got (%v, %v)", v, err)
	}
}

func TestGet_MissingAndNilSource(t *testing.T) {
	if _, err := Get[string](nil, "x"); err != ErrSourceNil {
		t.Errorf("expected ErrSourceNil, got %v", err)
	}
	if _, err := Get[string](map[string]any{}, "x"); err != ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_TypeMismatch(t *testing.T) {
	m := map[string]any{"name": "not-a-number"}
	if _, err := Get[int](m, "name"); err != ErrTypeMismatch {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestSet_NoopOnNilMap(t *testing.T) {
	Set(nil, "x", 1) // must not panic
}

func TestSet_StoresValue(t *testing.T) {
	m := map[string]any{}
	Set(m, "x", 1)
	if m["x"] != 1 {
		t.Errorf("expected Set to store the value, got %v", m["x"])
	}
}
