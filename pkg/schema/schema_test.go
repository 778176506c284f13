package schema

import "testing"

func TestStringSchema_Bounds(t *testing.T) {
	s := &StringSchema{MinLength: 2, MaxLength: 4}
	if _, err := s.Parse("a"); err == nil {
		t.Error("expected a too-short string to fail")
	}
	if _, err := s.Parse("abcde"); err == nil {
		t.Error("expected a too-long string to fail")
	}
	if _, err := s.Parse(42); err == nil {
		t.Error("expected a non-string to fail")
	}
	v, err := s.Parse("abc")
	if err != nil || v != "abc" {
		t.Errorf("expected abc to pass through, got (%v, %v)", v, err)
	}
}

func TestNumberSchema_IntegerAndBounds(t *testing.T) {
	s := &NumberSchema{HasMin: true, Min: 0, HasMax: true, Max: 10, Integer: true}
	if _, err := s.Parse(-1); err == nil {
		t.Error("expected below-minimum to fail")
	}
	if _, err := s.Parse(11); err == nil {
		t.Error("expected above-maximum to fail")
	}
	if _, err := s.Parse(2.5); err == nil {
		t.Error("expected a non-integer to fail")
	}
	if _, err := s.Parse("nope"); err == nil {
		t.Error("expected a non-number to fail")
	}
	v, err := s.Parse(5)
	if err != nil || v != float64(5) {
		t.Errorf("expected 5, got (%v, %v)", v, err)
	}
}

func TestArraySchema_ValidatesEachItem(t *testing.T) {
	s := Array(Number())
	if _, err := s.Parse([]any{1, 2, "bad"}); err == nil {
		t.Error("expected the invalid item to fail the whole array")
	}
	v, err := s.Parse([]any{1, 2, 3})
	if err != nil {
		t.Fatalf("expected a valid array to pass, got %v", err)
	}
	if items, ok := v.([]any); !ok || len(items) != 3 {
		t.Errorf("expected 3 parsed items, got %v", v)
	}
}

func TestObjectSchema_RequiredAndProperties(t *testing.T) {
	s := Object(map[string]Schema{"name": String()})
	s.Required = []string{"name"}

	if _, err := s.Parse(map[string]any{}); err == nil {
		t.Error("expected a missing required property to fail")
	}
	if _, err := s.Parse(map[string]any{"name": 5}); err == nil {
		t.Error("expected a wrong-typed property to fail")
	}
	v, err := s.Parse(map[string]any{"name": "ok"})
	if err != nil {
		t.Fatalf("expected a valid object to pass, got %v", err)
	}
	if m, ok := v.(map[string]any); !ok || m["name"] != "ok" {
		t.Errorf("expected name=ok, got %v", v)
	}
}

func TestAnySchema_AcceptsEverything(t *testing.T) {
	a := Any()
	if v, err := a.Parse(42); err != nil || v != 42 {
		t.Errorf("expected Any to pass through unchanged, got (%v, %v)", v, err)
	}
}
