package weft

import "testing"

func TestStore_PutDuplicateIDFails(t *testing.T) {
	s := newStore()
	task := NewTask("greet", func(ctx *TaskContext, in string, deps Deps) (string, error) { return in, nil })
	if err := s.Put(task); err != nil {
		t.Fatalf("expected first Put to succeed, got %v", err)
	}
	dup := NewTask("greet", func(ctx *TaskContext, in string, deps Deps) (string, error) { return in, nil })
	if err := s.Put(dup); err == nil {
		t.Fatal("expected duplicate id Put to fail")
	}
}

func TestStore_SealRejectsWrites(t *testing.T) {
	s := newStore()
	s.Seal()
	task := NewTask("greet", func(ctx *TaskContext, in string, deps Deps) (string, error) { return in, nil })
	if err := s.Put(task); err != ErrStoreLocked {
		t.Fatalf("expected ErrStoreLocked, got %v", err)
	}
}

func TestStore_AllPreservesRegistrationOrder(t *testing.T) {
	s := newStore()
	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		task := NewTask(id, func(ctx *TaskContext, in string, deps Deps) (string, error) { return in, nil })
		if err := s.Put(task); err != nil {
			t.Fatalf("Put(%q): %v", id, err)
		}
	}
	all := s.All(KindTask)
	if len(all) != len(ids) {
		t.Fatalf("expected %d tasks, got %d", len(ids), len(all))
	}
	for i, def := range all {
		if def.ID() != ids[i] {
			t.Errorf("position %d: expected %q, got %q", i, ids[i], def.ID())
		}
	}
}

func TestStore_ReplaceOverwritesInPlace(t *testing.T) {
	s := newStore()
	original := NewTask("greet", func(ctx *TaskContext, in string, deps Deps) (string, error) { return "v1", nil })
	if err := s.Put(original); err != nil {
		t.Fatalf("Put: %v", err)
	}
	replacement := NewTask("greet", func(ctx *TaskContext, in string, deps Deps) (string, error) { return "v2", nil })
	if err := s.Replace(replacement); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got, ok := s.Get(KindTask, "greet")
	if !ok {
		t.Fatal("expected greet to still be present")
	}
	if got != AnyDefinition(replacement) {
		t.Error("expected Replace to swap in the new definition")
	}
	if len(s.All(KindTask)) != 1 {
		t.Errorf("expected Replace not to duplicate the registration-order slot, got %d entries", len(s.All(KindTask)))
	}
}
