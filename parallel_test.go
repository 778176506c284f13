package weft

import (
	"errors"
	"testing"
)

func TestParallel_AllSucceedPreservesOrder(t *testing.T) {
	thunks := make([]func() (int, error), 5)
	for i := range thunks {
		i := i
		thunks[i] = func() (int, error) { return i * i, nil }
	}
	results, err := Parallel(thunks)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for i, r := range results {
		if r != i*i {
			t.Errorf("position %d: expected %d, got %d", i, i*i, r)
		}
	}
}

func TestParallel_FailFastReturnsFirstErrorByPosition(t *testing.T) {
	boom := errors.New("boom")
	thunks := []func() (int, error){
		func() (int, error) { return 1, nil },
		func() (int, error) { return 0, boom },
		func() (int, error) { return 3, nil },
	}
	_, err := Parallel(thunks, WithFailFast())
	if err != boom {
		t.Fatalf("expected the thunk's own error, got %v", err)
	}
}

func TestParallel_CollectErrorsAggregatesEveryFailure(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	thunks := []func() (int, error){
		func() (int, error) { return 0, errA },
		func() (int, error) { return 1, nil },
		func() (int, error) { return 0, errB },
	}
	_, err := Parallel(thunks, WithCollectErrors())
	var perr *ParallelError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a *ParallelError, got %T", err)
	}
	if len(perr.Errors) != 2 || perr.Errors[0] != errA || perr.Errors[2] != errB {
		t.Errorf("expected both indexed errors preserved, got %v", perr.Errors)
	}
}
