package weft

import (
	"strconv"
	"sync"
)

// ParallelErrorMode controls how Parallel treats individual task
// failures, adapted from the teacher's ParallelExecutor (flow.go).
type ParallelErrorMode int

const (
	// ParallelFailFast waits for every item, then returns the results
	// alongside the error of the lowest-indexed failing item alone.
	ParallelFailFast ParallelErrorMode = iota
	// ParallelCollectErrors waits for every item and returns every error
	// via a ParallelError.
	ParallelCollectErrors
)

// ParallelOption configures a Parallel call.
type ParallelOption func(*parallelOptions)

type parallelOptions struct {
	mode ParallelErrorMode
}

// WithFailFast selects ParallelFailFast (the default).
func WithFailFast() ParallelOption {
	return func(o *parallelOptions) { o.mode = ParallelFailFast }
}

// WithCollectErrors selects ParallelCollectErrors.
func WithCollectErrors() ParallelOption {
	return func(o *parallelOptions) { o.mode = ParallelCollectErrors }
}

// ParallelError aggregates every failure observed under
// WithCollectErrors, indexed by the position of the failing thunk.
type ParallelError struct {
	Errors map[int]error
}

func (e *ParallelError) Error() string {
	msg := "parallel execution failed"
	for i, err := range e.Errors {
		msg += "; [" + strconv.Itoa(i) + "] " + err.Error()
	}
	return msg
}

// Parallel runs each thunk concurrently and waits for all of them,
// returning results in the same order as thunks. Call from a TaskContext
// to fan work out within a single task invocation.
func Parallel[T any](thunks []func() (T, error), opts ...ParallelOption) ([]T, error) {
	cfg := &parallelOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	results := make([]T, len(thunks))
	errs := make([]error, len(thunks))
	var wg sync.WaitGroup
	wg.Add(len(thunks))
	for i, thunk := range thunks {
		go func(i int, thunk func() (T, error)) {
			defer wg.Done()
			r, err := thunk()
			results[i] = r
			errs[i] = err
		}(i, thunk)
	}
	wg.Wait()

	collected := make(map[int]error)
	for i, err := range errs {
		if err != nil {
			collected[i] = err
		}
	}
	if len(collected) == 0 {
		return results, nil
	}
	if cfg.mode == ParallelFailFast {
		for i := range thunks {
			if err := collected[i]; err != nil {
				return results, err
			}
		}
	}
	return results, &ParallelError{Errors: collected}
}
