package weft

import (
	"log/slog"
	"os"
)

// InitMode controls whether independent resources initialize one after
// another or concurrently during boot.
type InitMode int

const (
	InitSequential InitMode = iota
	InitParallel
)

// LogPrintStrategy controls how buffered logs are flushed.
type LogPrintStrategy int

const (
	// PrintImmediately writes each log line as it is emitted.
	PrintImmediately LogPrintStrategy = iota
	// PrintOnError buffers log lines and only flushes them if boot or a
	// task run ends in error, useful for keeping successful runs quiet
	// without losing diagnostics on failure.
	PrintOnError
)

// LogOptions configures the ambient Logger.
type LogOptions struct {
	Handler        slog.Handler
	PrintThreshold slog.Level
	PrintStrategy  LogPrintStrategy
	BufferLogs     bool
}

// RunOptions configures a call to Run.
type RunOptions struct {
	Debug                   bool
	Logs                    LogOptions
	ErrorBoundary           bool
	ShutdownHooks           bool
	OnUnhandledError        func(error)
	DryRun                  bool
	EventCycleDetection     bool
	Lazy                    bool
	InitMode                InitMode
	ResourcePresets         map[string]presetEntry
	TaskPresets             map[string]presetEntry
}

// RunOption configures RunOptions at Run() call time, in the teacher's own
// functional-options idiom (ScopeOption in scope.go).
type RunOption func(*RunOptions)

func defaultRunOptions() RunOptions {
	return RunOptions{
		ErrorBoundary:       true,
		ShutdownHooks:       true,
		EventCycleDetection: true,
		InitMode:            InitSequential,
		Logs: LogOptions{
			Handler:        slog.NewTextHandler(os.Stderr, nil),
			PrintThreshold: slog.LevelInfo,
			PrintStrategy:  PrintImmediately,
		},
		ResourcePresets: make(map[string]presetEntry),
		TaskPresets:     make(map[string]presetEntry),
	}
}

// WithDebug sets RunOptions.Debug. Nothing in the runtime reads the flag:
// it turns on no extra diagnostics.
func WithDebug(on bool) RunOption {
	return func(o *RunOptions) { o.Debug = on }
}

// WithLogHandler overrides the slog.Handler backing the ambient logger.
func WithLogHandler(h slog.Handler) RunOption {
	return func(o *RunOptions) { o.Logs.Handler = h }
}

// WithLogPrintThreshold sets the minimum level the ambient logger emits.
func WithLogPrintThreshold(level slog.Level) RunOption {
	return func(o *RunOptions) { o.Logs.PrintThreshold = level }
}

// WithLogPrintStrategy controls whether logs flush immediately or only on
// error.
func WithLogPrintStrategy(strategy LogPrintStrategy) RunOption {
	return func(o *RunOptions) {
		o.Logs.PrintStrategy = strategy
		o.Logs.BufferLogs = strategy == PrintOnError
	}
}

// WithErrorBoundary controls whether a panic raised during boot is
// recovered and returned from Run as a WiringError (true, the default) or
// left to propagate to the caller (false). Wiring failures reported as
// errors are returned from Run either way.
func WithErrorBoundary(on bool) RunOption {
	return func(o *RunOptions) { o.ErrorBoundary = on }
}

// WithShutdownHooks controls whether Run registers an OS signal handler
// that calls Runtime.Dispose on SIGINT/SIGTERM.
func WithShutdownHooks(on bool) RunOption {
	return func(o *RunOptions) { o.ShutdownHooks = on }
}

// WithOnUnhandledError stores fn in RunOptions.OnUnhandledError. Nothing
// in the runtime calls it: errors surface only through the RunTask,
// EmitEvent or Run call that raised them.
func WithOnUnhandledError(fn func(error)) RunOption {
	return func(o *RunOptions) { o.OnUnhandledError = fn }
}

// WithDryRun validates and wires the registration tree without running
// any resource's init function; no resource value is set, so
// GetResourceValue reports false for every resource.
func WithDryRun(on bool) RunOption {
	return func(o *RunOptions) { o.DryRun = on }
}

// WithEventCycleDetection toggles the re-entrant emission guard.
func WithEventCycleDetection(on bool) RunOption {
	return func(o *RunOptions) { o.EventCycleDetection = on }
}

// WithLazyResources defers resource init until first use instead of
// during boot.
func WithLazyResources(on bool) RunOption {
	return func(o *RunOptions) { o.Lazy = on }
}

// WithInitMode selects sequential or parallel resource initialization.
func WithInitMode(mode InitMode) RunOption {
	return func(o *RunOptions) { o.InitMode = mode }
}
