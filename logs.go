package weft

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
)

// Logger wraps log/slog — the teacher's own structured logging choice, as
// seen in extensions/graph_debug.go — with the buffering behavior
// RunOptions.Logs describes: PrintOnError holds every line until boot or a
// task run ends in error, then flushes; PrintImmediately writes straight
// through.
type Logger struct {
	base      *slog.Logger
	threshold slog.Level
	buffer    bool
	mu        sync.Mutex
	buffered  *bytes.Buffer
	handler   slog.Handler
}

func newLogger(opts LogOptions) *Logger {
	l := &Logger{threshold: opts.PrintThreshold, buffer: opts.BufferLogs, handler: opts.Handler}
	if l.buffer {
		l.buffered = &bytes.Buffer{}
		l.base = slog.New(slog.NewTextHandler(l.buffered, &slog.HandlerOptions{Level: opts.PrintThreshold}))
	} else {
		l.base = slog.New(opts.Handler)
	}
	return l
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if level < l.threshold {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.base.Log(context.Background(), level, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

// FlushOnError writes any buffered output to handler, if buffering is
// enabled; a no-op otherwise. Call from the boot/run failure paths.
func (l *Logger) FlushOnError() {
	if !l.buffer {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := slog.NewRecord(0, slog.LevelInfo, l.buffered.String(), 0)
	_ = l.handler.Handle(context.Background(), rec)
	l.buffered.Reset()
}

// Discard drops any buffered output without printing it, called after a
// successful run when PrintOnError is in effect.
func (l *Logger) Discard() {
	if !l.buffer {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buffered.Reset()
}
