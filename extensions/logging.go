// Package extensions collects optional, composable middleware for a weft
// runtime: cross-cutting concerns that wrap tasks/resources rather than
// living inside the runtime core.
package extensions

import (
	"time"

	"github.com/weftrun/weft"
)

// NewLoggingTaskMiddleware logs every task's start and completion (or
// failure, with elapsed time) through the runtime's own structured
// logger, the way the teacher's extension chain logs each operation.
func NewLoggingTaskMiddleware(id string) *weft.TaskMiddlewareDef {
	return weft.NewTaskMiddleware(id, func(ctx *weft.TaskContext, task weft.AnyTask, input any, next func() (any, error)) (any, error) {
		logger := ctx.Runtime().Logger()
		start := time.Now()
		logger.Debug("task starting", "task", task.ID())

		result, err := next()

		elapsed := time.Since(start)
		if err != nil {
			logger.Error("task failed", "task", task.ID(), "elapsed", elapsed, "error", err)
		} else {
			logger.Info("task completed", "task", task.ID(), "elapsed", elapsed)
		}
		return result, err
	}, weft.WithTaskMiddlewareEverywhere())
}

// NewLoggingResourceMiddleware logs every resource's initialization.
func NewLoggingResourceMiddleware(id string) *weft.ResourceMiddlewareDef {
	return weft.NewResourceMiddleware(id, func(ctx *weft.InitCtx, res weft.AnyResource, config any, next func() (any, error)) (any, error) {
		logger := ctx.Runtime().Logger()
		start := time.Now()
		logger.Debug("resource initializing", "resource", res.ID())

		value, err := next()

		elapsed := time.Since(start)
		if err != nil {
			logger.Error("resource init failed", "resource", res.ID(), "elapsed", elapsed, "error", err)
		} else {
			logger.Info("resource initialized", "resource", res.ID(), "elapsed", elapsed)
		}
		return value, err
	}, weft.WithResourceMiddlewareEverywhere())
}
