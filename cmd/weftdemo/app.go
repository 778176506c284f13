package main

import (
	"fmt"

	"github.com/weftrun/weft"
	"github.com/weftrun/weft/extensions"
)

// greeting is the demo's only resource: a config-backed value with no
// dependencies, enough to exercise boot, dispose, and graph rendering
// without needing a second process to talk to.
var greeting = weft.NewResource("greeting", func(ctx *weft.InitCtx, cfg string, deps weft.Deps) (string, error) {
	return "hello, " + cfg, nil
})

// demoApp bundles the registration tree's roots together with the task
// handle callers run against, since buildApp constructs fresh
// definitions bound to this run's config rather than reusing
// package-level ones across repeated CLI invocations.
type demoApp struct {
	roots    []weft.AnyDefinition
	sayHello *weft.TaskDef[string, string]
}

// buildApp assembles the demo's registration tree: the greeting resource
// (configured with cfg.Greeting), the task that reads it, and the
// logging/graph-debug extensions so a run actually exercises the ambient
// observability stack.
func buildApp(cfg *demoConfig) *demoApp {
	root := greeting.With(cfg.Greeting)
	sayHello := weft.NewTask("say-hello", func(ctx *weft.TaskContext, in string, deps weft.Deps) (string, error) {
		return fmt.Sprintf("%s (%s)", deps["greeting"].(string), in), nil
	}, weft.WithTaskDeps[string, string](weft.DepMap{"greeting": root}))

	holder := weft.NewResource("say-hello-holder", func(ctx *weft.InitCtx, c struct{}, deps weft.Deps) (int, error) { return 0, nil },
		weft.WithResourceRegister[struct{}, int](
			sayHello,
			extensions.NewGraphDebugExtension("graph-debug", extensions.NewSilentHandler()).Middleware(),
			extensions.NewLoggingTaskMiddleware("logging"),
			extensions.NewLoggingResourceMiddleware("logging"),
		),
	)

	return &demoApp{
		roots:    []weft.AnyDefinition{root, holder},
		sayHello: sayHello,
	}
}
