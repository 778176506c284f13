// Package weft provides a dependency-injection and execution runtime for
// composable server-side applications.
//
// # Overview
//
// An application is assembled from five kinds of definitions:
//
//  1. Tasks: invocable functions with typed input/output and a dependency map
//  2. Resources: long-lived singletons with init/dispose lifecycles
//  3. Events: typed pub/sub channels
//  4. Hooks: event listeners with their own dependency closures
//  5. Middleware: wrappers around task or resource execution
//
// Tags index definitions for cross-cutting discovery and can carry
// input/output contract schemas (see WithTagContracts), which boot does
// not check.
//
// # Basic usage
//
//	cfg := weft.NewResource("app.config",
//	    func(ctx *weft.InitCtx, _ struct{}, _ weft.Deps) (Config, error) {
//	        return Config{Port: 8080}, nil
//	    },
//	)
//
//	server := weft.NewResource("app.server",
//	    func(ctx *weft.InitCtx, _ struct{}, deps weft.Deps) (*Server, error) {
//	        c := weft.Dep[Config](deps, "config")
//	        return NewServer(c.Port), nil
//	    },
//	    weft.WithResourceDeps[struct{}, *Server](weft.DepMap{"config": cfg}),
//	)
//
//	rt, err := weft.Run(server)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Dispose(context.Background())
//
// # Tasks and middleware
//
// Tasks are invoked through RunTask; middleware wraps the call in a
// next-based chain, in declaration order, with any "everywhere" middleware
// prepended once:
//
//	out, err := weft.RunTask(rt, ctx, greetTask, input)
//
// # Events
//
// Events dispatch to an ordered, snapshotted listener list. Hooks are
// attached to events once their own dependency closure resolves to Ready.
//
//	report, err := weft.EmitEvent(rt, ctx, userCreated, payload, weft.WithReport(true))
//
// # Async context
//
// Scoped values survive cooperative suspension points via explicit
// context.Context threading (see AsyncContextDef, Provide, Use, Require).
//
// # Lifecycle
//
// Boot resolves the registration tree, computes the resource
// initialization order, wires middleware chains, attaches hooks, and
// returns a Runtime. Dispose walks initialized resources in
// dependents-first order.
package weft
