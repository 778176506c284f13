package extensions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m1gwings/treedrawer/tree"
	"github.com/weftrun/weft"
)

// GraphDebugExtension renders the resource dependency graph as an ASCII
// tree and logs it whenever a resource's init fails, so a boot failure
// deep in the graph shows its whole neighborhood instead of a bare error
// string. Attach it as an everywhere resource middleware.
//
//	handler := extensions.NewHumanHandler(os.Stdout, slog.LevelError)
//	debug := extensions.NewGraphDebugExtension("graph-debug", handler)
//	weft.Run(append(roots, debug.Middleware())...)
type GraphDebugExtension struct {
	mw     *weft.ResourceMiddlewareDef
	logger *slog.Logger

	mu       sync.Mutex
	resolved map[string]bool
	failed   map[string]error
}

// NewGraphDebugExtension builds the extension's middleware definition,
// identified by id like any other registered definition.
func NewGraphDebugExtension(id string, logHandler slog.Handler) *GraphDebugExtension {
	e := &GraphDebugExtension{
		logger:   slog.New(logHandler),
		resolved: make(map[string]bool),
		failed:   make(map[string]error),
	}
	e.mw = weft.NewResourceMiddleware(id, e.wrap, weft.WithResourceMiddlewareEverywhere())
	return e
}

// Middleware returns the underlying definition, for passing to
// weft.WithResourceRegister or a root's register list.
func (e *GraphDebugExtension) Middleware() *weft.ResourceMiddlewareDef { return e.mw }

func (e *GraphDebugExtension) wrap(ctx *weft.InitCtx, res weft.AnyResource, config any, next func() (any, error)) (any, error) {
	value, err := next()

	e.mu.Lock()
	if err != nil {
		e.failed[res.ID()] = err
	} else {
		e.resolved[res.ID()] = true
	}
	e.mu.Unlock()

	if err != nil {
		graph := ctx.Runtime().DependencyGraph()
		e.logger.Error("resource init failed",
			"resource", res.ID(),
			"error", err.Error(),
			"dependency_graph", e.formatGraph(graph, res.ID()),
		)
	}
	return value, err
}

func (e *GraphDebugExtension) formatGraph(graph map[string][]string, failedID string) string {
	var sb strings.Builder
	if len(graph) == 0 {
		return "\n(empty - no resource dependencies tracked)"
	}

	if horizontal := e.tryHorizontalTree(graph, failedID); horizontal != "" {
		sb.WriteString("\n")
		sb.WriteString(horizontal)
		sb.WriteString("\n")
	}

	sb.WriteString("\nDetailed View:\n")
	ids := make([]string, 0, len(graph))
	for id := range graph {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		deps := append([]string{}, graph[id]...)
		sort.Strings(deps)
		sb.WriteString(fmt.Sprintf("  %s%s\n", id, e.status(id)))
		for i, dep := range deps {
			connector := "├─>"
			if i == len(deps)-1 {
				connector = "└─>"
			}
			sb.WriteString(fmt.Sprintf("    %s %s%s\n", connector, dep, e.status(dep)))
		}
	}
	return sb.String()
}

func (e *GraphDebugExtension) status(id string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err, failed := e.failed[id]; failed {
		return fmt.Sprintf(" ❌ (error: %v)", err)
	}
	if e.resolved[id] {
		return " ✓"
	}
	return " (pending)"
}

func (e *GraphDebugExtension) tryHorizontalTree(graph map[string][]string, failedID string) string {
	parents := make(map[string][]string)
	nodes := make(map[string]bool)
	for parent, children := range graph {
		nodes[parent] = true
		for _, child := range children {
			nodes[child] = true
			parents[child] = append(parents[child], parent)
		}
	}

	var roots []string
	for node := range nodes {
		if len(parents[node]) == 0 {
			roots = append(roots, node)
		}
	}
	sort.Strings(roots)
	if len(roots) == 0 {
		return ""
	}

	var root *tree.Tree
	if len(roots) == 1 {
		root = e.buildTree(roots[0], graph, failedID, make(map[string]bool))
	} else {
		root = tree.NewTree(tree.NodeString("resources"))
		for _, r := range roots {
			if child := e.buildTree(r, graph, failedID, make(map[string]bool)); child != nil {
				appendChild(root, child)
			}
		}
	}
	if root == nil {
		return ""
	}
	return root.String()
}

func (e *GraphDebugExtension) buildTree(id string, graph map[string][]string, failedID string, visited map[string]bool) *tree.Tree {
	if visited[id] {
		return nil
	}
	visited[id] = true

	label := id + e.status(id)
	if id == failedID {
		label = id + " ❌"
	}
	node := tree.NewTree(tree.NodeString(label))

	children := append([]string{}, graph[id]...)
	sort.Strings(children)
	for _, child := range children {
		if childTree := e.buildTree(child, graph, failedID, visited); childTree != nil {
			appendChild(node, childTree)
		}
	}
	return node
}

func appendChild(parent, child *tree.Tree) {
	newChild := parent.AddChild(child.Val())
	for _, grandchild := range child.Children() {
		appendChild(newChild, grandchild)
	}
}

// SilentHandler discards all log output — useful in tests that exercise
// GraphDebugExtension without wanting it to print anything.
type SilentHandler struct{}

func NewSilentHandler() *SilentHandler { return &SilentHandler{} }

func (h *SilentHandler) Enabled(ctx context.Context, level slog.Level) bool  { return false }
func (h *SilentHandler) Handle(ctx context.Context, record slog.Record) error { return nil }
func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler            { return h }
func (h *SilentHandler) WithGroup(name string) slog.Handler                 { return h }

// HumanHandler formats records for human readability, with extra line
// breaks and separators around the dependency_graph attribute.
type HumanHandler struct {
	writer io.Writer
	level  slog.Level
}

func NewHumanHandler(writer io.Writer, level slog.Level) *HumanHandler {
	return &HumanHandler{writer: writer, level: level}
}

func (h *HumanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *HumanHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Message == "resource init failed" {
		return h.handleResourceError(record)
	}
	if _, err := fmt.Fprintf(h.writer, "[%s] %s\n", record.Level, record.Message); err != nil {
		return err
	}
	var writeErr error
	record.Attrs(func(a slog.Attr) bool {
		if _, err := fmt.Fprintf(h.writer, "  %s: %v\n", a.Key, a.Value); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	return writeErr
}

func (h *HumanHandler) handleResourceError(record slog.Record) error {
	var resource, errMsg, graph string
	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "resource":
			resource = a.Value.String()
		case "error":
			errMsg = a.Value.String()
		case "dependency_graph":
			graph = a.Value.String()
		}
		return true
	})

	lines := []string{
		"",
		strings.Repeat("=", 70),
		"[GraphDebug] Resource Init Error",
		strings.Repeat("=", 70),
		fmt.Sprintf("\nFailed Resource: %s", resource),
		fmt.Sprintf("Error: %s", errMsg),
		fmt.Sprintf("\nDependency Graph:%s", graph),
		strings.Repeat("=", 70),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(h.writer, line); err != nil {
			return err
		}
	}
	return nil
}

func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *HumanHandler) WithGroup(name string) slog.Handler      { return h }
