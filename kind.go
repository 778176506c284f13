package weft

// Kind identifies which of the nine definition variants a value is.
type Kind string

const (
	KindTask               Kind = "task"
	KindResource           Kind = "resource"
	KindEvent              Kind = "event"
	KindHook               Kind = "hook"
	KindTaskMiddleware     Kind = "task-middleware"
	KindResourceMiddleware Kind = "resource-middleware"
	KindTag                Kind = "tag"
	KindError              Kind = "error"
	KindAsyncContext       Kind = "async-context"
)
