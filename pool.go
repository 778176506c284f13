package weft

import "sync"

// pools reuses TaskContext/InitCtx/Journal allocations across calls,
// adapted from the teacher's PoolManager (pool_manager.go) at a smaller
// scope: one pool per struct this runtime actually allocates per call,
// instead of the teacher's four (resolve/execution/extension/cleanup)
// contexts, since weft only has two call shapes (task runs, resource
// inits).
type pools struct {
	taskCtx sync.Pool
	initCtx sync.Pool
	journal sync.Pool
}

func newPools() *pools {
	return &pools{
		taskCtx: sync.Pool{New: func() any { return &TaskContext{} }},
		initCtx: sync.Pool{New: func() any { return &InitCtx{} }},
		journal: sync.Pool{New: func() any { return &Journal{} }},
	}
}

func (p *pools) acquireTaskCtx() *TaskContext {
	return p.taskCtx.Get().(*TaskContext)
}

func (p *pools) releaseTaskCtx(tc *TaskContext) {
	*tc = TaskContext{}
	p.taskCtx.Put(tc)
}

func (p *pools) acquireInitCtx() *InitCtx {
	return p.initCtx.Get().(*InitCtx)
}

func (p *pools) releaseInitCtx(ic *InitCtx) {
	*ic = InitCtx{}
	p.initCtx.Put(ic)
}

func (p *pools) acquireJournal(taskID string) *Journal {
	j := p.journal.Get().(*Journal)
	j.reset(taskID)
	return j
}

func (p *pools) releaseJournal(j *Journal) {
	p.journal.Put(j)
}
