package weft

import "sync"

// Journal is an opaque, per-call record a task's middleware chain can
// annotate (timings, retries, cache hits) without the task itself needing
// to know what, if anything, is listening. It is distinct from the
// Runtime-scoped execution tree (see exectree.go), which survives across
// calls for introspection.
type Journal struct {
	mu      sync.Mutex
	taskID  string
	entries []JournalEntry
}

// JournalEntry is one annotation recorded against a call.
type JournalEntry struct {
	Key   string
	Value any
}

func newJournal(taskID string) *Journal {
	return &Journal{taskID: taskID}
}

// reset clears a pooled Journal for reuse under a new task id.
func (j *Journal) reset(taskID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.taskID = taskID
	j.entries = j.entries[:0]
}

// TaskID returns the id of the task this journal belongs to.
func (j *Journal) TaskID() string { return j.taskID }

// Record appends an entry.
func (j *Journal) Record(key string, value any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, JournalEntry{Key: key, Value: value})
}

// Entries returns a snapshot of everything recorded so far.
func (j *Journal) Entries() []JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]JournalEntry, len(j.entries))
	copy(out, j.entries)
	return out
}
