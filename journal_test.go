package weft

import "testing"

func TestJournal_RecordAndEntriesSnapshot(t *testing.T) {
	j := newJournal("greet")
	if j.TaskID() != "greet" {
		t.Errorf("expected TaskID greet, got %q", j.TaskID())
	}

	j.Record("cache", "hit")
	j.Record("retries", 2)

	entries := j.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Key != "cache" || entries[0].Value != "hit" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}

	entries[0].Key = "mutated"
	if j.Entries()[0].Key == "mutated" {
		t.Error("expected Entries() to return a snapshot, not a live view")
	}
}
