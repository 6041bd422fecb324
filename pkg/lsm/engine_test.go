package lsm

import (
	"path/filepath"
	"testing"

	"github.com/arrowdb/lsmdb/pkg/record"
)

func TestInsertFlushGetAll(t *testing.T) {
	dir := t.TempDir()
	e, err := New("t1", dir, 100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	for i, payload := range []string{"a", "b", "c"} {
		if err := e.Insert(record.New(uint64(i+1), []byte(payload))); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r, ok, err := e.Get(2)
	if err != nil || !ok || string(r.Payload) != "b" {
		t.Fatalf("Get(2) = %+v ok=%v err=%v", r, ok, err)
	}

	all, err := e.GetAllRecords()
	if err != nil {
		t.Fatalf("GetAllRecords: %v", err)
	}
	if len(all) != 3 || all[0].ID != 1 || all[1].ID != 2 || all[2].ID != 3 {
		t.Fatalf("unexpected order: %+v", all)
	}

	if _, err := fileExists(filepath.Join(dir, "sstable_1.dat")); err != nil {
		t.Fatalf("expected sstable_1.dat to exist: %v", err)
	}
	entries, err := walEntries(dir)
	if err != nil {
		t.Fatalf("walEntries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty WAL after flush, got %d entries", len(entries))
	}
}

func TestRolloverOnFullMemtable(t *testing.T) {
	dir := t.TempDir()
	e, err := New("t1", dir, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	for i, payload := range []string{"a", "b", "c"} {
		if err := e.Insert(record.New(uint64(i+1), []byte(payload))); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	stats, err := e.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.MemtableSize != 1 || stats.SSTableCount != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	r, ok, err := e.Get(1)
	if err != nil || !ok || string(r.Payload) != "a" {
		t.Fatalf("Get(1) after rollover = %+v ok=%v err=%v", r, ok, err)
	}
}

func TestRestartReplaysWAL(t *testing.T) {
	dir := t.TempDir()
	e, err := New("t1", dir, 100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Insert(record.New(1, []byte("a"))); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, err := e.Update(1, []byte("b")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	e.Close() // no flush: the update should survive only via WAL replay

	restarted, err := New("t1", dir, 100)
	if err != nil {
		t.Fatalf("New (restart): %v", err)
	}
	defer restarted.Close()

	r, ok, err := restarted.Get(1)
	if err != nil || !ok || string(r.Payload) != "b" {
		t.Fatalf("Get(1) after restart = %+v ok=%v err=%v", r, ok, err)
	}
}

func TestCompactionTriggersPastFloor(t *testing.T) {
	dir := t.TempDir()
	e, err := New("t1", dir, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	id := uint64(1)
	for flushes := 0; flushes < 6; flushes++ {
		if err := e.Insert(record.New(id, []byte("x"))); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		id++
		if err := e.Insert(record.New(id, []byte("y"))); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		id++
	}

	stats, err := e.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.SSTableCount > 5 {
		t.Fatalf("expected compaction to bound sstable count, got %d", stats.SSTableCount)
	}

	all, err := e.GetAllRecords()
	if err != nil {
		t.Fatalf("GetAllRecords: %v", err)
	}
	if len(all) != int(id-1) {
		t.Fatalf("expected %d live records, got %d", id-1, len(all))
	}
}

func TestDeleteOnlyAffectsMemtable(t *testing.T) {
	dir := t.TempDir()
	e, err := New("t1", dir, 100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	if err := e.Insert(record.New(1, []byte("a"))); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	removed, err := e.Delete(1)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed {
		t.Fatal("expected Delete to report false: id only lives in an SST")
	}
	// Known semantic gap (see design notes): the record is still reachable.
	if _, ok, _ := e.Get(1); !ok {
		t.Fatal("expected the SST copy to still be reachable without tombstones")
	}
}
