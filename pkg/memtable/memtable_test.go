package memtable

import (
	"testing"

	"github.com/arrowdb/lsmdb/pkg/record"
)

func TestInsertFailsWhenFull(t *testing.T) {
	m := New(2)
	if !m.Insert(record.New(1, []byte("a"))) {
		t.Fatal("insert 1 should succeed")
	}
	if !m.Insert(record.New(2, []byte("b"))) {
		t.Fatal("insert 2 should succeed")
	}
	if !m.IsFull() {
		t.Fatal("expected memtable to report full at bound")
	}
	if m.Insert(record.New(3, []byte("c"))) {
		t.Fatal("insert past the bound should fail")
	}
}

func TestFlushToBlockClearsMemtable(t *testing.T) {
	m := New(10)
	m.Insert(record.New(1, []byte("a")))
	m.Insert(record.New(2, []byte("b")))

	flushed := m.FlushToBlock()
	if flushed.Count() != 2 {
		t.Fatalf("expected flushed block to hold 2 records, got %d", flushed.Count())
	}
	if m.Count() != 0 {
		t.Fatalf("expected memtable to be empty after flush, got %d", m.Count())
	}

	got := flushed.GetAll()
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("expected insertion order preserved, got %+v", got)
	}
}

func TestUpdateUpsertsNothingWithoutExplicitInsert(t *testing.T) {
	m := New(10)
	if m.Update(1, []byte("x")) {
		t.Fatal("update on absent id inside the memtable alone should fail")
	}
	m.Insert(record.New(1, []byte("a")))
	if !m.Update(1, []byte("a2")) {
		t.Fatal("update on present id should succeed")
	}
	r, ok := m.Get(1)
	if !ok || string(r.Payload) != "a2" {
		t.Fatalf("unexpected record: %+v", r)
	}
}
