package block

import (
	"path/filepath"
	"testing"

	"github.com/arrowdb/lsmdb/pkg/record"
)

func TestInsertRejectsDuplicateID(t *testing.T) {
	b := New()
	if !b.Insert(record.New(1, []byte("a"))) {
		t.Fatal("first insert should succeed")
	}
	if b.Insert(record.New(1, []byte("b"))) {
		t.Fatal("duplicate id insert should be a no-op")
	}
	if b.Count() != 1 {
		t.Fatalf("expected count 1, got %d", b.Count())
	}
}

func TestUpdateAndDelete(t *testing.T) {
	b := New()
	b.Insert(record.New(1, []byte("a")))

	if !b.Update(1, []byte("a2")) {
		t.Fatal("update should succeed")
	}
	r, ok := b.Get(1)
	if !ok || string(r.Payload) != "a2" {
		t.Fatalf("unexpected record after update: %+v", r)
	}

	if b.Update(99, []byte("x")) {
		t.Fatal("update on absent id should fail")
	}
	if !b.Delete(1) {
		t.Fatal("delete should succeed")
	}
	if b.Delete(1) {
		t.Fatal("second delete should fail")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	b := New()
	b.Insert(record.New(1, []byte("alpha")))
	b.Insert(record.New(2, []byte("")))
	b.Insert(record.New(3, []byte("gamma-gamma-gamma")))

	path := filepath.Join(t.TempDir(), "block.dat")
	if err := b.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := New()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := loaded.GetAll()
	want := b.GetAll()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("record %d mismatch: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dat")
	if err := New().Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded := New()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Count() != 0 {
		t.Fatalf("expected empty block, got %d records", loaded.Count())
	}
}
