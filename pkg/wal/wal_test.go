package wal

import (
	"path/filepath"
	"testing"

	"github.com/arrowdb/lsmdb/pkg/record"
)

func TestWriterAppendAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "write.log")

	w, err := NewWriter(path, DefaultOptions())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.LogInsert(record.New(1, []byte("a"))); err != nil {
		t.Fatalf("LogInsert: %v", err)
	}
	if err := w.LogInsert(record.New(2, []byte("b"))); err != nil {
		t.Fatalf("LogInsert: %v", err)
	}
	if err := w.LogUpdate(1, []byte("a-updated")); err != nil {
		t.Fatalf("LogUpdate: %v", err)
	}
	if err := w.LogDelete(2); err != nil {
		t.Fatalf("LogDelete: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, err := Replay(path)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[2].Kind != KindUpdate || string(entries[2].Payload) != "a-updated" {
		t.Fatalf("unexpected entry: %+v", entries[2])
	}
	if entries[3].Kind != KindDelete || entries[3].ID != 2 {
		t.Fatalf("unexpected entry: %+v", entries[3])
	}
}

func TestClearTruncatesLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "write.log")

	w, err := NewWriter(path, DefaultOptions())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	if err := w.LogInsert(record.New(1, []byte("a"))); err != nil {
		t.Fatalf("LogInsert: %v", err)
	}
	if err := w.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := w.LogInsert(record.New(2, []byte("b"))); err != nil {
		t.Fatalf("LogInsert after Clear: %v", err)
	}
	if err := w.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	entries, err := Replay(path)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != 2 {
		t.Fatalf("expected only the post-clear entry, got %+v", entries)
	}
}

func TestReplayMissingFileIsEmpty(t *testing.T) {
	entries, err := Replay(filepath.Join(t.TempDir(), "does-not-exist.log"))
	if err != nil {
		t.Fatalf("Replay on missing file: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestParseLineSkipsMalformed(t *testing.T) {
	cases := []string{
		"",
		"GARBAGE",
		"INSERT,notanumber,YWJj",
		"INSERT,1",
		"DELETE,1,extra",
	}
	for _, c := range cases {
		if _, ok := ParseLine(c); ok {
			t.Errorf("expected ParseLine(%q) to fail", c)
		}
	}

	entry, ok := ParseLine("DELETE,42")
	if !ok || entry.Kind != KindDelete || entry.ID != 42 {
		t.Fatalf("unexpected parse result: %+v ok=%v", entry, ok)
	}
}
