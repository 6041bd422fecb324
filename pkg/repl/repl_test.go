package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/arrowdb/lsmdb/pkg/catalog"
)

func TestRunDispatchesCommandsAndSQL(t *testing.T) {
	c, err := catalog.Load(t.TempDir(), 64)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var out bytes.Buffer
	r := New(c, &out)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"CREATE TABLE t (id INTEGER PRIMARY KEY, name VARCHAR(20))",
		"INSERT INTO t (id, name) VALUES (1, 'Alice')",
		"tables",
		"stats",
		"SELECT * FROM t",
		"exit",
	}, "\n"))

	if err := r.Run(context.Background(), input); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	for _, want := range []string{"table t created", "1 row inserted", "t", "Alice"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestRunPersistenceCheckPasses(t *testing.T) {
	dir := t.TempDir()
	if err := RunPersistenceCheck(dir, 64); err != nil {
		t.Fatalf("RunPersistenceCheck: %v", err)
	}
}
