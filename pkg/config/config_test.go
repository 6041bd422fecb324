package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arrowdb/lsmdb/pkg/wal"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MemtableSize != DefaultMemtableSize || cfg.CompactionThreshold != DefaultCompactionFloor {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
memtable_size: 500
compaction_threshold: 8
wal_sync: interval
wal_sync_interval_ms: 50
backup:
  bucket: my-bucket
  region: us-east-1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MemtableSize != 500 || cfg.CompactionThreshold != 8 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.Backup.Enabled() || cfg.Backup.Bucket != "my-bucket" {
		t.Fatalf("expected backup enabled with bucket my-bucket, got %+v", cfg.Backup)
	}

	opts := cfg.WALOptions()
	if opts.Sync != wal.SyncInterval {
		t.Fatalf("expected interval sync policy, got %v", opts.Sync)
	}
}
