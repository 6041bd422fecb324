// Package config loads the optional config.yaml that overrides the
// built-in defaults for memtable size, compaction threshold, WAL sync
// policy, the metrics listen address, and off-box backup. A missing
// file is not an error — every field keeps its zero-config default.
package config

import (
	"os"
	"time"

	cockroacherr "github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/arrowdb/lsmdb/pkg/wal"
)

// Defaults match what an Engine/Catalog already assume when no
// configuration is supplied at all.
const (
	DefaultMemtableSize    = 1000
	DefaultCompactionFloor = 4
	DefaultMetricsAddr     = ":9090"
)

// Backup holds the optional S3-compatible off-box backup target. A
// zero-value Backup (empty Bucket) means backup is disabled.
type Backup struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // non-empty for S3-compatible (non-AWS) endpoints
	Prefix   string `yaml:"prefix"`
}

// Enabled reports whether backup settings were supplied.
func (b Backup) Enabled() bool {
	return b.Bucket != ""
}

// Config is the top-level shape of config.yaml.
type Config struct {
	MemtableSize        int    `yaml:"memtable_size"`
	CompactionThreshold int    `yaml:"compaction_threshold"`
	WALSync             string `yaml:"wal_sync"` // "every" or "interval"
	WALSyncIntervalMS   int    `yaml:"wal_sync_interval_ms"`
	MetricsAddr         string `yaml:"metrics_addr"`
	SentryDSN           string `yaml:"sentry_dsn"`
	Backup              Backup `yaml:"backup"`
}

// Default returns the built-in configuration applied when no
// config.yaml is present.
func Default() Config {
	return Config{
		MemtableSize:        DefaultMemtableSize,
		CompactionThreshold: DefaultCompactionFloor,
		WALSync:             "every",
		MetricsAddr:         DefaultMetricsAddr,
	}
}

// Load reads and parses path, falling back to Default() if the file
// does not exist. Any field the file omits keeps its default value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, cockroacherr.Wrapf(err, "config: read %s", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, cockroacherr.Wrapf(err, "config: parse %s", path)
	}
	if cfg.MemtableSize <= 0 {
		cfg.MemtableSize = DefaultMemtableSize
	}
	if cfg.CompactionThreshold <= 0 {
		cfg.CompactionThreshold = DefaultCompactionFloor
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = DefaultMetricsAddr
	}
	return cfg, nil
}

// WALOptions translates the loaded sync policy into wal.Options.
func (c Config) WALOptions() wal.Options {
	opts := wal.DefaultOptions()
	if c.WALSync == "interval" && c.WALSyncIntervalMS > 0 {
		opts.Sync = wal.SyncInterval
		opts.SyncIntervalDuration = time.Duration(c.WALSyncIntervalMS) * time.Millisecond
	}
	return opts
}
