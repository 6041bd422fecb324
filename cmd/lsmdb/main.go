// Command lsmdb starts the interactive shell over a catalog rooted at
// a data directory, or (given the `test-persistence` argument) runs a
// canned create/insert/flush/restart/select scenario and prints
// PASS/FAIL.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arrowdb/lsmdb/pkg/backup"
	"github.com/arrowdb/lsmdb/pkg/catalog"
	"github.com/arrowdb/lsmdb/pkg/config"
	"github.com/arrowdb/lsmdb/pkg/lsm"
	"github.com/arrowdb/lsmdb/pkg/repl"
)

func main() {
	dataDir := "./data"
	if v := os.Getenv("LSMDB_DATA_DIR"); v != "" {
		dataDir = v
	}
	dataDir, _ = filepath.Abs(dataDir)

	cfg, err := config.Load(filepath.Join(dataDir, "..", "config.yaml"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	initSentry(cfg.SentryDSN)

	if len(os.Args) > 1 && os.Args[1] == "test-persistence" {
		if err := repl.RunPersistenceCheck(dataDir, cfg.MemtableSize); err != nil {
			fmt.Println("FAIL:", err)
			os.Exit(1)
		}
		fmt.Println("PASS")
		return
	}

	startMetricsServer(cfg.MetricsAddr)

	catalogOpts := []catalog.Option{
		catalog.WithEngineOptions(
			lsm.WithCompactionThreshold(cfg.CompactionThreshold),
			lsm.WithWALOptions(cfg.WALOptions()),
		),
	}
	if uploader, err := backup.New(context.Background(), cfg.Backup); err != nil {
		fmt.Fprintln(os.Stderr, "backup:", err)
	} else if uploader != nil {
		catalogOpts = append(catalogOpts, catalog.WithUploader(uploader))
	}

	c, err := catalog.Load(dataDir, cfg.MemtableSize, catalogOpts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "catalog:", err)
		os.Exit(1)
	}

	shell := repl.New(c, os.Stdout)
	if err := shell.Run(context.Background(), os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, "repl:", err)
		os.Exit(1)
	}
}

// startMetricsServer exposes the process's prometheus counters/gauges
// on addr in the background. A bind failure is logged, not fatal — the
// shell still runs without metrics.
func startMetricsServer(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			fmt.Fprintln(os.Stderr, "metrics server:", err)
		}
	}()
}

// initSentry wires the optional crash-reporting sink onto the
// engine's one catastrophic-inconsistency fatal path. It is a no-op
// when no DSN is configured.
func initSentry(dsn string) {
	if dsn == "" {
		return
	}
	if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
		fmt.Fprintln(os.Stderr, "sentry init:", err)
		return
	}
	lsm.SetCrashReporter(func(err error) {
		sentry.CaptureException(err)
	})
}
