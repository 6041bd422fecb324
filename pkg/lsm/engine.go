// Package lsm implements the per-table storage core: a memtable,
// write-ahead log, and a list of immutable sorted tables, orchestrated
// exactly as described for a small log-structured merge engine.
package lsm

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	cockroacherr "github.com/cockroachdb/errors"

	"github.com/arrowdb/lsmdb/pkg/memtable"
	"github.com/arrowdb/lsmdb/pkg/record"
	"github.com/arrowdb/lsmdb/pkg/sstable"
	"github.com/arrowdb/lsmdb/pkg/wal"
)

const (
	walFileName        = "write.log"
	compactionSSTFloor = 4
)

var sstFilePattern = regexp.MustCompile(`^sstable_(\d+)\.dat$`)

// crashReporter receives the one "catastrophic I/O inconsistency"
// fatal error this engine can produce, if a caller has registered one
// via SetCrashReporter. It is nil (a no-op) by default.
var crashReporter func(error)

// SetCrashReporter registers a sink for catastrophic-inconsistency
// errors, typically wired to an optional crash-reporting service. Pass
// nil to disable.
func SetCrashReporter(report func(error)) {
	crashReporter = report
}

func reportCatastrophic(err error) error {
	if crashReporter != nil {
		crashReporter(err)
	}
	return err
}

// Stats is the snapshot returned by Engine.Stats.
type Stats struct {
	MemtableSize int
	SSTableCount int
	TotalRecords int
}

// Engine is the per-table LSM stack: one memtable, one WAL, and an
// ordered (newest-to-oldest) list of sorted tables.
type Engine struct {
	name                string
	dataDir             string
	maxSize             int
	memtable            *memtable.Memtable
	walWriter           *wal.Writer
	sstables            []*sstable.SSTable // newest first
	nextSSTID           uint64
	metrics             *metrics
	compactionThreshold int
}

// Option configures a non-default aspect of an Engine at construction
// time: the SST-count compaction threshold and the WAL's sync policy,
// both of which a loaded config.yaml may override.
type Option func(*engineOptions)

type engineOptions struct {
	compactionThreshold int
	walOptions          wal.Options
}

// WithCompactionThreshold overrides the default SST-count floor past
// which a rollover triggers compaction.
func WithCompactionThreshold(n int) Option {
	return func(o *engineOptions) { o.compactionThreshold = n }
}

// WithWALOptions overrides the WAL's sync policy and buffering.
func WithWALOptions(w wal.Options) Option {
	return func(o *engineOptions) { o.walOptions = w }
}

// New creates or reopens an engine rooted at dir: the directory is
// created if missing, existing SSTables are discovered on disk, and
// the WAL is replayed into a fresh memtable.
func New(name, dir string, maxSize int, opts ...Option) (*Engine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, cockroacherr.Wrapf(err, "lsm: create dir %s", dir)
	}

	cfg := engineOptions{compactionThreshold: compactionSSTFloor, walOptions: wal.DefaultOptions()}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{
		name:                name,
		dataDir:             dir,
		maxSize:             maxSize,
		memtable:            memtable.New(maxSize),
		nextSSTID:           1,
		metrics:             getMetrics(),
		compactionThreshold: cfg.compactionThreshold,
	}

	if err := e.discoverSSTables(); err != nil {
		return nil, err
	}

	w, err := wal.NewWriter(filepath.Join(dir, walFileName), cfg.walOptions)
	if err != nil {
		return nil, err
	}
	e.walWriter = w

	if err := e.replayWAL(); err != nil {
		return nil, err
	}

	e.metrics.sstCount.WithLabelValues(e.name).Set(float64(len(e.sstables)))
	return e, nil
}

// discoverSSTables scans dataDir for sstable_<n>.dat files, sets
// nextSSTID from the highest suffix seen, and orders the in-memory
// list newest-first by file modification time — the only ordering
// signal available, since a compacted SST carries the largest suffix
// yet may be logically the oldest table on disk.
func (e *Engine) discoverSSTables() error {
	entries, err := os.ReadDir(e.dataDir)
	if err != nil {
		return cockroacherr.Wrapf(err, "lsm: scan %s", e.dataDir)
	}

	type found struct {
		path  string
		mtime int64
	}
	var tables []found
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := sstFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			continue
		}
		if n+1 > e.nextSSTID {
			e.nextSSTID = n + 1
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		tables = append(tables, found{path: filepath.Join(e.dataDir, entry.Name()), mtime: info.ModTime().UnixNano()})
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].mtime > tables[j].mtime })

	e.sstables = e.sstables[:0]
	for _, f := range tables {
		e.sstables = append(e.sstables, sstable.Open(f.path))
	}
	return nil
}

func (e *Engine) replayWAL() error {
	entries, err := wal.Replay(filepath.Join(e.dataDir, walFileName))
	if err != nil {
		return err
	}
	for _, entry := range entries {
		switch entry.Kind {
		case wal.KindInsert, wal.KindUpdate:
			if err := e.applyToMemtableOnReplay(record.New(entry.ID, entry.Payload)); err != nil {
				return err
			}
		case wal.KindDelete:
			e.memtable.Delete(entry.ID)
		}
	}
	return nil
}

// applyToMemtableOnReplay mirrors the live write path's rollover
// behavior during recovery: replaying an insert/update for an id that
// already lives in an SST still lands a shadowing memtable entry,
// which is correct under newest-wins.
func (e *Engine) applyToMemtableOnReplay(r record.Record) error {
	if e.memtable.Update(r.ID, r.Payload) {
		return nil
	}
	if e.memtable.Insert(r) {
		return nil
	}
	if err := e.rollover(); err != nil {
		return err
	}
	if !e.memtable.Insert(r) {
		return cockroacherr.Newf("lsm: %s: replay insert failed after rollover for id %d", e.name, r.ID)
	}
	return nil
}

// Insert appends r to the WAL, then lands it in the memtable, rolling
// over to a new SST first if the memtable is full.
func (e *Engine) Insert(r record.Record) error {
	if err := e.walWriter.LogInsert(r); err != nil {
		return err
	}
	if !e.memtable.Insert(r) {
		if err := e.rollover(); err != nil {
			return err
		}
		if !e.memtable.Insert(r) {
			return reportCatastrophic(cockroacherr.Newf("lsm: %s: catastrophic I/O inconsistency: insert failed immediately after rollover for id %d", e.name, r.ID))
		}
	}
	e.metrics.inserts.WithLabelValues(e.name).Inc()
	return nil
}

// Update appends an UPDATE entry to the WAL, then replaces the record
// in the memtable if present there, or upserts a new memtable entry
// otherwise (so a prior version living only in an SST is immediately
// shadowed).
func (e *Engine) Update(id uint64, payload []byte) (bool, error) {
	if err := e.walWriter.LogUpdate(id, payload); err != nil {
		return false, err
	}
	if e.memtable.Update(id, payload) {
		e.metrics.updates.WithLabelValues(e.name).Inc()
		return true, nil
	}
	r := record.New(id, payload)
	if !e.memtable.Insert(r) {
		if err := e.rollover(); err != nil {
			return false, err
		}
		if !e.memtable.Insert(r) {
			return false, reportCatastrophic(cockroacherr.Newf("lsm: %s: catastrophic I/O inconsistency: update-upsert failed after rollover for id %d", e.name, id))
		}
	}
	e.metrics.updates.WithLabelValues(e.name).Inc()
	return true, nil
}

// Delete appends a DELETE entry to the WAL and removes id from the
// memtable if present. It returns whether that memtable removal
// occurred — a copy surviving in an SST remains reachable (no
// tombstones in this core; see the design notes).
func (e *Engine) Delete(id uint64) (bool, error) {
	if err := e.walWriter.LogDelete(id); err != nil {
		return false, err
	}
	removed := e.memtable.Delete(id)
	e.metrics.deletes.WithLabelValues(e.name).Inc()
	return removed, nil
}

// Get returns the newest live version of id: the memtable first, then
// SSTs newest-to-oldest.
func (e *Engine) Get(id uint64) (record.Record, bool, error) {
	e.metrics.gets.WithLabelValues(e.name).Inc()
	if r, ok := e.memtable.Get(id); ok {
		return r, true, nil
	}
	for _, sst := range e.sstables {
		r, ok, err := sst.Get(id)
		if err != nil {
			return record.Record{}, false, err
		}
		if ok {
			return r, true, nil
		}
	}
	return record.Record{}, false, nil
}

// GetAllRecords returns a deduplicated snapshot, one record per live
// id, sorted ascending: built by folding SSTs oldest-to-newest and
// overlaying the memtable last.
func (e *Engine) GetAllRecords() ([]record.Record, error) {
	byID := make(map[uint64]record.Record)

	for i := len(e.sstables) - 1; i >= 0; i-- {
		recs, err := e.sstables[i].GetAll()
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			byID[r.ID] = r
		}
	}
	for _, r := range e.memtable.GetAll() {
		byID[r.ID] = r
	}

	out := make([]record.Record, 0, len(byID))
	for _, r := range byID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Flush forces a rollover even if the memtable is not full. It is a
// no-op if the memtable is empty.
func (e *Engine) Flush() error {
	if e.memtable.Count() == 0 {
		return nil
	}
	return e.rollover()
}

// rollover builds a new SST from the current memtable, pushes it to
// the front of the SST list, and truncates the WAL. Per the recovery
// protocol, the SST is durable before the WAL is cleared, so a crash
// in between is safely idempotent on replay.
func (e *Engine) rollover() error {
	if e.memtable.Count() == 0 {
		return nil
	}

	b := e.memtable.FlushToBlock()
	path := e.sstPath(e.nextSSTID)
	newSST, err := sstable.Build(b, path)
	if err != nil {
		return err
	}

	e.sstables = append([]*sstable.SSTable{newSST}, e.sstables...)
	e.nextSSTID++

	if err := e.walWriter.Clear(); err != nil {
		return err
	}

	e.metrics.flushes.WithLabelValues(e.name).Inc()
	e.metrics.sstCount.WithLabelValues(e.name).Set(float64(len(e.sstables)))

	if len(e.sstables) > e.compactionThreshold {
		if err := e.compact(); err != nil {
			return err
		}
	}
	return nil
}

// compact pops the two oldest SSTs, merges them (later wins), and
// appends the result as the new oldest table.
func (e *Engine) compact() error {
	n := len(e.sstables)
	if n < 2 {
		return nil
	}
	oldest := e.sstables[n-1]
	secondOldest := e.sstables[n-2]

	path := e.sstPath(e.nextSSTID)
	// secondOldest is physically newer than oldest, so it must be
	// passed as the merge's "other" argument: MergeWith keeps the
	// later-encountered occurrence of a duplicate id, and appending
	// secondOldest's records after oldest's makes the newer copy win.
	merged, err := oldest.MergeWith(secondOldest, path)
	if err != nil {
		return err
	}
	e.nextSSTID++

	e.sstables = e.sstables[:n-2]
	e.sstables = append(e.sstables, merged)

	_ = oldest.Remove()
	_ = secondOldest.Remove()

	e.metrics.compactions.WithLabelValues(e.name).Inc()
	e.metrics.sstCount.WithLabelValues(e.name).Set(float64(len(e.sstables)))
	return nil
}

// Stats returns a cheap snapshot: total_records is a raw,
// non-deduplicated sum across the memtable and every SST (unlike
// GetAllRecords, which dedupes), matching an O(1)-per-layer counter.
func (e *Engine) Stats() (Stats, error) {
	total := e.memtable.Count()
	for _, sst := range e.sstables {
		n, err := sst.Size()
		if err != nil {
			return Stats{}, err
		}
		total += n
	}
	return Stats{
		MemtableSize: e.memtable.Count(),
		SSTableCount: len(e.sstables),
		TotalRecords: total,
	}, nil
}

// Close releases the WAL file handle. It does not flush: callers that
// want durability of the memtable's contents should call Flush first.
func (e *Engine) Close() error {
	return e.walWriter.Close()
}

func (e *Engine) sstPath(id uint64) string {
	return filepath.Join(e.dataDir, "sstable_"+strconv.FormatUint(id, 10)+".dat")
}
