// Package sstable implements the immutable, id-sorted on-disk tables
// the LSM engine reads through once a memtable rolls over.
package sstable

import (
	"os"
	"sort"
	"sync"

	cockroacherr "github.com/cockroachdb/errors"

	"github.com/arrowdb/lsmdb/pkg/block"
	"github.com/arrowdb/lsmdb/pkg/record"
)

// SSTable is a lazily-loaded, id-sorted block persisted at Path. The
// first access that needs the contents loads the file; subsequent
// accesses reuse the in-memory copy.
type SSTable struct {
	Path string

	mu      sync.Mutex
	loaded  bool
	records []record.Record // sorted ascending by ID
}

// Open returns an SSTable bound to path without touching the
// filesystem; the first Get/GetAll/GetRange/Contains call loads it.
func Open(path string) *SSTable {
	return &SSTable{Path: path}
}

// Build sorts b's records ascending by id, collapses duplicate ids by
// keeping the later occurrence under that stable sort, and writes the
// result to path as a new SSTable.
func Build(b *block.Block, path string) (*SSTable, error) {
	recs := dedupeNewestWins(b.GetAll())

	out := block.New()
	for _, r := range recs {
		out.Insert(r)
	}
	if err := out.Save(path); err != nil {
		return nil, cockroacherr.Wrapf(err, "sstable: build %s", path)
	}
	return &SSTable{Path: path, loaded: true, records: recs}, nil
}

// dedupeNewestWins stably sorts by id and, for every run of equal ids,
// keeps the LAST element — the later occurrence in encounter order
// wins, matching the merge semantics in 4.5/4.6.
func dedupeNewestWins(recs []record.Record) []record.Record {
	sorted := make([]record.Record, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	out := make([]record.Record, 0, len(sorted))
	for i := 0; i < len(sorted); i++ {
		if i+1 < len(sorted) && sorted[i+1].ID == sorted[i].ID {
			continue // a later occurrence of the same id follows; skip this one
		}
		out = append(out, sorted[i])
	}
	return out
}

func (s *SSTable) ensureLoaded() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	b := block.New()
	if err := b.Load(s.Path); err != nil {
		return cockroacherr.Wrapf(err, "sstable: load %s", s.Path)
	}
	s.records = b.GetAll()
	s.loaded = true
	return nil
}

// Get performs a binary search for id.
func (s *SSTable) Get(id uint64) (record.Record, bool, error) {
	if err := s.ensureLoaded(); err != nil {
		return record.Record{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sort.Search(len(s.records), func(i int) bool { return s.records[i].ID >= id })
	if i < len(s.records) && s.records[i].ID == id {
		return s.records[i], true, nil
	}
	return record.Record{}, false, nil
}

// GetAll returns every record in ascending id order.
func (s *SSTable) GetAll() ([]record.Record, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]record.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// GetRange returns records with lo <= id <= hi, stopping early once
// id exceeds hi.
func (s *SSTable) GetRange(lo, hi uint64) ([]record.Record, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	start := sort.Search(len(s.records), func(i int) bool { return s.records[i].ID >= lo })
	var out []record.Record
	for i := start; i < len(s.records); i++ {
		if s.records[i].ID > hi {
			break
		}
		out = append(out, s.records[i])
	}
	return out, nil
}

// Contains reports whether id is present.
func (s *SSTable) Contains(id uint64) (bool, error) {
	_, ok, err := s.Get(id)
	return ok, err
}

// Size returns the number of records, loading the file if necessary.
func (s *SSTable) Size() (int, error) {
	if err := s.ensureLoaded(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

// IsEmpty reports whether the table has zero records.
func (s *SSTable) IsEmpty() (bool, error) {
	n, err := s.Size()
	return n == 0, err
}

// MergeWith concatenates s and other's records, stably sorts by id,
// deduplicates keeping the later occurrence, and writes the result to
// outPath as a new SSTable. Neither input is deleted.
func (s *SSTable) MergeWith(other *SSTable, outPath string) (*SSTable, error) {
	a, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	b, err := other.GetAll()
	if err != nil {
		return nil, err
	}
	combined := make([]record.Record, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)

	merged := dedupeNewestWins(combined)
	out := block.New()
	for _, r := range merged {
		out.Insert(r)
	}
	if err := out.Save(outPath); err != nil {
		return nil, cockroacherr.Wrapf(err, "sstable: merge write %s", outPath)
	}
	return &SSTable{Path: outPath, loaded: true, records: merged}, nil
}

// Remove best-effort deletes the underlying file. Errors are returned
// but callers treat this as advisory (see compaction in the lsm package).
func (s *SSTable) Remove() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return cockroacherr.Wrapf(err, "sstable: remove %s", s.Path)
	}
	return nil
}
