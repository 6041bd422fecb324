package wal

import (
	"bufio"
	"os"

	cockroacherr "github.com/cockroachdb/errors"
)

// Reader replays a WAL file sequentially, line by line.
type Reader struct {
	file *os.File
}

// NewReader opens an existing log file for replay.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cockroacherr.Wrapf(err, "wal: open %s for replay", path)
	}
	return &Reader{file: f}, nil
}

// Replay returns every well-formed entry in the log, in file order.
// A malformed line is silently skipped, per the WAL's tolerant replay
// contract; it never causes Replay itself to fail.
func (r *Reader) Replay() ([]Entry, error) {
	defer r.file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(r.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		entry, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, cockroacherr.Wrapf(err, "wal: scan %s", r.file.Name())
	}
	return entries, nil
}

// Replay is a convenience wrapper for replaying the log at path
// without holding a Reader open across callers.
func Replay(path string) ([]Entry, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, cockroacherr.Wrapf(err, "wal: stat %s", path)
	}
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	return r.Replay()
}
