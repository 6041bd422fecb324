package wal

import (
	"bufio"
	"os"
	"sync"
	"time"

	cockroacherr "github.com/cockroachdb/errors"

	"github.com/arrowdb/lsmdb/pkg/record"
)

// Writer appends textual entries to a write-ahead log file and
// guarantees that every call returning nil has already reached disk
// under the configured sync policy.
type Writer struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	writer  *bufio.Writer
	options Options

	done   chan struct{}
	ticker *time.Ticker
	closed bool
}

// NewWriter opens (creating if necessary) the WAL file at path in
// append mode.
func NewWriter(path string, opts Options) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, cockroacherr.Wrapf(err, "wal: open %s", path)
	}

	w := &Writer{
		path:    path,
		file:    f,
		writer:  bufio.NewWriterSize(f, opts.BufferSize),
		options: opts,
		done:    make(chan struct{}),
	}

	if opts.Sync == SyncInterval {
		w.ticker = time.NewTicker(opts.SyncIntervalDuration)
		go w.backgroundSync()
	}

	return w, nil
}

func (w *Writer) writeEntryLocked(e Entry) error {
	if _, err := e.WriteTo(w.writer); err != nil {
		return cockroacherr.Wrapf(err, "wal: write %s", w.path)
	}
	if w.options.Sync == SyncEveryWrite {
		return w.syncLocked()
	}
	return nil
}

// LogInsert appends an INSERT entry for r.
func (w *Writer) LogInsert(r record.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writeEntryLocked(Entry{Kind: KindInsert, ID: r.ID, Payload: r.Payload})
}

// LogUpdate appends an UPDATE entry.
func (w *Writer) LogUpdate(id uint64, payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writeEntryLocked(Entry{Kind: KindUpdate, ID: id, Payload: payload})
}

// LogDelete appends a DELETE entry.
func (w *Writer) LogDelete(id uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writeEntryLocked(Entry{Kind: KindDelete, ID: id})
}

// Sync forces the buffered bytes to disk.
func (w *Writer) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.syncLocked()
}

func (w *Writer) syncLocked() error {
	if err := w.writer.Flush(); err != nil {
		return cockroacherr.Wrapf(err, "wal: flush %s", w.path)
	}
	if err := w.file.Sync(); err != nil {
		return cockroacherr.Wrapf(err, "wal: fsync %s", w.path)
	}
	return nil
}

// Clear truncates the log to empty (used after a successful rollover)
// and repositions the writer so subsequent appends start from offset 0.
func (w *Writer) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Flush(); err != nil {
		return cockroacherr.Wrapf(err, "wal: flush before clear %s", w.path)
	}
	if err := w.file.Truncate(0); err != nil {
		return cockroacherr.Wrapf(err, "wal: truncate %s", w.path)
	}
	if _, err := w.file.Seek(0, 0); err != nil {
		return cockroacherr.Wrapf(err, "wal: seek %s", w.path)
	}
	w.writer = bufio.NewWriterSize(w.file, w.options.BufferSize)
	return w.syncLocked()
}

// Close flushes and closes the underlying file, stopping any
// background sync goroutine.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.ticker != nil {
		w.ticker.Stop()
		close(w.done)
	}

	if err := w.syncLocked(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

func (w *Writer) backgroundSync() {
	for {
		select {
		case <-w.ticker.C:
			_ = w.Sync()
		case <-w.done:
			return
		}
	}
}
