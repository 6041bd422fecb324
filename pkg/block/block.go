// Package block implements the ordered, serializable container of
// records that both the memtable and every sorted table are built on
// top of.
package block

import (
	"encoding/binary"
	"os"

	"github.com/DataDog/zstd"
	cockroacherr "github.com/cockroachdb/errors"

	"github.com/arrowdb/lsmdb/pkg/record"
)

const (
	magicRaw        byte = 0x01
	magicZstd       byte = 0x02
	headerWidth          = 8 + 4 // id + payload length
)

// Block is an ordered, in-memory sequence of records with a binary
// on-disk form. Insertion order is preserved by get_all; insert does
// not itself deduplicate by id (it refuses a duplicate id, but never
// silently overwrites one).
type Block struct {
	records []record.Record
}

// New returns an empty block.
func New() *Block {
	return &Block{}
}

// Insert appends r if no existing record shares its id. Returns false
// (no-op) when the id is already present.
func (b *Block) Insert(r record.Record) bool {
	for i := range b.records {
		if b.records[i].ID == r.ID {
			return false
		}
	}
	b.records = append(b.records, r.Clone())
	return true
}

// Get performs a linear scan and returns the first record with id, if any.
func (b *Block) Get(id uint64) (record.Record, bool) {
	for _, r := range b.records {
		if r.ID == id {
			return r, true
		}
	}
	return record.Record{}, false
}

// GetAll returns the records in insertion order. The slice is a copy;
// mutating it does not affect the block.
func (b *Block) GetAll() []record.Record {
	out := make([]record.Record, len(b.records))
	copy(out, b.records)
	return out
}

// Update replaces the payload of the record with id in place. Returns
// false if no such record exists.
func (b *Block) Update(id uint64, payload []byte) bool {
	for i := range b.records {
		if b.records[i].ID == id {
			b.records[i] = record.New(id, payload)
			return true
		}
	}
	return false
}

// Delete removes the first record with id. Returns false if absent.
func (b *Block) Delete(id uint64) bool {
	for i := range b.records {
		if b.records[i].ID == id {
			b.records = append(b.records[:i], b.records[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns the number of records currently held.
func (b *Block) Count() int {
	return len(b.records)
}

// Clear empties the block in place.
func (b *Block) Clear() {
	b.records = nil
}

// Save serializes the block to path, overwriting any existing file.
// The body is zstd-compressed transparently; a one-byte magic prefix
// records the encoding so Load can handle both compressed and legacy
// raw files.
func (b *Block) Save(path string) error {
	raw := b.encode()
	compressed, err := zstd.Compress(nil, raw)
	if err != nil {
		return cockroacherr.Wrapf(err, "block: compress %s", path)
	}
	out := make([]byte, 0, len(compressed)+1)
	out = append(out, magicZstd)
	out = append(out, compressed...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return cockroacherr.Wrapf(err, "block: save %s", path)
	}
	return nil
}

// Load replaces the block's contents with the exact record sequence
// previously written by Save at path. It is Save's inverse.
func (b *Block) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return cockroacherr.Wrapf(err, "block: load %s", path)
	}
	if len(data) == 0 {
		b.records = nil
		return nil
	}
	magic, body := data[0], data[1:]
	var raw []byte
	switch magic {
	case magicZstd:
		raw, err = zstd.Decompress(nil, body)
		if err != nil {
			return cockroacherr.Wrapf(err, "block: decompress %s", path)
		}
	case magicRaw:
		raw = body
	default:
		// Unknown prefix: treat the whole file as a legacy uncompressed body.
		raw = data
	}
	recs, err := decode(raw)
	if err != nil {
		return cockroacherr.Wrapf(err, "block: decode %s", path)
	}
	b.records = recs
	return nil
}

func (b *Block) encode() []byte {
	var buf []byte
	var hdr [headerWidth]byte
	for _, r := range b.records {
		binary.BigEndian.PutUint64(hdr[0:8], r.ID)
		binary.BigEndian.PutUint32(hdr[8:12], uint32(len(r.Payload)))
		buf = append(buf, hdr[:]...)
		buf = append(buf, r.Payload...)
	}
	return buf
}

func decode(raw []byte) ([]record.Record, error) {
	var recs []record.Record
	off := 0
	for off < len(raw) {
		if off+headerWidth > len(raw) {
			return nil, cockroacherr.Newf("block: truncated header at offset %d", off)
		}
		id := binary.BigEndian.Uint64(raw[off : off+8])
		plen := binary.BigEndian.Uint32(raw[off+8 : off+12])
		off += headerWidth
		if off+int(plen) > len(raw) {
			return nil, cockroacherr.Newf("block: truncated payload at offset %d", off)
		}
		payload := raw[off : off+int(plen)]
		recs = append(recs, record.New(id, payload))
		off += int(plen)
	}
	return recs, nil
}
