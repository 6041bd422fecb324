// Package memtable implements the engine's newest, mutable layer: a
// bounded write buffer backed by a block.
package memtable

import (
	"github.com/arrowdb/lsmdb/pkg/block"
	"github.com/arrowdb/lsmdb/pkg/record"
)

// Memtable wraps a block with a record-count bound.
type Memtable struct {
	block   *block.Block
	maxSize int
}

// New returns an empty memtable bounded at maxSize records.
func New(maxSize int) *Memtable {
	return &Memtable{block: block.New(), maxSize: maxSize}
}

// IsFull reports whether the memtable has reached its bound.
func (m *Memtable) IsFull() bool {
	return m.block.Count() >= m.maxSize
}

// Insert mirrors Block.Insert; it additionally refuses when full.
func (m *Memtable) Insert(r record.Record) bool {
	if m.IsFull() {
		return false
	}
	return m.block.Insert(r)
}

// Get mirrors Block.Get.
func (m *Memtable) Get(id uint64) (record.Record, bool) {
	return m.block.Get(id)
}

// GetAll mirrors Block.GetAll.
func (m *Memtable) GetAll() []record.Record {
	return m.block.GetAll()
}

// Update mirrors Block.Update.
func (m *Memtable) Update(id uint64, payload []byte) bool {
	return m.block.Update(id, payload)
}

// Delete mirrors Block.Delete.
func (m *Memtable) Delete(id uint64) bool {
	return m.block.Delete(id)
}

// Count mirrors Block.Count.
func (m *Memtable) Count() int {
	return m.block.Count()
}

// FlushToBlock returns a block holding every current record, preserving
// insertion order, and clears the memtable in the same step.
func (m *Memtable) FlushToBlock() *block.Block {
	flushed := block.New()
	for _, r := range m.block.GetAll() {
		flushed.Insert(r)
	}
	m.block.Clear()
	return flushed
}
