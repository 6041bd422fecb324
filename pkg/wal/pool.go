package wal

import "sync"

// pool.go: reduz a pressão sobre o GC causada pelos buffers de bytes
// construídos a cada linha escrita (base64 sempre aloca ao menos uma vez).

var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, 4096)
		return &buf
	},
}

// AcquireBuffer obtém um buffer reutilizável do pool.
func AcquireBuffer() *[]byte {
	return bufferPool.Get().(*[]byte)
}

// ReleaseBuffer devolve o buffer ao pool.
func ReleaseBuffer(buf *[]byte) {
	*buf = (*buf)[:0]
	bufferPool.Put(buf)
}
