package wal

import "time"

// SyncPolicy define a estratégia de durabilidade do WAL.
type SyncPolicy int

const (
	// SyncEveryWrite chama fsync() após cada entrada. É o padrão: a
	// durabilidade exigida (uma escrita que retornou sucesso já está
	// em disco) depende disso a menos que o chamador opte por outra política.
	SyncEveryWrite SyncPolicy = iota

	// SyncInterval chama fsync() periodicamente via goroutine de background.
	SyncInterval
)

// Options configura o Writer.
type Options struct {
	// BufferSize é o tamanho do buffer bufio antes do flush para o SO.
	BufferSize int

	// Sync seleciona o tradeoff entre durabilidade e performance.
	Sync SyncPolicy

	// SyncIntervalDuration é o período do ticker quando Sync == SyncInterval.
	SyncIntervalDuration time.Duration
}

// DefaultOptions retorna uma configuração segura: sync a cada escrita.
func DefaultOptions() Options {
	return Options{
		BufferSize:           64 * 1024,
		Sync:                 SyncEveryWrite,
		SyncIntervalDuration: 200 * time.Millisecond,
	}
}
