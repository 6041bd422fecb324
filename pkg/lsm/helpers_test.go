package lsm

import (
	"os"
	"path/filepath"

	"github.com/arrowdb/lsmdb/pkg/wal"
)

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return true, nil
}

func walEntries(dir string) ([]wal.Entry, error) {
	return wal.Replay(filepath.Join(dir, walFileName))
}
