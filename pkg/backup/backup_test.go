package backup

import (
	"context"
	"testing"

	"github.com/arrowdb/lsmdb/pkg/config"
)

func TestNewReturnsNilWithoutBucket(t *testing.T) {
	c, err := New(context.Background(), config.Backup{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c != nil {
		t.Fatal("expected nil client when backup is not configured")
	}
}
