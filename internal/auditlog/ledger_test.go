package auditlog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLedger_AppendNewestFirst(t *testing.T) {
	l := NewLedger("attendance", zap.NewNop())

	l.Append("Ahmad Manager", "superadmin", "Check-in", "Berhasil check-in pukul 08:01")
	l.Append("Budi Santoso", "tim_packing", "Check-in", "Berhasil check-in pukul 09:12")

	entries := l.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "Budi Santoso", entries[0].Actor)
	assert.Equal(t, "Ahmad Manager", entries[1].Actor)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestLedger_SnapshotIsolated(t *testing.T) {
	l := NewLedger("content", zap.NewNop())
	l.Append("Siska Amelia", "tim_konten", "Tambah", "Laporan produksi harian")

	snap := l.Entries()
	l.Append("Siska Amelia", "tim_konten", "Edit", "Revisi laporan")

	assert.Len(t, snap, 1)
	assert.Equal(t, 2, l.Len())
}

func TestLedger_ConcurrentAppend(t *testing.T) {
	l := NewLedger("attendance", zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Append("actor", "role", "Check-in", fmt.Sprintf("entry %d", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, l.Len())
}
