package telemetry

import (
	"sync"

	"gosniff/internal/model"
)

const defaultRecentCapacity = 1000

// RecentBuffer keeps the newest captured records in arrival order. It backs
// the dashboard's recent and geo sections and is the source sequence for
// exports. Records are treated as immutable once appended, so readers share
// the pointers.
type RecentBuffer struct {
	mu       sync.Mutex
	capacity int
	recs     []*model.PacketRecord
}

// NewRecentBuffer creates a buffer holding at most capacity records; a
// non-positive capacity selects the default of 1000.
func NewRecentBuffer(capacity int) *RecentBuffer {
	if capacity <= 0 {
		capacity = defaultRecentCapacity
	}
	return &RecentBuffer{capacity: capacity}
}

// Append adds one record, evicting the oldest when the buffer is full.
func (b *RecentBuffer) Append(rec *model.PacketRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recs = append(b.recs, rec)
	if len(b.recs) > b.capacity {
		b.recs = b.recs[1:]
	}
}

// Items returns a copy of the buffer, oldest first.
func (b *RecentBuffer) Items() []*model.PacketRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*model.PacketRecord, len(b.recs))
	copy(out, b.recs)
	return out
}

// Len reports how many records are buffered.
func (b *RecentBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.recs)
}
