// Package store keeps the bounded in-memory history of packet records.
package store

import (
	"sync"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/models"
)

// DefaultCapacity bounds the retention window when no capacity is configured.
const DefaultCapacity = 10000

// Ring is a fixed-capacity FIFO of packet records. A single writer appends;
// any number of readers take snapshots. The mutex is held only for the copy,
// never while a reader walks individual records.
type Ring struct {
	mu    sync.Mutex
	buf   []*models.PacketRecord
	head  int // index of the oldest record
	size  int
	total uint64 // records ever appended, independent of eviction
}

// NewRing creates a ring with the given capacity. Non-positive capacities
// fall back to DefaultCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]*models.PacketRecord, capacity)}
}

// Append adds rec to the end of the retained sequence, evicting the oldest
// record once capacity is exceeded. Returns true if an eviction happened.
func (r *Ring) Append(rec *models.PacketRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = rec
		r.size++
		return false
	}
	// Full: the slot at head is the oldest, overwrite it and advance.
	r.buf[r.head] = rec
	r.head = (r.head + 1) % len(r.buf)
	return true
}

// Snapshot returns an independent copy of the retained records in arrival
// order. Records themselves are immutable after append, so sharing the
// pointers is safe; the sequence never aliases internal storage.
func (r *Ring) Snapshot() []*models.PacketRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.PacketRecord, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Count returns the total number of records ever appended.
func (r *Ring) Count() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Len returns the number of currently retained records.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Capacity returns the fixed retention capacity.
func (r *Ring) Capacity() int {
	return len(r.buf)
}
