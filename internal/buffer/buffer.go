// Package buffer holds the bounded rolling window of recent inference inputs.
package buffer

import (
	"sync"

	"github.com/OldStager01/driftwatch/pkg/models"
)

const defaultCapacity = 500

// Buffer is a fixed-capacity FIFO of FeatureRecords backed by a ring.
// Appending beyond capacity evicts the oldest record. The lock covers only
// the append/evict and copy steps, so analysis duration never blocks
// serving.
type Buffer struct {
	mu       sync.Mutex
	records  []models.FeatureRecord
	start    int
	size     int
	capacity int
}

func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Buffer{
		records:  make([]models.FeatureRecord, capacity),
		capacity: capacity,
	}
}

// Append inserts a record, evicting the oldest when at capacity.
func (b *Buffer) Append(record models.FeatureRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	index := (b.start + b.size) % b.capacity
	b.records[index] = record

	if b.size < b.capacity {
		b.size++
		return
	}
	b.start = (b.start + 1) % b.capacity
}

// Snapshot returns an independent copy of the current contents in insertion
// order. The copy is taken under the append lock; everything done with the
// result runs outside it.
func (b *Buffer) Snapshot() []models.FeatureRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.FeatureRecord, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.records[(b.start+i)%b.capacity]
	}
	return out
}

// Size returns the current number of buffered records.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Capacity returns the configured maximum.
func (b *Buffer) Capacity() int {
	return b.capacity
}
