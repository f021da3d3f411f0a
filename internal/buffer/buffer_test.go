package buffer_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/driftwatch/internal/buffer"
	"github.com/OldStager01/driftwatch/pkg/models"
)

func record(value float64) models.FeatureRecord {
	return models.NewFeatureRecord(map[string]float64{"f1": value}, 0)
}

func values(records []models.FeatureRecord) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		out = append(out, r.Features["f1"])
	}
	return out
}

func TestBuffer_AppendBelowCapacity(t *testing.T) {
	b := buffer.New(5)

	b.Append(record(1))
	b.Append(record(2))
	b.Append(record(3))

	assert.Equal(t, 3, b.Size())
	assert.Equal(t, []float64{1, 2, 3}, values(b.Snapshot()))
}

func TestBuffer_EvictsOldestAtCapacity(t *testing.T) {
	b := buffer.New(5)

	for i := 1; i <= 7; i++ {
		b.Append(record(float64(i)))
	}

	assert.Equal(t, 5, b.Size())
	assert.Equal(t, []float64{3, 4, 5, 6, 7}, values(b.Snapshot()))
}

func TestBuffer_DefaultCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		expected int
	}{
		{name: "zero falls back to default", capacity: 0, expected: 500},
		{name: "negative falls back to default", capacity: -1, expected: 500},
		{name: "explicit capacity kept", capacity: 42, expected: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := buffer.New(tt.capacity)
			assert.Equal(t, tt.expected, b.Capacity())
		})
	}
}

func TestBuffer_SnapshotIsIndependentCopy(t *testing.T) {
	b := buffer.New(3)
	b.Append(record(1))

	snap := b.Snapshot()
	require.Len(t, snap, 1)

	b.Append(record(2))
	b.Append(record(3))
	b.Append(record(4))

	// The earlier snapshot is unaffected by later appends and evictions.
	assert.Equal(t, []float64{1}, values(snap))
	assert.Equal(t, []float64{2, 3, 4}, values(b.Snapshot()))
}

func TestBuffer_EmptySnapshot(t *testing.T) {
	b := buffer.New(3)

	snap := b.Snapshot()

	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestBuffer_ConcurrentAppends(t *testing.T) {
	const (
		writers = 8
		each    = 200
	)

	b := buffer.New(100)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				b.Append(record(float64(i)))
				b.Snapshot()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, b.Size())
	assert.Len(t, b.Snapshot(), 100)
}
