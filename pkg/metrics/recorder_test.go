package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CountersUnderContention(t *testing.T) {
	const writers = 8
	const additions = 10000

	r := NewRecorder()
	wg := sync.WaitGroup{}
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < additions; i++ {
				r.AddRowsProcessed(1)
				r.IncrementBatchesCompleted()
				r.IncrementErrorCount()
				r.IncrementRetryCount()
			}
		}()
	}
	wg.Wait()

	snapshot := r.Clone()
	assert.Equal(t, uint64(writers*additions), snapshot.RowsProcessed)
	assert.Equal(t, uint64(writers*additions), snapshot.BatchesCompleted)
	assert.Equal(t, uint64(writers*additions), snapshot.ErrorCount)
	assert.Equal(t, uint64(writers*additions), snapshot.RetryCount)
}

func TestRecorder_DurationAggregates(t *testing.T) {
	r := NewRecorder()
	r.IncrementBatchesCompleted()
	r.IncrementBatchesCompleted()
	r.IncrementBatchesCompleted()
	r.RecordBatchDuration(30 * time.Millisecond)
	r.RecordBatchDuration(10 * time.Millisecond)
	r.RecordBatchDuration(20 * time.Millisecond)

	snapshot := r.Clone()
	assert.Equal(t, 10*time.Millisecond, snapshot.MinBatchDuration)
	assert.Equal(t, 30*time.Millisecond, snapshot.MaxBatchDuration)
	assert.Equal(t, 60*time.Millisecond, snapshot.TotalBatchDuration)
	assert.Equal(t, 20*time.Millisecond, snapshot.AvgBatchDuration())
}

func TestRecorder_MinMaxUnderContention(t *testing.T) {
	r := NewRecorder()
	wg := sync.WaitGroup{}
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 1; i <= 1000; i++ {
				r.RecordBatchDuration(time.Duration(w*1000+i) * time.Microsecond)
			}
		}(w)
	}
	wg.Wait()

	snapshot := r.Clone()
	assert.Equal(t, 1*time.Microsecond, snapshot.MinBatchDuration)
	assert.Equal(t, 8000*time.Microsecond, snapshot.MaxBatchDuration)
}

func TestSnapshot_ZeroValues(t *testing.T) {
	r := NewRecorder()
	snapshot := r.Clone()
	assert.Zero(t, snapshot.RowsProcessed)
	assert.Zero(t, snapshot.BatchesCompleted)
	assert.Zero(t, snapshot.MinBatchDuration)
	assert.Zero(t, snapshot.MaxBatchDuration)
	assert.Zero(t, snapshot.AvgBatchDuration())
}

func TestSnapshot_RowsPerSecond(t *testing.T) {
	s := Snapshot{RowsProcessed: 500, Elapsed: 2 * time.Second}
	assert.InDelta(t, 250, s.RowsPerSecond(), 0.001)

	s = Snapshot{RowsProcessed: 500, Elapsed: 0}
	assert.Zero(t, s.RowsPerSecond())
}

func TestRecorder_CloneDoesNotBlockWriters(t *testing.T) {
	r := NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100000; i++ {
			r.AddRowsProcessed(1)
		}
	}()
	for i := 0; i < 1000; i++ {
		snapshot := r.Clone()
		require.LessOrEqual(t, snapshot.RowsProcessed, uint64(100000))
	}
	<-done
	assert.Equal(t, uint64(100000), r.Clone().RowsProcessed)
}
