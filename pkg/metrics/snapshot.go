package metrics

import (
	"fmt"
	"time"

	"github.com/ingotproject/ingot/pkg/perf"
)

// Snapshot is an immutable point-in-time copy of the recorder's counters.
type Snapshot struct {
	RowsProcessed      uint64
	BatchesCompleted   uint64
	ErrorCount         uint64
	RetryCount         uint64
	MinBatchDuration   time.Duration
	MaxBatchDuration   time.Duration
	TotalBatchDuration time.Duration
	Elapsed            time.Duration

	// Performance is the latest resource sample, if sampling was enabled.
	Performance *perf.Sample
}

// RowsPerSecond derives the overall throughput; zero when no time has
// elapsed.
func (s Snapshot) RowsPerSecond() float64 {
	seconds := s.Elapsed.Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(s.RowsProcessed) / seconds
}

// AvgBatchDuration derives the mean time spent writing one batch. The
// pipeline records exactly one duration per completed batch.
func (s Snapshot) AvgBatchDuration() time.Duration {
	if s.BatchesCompleted == 0 {
		return 0
	}
	return s.TotalBatchDuration / time.Duration(s.BatchesCompleted)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"rows=%d batches=%d errors=%d retries=%d rows/s=%.1f avgBatch=%s elapsed=%s",
		s.RowsProcessed, s.BatchesCompleted, s.ErrorCount, s.RetryCount,
		s.RowsPerSecond(), s.AvgBatchDuration(), s.Elapsed.Round(time.Millisecond))
}
