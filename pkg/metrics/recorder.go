// Package metrics accumulates ingestion counters from concurrently running
// consumers. All updates are lock-free so that progress reads never block
// writers.
package metrics

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/ingotproject/ingot/pkg/perf"
)

// Recorder collects cumulative counters for one ingestion run. All methods
// are safe for concurrent use; updates use atomic adds and compare-and-swap
// loops, never a mutex.
type Recorder struct {
	// 64-bit fields first so atomic access stays aligned on 32-bit platforms.
	rowsProcessed      uint64
	batchesCompleted   uint64
	errorCount         uint64
	retryCount         uint64
	durationTotalNanos int64
	durationMinNanos   int64
	durationMaxNanos   int64

	start time.Time
	clock func() time.Time
}

// NewRecorder creates a recorder whose elapsed time starts now.
func NewRecorder() *Recorder {
	return &Recorder{
		durationMinNanos: math.MaxInt64,
		start:            time.Now(),
		clock:            time.Now,
	}
}

// AddRowsProcessed records n rows as durably written.
func (r *Recorder) AddRowsProcessed(n int) {
	atomic.AddUint64(&r.rowsProcessed, uint64(n))
}

// IncrementBatchesCompleted records one batch as completed.
func (r *Recorder) IncrementBatchesCompleted() {
	atomic.AddUint64(&r.batchesCompleted, 1)
}

// IncrementErrorCount records one terminal batch failure.
func (r *Recorder) IncrementErrorCount() {
	atomic.AddUint64(&r.errorCount, 1)
}

// IncrementRetryCount records one retried attempt.
func (r *Recorder) IncrementRetryCount() {
	atomic.AddUint64(&r.retryCount, 1)
}

// RecordBatchDuration folds one batch duration into the running total and
// the min/max aggregates.
func (r *Recorder) RecordBatchDuration(d time.Duration) {
	nanos := d.Nanoseconds()
	atomic.AddInt64(&r.durationTotalNanos, nanos)

	for {
		current := atomic.LoadInt64(&r.durationMinNanos)
		if nanos >= current || atomic.CompareAndSwapInt64(&r.durationMinNanos, current, nanos) {
			break
		}
	}
	for {
		current := atomic.LoadInt64(&r.durationMaxNanos)
		if nanos <= current || atomic.CompareAndSwapInt64(&r.durationMaxNanos, current, nanos) {
			break
		}
	}
}

// RowsProcessed returns the current row count.
func (r *Recorder) RowsProcessed() uint64 {
	return atomic.LoadUint64(&r.rowsProcessed)
}

// Clone returns an immutable snapshot of the current counters without
// blocking concurrent writers.
func (r *Recorder) Clone() Snapshot {
	minNanos := atomic.LoadInt64(&r.durationMinNanos)
	if minNanos == math.MaxInt64 {
		minNanos = 0
	}
	return Snapshot{
		RowsProcessed:      atomic.LoadUint64(&r.rowsProcessed),
		BatchesCompleted:   atomic.LoadUint64(&r.batchesCompleted),
		ErrorCount:         atomic.LoadUint64(&r.errorCount),
		RetryCount:         atomic.LoadUint64(&r.retryCount),
		TotalBatchDuration: time.Duration(atomic.LoadInt64(&r.durationTotalNanos)),
		MinBatchDuration:   time.Duration(minNanos),
		MaxBatchDuration:   time.Duration(atomic.LoadInt64(&r.durationMaxNanos)),
		Elapsed:            r.clock().Sub(r.start),
	}
}

// CloneWithPerformance returns a snapshot that also carries the supplied
// performance sample.
func (r *Recorder) CloneWithPerformance(sample *perf.Sample) Snapshot {
	snapshot := r.Clone()
	snapshot.Performance = sample
	return snapshot
}
