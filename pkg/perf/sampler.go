// Package perf samples the process's CPU and memory usage. The pipeline
// consults the latest sample to decide whether to throttle consumers.
package perf

import (
	"context"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
	log "github.com/sirupsen/logrus"
)

// Sample is one point-in-time observation of the process.
type Sample struct {
	// CPUPercent is the process CPU usage over the previous sampling window,
	// normalized by core count, in [0, 100].
	CPUPercent float64
	// RSSBytes is the resident set size.
	RSSBytes uint64
	// Threads is the OS thread count.
	Threads int32
	At      time.Time
}

// Sampler periodically observes the process and retains both the latest
// sample and the peak-CPU sample seen so far. Reads never block the
// sampling goroutine.
type Sampler struct {
	proc     *process.Process
	interval time.Duration
	cores    int

	mu             sync.Mutex
	lastCPUSeconds float64
	lastAt         time.Time

	latest atomic.Value // Sample
	peak   atomic.Value // Sample
}

// NewSampler creates a sampler for the current process.
func NewSampler(interval time.Duration) (*Sampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, errors.WithMessage(err, "error attaching to own process")
	}
	s := &Sampler{
		proc:     proc,
		interval: interval,
		cores:    runtime.NumCPU(),
	}
	s.latest.Store(Sample{})
	s.peak.Store(Sample{})
	return s, nil
}

// Run samples at the configured interval until the context is done. The
// first tick establishes the CPU-time baseline and reports zero CPU.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SampleNow(); err != nil {
				log.WithError(err).Warn("error sampling process resource usage")
			}
		}
	}
}

// SampleNow takes a sample immediately and folds it into the latest/peak
// state. CPU percent is computed from the CPU-time delta since the previous
// sample over the wall-clock delta, normalized by core count.
func (s *Sampler) SampleNow() (Sample, error) {
	times, err := s.proc.Times()
	if err != nil {
		return Sample{}, errors.WithMessage(err, "error reading process cpu times")
	}
	now := time.Now()
	cpuSeconds := times.User + times.System

	s.mu.Lock()
	var cpuPercent float64
	if !s.lastAt.IsZero() {
		wall := now.Sub(s.lastAt).Seconds()
		if wall > 0 {
			cpuPercent = (cpuSeconds - s.lastCPUSeconds) / wall / float64(s.cores) * 100
			if cpuPercent < 0 {
				cpuPercent = 0
			}
			if cpuPercent > 100 {
				cpuPercent = 100
			}
		}
	}
	s.lastCPUSeconds = cpuSeconds
	s.lastAt = now

	sample := Sample{CPUPercent: cpuPercent, At: now}
	if mem, err := s.proc.MemoryInfo(); err == nil {
		sample.RSSBytes = mem.RSS
	}
	if threads, err := s.proc.NumThreads(); err == nil {
		sample.Threads = threads
	}

	s.latest.Store(sample)
	if sample.CPUPercent > s.peak.Load().(Sample).CPUPercent {
		s.peak.Store(sample)
	}
	s.mu.Unlock()
	return sample, nil
}

// Latest returns the most recent sample; the zero Sample before the first
// tick.
func (s *Sampler) Latest() Sample {
	return s.latest.Load().(Sample)
}

// Peak returns the highest-CPU sample observed so far.
func (s *Sampler) Peak() Sample {
	return s.peak.Load().(Sample)
}
