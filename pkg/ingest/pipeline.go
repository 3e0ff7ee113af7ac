package ingest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/clock"

	"github.com/ingotproject/ingot/pkg/dialect"
	"github.com/ingotproject/ingot/pkg/ingoterrors"
	"github.com/ingotproject/ingot/pkg/metrics"
	"github.com/ingotproject/ingot/pkg/model"
	"github.com/ingotproject/ingot/pkg/perf"
	"github.com/ingotproject/ingot/pkg/retry"
	"github.com/ingotproject/ingot/pkg/statement"
)

// resourceSampler is the sampler surface the pipeline consults for
// throttling decisions.
type resourceSampler interface {
	Run(ctx context.Context)
	Latest() perf.Sample
}

// pipeline is the producer/consumer engine for one ingestion run. A single
// producer slices the source into batches and feeds a bounded queue; a
// fixed pool of consumers drains it, writing each batch with retry and
// recording metrics. Batches are produced in input order but complete in
// arbitrary order across consumers.
type pipeline[T any] struct {
	config   Config
	dialect  dialect.Dialect
	factory  ConnFactory
	mapper   RowMapper[T]
	source   Source[T]
	table    string
	columns  []string
	runID    string
	recorder *metrics.Recorder
	prom     *metrics.Prometheus
	sampler  resourceSampler
	executor *retry.Executor
	clock    clock.Clock

	completed uint64
	aborted   uint32
}

// run executes the pipeline until the source is exhausted, a batch fails
// terminally or the context is cancelled.
func (p *pipeline[T]) run(ctx context.Context) error {
	// The producer gets its own context so that a batch failure can stop it
	// without cancelling sibling consumers' in-flight writes.
	produceCtx, stopProducer := context.WithCancel(ctx)
	defer stopProducer()

	if p.sampler != nil {
		go p.sampler.Run(produceCtx)
	}

	batches := make(chan *model.Batch, p.config.QueueDepth)
	producerDone := make(chan error, 1)
	go func() {
		defer close(batches)
		producerDone <- p.produce(produceCtx, batches)
	}()

	var (
		failureMu sync.Mutex
		failure   error
	)
	wg := sync.WaitGroup{}
	for worker := 0; worker < p.config.Parallelism; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				// After a failure, siblings finish the batch they already
				// hold; anything still queued is discarded.
				if atomic.LoadUint32(&p.aborted) == 1 {
					continue
				}
				if err := p.processBatch(ctx, batch); err != nil {
					failureMu.Lock()
					if failure == nil {
						failure = err
						atomic.StoreUint32(&p.aborted, 1)
						stopProducer()
					}
					failureMu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	producerErr := <-producerDone

	if failure != nil {
		return failure
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return producerErr
}

// produce pulls records, maps them to rows and accumulates batches of
// BatchSize rows. Batches are flushed when full, when MaxBatchDelay elapses
// without the batch filling, and once more for the partial tail when the
// source is exhausted. The send blocks when the queue is full; that
// blocking is the pipeline's backpressure.
func (p *pipeline[T]) produce(ctx context.Context, batches chan<- *model.Batch) error {
	rows := make(chan model.Row)
	readErr := make(chan error, 1)
	go func() {
		defer close(rows)
		for {
			record, ok, err := p.source.Next(ctx)
			if err != nil {
				readErr <- err
				return
			}
			if !ok {
				return
			}
			select {
			case rows <- p.mapper.Map(record):
			case <-ctx.Done():
				return
			}
		}
	}()

	var number int64
	buffer := make([]model.Row, 0, p.config.BatchSize)
	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		number++
		batch := &model.Batch{Number: number, Rows: buffer}
		buffer = make([]model.Row, 0, p.config.BatchSize)
		select {
		case batches <- batch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var expire <-chan time.Time
	for {
		if p.config.MaxBatchDelay > 0 && expire == nil && len(buffer) > 0 {
			expire = p.clock.After(p.config.MaxBatchDelay)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case row, ok := <-rows:
			if !ok {
				if err := flush(); err != nil {
					return err
				}
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			buffer = append(buffer, row)
			if len(buffer) == p.config.BatchSize {
				if err := flush(); err != nil {
					return err
				}
				expire = nil
			}
		case <-expire:
			if err := flush(); err != nil {
				return err
			}
			expire = nil
		}
	}
}

// processBatch writes one batch and updates accounting. A terminal write
// failure increments the error counter and is wrapped with the batch number
// and the rows durably processed before it; cancellation passes through
// untouched.
func (p *pipeline[T]) processBatch(ctx context.Context, batch *model.Batch) error {
	p.maybeThrottle(ctx)

	start := time.Now()
	if err := p.writeBatch(ctx, batch); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.recorder.IncrementErrorCount()
		return &ingoterrors.BatchError{
			BatchNumber:   batch.Number,
			RowsProcessed: p.recorder.RowsProcessed(),
			Err:           err,
		}
	}
	duration := time.Since(start)

	p.recorder.AddRowsProcessed(batch.RowCount())
	p.recorder.IncrementBatchesCompleted()
	p.recorder.RecordBatchDuration(duration)
	p.prom.RecordRowsProcessed(batch.RowCount())
	p.prom.RecordBatchCompleted(duration.Seconds())

	if p.config.OnBatchComplete != nil {
		p.config.OnBatchComplete(batch.Number, duration)
	}
	completed := atomic.AddUint64(&p.completed, 1)
	if p.config.ProgressInterval > 0 && completed%uint64(p.config.ProgressInterval) == 0 {
		p.config.OnProgress(p.snapshot())
	}
	return nil
}

// writeBatch renders the batch as one or more statements sized to the
// dialect's parameter ceiling and executes them, as a unit, under the retry
// executor. With TransactionPerBatch all statements of the batch share one
// transaction, so a split batch remains atomic.
func (p *pipeline[T]) writeBatch(ctx context.Context, batch *model.Batch) error {
	statements, err := statement.BuildStatements(p.dialect, p.table, p.columns, batch.Rows)
	if err != nil {
		return err
	}
	return p.executor.Execute(ctx, func(ctx context.Context) error {
		return p.writeOnce(ctx, statements)
	})
}

func (p *pipeline[T]) writeOnce(ctx context.Context, statements []statement.Statement) error {
	conn, err := p.factory.Connect(ctx)
	if err != nil {
		p.prom.RecordDBError(metrics.DBOperationConnect)
		return err
	}
	defer func() {
		if err := conn.Close(context.Background()); err != nil {
			log.WithError(err).Warn("error closing connection")
		}
	}()

	if !p.config.TransactionPerBatch {
		for _, s := range statements {
			if err := p.execStatement(ctx, conn.Exec, s); err != nil {
				p.prom.RecordDBError(metrics.DBOperationInsert)
				return err
			}
		}
		return nil
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		p.prom.RecordDBError(metrics.DBOperationBegin)
		return err
	}
	for _, s := range statements {
		if err := p.execStatement(ctx, tx.Exec, s); err != nil {
			p.prom.RecordDBError(metrics.DBOperationInsert)
			if rbErr := tx.Rollback(context.Background()); rbErr != nil {
				log.WithError(rbErr).Warn("error rolling back batch transaction")
			}
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		p.prom.RecordDBError(metrics.DBOperationCommit)
		return err
	}
	return nil
}

func (p *pipeline[T]) execStatement(
	ctx context.Context,
	exec func(ctx context.Context, sql string, args ...any) error,
	s statement.Statement,
) error {
	if p.config.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.CommandTimeout)
		defer cancel()
	}
	return exec(ctx, s.SQL, s.Args...)
}

// maybeThrottle suspends the consumer for ThrottleDelay when the latest CPU
// sample is over the configured threshold. This reduces burst CPU; it does
// not guarantee a hard ceiling.
func (p *pipeline[T]) maybeThrottle(ctx context.Context) {
	if !p.config.ThrottleOnHighCPU || p.sampler == nil || p.config.ThrottleDelay <= 0 {
		return
	}
	latest := p.sampler.Latest()
	if latest.CPUPercent <= p.config.MaxCPUPercent {
		return
	}
	log.WithField("runId", p.runID).
		Debugf("cpu at %.1f%% exceeds threshold %.1f%%, throttling for %s",
			latest.CPUPercent, p.config.MaxCPUPercent, p.config.ThrottleDelay)
	timer := time.NewTimer(p.config.ThrottleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (p *pipeline[T]) snapshot() metrics.Snapshot {
	if p.sampler == nil {
		return p.recorder.Clone()
	}
	sample := p.sampler.Latest()
	return p.recorder.CloneWithPerformance(&sample)
}
