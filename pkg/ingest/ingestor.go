// Package ingest contains the batch ingestion pipeline: a producer/consumer
// engine that turns a record stream into bounded, parallel, retried and
// metered write operations against a relational target.
package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/clock"

	"github.com/ingotproject/ingot/pkg/dialect"
	"github.com/ingotproject/ingot/pkg/ingoterrors"
	"github.com/ingotproject/ingot/pkg/metrics"
	"github.com/ingotproject/ingot/pkg/perf"
	"github.com/ingotproject/ingot/pkg/retry"
)

// Ingestor wires a dialect, a connection factory and a row mapper into a
// reusable ingestion façade. Each Ingest call runs one pipeline; nothing is
// shared between calls except the prometheus collectors.
type Ingestor[T any] struct {
	dialect dialect.Dialect
	factory ConnFactory
	mapper  RowMapper[T]
	config  Config
	prom    *metrics.Prometheus
}

// NewIngestor validates the configuration eagerly and returns an ingestor.
// Invalid values fail here, before any I/O.
func NewIngestor[T any](d dialect.Dialect, factory ConnFactory, mapper RowMapper[T], config Config) (*Ingestor[T], error) {
	if d == nil {
		return nil, &ingoterrors.ErrInvalidArgument{Name: "dialect", Value: nil, Message: "a dialect is required"}
	}
	if factory == nil {
		return nil, &ingoterrors.ErrInvalidArgument{Name: "factory", Value: nil, Message: "a connection factory is required"}
	}
	if mapper == nil {
		return nil, &ingoterrors.ErrInvalidArgument{Name: "mapper", Value: nil, Message: "a row mapper is required"}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Ingestor[T]{
		dialect: d,
		factory: factory,
		mapper:  mapper,
		config:  config,
		prom:    metrics.GetPrometheus(),
	}, nil
}

// Ingest pulls records from the source until it is exhausted and writes
// them to the named table. It returns the final metrics snapshot; on a
// terminal batch failure the returned error is a *ingoterrors.BatchError
// carrying the failed batch number and the rows durably processed before
// it, and the snapshot still reflects the partial progress.
func (i *Ingestor[T]) Ingest(ctx context.Context, source Source[T], table string) (metrics.Snapshot, error) {
	if source == nil {
		return metrics.Snapshot{}, &ingoterrors.ErrInvalidArgument{Name: "source", Value: nil, Message: "a source is required"}
	}
	if table == "" {
		return metrics.Snapshot{}, &ingoterrors.ErrInvalidArgument{Name: "table", Value: table, Message: "a table name is required"}
	}
	columns := i.mapper.Columns()
	if len(columns) == 0 {
		return metrics.Snapshot{}, &ingoterrors.ErrInvalidArgument{Name: "columns", Value: columns, Message: "mapper returned no columns"}
	}
	if len(columns) > i.dialect.MaxParameters() {
		return metrics.Snapshot{}, &ingoterrors.ErrInvalidArgument{
			Name:  "columns",
			Value: len(columns),
			Message: fmt.Sprintf("a single row binds more parameters than the %d allowed by %s",
				i.dialect.MaxParameters(), i.dialect.Name()),
		}
	}

	recorder := metrics.NewRecorder()
	var sampler *perf.Sampler
	if i.config.SamplingInterval > 0 {
		var err error
		sampler, err = perf.NewSampler(i.config.SamplingInterval)
		if err != nil {
			log.WithError(err).Warn("resource sampling unavailable, continuing without throttling")
			sampler = nil
		}
	}
	executor := retry.NewExecutor(i.config.Retry, retry.WithOnRetry(func(int, error) {
		recorder.IncrementRetryCount()
		i.prom.RecordRetry()
	}))

	p := &pipeline[T]{
		config:   i.config,
		dialect:  i.dialect,
		factory:  i.factory,
		mapper:   i.mapper,
		source:   source,
		table:    table,
		columns:  columns,
		runID:    uuid.New().String(),
		recorder: recorder,
		prom:     i.prom,
		executor: executor,
		clock:    clock.RealClock{},
	}
	if sampler != nil {
		p.sampler = sampler
	}

	logger := log.WithField("runId", p.runID).WithField("table", table)
	logger.Infof("starting ingestion: batchSize=%d parallelism=%d queueDepth=%d dialect=%s",
		i.config.BatchSize, i.config.Parallelism, i.config.QueueDepth, i.dialect.Name())

	err := p.run(ctx)
	snapshot := p.snapshot()
	if err != nil {
		logger.WithError(err).Warnf("ingestion failed: %s", snapshot)
		return snapshot, err
	}
	logger.Infof("ingestion complete: %s", snapshot)
	return snapshot, nil
}
