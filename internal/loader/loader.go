// Package loader is a small application around the ingestion library: it
// generates or reads records and loads them into a configured target,
// exposing prometheus metrics while it runs.
package loader

import (
	"context"
	"database/sql"
	"time"

	"github.com/hashicorp/go-multierror"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ingotproject/ingot/pkg/database"
	"github.com/ingotproject/ingot/pkg/dialect"
	"github.com/ingotproject/ingot/pkg/ingest"
	"github.com/ingotproject/ingot/pkg/metrics"
	"github.com/ingotproject/ingot/pkg/retry"
)

// Run executes one load per the supplied configuration.
func Run(ctx context.Context, config *Config) error {
	if err := config.Validate(); err != nil {
		return errors.WithMessage(err, "invalid loader configuration")
	}

	d, factory, closeTarget, err := openTarget(ctx, config)
	if err != nil {
		return err
	}

	var result *multierror.Error
	result = multierror.Append(result, runLoad(ctx, config, d, factory))
	result = multierror.Append(result, closeTarget())
	return result.ErrorOrNil()
}

func runLoad(ctx context.Context, config *Config, d dialect.Dialect, factory ingest.ConnFactory) error {
	ingestConfig := pipelineConfig(config)

	if config.CSVPath != "" {
		source, err := OpenCSV(config.CSVPath)
		if err != nil {
			return err
		}
		ingestor, err := ingest.NewIngestor[[]string](d, factory, source, ingestConfig)
		if err != nil {
			_ = source.Close()
			return err
		}
		_, ingestErr := ingestor.Ingest(ctx, source, config.Table)
		return multierror.Append(ingestErr, source.Close()).ErrorOrNil()
	}

	log.Infof("generating %d synthetic events", config.Records)
	ingestor, err := ingest.NewIngestor[Event](d, factory, EventMapper{}, ingestConfig)
	if err != nil {
		return err
	}
	_, err = ingestor.Ingest(ctx, NewEventSource(config.Records), config.Table)
	return err
}

func pipelineConfig(config *Config) ingest.Config {
	return ingest.Config{
		BatchSize:           config.BatchSize,
		Parallelism:         config.Parallelism,
		QueueDepth:          config.QueueDepth,
		MaxBatchDelay:       config.MaxBatchDelay,
		CommandTimeout:      config.CommandTimeout,
		TransactionPerBatch: config.TransactionPerBatch,
		Retry: &retry.Policy{
			MaxRetries:   config.MaxRetries,
			InitialDelay: config.InitialRetryDelay,
			MaxDelay:     config.MaxRetryDelay,
			Backoff:      retry.BackoffExponential,
			Jitter:       true,
		},
		ThrottleOnHighCPU: config.ThrottleOnHighCPU,
		MaxCPUPercent:     config.MaxCPUPercent,
		ThrottleDelay:     config.ThrottleDelay,
		SamplingInterval:  config.SamplingInterval,
		ProgressInterval:  config.ProgressInterval,
		OnProgress: func(snapshot metrics.Snapshot) {
			log.Infof("progress: %s", snapshot)
		},
		OnBatchComplete: func(batchNumber int64, duration time.Duration) {
			log.Debugf("batch %d written in %s", batchNumber, duration)
		},
	}
}

func openTarget(ctx context.Context, config *Config) (dialect.Dialect, ingest.ConnFactory, func() error, error) {
	switch config.Target {
	case TargetPostgres:
		pool, err := database.OpenPgxPool(ctx, config.Postgres)
		if err != nil {
			return nil, nil, nil, errors.WithMessage(err, "error opening connection to postgres")
		}
		closePool := func() error {
			pool.Close()
			return nil
		}
		return dialect.Postgres(), database.NewPgxFactory(pool), closePool, nil
	case TargetSQLite:
		db, err := sql.Open("sqlite3", config.SQLitePath)
		if err != nil {
			return nil, nil, nil, errors.WithMessage(err, "error opening sqlite database")
		}
		return dialect.SQLite(), database.NewSQLFactory(db), db.Close, nil
	default:
		return nil, nil, nil, errors.Errorf("unknown target %q", config.Target)
	}
}
