package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DBOperation labels database errors by the operation that failed.
type DBOperation string

const (
	DBOperationConnect DBOperation = "connect"
	DBOperationBegin   DBOperation = "begin"
	DBOperationInsert  DBOperation = "insert"
	DBOperationCommit  DBOperation = "commit"
)

const metricsPrefix = "ingot_ingester_"

// Prometheus holds the process-wide prometheus collectors shared by all
// ingestion runs.
type Prometheus struct {
	rowsProcessed    prometheus.Counter
	batchesCompleted prometheus.Counter
	retries          prometheus.Counter
	dbErrorsCounter  *prometheus.CounterVec
	batchDuration    prometheus.Histogram
}

var (
	prom     *Prometheus
	promOnce sync.Once
)

// GetPrometheus returns the singleton prometheus collectors, registering
// them on first use.
func GetPrometheus() *Prometheus {
	promOnce.Do(func() {
		prom = &Prometheus{
			rowsProcessed: promauto.NewCounter(prometheus.CounterOpts{
				Name: metricsPrefix + "rows_processed",
				Help: "Number of rows durably written to the target",
			}),
			batchesCompleted: promauto.NewCounter(prometheus.CounterOpts{
				Name: metricsPrefix + "batches_completed",
				Help: "Number of batches successfully written",
			}),
			retries: promauto.NewCounter(prometheus.CounterOpts{
				Name: metricsPrefix + "retries",
				Help: "Number of retried write attempts",
			}),
			dbErrorsCounter: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: metricsPrefix + "db_errors",
				Help: "Number of database errors grouped by database operation",
			}, []string{"operation"}),
			batchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    metricsPrefix + "batch_duration_seconds",
				Help:    "Time taken to write one batch",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
			}),
		}
	})
	return prom
}

func (p *Prometheus) RecordRowsProcessed(n int) {
	p.rowsProcessed.Add(float64(n))
}

func (p *Prometheus) RecordBatchCompleted(seconds float64) {
	p.batchesCompleted.Inc()
	p.batchDuration.Observe(seconds)
}

func (p *Prometheus) RecordRetry() {
	p.retries.Inc()
}

func (p *Prometheus) RecordDBError(operation DBOperation) {
	p.dbErrorsCounter.With(map[string]string{"operation": string(operation)}).Inc()
}
