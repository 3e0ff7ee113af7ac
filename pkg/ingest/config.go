package ingest

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ingotproject/ingot/pkg/ingoterrors"
	"github.com/ingotproject/ingot/pkg/metrics"
	"github.com/ingotproject/ingot/pkg/retry"
)

// Config is the immutable configuration of one ingestion run. It is
// validated once, before any I/O.
type Config struct {
	// BatchSize is the number of rows accumulated into one batch.
	BatchSize int `validate:"gt=0"`
	// Parallelism is the number of concurrent consumers.
	Parallelism int `validate:"gt=0"`
	// QueueDepth is the capacity, in batches, of the producer/consumer
	// queue. A full queue blocks the producer; this is the sole
	// memory-bounding mechanism.
	QueueDepth int `validate:"gt=0"`
	// MaxBatchDelay flushes a partial batch this long after its first row
	// arrived, whether or not more rows are trickling in. Zero disables
	// time-based flushing.
	MaxBatchDelay time.Duration `validate:"gte=0"`
	// CommandTimeout bounds each statement execution attempt. Zero means no
	// per-command deadline.
	CommandTimeout time.Duration `validate:"gte=0"`
	// TransactionPerBatch wraps each batch in its own transaction. When
	// false the pipeline issues un-transacted writes and any outer
	// transaction is the caller's responsibility.
	TransactionPerBatch bool
	// Retry governs per-batch write retries. Nil means execute exactly once.
	Retry *retry.Policy

	// ThrottleOnHighCPU pauses consumers for ThrottleDelay before a batch
	// when the latest CPU sample exceeds MaxCPUPercent. Advisory pacing,
	// not hard admission control.
	ThrottleOnHighCPU bool
	MaxCPUPercent     float64       `validate:"gte=0,lte=100"`
	ThrottleDelay     time.Duration `validate:"gte=0"`
	// SamplingInterval is the period of the resource sampler. Zero disables
	// sampling (and therefore throttling).
	SamplingInterval time.Duration `validate:"gte=0"`

	// ProgressInterval invokes OnProgress every Nth completed batch.
	// Zero disables progress reporting.
	ProgressInterval int `validate:"gte=0"`
	// OnProgress receives a metrics snapshot every ProgressInterval batches.
	OnProgress func(snapshot metrics.Snapshot)
	// OnBatchComplete is invoked after every successful batch.
	OnBatchComplete func(batchNumber int64, duration time.Duration)
}

// DefaultConfig returns a configuration suitable for most targets.
func DefaultConfig() Config {
	return Config{
		BatchSize:        500,
		Parallelism:      4,
		QueueDepth:       8,
		CommandTimeout:   30 * time.Second,
		Retry:            retry.DefaultPolicy(),
		MaxCPUPercent:    85,
		ThrottleDelay:    100 * time.Millisecond,
		SamplingInterval: time.Second,
	}
}

// Validate fails fast on invalid values, before any work starts.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ingoterrors.ErrInvalidConfig{
				Name:    fe.StructField(),
				Value:   fe.Value(),
				Message: "failed validation rule " + fe.Tag(),
			}
		}
		return err
	}
	if c.ThrottleOnHighCPU && c.SamplingInterval <= 0 {
		return &ingoterrors.ErrInvalidConfig{
			Name:    "SamplingInterval",
			Value:   c.SamplingInterval,
			Message: "must be positive when ThrottleOnHighCPU is set",
		}
	}
	if c.ProgressInterval > 0 && c.OnProgress == nil {
		return &ingoterrors.ErrInvalidConfig{
			Name:    "OnProgress",
			Value:   nil,
			Message: "required when ProgressInterval is set",
		}
	}
	if c.Retry != nil {
		return c.Retry.Validate()
	}
	return nil
}
