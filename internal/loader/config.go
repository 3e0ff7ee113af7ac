package loader

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// TargetKind selects which database family the loader writes to.
type TargetKind string

const (
	TargetPostgres TargetKind = "postgres"
	TargetSQLite   TargetKind = "sqlite"
)

// Config is the loader application configuration, read from YAML via viper.
type Config struct {
	// Target database family
	Target TargetKind `validate:"required,oneof=postgres sqlite"`
	// Postgres connection parameters as libpq key/value pairs
	Postgres map[string]string
	// Path of the sqlite database file
	SQLitePath string
	// Destination table
	Table string `validate:"required"`
	// Port on which prometheus metrics are exposed
	MetricsPort uint16 `validate:"required"`
	// Number of synthetic records to generate; ignored when CSVPath is set
	Records int `validate:"gte=0"`
	// Optional CSV file to ingest instead of synthetic records
	CSVPath string

	// Pipeline settings
	BatchSize           int           `validate:"gt=0"`
	Parallelism         int           `validate:"gt=0"`
	QueueDepth          int           `validate:"gt=0"`
	MaxBatchDelay       time.Duration `validate:"gte=0"`
	CommandTimeout      time.Duration `validate:"gte=0"`
	TransactionPerBatch bool
	MaxRetries          int           `validate:"gte=0"`
	InitialRetryDelay   time.Duration `validate:"gte=0"`
	MaxRetryDelay       time.Duration `validate:"gte=0"`
	ThrottleOnHighCPU   bool
	MaxCPUPercent       float64       `validate:"gte=0,lte=100"`
	ThrottleDelay       time.Duration `validate:"gte=0"`
	SamplingInterval    time.Duration `validate:"gte=0"`
	// Completed batches between progress log lines
	ProgressInterval int `validate:"gte=0"`
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}
