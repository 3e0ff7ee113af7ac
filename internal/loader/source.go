package loader

import (
	"context"
	"encoding/csv"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ingotproject/ingot/pkg/ingest"
	"github.com/ingotproject/ingot/pkg/model"
)

// Event is the synthetic record type written by the load generator.
type Event struct {
	ID        string
	Name      string
	Value     float64
	CreatedAt time.Time
}

// EventMapper maps synthetic events to rows.
type EventMapper struct{}

func (EventMapper) Columns() []string {
	return []string{"id", "name", "value", "created_at"}
}

func (EventMapper) Map(e Event) model.Row {
	return model.Row{
		"id":         e.ID,
		"name":       e.Name,
		"value":      e.Value,
		"created_at": e.CreatedAt,
	}
}

// NewEventSource generates count synthetic events lazily.
func NewEventSource(count int) ingest.Source[Event] {
	names := []string{"signup", "login", "purchase", "refund", "logout"}
	produced := 0
	return ingest.NewFuncSource(func(ctx context.Context) (Event, bool, error) {
		if err := ctx.Err(); err != nil {
			return Event{}, false, err
		}
		if produced >= count {
			return Event{}, false, nil
		}
		produced++
		return Event{
			ID:        uuid.New().String(),
			Name:      names[rand.Intn(len(names))],
			Value:     rand.Float64() * 100,
			CreatedAt: time.Now().UTC(),
		}, true, nil
	})
}

// CSVSource reads a CSV file one record at a time. The header row supplies
// the column names.
type CSVSource struct {
	file    *os.File
	reader  *csv.Reader
	columns []string
}

// OpenCSV opens a CSV file and consumes its header.
func OpenCSV(path string) (*CSVSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "error opening %s", path)
	}
	reader := csv.NewReader(file)
	// Short records are tolerated; absent columns become NULLs.
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		_ = file.Close()
		return nil, errors.WithMessagef(err, "error reading header of %s", path)
	}
	return &CSVSource{file: file, reader: reader, columns: header}, nil
}

func (s *CSVSource) Columns() []string {
	return s.columns
}

// Map turns one CSV record into a row; short records leave trailing columns
// NULL.
func (s *CSVSource) Map(record []string) model.Row {
	row := make(model.Row, len(s.columns))
	for i, col := range s.columns {
		if i < len(record) {
			row[col] = record[i]
		}
	}
	return row
}

func (s *CSVSource) Next(ctx context.Context) ([]string, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	record, err := s.reader.Read()
	if err == io.EOF {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

func (s *CSVSource) Close() error {
	return s.file.Close()
}
