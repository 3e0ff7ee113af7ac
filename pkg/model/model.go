package model

// Row is a mapping from column name to value for a single record. Column
// order is not carried by the row itself; it is supplied by the RowMapper
// that produced it and is stable for the duration of a run. A missing or nil
// value is written as SQL NULL.
type Row map[string]any

// Batch is a bounded group of rows processed and accounted as one unit.
// Batches are created by the pipeline producer and owned exclusively by a
// single consumer from dequeue until completion.
type Batch struct {
	// Number is the 1-based position of this batch in production order.
	Number int64
	Rows   []Row
}

// RowCount returns the number of rows in the batch.
func (b *Batch) RowCount() int {
	return len(b.Rows)
}
