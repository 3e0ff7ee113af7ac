// Package statement turns batches of rows into parameterized SQL commands
// sized to fit the target engine's parameter ceiling.
package statement

import (
	"fmt"

	"github.com/ingotproject/ingot/pkg/dialect"
	"github.com/ingotproject/ingot/pkg/ingoterrors"
	"github.com/ingotproject/ingot/pkg/model"
)

// Statement is one rendered, parameterized write command covering part or
// all of a batch.
type Statement struct {
	SQL  string
	Args []any
}

// ParamCount returns the number of bound parameters.
func (s Statement) ParamCount() int {
	return len(s.Args)
}

// MaxRowsPerStatement computes how many rows fit into a single command for
// the given dialect and column count. It is always at least 1; callers must
// have checked that one row fits at all.
func MaxRowsPerStatement(d dialect.Dialect, columnCount int) int {
	rows := d.MaxParameters() / columnCount
	if rows < 1 {
		return 1
	}
	return rows
}

// BuildStatements renders the rows of a batch as one or more multi-row
// INSERT commands, none of which binds more parameters than the dialect
// allows. Rows are chunked in order, values are bound in row-major order and
// a missing or nil mapped value binds as SQL NULL.
func BuildStatements(d dialect.Dialect, table string, columns []string, rows []model.Row) ([]Statement, error) {
	if len(columns) == 0 {
		return nil, &ingoterrors.ErrInvalidArgument{
			Name:    "columns",
			Value:   columns,
			Message: "at least one column is required",
		}
	}
	if len(columns) > d.MaxParameters() {
		return nil, &ingoterrors.ErrInvalidArgument{
			Name:  "columns",
			Value: len(columns),
			Message: fmt.Sprintf(
				"a single row binds more parameters than the %d allowed by %s", d.MaxParameters(), d.Name()),
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	maxRows := MaxRowsPerStatement(d, len(columns))
	statements := make([]Statement, 0, (len(rows)+maxRows-1)/maxRows)
	for start := 0; start < len(rows); start += maxRows {
		end := start + maxRows
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		args := make([]any, 0, len(chunk)*len(columns))
		for _, row := range chunk {
			for _, col := range columns {
				value, ok := row[col]
				if !ok {
					args = append(args, nil)
				} else {
					args = append(args, value)
				}
			}
		}

		statements = append(statements, Statement{
			SQL:  dialect.InsertStatement(d, table, columns, len(chunk)),
			Args: args,
		})
	}
	return statements, nil
}
