// Package dialect contains the engine-specific pieces of SQL generation:
// identifier quoting, parameter placeholder syntax and the per-command
// parameter ceiling. Dialects are pure and stateless so they can be tested
// without a database connection.
package dialect

import "strings"

// Dialect captures the syntactic differences between database engines.
type Dialect interface {
	// Name identifies the engine, e.g. "postgres".
	Name() string
	// QuoteIdentifier quotes a table or column name.
	QuoteIdentifier(identifier string) string
	// Placeholder returns the parameter placeholder for the given zero-based
	// parameter index.
	Placeholder(index int) string
	// MaxParameters is the maximum number of bound parameters a single
	// command may carry.
	MaxParameters() int
}

// InsertStatement renders a multi-row parameterized INSERT for the given
// dialect. Placeholders are sequential in row-major order starting at
// parameter index zero. The caller is responsible for ensuring that
// rowCount*len(columns) does not exceed the dialect's parameter ceiling.
func InsertStatement(d Dialect, table string, columns []string, rowCount int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdentifier(c)
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(d.QuoteIdentifier(table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(") VALUES ")

	param := 0
	for row := 0; row < rowCount; row++ {
		if row > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for col := range columns {
			if col > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(d.Placeholder(param))
			param++
		}
		sb.WriteString(")")
	}
	return sb.String()
}
