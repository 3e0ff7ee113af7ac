package dialect

import (
	"fmt"
	"strings"
)

// Postgres binds at most 65535 parameters per command; the wire protocol
// carries the parameter count as an int16.
const postgresMaxParameters = 65535

type postgres struct{}

// Postgres returns the PostgreSQL dialect.
func Postgres() Dialect {
	return postgres{}
}

func (postgres) Name() string { return "postgres" }

func (postgres) QuoteIdentifier(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (postgres) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

func (postgres) MaxParameters() int { return postgresMaxParameters }
