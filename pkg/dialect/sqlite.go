package dialect

import (
	"fmt"
	"strings"
)

// SQLITE_MAX_VARIABLE_NUMBER defaults to 999 on builds predating 3.32 and
// many distributions still ship that limit, so we assume the conservative
// value.
const sqliteMaxParameters = 999

type sqlite struct{}

// SQLite returns the SQLite dialect.
func SQLite() Dialect {
	return sqlite{}
}

func (sqlite) Name() string { return "sqlite" }

func (sqlite) QuoteIdentifier(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (sqlite) Placeholder(index int) string {
	return fmt.Sprintf("?%d", index+1)
}

func (sqlite) MaxParameters() int { return sqliteMaxParameters }
