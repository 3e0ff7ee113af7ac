package dialect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"events"`, Postgres().QuoteIdentifier("events"))
	assert.Equal(t, `"we""ird"`, Postgres().QuoteIdentifier(`we"ird`))
	assert.Equal(t, "`events`", MySQL().QuoteIdentifier("events"))
	assert.Equal(t, "[events]", SQLServer().QuoteIdentifier("events"))
	assert.Equal(t, "[we]]ird]", SQLServer().QuoteIdentifier("we]ird"))
	assert.Equal(t, `"events"`, SQLite().QuoteIdentifier("events"))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$1", Postgres().Placeholder(0))
	assert.Equal(t, "$10", Postgres().Placeholder(9))
	assert.Equal(t, "?", MySQL().Placeholder(0))
	assert.Equal(t, "?", MySQL().Placeholder(9))
	assert.Equal(t, "@p1", SQLServer().Placeholder(0))
	assert.Equal(t, "?3", SQLite().Placeholder(2))
}

func TestMaxParameters(t *testing.T) {
	assert.Equal(t, 65535, Postgres().MaxParameters())
	assert.Equal(t, 65535, MySQL().MaxParameters())
	assert.Equal(t, 2100, SQLServer().MaxParameters())
	assert.Equal(t, 999, SQLite().MaxParameters())
}

func TestInsertStatement_SingleRow(t *testing.T) {
	sql := InsertStatement(Postgres(), "events", []string{"id", "name"}, 1)
	assert.Equal(t, `INSERT INTO "events" ("id", "name") VALUES ($1, $2)`, sql)
}

func TestInsertStatement_MultiRow(t *testing.T) {
	sql := InsertStatement(Postgres(), "events", []string{"id", "name"}, 3)
	assert.Equal(t, `INSERT INTO "events" ("id", "name") VALUES ($1, $2), ($3, $4), ($5, $6)`, sql)
}

func TestInsertStatement_SequentialPlaceholdersRowMajor(t *testing.T) {
	sql := InsertStatement(SQLServer(), "t", []string{"a", "b", "c"}, 2)
	assert.Equal(t, "INSERT INTO [t] ([a], [b], [c]) VALUES (@p1, @p2, @p3), (@p4, @p5, @p6)", sql)
}

func TestInsertStatement_MySQLAnonymousPlaceholders(t *testing.T) {
	sql := InsertStatement(MySQL(), "t", []string{"a", "b"}, 2)
	assert.Equal(t, "INSERT INTO `t` (`a`, `b`) VALUES (?, ?), (?, ?)", sql)
	assert.Equal(t, 4, strings.Count(sql, "?"))
}
