package dialect

import (
	"fmt"
	"strings"
)

// SQL Server rejects commands with more than 2100 parameters.
const sqlServerMaxParameters = 2100

type sqlServer struct{}

// SQLServer returns the Microsoft SQL Server dialect.
func SQLServer() Dialect {
	return sqlServer{}
}

func (sqlServer) Name() string { return "sqlserver" }

func (sqlServer) QuoteIdentifier(identifier string) string {
	return "[" + strings.ReplaceAll(identifier, "]", "]]") + "]"
}

func (sqlServer) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}

func (sqlServer) MaxParameters() int { return sqlServerMaxParameters }
