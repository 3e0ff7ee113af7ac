package dialect

import "strings"

const mysqlMaxParameters = 65535

type mysql struct{}

// MySQL returns the MySQL/MariaDB dialect.
func MySQL() Dialect {
	return mysql{}
}

func (mysql) Name() string { return "mysql" }

func (mysql) QuoteIdentifier(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

func (mysql) Placeholder(int) string { return "?" }

func (mysql) MaxParameters() int { return mysqlMaxParameters }
