package db

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Dialect names a supported SQL driver.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "mysql":
		return MySQL, nil
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite3", "sqlite", "":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// Builder returns a squirrel builder with the dialect's placeholder format.
func (d Dialect) Builder() sq.StatementBuilderType {
	if d == Postgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// ReturningID reports whether inserts must use RETURNING id instead of
// sql.Result.LastInsertId.
func (d Dialect) ReturningID() bool {
	return d == Postgres
}
