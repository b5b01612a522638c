package executor

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgIntegrityClass      = "23"
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry   = 1062
	mysqlForeignKeyParent = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild  = 1452 // Cannot add or update a child row
	mysqlNullViolation    = 1048
	mysqlCheckViolation   = 3819
)

// IsConstraintError reports whether err resulted from any integrity
// constraint violation: unique, foreign key, not-null or check.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := postgresCode(err); ok {
		return strings.HasPrefix(code, pgIntegrityClass)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry, mysqlForeignKeyParent, mysqlForeignKeyChild,
			mysqlNullViolation, mysqlCheckViolation:
			return true
		}
		return false
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return containsAny(err.Error(),
		"violates unique constraint",
		"violates foreign key constraint",
		"violates not-null constraint",
		"violates check constraint",
		"constraint failed", // SQLite
	)
}

// IsUniqueViolation reports whether err resulted from a uniqueness or
// primary key violation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := postgresCode(err); ok {
		return code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// primary code only; the message names the constraint kind
		default:
			return false
		}
	}
	return containsAny(err.Error(),
		"violates unique constraint",
		"UNIQUE constraint failed",
		"Duplicate entry",
	)
}

// IsForeignKeyViolation reports whether err resulted from a foreign key
// violation.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := postgresCode(err); ok {
		return code == pgForeignKeyViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlForeignKeyParent || myErr.Number == mysqlForeignKeyChild
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return containsAny(err.Error(),
		"violates foreign key constraint",
		"FOREIGN KEY constraint failed",
	)
}

// postgresCode extracts the SQLSTATE from pgx and lib/pq errors.
func postgresCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	return "", false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
