package executor

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/bawdo/rowbatch/dialect"
)

// driverName maps engine names to registered database/sql drivers.
var driverName = map[string]string{
	"pgx":        "pgx",
	"postgresql": "pgx",
	"yugabytedb": "pgx",
	"postgres":   "postgres",
	"pq":         "postgres",
	"mysql":      "mysql",
	"mariadb":    "mysql",
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
}

// Engines returns the accepted engine names.
func Engines() []string {
	return []string{"pgx", "postgres", "mysql", "sqlite"}
}

// Open opens a database/sql handle for engine and reports its dialect
// family. It does not ping; callers decide when to touch the network.
func Open(engine, dsn string) (*sql.DB, dialect.Family, error) {
	engine = strings.ToLower(strings.TrimSpace(engine))
	driver, ok := driverName[engine]
	if !ok {
		return nil, dialect.Default, fmt.Errorf("executor: no driver for engine %q", engine)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, dialect.Default, fmt.Errorf("executor: open %s: %w", engine, err)
	}
	// every connection to an in-memory SQLite database sees its own database
	if driver == "sqlite" && (strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")) {
		db.SetMaxOpenConns(1)
	}
	return db, dialect.ParseFamily(engine), nil
}
