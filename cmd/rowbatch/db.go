package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/executor"
)

const pingTimeout = 5 * time.Second

type schemaCache struct {
	tables  []string
	columns map[string][]columnInfo // table name -> columns in ordinal order
}

// columnInfo is one introspected column.
type columnInfo struct {
	name     string
	typeName string
	key      bool
}

type dbConn struct {
	db     *sql.DB
	dsn    string
	engine string
	family dialect.Family
	exec   executor.Executor
	schema schemaCache
}

func connect(engine, dsn string, logger *zap.Logger) (*dbConn, error) {
	db, family, err := executor.Open(engine, dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	conn := &dbConn{
		db:     db,
		dsn:    dsn,
		engine: strings.ToLower(strings.TrimSpace(engine)),
		family: family,
		exec:   executor.NewLogging(executor.NewSQL(db), logger),
	}
	conn.schema.columns = make(map[string][]columnInfo)
	if err := conn.loadSchema(); err != nil {
		// Non-fatal: introspection only feeds completion and bare 'table <name>'.
		fmt.Fprintf(os.Stderr, "  Note: schema introspection failed: %v\n", err)
	}
	return conn, nil
}

func (c *dbConn) close() error {
	return c.db.Close()
}

// execRaw runs a statement outside of any batch, for DDL in scripts.
func (c *dbConn) execRaw(ctx context.Context, stmt string) (int64, error) {
	return c.exec.Exec(ctx, stmt, nil)
}

func (c *dbConn) loadSchema() error {
	var query string
	switch c.family {
	case dialect.Postgres, dialect.YugabyteDB:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name"
	case dialect.MySQL:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
	case dialect.SQLite:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	default:
		return fmt.Errorf("unsupported engine: %s", c.engine)
	}
	tables, err := c.queryStrings(query)
	if err != nil {
		return err
	}
	c.schema.tables = tables
	return nil
}

func (c *dbConn) schemaTables() []string {
	return c.schema.tables
}

// schemaColumns introspects the columns of table, caching the result.
// Errors yield nil.
func (c *dbConn) schemaColumns(table string) []columnInfo {
	if cols, ok := c.schema.columns[table]; ok {
		return cols
	}
	var query string
	switch c.family {
	case dialect.Postgres, dialect.YugabyteDB:
		query = `SELECT c.column_name, c.data_type,
			EXISTS (SELECT 1 FROM information_schema.key_column_usage k
				JOIN information_schema.table_constraints tc ON tc.constraint_name = k.constraint_name
				WHERE tc.constraint_type = 'PRIMARY KEY' AND k.table_name = c.table_name AND k.column_name = c.column_name)
			FROM information_schema.columns c
			WHERE c.table_schema = 'public' AND c.table_name = $1 ORDER BY c.ordinal_position`
	case dialect.MySQL:
		query = "SELECT column_name, data_type, column_key = 'PRI' FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position"
	case dialect.SQLite:
		query = "SELECT name, type, pk > 0 FROM pragma_table_info(?) ORDER BY cid"
	default:
		return nil
	}
	rows, err := c.db.Query(query, table)
	if err != nil {
		return nil
	}
	defer func() { _ = rows.Close() }()

	var cols []columnInfo
	for rows.Next() {
		var ci columnInfo
		if err := rows.Scan(&ci.name, &ci.typeName, &ci.key); err != nil {
			return nil
		}
		ci.typeName = strings.ToLower(ci.typeName)
		cols = append(cols, ci)
	}
	if rows.Err() != nil {
		return nil
	}
	c.schema.columns[table] = cols
	return cols
}

func (c *dbConn) queryStrings(query string, params ...any) ([]string, error) {
	rows, err := c.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var result []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func sanitizeDSN(dsn string) string {
	// Try parsing as URL (postgres style).
	u, err := url.Parse(dsn)
	if err == nil && u.Scheme != "" && u.User != nil {
		if _, hasPass := u.User.Password(); hasPass {
			// Rebuild manually to avoid percent-encoding the mask.
			masked := u.Scheme + "://" + u.User.Username() + ":****@" + u.Host + u.Path
			if u.RawQuery != "" {
				masked += "?" + u.RawQuery
			}
			return masked
		}
		return dsn
	}

	// Try MySQL-style DSN: user:pass@tcp(host)/db
	if atIdx := strings.Index(dsn, "@"); atIdx > 0 {
		userPass := dsn[:atIdx]
		if colonIdx := strings.Index(userPass, ":"); colonIdx >= 0 {
			return userPass[:colonIdx+1] + "****" + dsn[atIdx:]
		}
	}

	return dsn
}
