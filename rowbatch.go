// Package rowbatch compiles record operations into dialect-specific SQL and
// executes many of them with as few round trips as possible.
//
// This package re-exports commonly used types and functions from subpackages
// for convenience. Advanced users can import subpackages directly:
//   - github.com/bawdo/rowbatch/records (tables and change-tracking records)
//   - github.com/bawdo/rowbatch/batch (batch compilation and execution)
//   - github.com/bawdo/rowbatch/config (configuration and settings)
//   - github.com/bawdo/rowbatch/executor (database/sql and pgx executors)
//   - github.com/bawdo/rowbatch/dialect (dialect families and capabilities)
//   - github.com/bawdo/rowbatch/nodes (AST nodes and structured values)
package rowbatch

import (
	"go.uber.org/zap"

	"github.com/bawdo/rowbatch/batch"
	"github.com/bawdo/rowbatch/config"
	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/executor"
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/query"
	"github.com/bawdo/rowbatch/records"
)

// --- Dialects ---

// Family is a SQL dialect family.
type Family = dialect.Family

const (
	Default    = dialect.Default
	Postgres   = dialect.Postgres
	YugabyteDB = dialect.YugabyteDB
	MySQL      = dialect.MySQL
	SQLite     = dialect.SQLite
	Oracle     = dialect.Oracle
)

// --- Configuration ---

// Configuration is the explicit context for compiling and executing.
type Configuration = config.Configuration

// Settings are the behaviour flags of a Configuration.
type Settings = config.Settings

// NewConfig creates a Configuration for family executing through exec,
// which may be nil for compile-only use.
func NewConfig(family Family, exec executor.Executor, opts ...config.Option) *Configuration {
	return config.New(family, exec, opts...)
}

// WithSettings replaces the default settings.
func WithSettings(s Settings) config.Option {
	return config.WithSettings(s)
}

// WithLogger sets the zap logger.
func WithLogger(l *zap.Logger) config.Option {
	return config.WithLogger(l)
}

// --- Records ---

// Table describes the shape of the rows a Record holds.
type Table = records.Table

// Column describes one table column.
type Column = records.Column

// Record is one change-tracking row of a Table.
type Record = records.Record

// Action is a single-row record operation.
type Action = records.Action

const (
	Store  = records.Store
	Insert = records.Insert
	Update = records.Update
	Merge  = records.Merge
	Delete = records.Delete
)

// NewTable creates a table with the given columns.
func NewTable(name string, cols ...Column) *Table {
	return records.NewTable(name, cols...)
}

// NewRecord creates a record that does not exist in storage yet.
func NewRecord(t *Table) *Record {
	return records.NewRecord(t)
}

// Fetched creates a record as loaded from storage.
func Fetched(t *Table, values ...any) *Record {
	return records.Fetched(t, values...)
}

// --- Batches ---

// Batch is an ordered list of record operations.
type Batch = batch.Batch

// Operation is one queued record action.
type Operation = batch.Operation

// NewBatch creates a batch over cfg with the given operations.
func NewBatch(cfg *Configuration, ops ...Operation) *Batch {
	return batch.New(cfg, ops...)
}

// BatchOf creates a batch applying action to every record.
func BatchOf(cfg *Configuration, action Action, recs ...*Record) *Batch {
	return batch.Of(cfg, action, recs...)
}

// --- Compilation ---

// Compiled is a rendered statement with its bound values.
type Compiled = query.Compiled

// Compile renders and binds stmt for cfg without executing it.
func Compile(cfg *Configuration, stmt nodes.Node) (Compiled, error) {
	return query.Compile(cfg, stmt)
}

// --- Structured values ---

// StructType describes a row or user-defined type.
type StructType = nodes.StructType

// StructField is one field of a StructType.
type StructField = nodes.StructField

// StructValue is an instance of a StructType.
type StructValue = nodes.StructValue

// NewStructType creates a structured type.
func NewStructType(schema, name string, fields ...StructField) *StructType {
	return nodes.NewStructType(schema, name, fields...)
}
