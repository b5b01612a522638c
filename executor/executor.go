// Package executor sends compiled statements to a database. It knows
// nothing about records or rendering: callers hand it SQL text and bound
// values and get back one affected-row count per statement or bind set.
package executor

import (
	"context"
	"errors"
)

// ErrNoRows is returned by QueryRow when the statement produced no row.
var ErrNoRows = errors.New("executor: no rows in result set")

// Executor is the execution layer consumed by records and batches.
type Executor interface {
	// Exec executes one statement and returns the affected-row count.
	Exec(ctx context.Context, query string, args []any) (int64, error)

	// QueryRow executes one statement and scans its first row into dest.
	QueryRow(ctx context.Context, query string, args []any, dest ...any) error

	// ExecBatch executes query once per bind set. It returns one count per
	// bind set in order, or an error for the whole batch.
	ExecBatch(ctx context.Context, query string, bindSets [][]any) ([]int64, error)

	// ExecStatic executes fully rendered statements in order and returns
	// one count per statement, or an error for the whole batch.
	ExecStatic(ctx context.Context, statements []string) ([]int64, error)
}
