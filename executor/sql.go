package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ExecQuerier is the subset of *sql.DB, *sql.Tx and *sql.Conn the SQL
// executor needs.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// SQL executes statements through database/sql.
type SQL struct {
	ExecQuerier
}

var _ Executor = (*SQL)(nil)

// NewSQL wraps a database/sql handle.
func NewSQL(db ExecQuerier) *SQL {
	return &SQL{ExecQuerier: db}
}

// Exec implements Executor.
func (s *SQL) Exec(ctx context.Context, query string, args []any) (int64, error) {
	res, err := s.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("executor: exec: %w", err)
	}
	return rowsAffected(res)
}

// QueryRow implements Executor.
func (s *SQL) QueryRow(ctx context.Context, query string, args []any, dest ...any) error {
	err := s.QueryRowContext(ctx, query, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("executor: query row: %w", err)
	}
	return nil
}

// ExecBatch prepares query once and executes it for every bind set.
func (s *SQL) ExecBatch(ctx context.Context, query string, bindSets [][]any) (counts []int64, rerr error) {
	stmt, err := s.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("executor: exec batch: prepare: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("executor: exec batch: close: %w", err)
		}
	}()

	counts = make([]int64, 0, len(bindSets))
	for i, args := range bindSets {
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return nil, fmt.Errorf("executor: exec batch: bind set %d: %w", i, err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return nil, err
		}
		counts = append(counts, n)
	}
	return counts, nil
}

// ExecStatic implements Executor.
func (s *SQL) ExecStatic(ctx context.Context, statements []string) ([]int64, error) {
	counts := make([]int64, 0, len(statements))
	for i, query := range statements {
		res, err := s.ExecContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("executor: exec static: statement %d: %w", i, err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return nil, err
		}
		counts = append(counts, n)
	}
	return counts, nil
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("executor: rows affected: %w", err)
	}
	return n, nil
}
