package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxConn is the subset of *pgx.Conn, *pgxpool.Pool and pgx.Tx the pgx
// executor needs.
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Pgx executes statements through pgx. Batches are pipelined in a single
// round trip with pgx.Batch.
type Pgx struct {
	conn PgxConn
}

var _ Executor = (*Pgx)(nil)

// NewPgx wraps a pgx connection, pool or transaction.
func NewPgx(conn PgxConn) *Pgx {
	return &Pgx{conn: conn}
}

// Exec implements Executor.
func (p *Pgx) Exec(ctx context.Context, query string, args []any) (int64, error) {
	tag, err := p.conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("executor: exec: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryRow implements Executor.
func (p *Pgx) QueryRow(ctx context.Context, query string, args []any, dest ...any) error {
	err := p.conn.QueryRow(ctx, query, args...).Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("executor: query row: %w", err)
	}
	return nil
}

// ExecBatch queues query once per bind set and sends them as one batch.
func (p *Pgx) ExecBatch(ctx context.Context, query string, bindSets [][]any) ([]int64, error) {
	b := &pgx.Batch{}
	for _, args := range bindSets {
		b.Queue(query, args...)
	}
	counts, err := p.send(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("executor: exec batch: %w", err)
	}
	return counts, nil
}

// ExecStatic implements Executor.
func (p *Pgx) ExecStatic(ctx context.Context, statements []string) ([]int64, error) {
	b := &pgx.Batch{}
	for _, query := range statements {
		b.Queue(query)
	}
	counts, err := p.send(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("executor: exec static: %w", err)
	}
	return counts, nil
}

func (p *Pgx) send(ctx context.Context, b *pgx.Batch) (counts []int64, rerr error) {
	if b.Len() == 0 {
		return []int64{}, nil
	}
	br := p.conn.SendBatch(ctx, b)
	defer func() {
		rerr = errors.Join(rerr, br.Close())
		if rerr != nil {
			counts = nil
		}
	}()

	counts = make([]int64, 0, b.Len())
	for i := 0; i < b.Len(); i++ {
		tag, err := br.Exec()
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		counts = append(counts, tag.RowsAffected())
	}
	return counts, nil
}
