package executor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Logging decorates an Executor with zap logging. Statements are logged at
// debug level; failures at error level.
type Logging struct {
	next   Executor
	logger *zap.Logger
}

var _ Executor = (*Logging)(nil)

// NewLogging wraps next. A nil logger disables logging.
func NewLogging(next Executor, logger *zap.Logger) *Logging {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logging{next: next, logger: logger.Named("executor")}
}

// Exec implements Executor.
func (l *Logging) Exec(ctx context.Context, query string, args []any) (int64, error) {
	start := time.Now()
	n, err := l.next.Exec(ctx, query, args)
	l.log("exec", err, start,
		zap.String("sql", query),
		zap.Int("args", len(args)),
		zap.Int64("rows", n))
	return n, err
}

// QueryRow implements Executor.
func (l *Logging) QueryRow(ctx context.Context, query string, args []any, dest ...any) error {
	start := time.Now()
	err := l.next.QueryRow(ctx, query, args, dest...)
	l.log("query row", err, start,
		zap.String("sql", query),
		zap.Int("args", len(args)))
	return err
}

// ExecBatch implements Executor.
func (l *Logging) ExecBatch(ctx context.Context, query string, bindSets [][]any) ([]int64, error) {
	start := time.Now()
	counts, err := l.next.ExecBatch(ctx, query, bindSets)
	l.log("exec batch", err, start,
		zap.String("sql", query),
		zap.Int("bind_sets", len(bindSets)))
	return counts, err
}

// ExecStatic implements Executor.
func (l *Logging) ExecStatic(ctx context.Context, statements []string) ([]int64, error) {
	start := time.Now()
	counts, err := l.next.ExecStatic(ctx, statements)
	l.log("exec static", err, start,
		zap.Strings("sql", statements))
	return counts, err
}

func (l *Logging) log(op string, err error, start time.Time, fields ...zap.Field) {
	fields = append(fields, zap.Duration("took", time.Since(start)))
	if err != nil {
		l.logger.Error(op+" failed", append(fields, zap.Error(err))...)
		return
	}
	l.logger.Debug(op, fields...)
}
