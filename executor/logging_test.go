package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubExecutor struct {
	err error
}

func (s stubExecutor) Exec(context.Context, string, []any) (int64, error) { return 1, s.err }
func (s stubExecutor) QueryRow(context.Context, string, []any, ...any) error {
	return s.err
}
func (s stubExecutor) ExecBatch(_ context.Context, _ string, sets [][]any) ([]int64, error) {
	return make([]int64, len(sets)), s.err
}
func (s stubExecutor) ExecStatic(_ context.Context, stmts []string) ([]int64, error) {
	return make([]int64, len(stmts)), s.err
}

func TestLoggingDebugLogsStatements(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	ex := NewLogging(stubExecutor{}, zap.New(core))

	_, err := ex.ExecBatch(context.Background(), "INSERT", [][]any{{1}, {2}})
	require.NoError(t, err)

	entries := logs.FilterMessage("exec batch").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "executor", entries[0].LoggerName)
	assert.Equal(t, int64(2), entries[0].ContextMap()["bind_sets"])
	assert.Equal(t, "INSERT", entries[0].ContextMap()["sql"])
}

func TestLoggingErrorLogsFailures(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	boom := errors.New("boom")
	ex := NewLogging(stubExecutor{err: boom}, zap.New(core))

	_, err := ex.ExecStatic(context.Background(), []string{"DELETE FROM t"})
	assert.ErrorIs(t, err, boom)

	entries := logs.FilterMessage("exec static failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestLoggingNilLogger(t *testing.T) {
	t.Parallel()
	ex := NewLogging(stubExecutor{}, nil)
	n, err := ex.Exec(context.Background(), "SELECT 1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
