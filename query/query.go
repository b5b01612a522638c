// Package query compiles an AST into SQL text and bound values without
// touching storage.
package query

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bawdo/rowbatch/config"
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/visitors"
)

// ErrBindMismatch is returned when binding produced a different number of
// values than rendering produced placeholders.
var ErrBindMismatch = errors.New("query: bound values do not match placeholders")

// Compiled is a rendered statement ready for execution.
type Compiled struct {
	SQL  string
	Args []any

	// Executable is false for operations that have nothing to send, such as
	// an UPDATE without changed columns.
	Executable bool
}

// NoOp returns a non-executable Compiled.
func NoOp() Compiled {
	return Compiled{}
}

// Compile renders stmt for the configuration's family and parameter mode
// and binds its values. Inlined statements carry no Args.
func Compile(cfg *config.Configuration, stmt nodes.Node) (Compiled, error) {
	r := visitors.NewRenderContext(cfg.Family, visitors.WithParamMode(cfg.Settings.ParamType))
	sql, err := r.Render(stmt)
	if err != nil {
		return Compiled{}, fmt.Errorf("query: render: %w", err)
	}

	var args []any
	if cfg.Settings.ParamType != visitors.Inlined {
		args, err = visitors.NewBindContext(cfg.Family).Bind(stmt)
		if err != nil {
			return Compiled{}, fmt.Errorf("query: bind: %w", err)
		}
	}
	if len(args) != r.Placeholders() {
		return Compiled{}, fmt.Errorf("%w: %d placeholders, %d values", ErrBindMismatch, r.Placeholders(), len(args))
	}

	if cfg.Settings.ExecuteLogging {
		cfg.Log().Debug("compiled statement",
			zap.Stringer("dialect", cfg.Family),
			zap.String("sql", sql),
			zap.Int("args", len(args)))
	}
	return Compiled{SQL: sql, Args: args, Executable: true}, nil
}

// String returns the SQL text.
func (c Compiled) String() string {
	return c.SQL
}
