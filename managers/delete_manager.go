package managers

import (
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/plugins"
	"github.com/bawdo/rowbatch/visitors"
)

// DeleteManager provides a fluent API for building DELETE statements.
type DeleteManager struct {
	treeManager
	statement *nodes.DeleteStatement
}

// NewDeleteManager creates a new DeleteManager targeting the given table.
func NewDeleteManager(from *nodes.Table) *DeleteManager {
	return &DeleteManager{
		statement: &nodes.DeleteStatement{From: from},
	}
}

// Statement returns the statement under construction.
func (m *DeleteManager) Statement() *nodes.DeleteStatement { return m.statement }

// Where appends conditions to the WHERE clause.
func (m *DeleteManager) Where(conditions ...nodes.Node) *DeleteManager {
	m.statement.Wheres = append(m.statement.Wheres, conditions...)
	return m
}

// Returning sets the RETURNING clause columns.
func (m *DeleteManager) Returning(cols ...nodes.Node) *DeleteManager {
	m.statement.Returning = cols
	return m
}

// Use registers a transformer plugin.
func (m *DeleteManager) Use(t plugins.Transformer) *DeleteManager {
	m.addTransformer(t)
	return m
}

// Build applies the transformers to a copy of the statement and returns it.
func (m *DeleteManager) Build() (*nodes.DeleteStatement, error) {
	return m.transformers.Delete(m.cloneStatement())
}

// ToSQL applies transformers and generates SQL with its bound values.
func (m *DeleteManager) ToSQL(r *visitors.RenderContext) (string, []any, error) {
	stmt, err := m.Build()
	if err != nil {
		return "", nil, err
	}
	return toSQL(r, stmt)
}

func (m *DeleteManager) cloneStatement() *nodes.DeleteStatement {
	return &nodes.DeleteStatement{
		From:      m.statement.From,
		Wheres:    cloneNodes(m.statement.Wheres),
		Returning: cloneNodes(m.statement.Returning),
	}
}
