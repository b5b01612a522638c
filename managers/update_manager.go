package managers

import (
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/plugins"
	"github.com/bawdo/rowbatch/visitors"
)

// UpdateManager provides a fluent API for building UPDATE statements.
type UpdateManager struct {
	treeManager
	statement *nodes.UpdateStatement
}

// NewUpdateManager creates a new UpdateManager targeting the given table.
func NewUpdateManager(table *nodes.Table) *UpdateManager {
	return &UpdateManager{
		statement: &nodes.UpdateStatement{Table: table},
	}
}

// Statement returns the statement under construction.
func (m *UpdateManager) Statement() *nodes.UpdateStatement { return m.statement }

// Set adds a column assignment to the SET clause.
// val can be a raw Go value or a Node.
func (m *UpdateManager) Set(col *nodes.Attribute, val any) *UpdateManager {
	m.statement.Assignments = append(m.statement.Assignments, nodes.Assign(col, val))
	return m
}

// Where appends conditions to the WHERE clause.
func (m *UpdateManager) Where(conditions ...nodes.Node) *UpdateManager {
	m.statement.Wheres = append(m.statement.Wheres, conditions...)
	return m
}

// Returning sets the RETURNING clause columns.
func (m *UpdateManager) Returning(cols ...nodes.Node) *UpdateManager {
	m.statement.Returning = cols
	return m
}

// Use registers a transformer plugin.
func (m *UpdateManager) Use(t plugins.Transformer) *UpdateManager {
	m.addTransformer(t)
	return m
}

// Build applies the transformers to a copy of the statement and returns it.
func (m *UpdateManager) Build() (*nodes.UpdateStatement, error) {
	return m.transformers.Update(m.cloneStatement())
}

// ToSQL applies transformers and generates SQL with its bound values.
func (m *UpdateManager) ToSQL(r *visitors.RenderContext) (string, []any, error) {
	stmt, err := m.Build()
	if err != nil {
		return "", nil, err
	}
	return toSQL(r, stmt)
}

func (m *UpdateManager) cloneStatement() *nodes.UpdateStatement {
	return &nodes.UpdateStatement{
		Table:       m.statement.Table,
		Assignments: cloneAssignments(m.statement.Assignments),
		Wheres:      cloneNodes(m.statement.Wheres),
		Returning:   cloneNodes(m.statement.Returning),
	}
}
