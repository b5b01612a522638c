package managers

import (
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/plugins"
	"github.com/bawdo/rowbatch/visitors"
)

// InsertManager provides a fluent API for building INSERT statements.
type InsertManager struct {
	treeManager
	statement *nodes.InsertStatement
}

// NewInsertManager creates a new InsertManager targeting the given table.
func NewInsertManager(into *nodes.Table) *InsertManager {
	return &InsertManager{
		statement: &nodes.InsertStatement{Into: into},
	}
}

// Statement returns the statement under construction.
func (m *InsertManager) Statement() *nodes.InsertStatement { return m.statement }

// Columns sets the column list for the INSERT statement.
func (m *InsertManager) Columns(cols ...*nodes.Attribute) *InsertManager {
	m.statement.Columns = cols
	return m
}

// Values appends a row of values to the INSERT statement.
// Each call to Values adds one row. Raw Go values are wrapped with
// nodes.Param; structured values become record constants.
func (m *InsertManager) Values(vals ...any) *InsertManager {
	row := make([]nodes.Node, len(vals))
	for i, v := range vals {
		row[i] = nodes.Param(v)
	}
	m.statement.Values = append(m.statement.Values, row)
	return m
}

// Returning sets the RETURNING clause columns.
func (m *InsertManager) Returning(cols ...nodes.Node) *InsertManager {
	m.statement.Returning = cols
	return m
}

// OnConflict begins an upsert clause targeting the given columns.
// Returns an OnConflictContext for specifying the action.
func (m *InsertManager) OnConflict(cols ...*nodes.Attribute) *OnConflictContext {
	up := &nodes.UpsertNode{Columns: cols}
	m.statement.Upsert = up
	return &OnConflictContext{manager: m, node: up}
}

// Use registers a transformer plugin.
func (m *InsertManager) Use(t plugins.Transformer) *InsertManager {
	m.addTransformer(t)
	return m
}

// Build applies the transformers to a copy of the statement and returns it.
func (m *InsertManager) Build() (*nodes.InsertStatement, error) {
	return m.transformers.Insert(m.cloneStatement())
}

// ToSQL applies transformers and generates SQL with its bound values.
func (m *InsertManager) ToSQL(r *visitors.RenderContext) (string, []any, error) {
	stmt, err := m.Build()
	if err != nil {
		return "", nil, err
	}
	return toSQL(r, stmt)
}

func (m *InsertManager) cloneStatement() *nodes.InsertStatement {
	var columns []*nodes.Attribute
	if m.statement.Columns != nil {
		columns = make([]*nodes.Attribute, len(m.statement.Columns))
		copy(columns, m.statement.Columns)
	}

	var values [][]nodes.Node
	if m.statement.Values != nil {
		values = make([][]nodes.Node, len(m.statement.Values))
		for i, row := range m.statement.Values {
			values[i] = cloneNodes(row)
		}
	}

	var upsert *nodes.UpsertNode
	if up := m.statement.Upsert; up != nil {
		upsert = &nodes.UpsertNode{
			Columns:     up.Columns,
			Action:      up.Action,
			Assignments: cloneAssignments(up.Assignments),
		}
	}

	return &nodes.InsertStatement{
		Into:      m.statement.Into,
		Columns:   columns,
		Values:    values,
		Returning: cloneNodes(m.statement.Returning),
		Upsert:    upsert,
	}
}

// OnConflictContext guides upsert clause construction.
type OnConflictContext struct {
	manager *InsertManager
	node    *nodes.UpsertNode
}

// DoNothing sets the action to DO NOTHING and returns the InsertManager.
func (c *OnConflictContext) DoNothing() *InsertManager {
	c.node.Action = nodes.DoNothing
	c.node.Assignments = nil
	return c.manager
}

// DoUpdate sets the action to DO UPDATE with the given assignments.
func (c *OnConflictContext) DoUpdate(assignments ...*nodes.AssignmentNode) *InsertManager {
	c.node.Action = nodes.DoUpdate
	c.node.Assignments = assignments
	return c.manager
}

// DoUpdateExcluded updates each column from the proposed row.
func (c *OnConflictContext) DoUpdateExcluded(cols ...*nodes.Attribute) *InsertManager {
	assigns := make([]*nodes.AssignmentNode, len(cols))
	for i, col := range cols {
		assigns[i] = nodes.Assign(col, nodes.Excluded(col))
	}
	return c.DoUpdate(assigns...)
}
