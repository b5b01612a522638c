// Package managers provides high-level fluent APIs for building SQL ASTs.
// Records build their single-row statements through the Insert, Update and
// Delete managers, so transformers registered on a records table apply to
// every statement a batch compiles.
package managers

import (
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/plugins"
	"github.com/bawdo/rowbatch/visitors"
)

// SelectManager provides a fluent API for building SELECT queries.
// It wraps a SelectCore and applies transformer plugins before SQL generation.
type SelectManager struct {
	treeManager
	core *nodes.SelectCore
}

// NewSelectManager creates a new SelectManager with the given table as FROM.
// If from is nil, the FROM clause is left unset.
func NewSelectManager(from nodes.Node) *SelectManager {
	return &SelectManager{
		core: &nodes.SelectCore{From: from},
	}
}

// Core returns the select core under construction.
func (m *SelectManager) Core() *nodes.SelectCore { return m.core }

// Select sets the projection list, replacing any existing projections.
// Pass column attributes, stars, literals, or any Node.
func (m *SelectManager) Select(projections ...nodes.Node) *SelectManager {
	m.core.Projections = projections
	return m
}

// Distinct enables or disables the DISTINCT modifier on the SELECT clause.
func (m *SelectManager) Distinct(on ...bool) *SelectManager {
	m.core.Distinct = len(on) == 0 || on[0]
	return m
}

// Where appends one or more conditions to the WHERE clause.
// Multiple calls to Where are combined with AND at the visitor level.
func (m *SelectManager) Where(conditions ...nodes.Node) *SelectManager {
	m.core.Wheres = append(m.core.Wheres, conditions...)
	return m
}

// From sets or changes the FROM source.
func (m *SelectManager) From(table nodes.Node) *SelectManager {
	m.core.From = table
	return m
}

// Join adds a join to the query and returns a JoinContext for specifying
// the ON condition. The default join type is InnerJoin.
func (m *SelectManager) Join(table nodes.Node, joinTypes ...nodes.JoinType) *JoinContext {
	jt := nodes.InnerJoin
	if len(joinTypes) > 0 {
		jt = joinTypes[0]
	}
	return &JoinContext{manager: m, join: m.addJoin(table, jt)}
}

// OuterJoin is a convenience for Join with LeftOuterJoin type.
func (m *SelectManager) OuterJoin(table nodes.Node) *JoinContext {
	return m.Join(table, nodes.LeftOuterJoin)
}

// CrossJoin adds a CROSS JOIN, which takes no condition.
func (m *SelectManager) CrossJoin(table nodes.Node) *SelectManager {
	m.addJoin(table, nodes.CrossJoin)
	return m
}

// NaturalJoin adds a NATURAL JOIN.
func (m *SelectManager) NaturalJoin(table nodes.Node) *SelectManager {
	m.addJoin(table, nodes.NaturalJoin)
	return m
}

// NaturalLeftJoin adds a NATURAL LEFT OUTER JOIN.
func (m *SelectManager) NaturalLeftJoin(table nodes.Node) *SelectManager {
	m.addJoin(table, nodes.NaturalLeftJoin)
	return m
}

// NaturalFullJoin adds a NATURAL FULL OUTER JOIN.
func (m *SelectManager) NaturalFullJoin(table nodes.Node) *SelectManager {
	m.addJoin(table, nodes.NaturalFullJoin)
	return m
}

func (m *SelectManager) addJoin(table nodes.Node, jt nodes.JoinType) *nodes.JoinNode {
	join := &nodes.JoinNode{Right: table, Type: jt}
	m.core.Joins = append(m.core.Joins, join)
	return join
}

// Use registers a transformer plugin to be applied before SQL generation.
func (m *SelectManager) Use(t plugins.Transformer) *SelectManager {
	m.addTransformer(t)
	return m
}

// Build applies all registered transformers to a copy of the SelectCore.
func (m *SelectManager) Build() (*nodes.SelectCore, error) {
	return m.transformers.Select(m.CloneCore())
}

// ToSQL applies all registered transformers and generates SQL with its
// bound values.
func (m *SelectManager) ToSQL(r *visitors.RenderContext) (string, []any, error) {
	core, err := m.Build()
	if err != nil {
		return "", nil, err
	}
	return toSQL(r, core)
}

// Accept implements the Node interface so that a SelectManager can be
// used as a subquery (e.g., as the right side of a JoinNode).
// It delegates to the underlying SelectCore.
func (m *SelectManager) Accept(v nodes.Visitor) string {
	return m.core.Accept(v)
}

// As wraps the query's SelectCore in a TableAlias, enabling it to be
// used as a named subquery in FROM or JOIN clauses.
func (m *SelectManager) As(name string) *nodes.TableAlias {
	return &nodes.TableAlias{Relation: m.core, AliasName: name}
}

// CloneCore returns a shallow copy of the SelectCore so transformers
// don't modify the original.
func (m *SelectManager) CloneCore() *nodes.SelectCore {
	var joins []*nodes.JoinNode
	if m.core.Joins != nil {
		joins = make([]*nodes.JoinNode, len(m.core.Joins))
		copy(joins, m.core.Joins)
	}
	return &nodes.SelectCore{
		From:        m.core.From,
		Projections: cloneNodes(m.core.Projections),
		Wheres:      cloneNodes(m.core.Wheres),
		Joins:       joins,
		Distinct:    m.core.Distinct,
	}
}
