package visitors

import (
	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/nodes"
)

// BindContext collects the values for the placeholders a RenderContext of
// the same family emits. Children are visited in exactly the order the
// render context writes them.
type BindContext struct {
	family dialect.Family
	caps   dialect.Capabilities
	values []any
	err    error
}

var _ nodes.Visitor = (*BindContext)(nil)

// NewBindContext creates a BindContext for family.
func NewBindContext(family dialect.Family) *BindContext {
	return &BindContext{family: family, caps: dialect.Lookup(family)}
}

// Bind walks node and returns its bound values in placeholder order.
func (b *BindContext) Bind(node nodes.Node) ([]any, error) {
	b.values = nil
	b.err = nil
	node.Accept(b)
	if b.err != nil {
		return nil, b.err
	}
	return b.values, nil
}

func (b *BindContext) fail(err error) string {
	if b.err == nil {
		b.err = err
	}
	return ""
}

func (b *BindContext) visit(items ...nodes.Node) {
	for _, n := range items {
		if n != nil {
			n.Accept(b)
		}
	}
}

func (b *BindContext) VisitTable(*nodes.Table) string       { return "" }
func (b *BindContext) VisitAttribute(*nodes.Attribute) string { return "" }
func (b *BindContext) VisitStar(*nodes.StarNode) string     { return "" }
func (b *BindContext) VisitSqlLiteral(*nodes.SqlLiteral) string {
	return ""
}

func (b *BindContext) VisitTableAlias(n *nodes.TableAlias) string {
	b.visit(n.Relation)
	return ""
}

func (b *BindContext) VisitParam(n *nodes.ParamNode) string {
	if !n.Inline {
		b.values = append(b.values, n.Value)
	}
	return ""
}

func (b *BindContext) VisitRecordConstant(n *nodes.RecordConstantNode) string {
	if n.Inline || n.Value == nil {
		return ""
	}
	switch b.caps.StructuredBinding {
	case dialect.StructuredFlattened:
		b.flatten(n.Value)
	case dialect.StructuredNative:
		if b.caps.CastStructuredConstant {
			b.flatten(n.Value)
		} else {
			b.values = append(b.values, n.Value)
		}
	default:
		return b.fail(dialect.Unsupported(b.family, "structured value binding",
			"render the constant inline"))
	}
	return ""
}

// flatten appends the scalar fields of v depth-first in declaration order.
// Nested NULL values render as NULL and contribute nothing.
func (b *BindContext) flatten(v *nodes.StructValue) {
	for _, val := range v.Values {
		if nested, ok := val.(*nodes.StructValue); ok {
			if nested != nil {
				b.flatten(nested)
			}
			continue
		}
		b.values = append(b.values, val)
	}
}

func (b *BindContext) VisitComparison(n *nodes.ComparisonNode) string {
	b.visit(n.Left, n.Right)
	return ""
}

func (b *BindContext) VisitUnary(n *nodes.UnaryNode) string {
	b.visit(n.Expr)
	return ""
}

func (b *BindContext) VisitAnd(n *nodes.AndNode) string {
	b.visit(n.Left, n.Right)
	return ""
}

func (b *BindContext) VisitOr(n *nodes.OrNode) string {
	b.visit(n.Left, n.Right)
	return ""
}

func (b *BindContext) VisitNot(n *nodes.NotNode) string {
	b.visit(n.Expr)
	return ""
}

func (b *BindContext) VisitGrouping(n *nodes.GroupingNode) string {
	b.visit(n.Expr)
	return ""
}

func (b *BindContext) VisitCasted(n *nodes.CastedNode) string {
	b.visit(n.Expr)
	return ""
}

func (b *BindContext) VisitJoin(n *nodes.JoinNode) string {
	b.visit(n.Right)
	if !n.Type.Natural() && n.Type != nodes.CrossJoin {
		b.visit(n.On)
	}
	return ""
}

func (b *BindContext) VisitSelectCore(n *nodes.SelectCore) string {
	b.visit(n.Projections...)
	b.visit(n.From)
	for _, j := range n.Joins {
		b.visit(j)
	}
	b.visit(n.Wheres...)
	return ""
}

func (b *BindContext) VisitInsertStatement(n *nodes.InsertStatement) string {
	b.visit(n.Into)
	if !n.DefaultValues() {
		for _, row := range n.Values {
			b.visit(row...)
		}
	}
	if n.Upsert != nil {
		b.visit(n.Upsert)
	}
	b.visit(n.Returning...)
	return ""
}

func (b *BindContext) VisitUpdateStatement(n *nodes.UpdateStatement) string {
	b.visit(n.Table)
	for _, a := range n.Assignments {
		b.visit(a)
	}
	b.visit(n.Wheres...)
	b.visit(n.Returning...)
	return ""
}

func (b *BindContext) VisitDeleteStatement(n *nodes.DeleteStatement) string {
	b.visit(n.From)
	b.visit(n.Wheres...)
	b.visit(n.Returning...)
	return ""
}

func (b *BindContext) VisitAssignment(n *nodes.AssignmentNode) string {
	b.visit(n.Right)
	return ""
}

func (b *BindContext) VisitUpsert(n *nodes.UpsertNode) string {
	if n.Action == nodes.DoNothing {
		return ""
	}
	for _, a := range n.Assignments {
		b.visit(a)
	}
	return ""
}

func (b *BindContext) VisitExcluded(*nodes.ExcludedNode) string { return "" }
