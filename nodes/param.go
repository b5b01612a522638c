package nodes

// ParamNode carries a Go value into the statement. In the render context's
// indexed or named mode it becomes a placeholder and a bound value; in
// inlined mode, or when Inline is set, it is written as a SQL literal.
type ParamNode struct {
	Predications
	Combinable
	Value    any
	Name     string // used by named parameter mode, optional
	TypeName string // SQL type hint, optional
	Inline   bool
}

func (n *ParamNode) Accept(v Visitor) string { return v.VisitParam(n) }

func newParam(val any) *ParamNode {
	n := &ParamNode{Value: val}
	n.Predications.self = n
	n.Combinable.self = n
	return n
}

// Param wraps a raw Go value into a ParamNode. If val already implements
// Node, it is returned as-is; a *StructValue becomes a RecordConstantNode.
func Param(val any) Node {
	switch v := val.(type) {
	case Node:
		return v
	case *StructValue:
		return RecordConstant(v)
	}
	return newParam(val)
}

// NamedParam creates a ParamNode with a parameter name.
func NamedParam(name string, val any) *ParamNode {
	n := newParam(val)
	n.Name = name
	return n
}

// Inline creates a ParamNode that is always rendered as a literal and never
// bound.
func Inline(val any) *ParamNode {
	n := newParam(val)
	n.Inline = true
	return n
}

// SqlLiteral represents a raw SQL fragment injected verbatim into the query.
//
// SECURITY: The Raw field is rendered directly into SQL output without escaping
// or parameterization. Never pass user-controlled input to NewSqlLiteral.
type SqlLiteral struct {
	Predications
	Combinable
	Raw string
}

func NewSqlLiteral(raw string) *SqlLiteral {
	n := &SqlLiteral{Raw: raw}
	n.Predications.self = n
	n.Combinable.self = n
	return n
}

func (n *SqlLiteral) Accept(v Visitor) string { return v.VisitSqlLiteral(n) }

// StarNode represents a SQL star (*) or qualified star (table.*).
type StarNode struct {
	Table *Table // nil for unqualified *
}

func (n *StarNode) Accept(v Visitor) string { return v.VisitStar(n) }

// Star returns an unqualified StarNode representing SQL *.
func Star() *StarNode {
	return &StarNode{}
}

// CastedNode wraps an expression in CAST(expr AS TypeName).
type CastedNode struct {
	Predications
	Combinable
	Expr     Node
	TypeName string
}

func (n *CastedNode) Accept(v Visitor) string { return v.VisitCasted(n) }

// Cast creates a CastedNode. Raw values are wrapped as parameters.
func Cast(val any, typeName string) *CastedNode {
	n := &CastedNode{Expr: Param(val), TypeName: typeName}
	n.Predications.self = n
	n.Combinable.self = n
	return n
}
