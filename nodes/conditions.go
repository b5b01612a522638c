package nodes

// ComparisonOp represents a binary comparison operator.
type ComparisonOp int

const (
	OpEq ComparisonOp = iota
	OpNotEq
	OpGt
	OpGtEq
	OpLt
	OpLtEq
	OpLike
	OpDistinctFrom
	OpNotDistinctFrom
)

// ComparisonNode represents a binary comparison: Left Op Right.
type ComparisonNode struct {
	Combinable
	Left  Node
	Right Node
	Op    ComparisonOp
}

func (n *ComparisonNode) Accept(v Visitor) string { return v.VisitComparison(n) }

// NewComparisonNode creates a ComparisonNode with properly initialised embedded structs.
func NewComparisonNode(left, right Node, op ComparisonOp) *ComparisonNode {
	n := &ComparisonNode{Left: left, Right: right, Op: op}
	n.self = n
	return n
}

// UnaryOp represents a unary postfix operator.
type UnaryOp int

const (
	OpIsNull UnaryOp = iota
	OpIsNotNull
)

// UnaryNode represents Expr IS NULL / IS NOT NULL.
type UnaryNode struct {
	Combinable
	Expr Node
	Op   UnaryOp
}

func (n *UnaryNode) Accept(v Visitor) string { return v.VisitUnary(n) }

// AndNode represents a logical AND between two expressions.
type AndNode struct {
	Combinable
	Left  Node
	Right Node
}

func (n *AndNode) Accept(v Visitor) string { return v.VisitAnd(n) }

// OrNode represents a logical OR between two expressions.
type OrNode struct {
	Combinable
	Left  Node
	Right Node
}

func (n *OrNode) Accept(v Visitor) string { return v.VisitOr(n) }

// NotNode represents a logical NOT of an expression.
type NotNode struct {
	Combinable
	Expr Node
}

func (n *NotNode) Accept(v Visitor) string { return v.VisitNot(n) }

// GroupingNode wraps an expression in parentheses.
type GroupingNode struct {
	Combinable
	Expr Node
}

func (n *GroupingNode) Accept(v Visitor) string { return v.VisitGrouping(n) }

// Combinable provides logical chaining methods to types that embed it.
// The self field must be set to the embedding node.
type Combinable struct {
	self Node
}

// And creates an AndNode combining self with other.
func (c Combinable) And(other Node) *AndNode {
	n := &AndNode{Left: c.self, Right: other}
	n.self = n
	return n
}

// Or creates an OrNode wrapped in a GroupingNode for correct precedence.
func (c Combinable) Or(other Node) *GroupingNode {
	or := &OrNode{Left: c.self, Right: other}
	or.self = or
	g := &GroupingNode{Expr: or}
	g.self = g
	return g
}

// Not creates a NotNode negating self.
func (c Combinable) Not() *NotNode {
	n := &NotNode{Expr: c.self}
	n.self = n
	return n
}

// All folds conditions into a left-deep AND chain. It returns nil for an
// empty list and the single condition unchanged for a list of one.
func All(conditions ...Node) Node {
	if len(conditions) == 0 {
		return nil
	}
	out := conditions[0]
	for _, c := range conditions[1:] {
		and := &AndNode{Left: out, Right: c}
		and.self = and
		out = and
	}
	return out
}
