package nodes

// Predications provides comparison methods to types that embed it.
// The self field must be set to the embedding node so that comparisons
// reference the correct left-hand side.
type Predications struct {
	self Node
}

func (p Predications) compare(val any, op ComparisonOp) *ComparisonNode {
	return NewComparisonNode(p.self, Param(val), op)
}

// Eq creates an equality comparison: self = val.
func (p Predications) Eq(val any) *ComparisonNode { return p.compare(val, OpEq) }

// NotEq creates an inequality comparison: self <> val.
func (p Predications) NotEq(val any) *ComparisonNode { return p.compare(val, OpNotEq) }

// Gt creates a greater-than comparison: self > val.
func (p Predications) Gt(val any) *ComparisonNode { return p.compare(val, OpGt) }

// GtEq creates a greater-than-or-equal comparison: self >= val.
func (p Predications) GtEq(val any) *ComparisonNode { return p.compare(val, OpGtEq) }

// Lt creates a less-than comparison: self < val.
func (p Predications) Lt(val any) *ComparisonNode { return p.compare(val, OpLt) }

// LtEq creates a less-than-or-equal comparison: self <= val.
func (p Predications) LtEq(val any) *ComparisonNode { return p.compare(val, OpLtEq) }

// Like creates a LIKE comparison: self LIKE val.
func (p Predications) Like(val any) *ComparisonNode { return p.compare(val, OpLike) }

// IsDistinctFrom creates an IS DISTINCT FROM comparison.
func (p Predications) IsDistinctFrom(val any) *ComparisonNode {
	return p.compare(val, OpDistinctFrom)
}

// IsNotDistinctFrom creates an IS NOT DISTINCT FROM comparison.
func (p Predications) IsNotDistinctFrom(val any) *ComparisonNode {
	return p.compare(val, OpNotDistinctFrom)
}

// IsNull creates self IS NULL.
func (p Predications) IsNull() *UnaryNode {
	n := &UnaryNode{Expr: p.self, Op: OpIsNull}
	n.self = n
	return n
}

// IsNotNull creates self IS NOT NULL.
func (p Predications) IsNotNull() *UnaryNode {
	n := &UnaryNode{Expr: p.self, Op: OpIsNotNull}
	n.self = n
	return n
}

// EqOrIsNull compares with = unless val is nil, in which case it produces
// IS NULL. Key predicates use it so that a NULL key never binds a value.
func (p Predications) EqOrIsNull(val any) Node {
	if val == nil {
		return p.IsNull()
	}
	return p.Eq(val)
}
