// Package nodes defines the AST node types used to represent SQL statements
// before they are rendered or bound.
package nodes

// Node is the interface that all AST nodes implement.
type Node interface {
	Accept(visitor Visitor) string
}

// Visitor defines the interface for walking the AST. The render context
// returns SQL text from each method; the bind context returns "" and
// collects bound values instead. Both must visit children in the same order.
type Visitor interface {
	VisitTable(node *Table) string
	VisitTableAlias(node *TableAlias) string
	VisitAttribute(node *Attribute) string
	VisitParam(node *ParamNode) string
	VisitStar(node *StarNode) string
	VisitSqlLiteral(node *SqlLiteral) string
	VisitComparison(node *ComparisonNode) string
	VisitUnary(node *UnaryNode) string
	VisitAnd(node *AndNode) string
	VisitOr(node *OrNode) string
	VisitNot(node *NotNode) string
	VisitGrouping(node *GroupingNode) string
	VisitCasted(node *CastedNode) string
	VisitJoin(node *JoinNode) string
	VisitSelectCore(node *SelectCore) string
	VisitInsertStatement(node *InsertStatement) string
	VisitUpdateStatement(node *UpdateStatement) string
	VisitDeleteStatement(node *DeleteStatement) string
	VisitAssignment(node *AssignmentNode) string
	VisitUpsert(node *UpsertNode) string
	VisitExcluded(node *ExcludedNode) string
	VisitRecordConstant(node *RecordConstantNode) string
}

// AssignmentNode represents a column = value pair in SET clauses.
// The column is always rendered unqualified.
type AssignmentNode struct {
	Left  *Attribute
	Right Node
}

func (n *AssignmentNode) Accept(v Visitor) string { return v.VisitAssignment(n) }

// Assign builds an assignment of val to col. Raw values are wrapped as
// parameters.
func Assign(col *Attribute, val any) *AssignmentNode {
	return &AssignmentNode{Left: col, Right: Param(val)}
}

// InsertStatement represents INSERT INTO ... VALUES.
type InsertStatement struct {
	Into      *Table
	Columns   []*Attribute // column list
	Values    [][]Node     // rows of values (multi-row)
	Returning []Node       // RETURNING columns
	Upsert    *UpsertNode  // ON CONFLICT / ON DUPLICATE KEY clause
}

func (n *InsertStatement) Accept(v Visitor) string { return v.VisitInsertStatement(n) }

// DefaultValues reports whether the statement inserts a row made only of
// column defaults.
func (n *InsertStatement) DefaultValues() bool {
	return len(n.Columns) == 0 && len(n.Values) == 0
}

// UpdateStatement represents UPDATE ... SET ... WHERE.
type UpdateStatement struct {
	Table       *Table
	Assignments []*AssignmentNode
	Wheres      []Node
	Returning   []Node
}

func (n *UpdateStatement) Accept(v Visitor) string { return v.VisitUpdateStatement(n) }

// DeleteStatement represents DELETE FROM ... WHERE.
type DeleteStatement struct {
	From      *Table
	Wheres    []Node
	Returning []Node
}

func (n *DeleteStatement) Accept(v Visitor) string { return v.VisitDeleteStatement(n) }

// UpsertAction specifies what happens to a conflicting row.
type UpsertAction int

const (
	DoNothing UpsertAction = iota
	DoUpdate
)

// UpsertNode is the insert-or-update clause of an INSERT. Its rendering
// (ON CONFLICT vs ON DUPLICATE KEY) depends on the dialect.
type UpsertNode struct {
	Columns     []*Attribute      // conflict target
	Action      UpsertAction      // DoNothing or DoUpdate
	Assignments []*AssignmentNode // SET for DoUpdate
}

func (n *UpsertNode) Accept(v Visitor) string { return v.VisitUpsert(n) }

// ExcludedNode refers to the value proposed for Column by the row that
// triggered an upsert conflict.
type ExcludedNode struct {
	Column *Attribute
}

func (n *ExcludedNode) Accept(v Visitor) string { return v.VisitExcluded(n) }

// Excluded creates an ExcludedNode for col.
func Excluded(col *Attribute) *ExcludedNode {
	return &ExcludedNode{Column: col}
}
