package nodes

// JoinType represents the type of SQL JOIN.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
	NaturalJoin
	NaturalLeftJoin
	NaturalRightJoin
	NaturalFullJoin
)

// String returns the SQL keywords for this join type.
func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "INNER JOIN"
	case LeftOuterJoin:
		return "LEFT OUTER JOIN"
	case RightOuterJoin:
		return "RIGHT OUTER JOIN"
	case FullOuterJoin:
		return "FULL OUTER JOIN"
	case CrossJoin:
		return "CROSS JOIN"
	case NaturalJoin:
		return "NATURAL JOIN"
	case NaturalLeftJoin:
		return "NATURAL LEFT OUTER JOIN"
	case NaturalRightJoin:
		return "NATURAL RIGHT OUTER JOIN"
	case NaturalFullJoin:
		return "NATURAL FULL OUTER JOIN"
	default:
		return "JOIN"
	}
}

// Natural reports whether the join matches on same-named columns and so
// takes neither ON nor USING.
func (t JoinType) Natural() bool {
	return t >= NaturalJoin && t <= NaturalFullJoin
}

// Full reports whether the join is a full outer join.
func (t JoinType) Full() bool {
	return t == FullOuterJoin || t == NaturalFullJoin
}

// JoinNode represents a SQL JOIN clause. At most one of On and Using is
// set; natural and cross joins carry neither.
type JoinNode struct {
	Right Node     // joined table
	Type  JoinType // join type
	On    Node     // join condition
	Using []string // USING column names
}

func (n *JoinNode) Accept(v Visitor) string { return v.VisitJoin(n) }
