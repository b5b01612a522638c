package managers

import "github.com/bawdo/rowbatch/nodes"

// JoinContext is returned by SelectManager.Join() and enforces that
// a join condition is provided via On() or Using() before continuing to
// build the query. This prevents incomplete JOINs in the AST.
type JoinContext struct {
	manager *SelectManager
	join    *nodes.JoinNode
}

// On sets the join condition and returns the SelectManager for
// continued method chaining.
func (jc *JoinContext) On(condition nodes.Node) *SelectManager {
	jc.join.On = condition
	jc.join.Using = nil
	return jc.manager
}

// Using joins on the named columns shared by both sides.
func (jc *JoinContext) Using(cols ...string) *SelectManager {
	jc.join.Using = cols
	jc.join.On = nil
	return jc.manager
}
