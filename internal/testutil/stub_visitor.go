// Package testutil provides shared test helpers for the rowbatch project.
package testutil

import "github.com/bawdo/rowbatch/nodes"

// StubVisitor implements nodes.Visitor with minimal return values for testing.
// Methods return meaningful short strings to aid in test assertions.
type StubVisitor struct{}

var _ nodes.Visitor = StubVisitor{}

func (sv StubVisitor) VisitTable(n *nodes.Table) string           { return n.Name }
func (sv StubVisitor) VisitTableAlias(n *nodes.TableAlias) string { return n.AliasName }
func (sv StubVisitor) VisitAttribute(n *nodes.Attribute) string   { return n.Name }
func (sv StubVisitor) VisitParam(n *nodes.ParamNode) string       { return "?" }
func (sv StubVisitor) VisitStar(n *nodes.StarNode) string         { return "*" }
func (sv StubVisitor) VisitSqlLiteral(n *nodes.SqlLiteral) string { return n.Raw }
func (sv StubVisitor) VisitComparison(n *nodes.ComparisonNode) string {
	return n.Left.Accept(sv) + "=" + n.Right.Accept(sv)
}
func (sv StubVisitor) VisitUnary(n *nodes.UnaryNode) string                 { return "unary" }
func (sv StubVisitor) VisitAnd(n *nodes.AndNode) string                     { return "and" }
func (sv StubVisitor) VisitOr(n *nodes.OrNode) string                       { return "or" }
func (sv StubVisitor) VisitNot(n *nodes.NotNode) string                     { return "not" }
func (sv StubVisitor) VisitGrouping(n *nodes.GroupingNode) string           { return "grouping" }
func (sv StubVisitor) VisitCasted(n *nodes.CastedNode) string               { return "cast" }
func (sv StubVisitor) VisitJoin(n *nodes.JoinNode) string                   { return "join" }
func (sv StubVisitor) VisitSelectCore(n *nodes.SelectCore) string           { return "select_core" }
func (sv StubVisitor) VisitInsertStatement(n *nodes.InsertStatement) string { return "insert" }
func (sv StubVisitor) VisitUpdateStatement(n *nodes.UpdateStatement) string { return "update" }
func (sv StubVisitor) VisitDeleteStatement(n *nodes.DeleteStatement) string { return "delete" }
func (sv StubVisitor) VisitAssignment(n *nodes.AssignmentNode) string       { return "assign" }
func (sv StubVisitor) VisitUpsert(n *nodes.UpsertNode) string               { return "upsert" }
func (sv StubVisitor) VisitExcluded(n *nodes.ExcludedNode) string           { return "excluded" }
func (sv StubVisitor) VisitRecordConstant(n *nodes.RecordConstantNode) string {
	return "record"
}
