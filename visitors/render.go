// Package visitors provides the render and bind contexts that walk the AST.
// A RenderContext produces dialect-specific SQL text; a BindContext walks
// the same tree in the same order and collects the values for the
// placeholders the render emitted.
package visitors

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/internal/quoting"
	"github.com/bawdo/rowbatch/nodes"
)

// ErrInlineType is returned when a value of an unsupported Go type has to
// be rendered as a SQL literal.
var ErrInlineType = errors.New("visitors: unsupported literal type")

// ErrInlineValue is returned for values that have no SQL literal form,
// such as NaN or an infinite float.
var ErrInlineValue = errors.New("visitors: value has no SQL literal")

// ErrTypeName is returned for type names that could smuggle SQL.
var ErrTypeName = errors.New("visitors: invalid SQL type name")

// Operator SQL strings for ComparisonOp values.
var comparisonOpSQL = [...]string{
	nodes.OpEq:              "=",
	nodes.OpNotEq:           "<>",
	nodes.OpGt:              ">",
	nodes.OpGtEq:            ">=",
	nodes.OpLt:              "<",
	nodes.OpLtEq:            "<=",
	nodes.OpLike:            "LIKE",
	nodes.OpDistinctFrom:    "IS DISTINCT FROM",
	nodes.OpNotDistinctFrom: "IS NOT DISTINCT FROM",
}

// Layouts for inlined time.Time values.
const (
	timestampLayout      = "2006-01-02 15:04:05.999999"
	zonedTimestampLayout = "2006-01-02 15:04:05.999999 -07:00"
)

// Option configures a RenderContext at construction time.
type Option func(*RenderContext)

// WithParams renders values as indexed placeholders. This is the default.
func WithParams() Option {
	return func(r *RenderContext) { r.paramType = Indexed }
}

// WithNamedParams renders values as :name placeholders.
func WithNamedParams() Option {
	return func(r *RenderContext) { r.paramType = Named }
}

// WithoutParams inlines every value as an escaped literal.
//
// ⚠️ WARNING: inlined values bypass driver-side parameter handling. Use it
// for statement logging, static batches and debugging.
func WithoutParams() Option {
	return func(r *RenderContext) { r.paramType = Inlined }
}

// WithParamMode sets the parameter mode explicitly.
func WithParamMode(p ParamType) Option {
	return func(r *RenderContext) { r.paramType = p }
}

// RenderContext renders SQL text for a dialect family. It is not safe for
// concurrent use; create one per statement or per goroutine.
type RenderContext struct {
	family    dialect.Family
	caps      dialect.Capabilities
	paramType ParamType

	// index is the number of placeholders emitted by the current render.
	index int

	// err is the first error raised during the current render.
	err error
}

var _ nodes.Visitor = (*RenderContext)(nil)

// NewRenderContext creates a RenderContext for family.
func NewRenderContext(family dialect.Family, opts ...Option) *RenderContext {
	r := &RenderContext{
		family: family,
		caps:   dialect.Lookup(family),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Family returns the dialect family being rendered.
func (r *RenderContext) Family() dialect.Family { return r.family }

// Capabilities returns the capability entry for the family.
func (r *RenderContext) Capabilities() dialect.Capabilities { return r.caps }

// ParamType returns the current parameter mode.
func (r *RenderContext) ParamType() ParamType { return r.paramType }

// SetParamType switches the parameter mode and returns the previous one so
// the caller can restore it.
func (r *RenderContext) SetParamType(p ParamType) ParamType {
	prev := r.paramType
	r.paramType = p
	return prev
}

// WithParamType runs fn with the parameter mode set to p and restores the
// previous mode afterwards, including when fn panics.
func (r *RenderContext) WithParamType(p ParamType, fn func()) {
	prev := r.SetParamType(p)
	defer r.SetParamType(prev)
	fn()
}

// Render renders node and returns the SQL text together with the first
// error raised while walking the tree.
func (r *RenderContext) Render(node nodes.Node) (string, error) {
	r.index = 0
	r.err = nil
	sql := node.Accept(r)
	if r.err != nil {
		return "", r.err
	}
	return sql, nil
}

// Placeholders reports how many placeholders the last Render emitted.
func (r *RenderContext) Placeholders() int { return r.index }

// fail records err if no earlier error exists and returns an empty fragment.
func (r *RenderContext) fail(err error) string {
	if r.err == nil {
		r.err = err
	}
	return ""
}

func (r *RenderContext) unsupported(feature string, hint ...string) string {
	return r.fail(dialect.Unsupported(r.family, feature, hint...))
}

// --- Identifiers ---

func (r *RenderContext) quote(name string) string {
	return r.caps.QuoteIdent(name)
}

func (r *RenderContext) qualified(schema, name string) string {
	if schema == "" {
		return r.quote(name)
	}
	return r.quote(schema) + "." + r.quote(name)
}

func (r *RenderContext) VisitTable(n *nodes.Table) string {
	return r.qualified(n.Schema, n.Name)
}

func (r *RenderContext) VisitTableAlias(n *nodes.TableAlias) string {
	if tbl, ok := n.Relation.(*nodes.Table); ok {
		return r.VisitTable(tbl) + " AS " + r.quote(n.AliasName)
	}
	return "(" + n.Relation.Accept(r) + ") AS " + r.quote(n.AliasName)
}

func (r *RenderContext) VisitAttribute(n *nodes.Attribute) string {
	switch rel := n.Relation.(type) {
	case nil:
		return r.quote(n.Name)
	case *nodes.Table:
		return r.qualified(rel.Schema, rel.Name) + "." + r.quote(n.Name)
	default:
		return r.quote(nodes.RelationName(rel)) + "." + r.quote(n.Name)
	}
}

func (r *RenderContext) VisitStar(n *nodes.StarNode) string {
	if n.Table != nil {
		return r.VisitTable(n.Table) + ".*"
	}
	return "*"
}

func (r *RenderContext) VisitSqlLiteral(n *nodes.SqlLiteral) string {
	return n.Raw
}

// --- Values ---

func (r *RenderContext) VisitParam(n *nodes.ParamNode) string {
	if n.Inline || r.paramType == Inlined {
		return r.literal(n.Value)
	}
	return r.placeholder(n.Name)
}

// placeholder emits the next placeholder in the current mode.
func (r *RenderContext) placeholder(name string) string {
	r.index++
	if r.paramType == Named {
		if name == "" {
			name = strconv.Itoa(r.index)
		}
		return ":" + name
	}
	return r.caps.PlaceholderAt(r.index)
}

// literal renders val as an inline SQL literal.
func (r *RenderContext) literal(val any) string {
	switch v := val.(type) {
	case nil:
		return "NULL"
	case string:
		return quoting.String(v, r.caps.BackslashEscapes)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return r.float(float64(v), 32)
	case float64:
		return r.float(v, 64)
	case time.Time:
		return r.timestamp(v)
	case []byte:
		if v == nil {
			return "NULL"
		}
		return r.caps.Binary(v)
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return r.fail(fmt.Errorf("visitors: inline %T: %w", val, err))
		}
		return r.literal(dv)
	default:
		return r.fail(fmt.Errorf("%w %T", ErrInlineType, val))
	}
}

func (r *RenderContext) float(f float64, bitSize int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return r.fail(fmt.Errorf("%w: %v", ErrInlineValue, f))
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}

// timestamp inlines t without losing its instant: either with its offset or
// converted to UTC.
func (r *RenderContext) timestamp(t time.Time) string {
	switch r.caps.TimestampLiteral {
	case dialect.TimestampZoned:
		return "TIMESTAMP WITH TIME ZONE '" + t.Format(zonedTimestampLayout) + "'"
	case dialect.TimestampText:
		return "'" + t.UTC().Format(timestampLayout) + "'"
	default:
		return "TIMESTAMP '" + t.UTC().Format(timestampLayout) + "'"
	}
}

// --- Structured constants ---

func (r *RenderContext) VisitRecordConstant(n *nodes.RecordConstantNode) string {
	if !n.Inline {
		return r.recordConstant(n.Value)
	}
	var out string
	r.WithParamType(Inlined, func() { out = r.recordConstant(n.Value) })
	return out
}

func (r *RenderContext) recordConstant(v *nodes.StructValue) string {
	if v == nil {
		return "NULL"
	}
	if !r.caps.InlineStructured() && r.paramType != Inlined {
		return r.placeholder("")
	}
	if v.Type == nil {
		return r.fail(errors.New("visitors: structured value without a type"))
	}

	fields := make([]string, len(v.Values))
	for i, val := range v.Values {
		if nested, ok := val.(*nodes.StructValue); ok {
			fields[i] = r.recordConstant(nested)
			continue
		}
		if r.paramType == Inlined {
			fields[i] = r.literal(val)
		} else {
			fields[i] = r.placeholder("")
		}
	}

	typeName := r.qualified(v.Type.Schema, v.Type.Name)
	ctor := typeName
	if r.caps.RowConstructor {
		ctor = "ROW"
	}
	out := ctor + "(" + strings.Join(fields, ", ") + ")"
	if r.caps.CastStructuredConstant {
		out = "CAST(" + out + " AS " + typeName + ")"
	}
	return out
}

// --- Conditions ---

func (r *RenderContext) VisitComparison(n *nodes.ComparisonNode) string {
	left := n.Left.Accept(r)
	right := n.Right.Accept(r)
	return left + " " + comparisonOpSQL[n.Op] + " " + right
}

func (r *RenderContext) VisitUnary(n *nodes.UnaryNode) string {
	expr := n.Expr.Accept(r)
	switch n.Op {
	case nodes.OpIsNull:
		return expr + " IS NULL"
	case nodes.OpIsNotNull:
		return expr + " IS NOT NULL"
	default:
		return expr
	}
}

func (r *RenderContext) VisitAnd(n *nodes.AndNode) string {
	left := n.Left.Accept(r)
	right := n.Right.Accept(r)
	return left + " AND " + right
}

func (r *RenderContext) VisitOr(n *nodes.OrNode) string {
	left := n.Left.Accept(r)
	right := n.Right.Accept(r)
	return left + " OR " + right
}

func (r *RenderContext) VisitNot(n *nodes.NotNode) string {
	return "NOT (" + n.Expr.Accept(r) + ")"
}

func (r *RenderContext) VisitGrouping(n *nodes.GroupingNode) string {
	return "(" + n.Expr.Accept(r) + ")"
}

func (r *RenderContext) VisitCasted(n *nodes.CastedNode) string {
	expr := n.Expr.Accept(r)
	if err := validateSQLTypeName(n.TypeName); err != nil {
		return r.fail(err)
	}
	return "CAST(" + expr + " AS " + n.TypeName + ")"
}

// validateSQLTypeName rejects type names containing characters outside
// letters, digits, spaces, parentheses, commas and underscores.
func validateSQLTypeName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrTypeName)
	}
	for _, c := range name {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') &&
			(c < '0' || c > '9') && c != ' ' && c != '(' &&
			c != ')' && c != ',' && c != '_' {
			return fmt.Errorf("%w: character %q in %q", ErrTypeName, string(c), name)
		}
	}
	return nil
}

// --- Joins and SELECT ---

func (r *RenderContext) VisitJoin(n *nodes.JoinNode) string {
	if n.Type.Natural() && !r.caps.NaturalJoins {
		return r.unsupported(n.Type.String())
	}
	if n.Type.Full() && !r.caps.FullOuterJoins {
		return r.unsupported(n.Type.String(), "emulate with a UNION of LEFT and RIGHT joins")
	}

	rightSQL := n.Right.Accept(r)
	if _, ok := n.Right.(*nodes.SelectCore); ok {
		rightSQL = "(" + rightSQL + ")"
	}

	var sb strings.Builder
	sb.WriteString(n.Type.String())
	sb.WriteString(" ")
	sb.WriteString(rightSQL)

	switch {
	case n.Type.Natural() || n.Type == nodes.CrossJoin:
	case n.On != nil:
		sb.WriteString(" ON ")
		sb.WriteString(n.On.Accept(r))
	case len(n.Using) > 0:
		sb.WriteString(" USING (")
		r.writeIdents(&sb, n.Using)
		sb.WriteString(")")
	}
	return sb.String()
}

func (r *RenderContext) VisitSelectCore(n *nodes.SelectCore) string {
	var sb strings.Builder

	sb.WriteString("SELECT ")
	if n.Distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(n.Projections) == 0 {
		sb.WriteString("*")
	} else {
		r.writeList(&sb, n.Projections, ", ")
	}
	if n.From != nil {
		sb.WriteString(" FROM ")
		sb.WriteString(n.From.Accept(r))
	}
	for _, j := range n.Joins {
		sb.WriteString(" ")
		sb.WriteString(j.Accept(r))
	}
	r.writeClause(&sb, " WHERE ", n.Wheres, " AND ")

	return sb.String()
}

// --- DML ---

func (r *RenderContext) VisitInsertStatement(n *nodes.InsertStatement) string {
	var sb strings.Builder

	ignore := n.Upsert != nil && n.Upsert.Action == nodes.DoNothing &&
		r.caps.Upsert == dialect.UpsertOnDuplicateKey
	if ignore {
		sb.WriteString("INSERT IGNORE INTO ")
	} else {
		sb.WriteString("INSERT INTO ")
	}
	sb.WriteString(n.Into.Accept(r))

	switch {
	case n.DefaultValues() && r.caps.EmptyInsert == dialect.EmptyInsertEmptyLists:
		sb.WriteString(" () VALUES ()")
	case n.DefaultValues():
		sb.WriteString(" DEFAULT VALUES")
	default:
		if len(n.Columns) > 0 {
			sb.WriteString(" (")
			for i, c := range n.Columns {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(r.quote(c.Name))
			}
			sb.WriteString(")")
		}
		sb.WriteString(" VALUES ")
		for i, row := range n.Values {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(")
			r.writeList(&sb, row, ", ")
			sb.WriteString(")")
		}
	}

	if n.Upsert != nil && !ignore {
		sb.WriteString(" ")
		sb.WriteString(n.Upsert.Accept(r))
	}
	r.writeReturning(&sb, n.Returning)

	return sb.String()
}

func (r *RenderContext) VisitUpdateStatement(n *nodes.UpdateStatement) string {
	var sb strings.Builder

	sb.WriteString("UPDATE ")
	sb.WriteString(n.Table.Accept(r))
	if len(n.Assignments) > 0 {
		sb.WriteString(" SET ")
		r.writeAssignments(&sb, n.Assignments)
	}
	r.writeClause(&sb, " WHERE ", n.Wheres, " AND ")
	r.writeReturning(&sb, n.Returning)

	return sb.String()
}

func (r *RenderContext) VisitDeleteStatement(n *nodes.DeleteStatement) string {
	var sb strings.Builder

	sb.WriteString("DELETE FROM ")
	sb.WriteString(n.From.Accept(r))
	r.writeClause(&sb, " WHERE ", n.Wheres, " AND ")
	r.writeReturning(&sb, n.Returning)

	return sb.String()
}

func (r *RenderContext) VisitAssignment(n *nodes.AssignmentNode) string {
	return r.quote(n.Left.Name) + " = " + n.Right.Accept(r)
}

func (r *RenderContext) VisitUpsert(n *nodes.UpsertNode) string {
	var sb strings.Builder

	switch r.caps.Upsert {
	case dialect.UpsertOnConflict:
		sb.WriteString("ON CONFLICT")
		if len(n.Columns) > 0 {
			sb.WriteString(" (")
			for i, c := range n.Columns {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(r.quote(c.Name))
			}
			sb.WriteString(")")
		}
		if n.Action == nodes.DoNothing || len(n.Assignments) == 0 {
			sb.WriteString(" DO NOTHING")
			return sb.String()
		}
		sb.WriteString(" DO UPDATE SET ")
	case dialect.UpsertOnDuplicateKey:
		if len(n.Assignments) == 0 {
			return r.unsupported("upsert without assignments", "use INSERT IGNORE")
		}
		sb.WriteString("ON DUPLICATE KEY UPDATE ")
	default:
		return r.unsupported("upsert")
	}
	r.writeAssignments(&sb, n.Assignments)
	return sb.String()
}

func (r *RenderContext) VisitExcluded(n *nodes.ExcludedNode) string {
	switch r.caps.Upsert {
	case dialect.UpsertOnConflict:
		return "EXCLUDED." + r.quote(n.Column.Name)
	case dialect.UpsertOnDuplicateKey:
		return "VALUES(" + r.quote(n.Column.Name) + ")"
	default:
		return r.unsupported("upsert")
	}
}

// --- Helpers ---

// writeClause writes "keyword item1 sep item2 sep ..." if items is non-empty.
func (r *RenderContext) writeClause(sb *strings.Builder, keyword string, items []nodes.Node, sep string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(keyword)
	r.writeList(sb, items, sep)
}

func (r *RenderContext) writeList(sb *strings.Builder, items []nodes.Node, sep string) {
	for i, item := range items {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(item.Accept(r))
	}
}

func (r *RenderContext) writeAssignments(sb *strings.Builder, assigns []*nodes.AssignmentNode) {
	for i, a := range assigns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Accept(r))
	}
}

func (r *RenderContext) writeIdents(sb *strings.Builder, names []string) {
	for i, name := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.quote(name))
	}
}

func (r *RenderContext) writeReturning(sb *strings.Builder, returning []nodes.Node) {
	if len(returning) == 0 {
		return
	}
	if !r.caps.Returning {
		r.unsupported("RETURNING")
		return
	}
	sb.WriteString(" RETURNING ")
	r.writeList(sb, returning, ", ")
}
