package nodes

import "fmt"

// StructField describes one field of a structured (row or user-defined) type.
type StructField struct {
	Name     string
	TypeName string
}

// StructType describes a structured type: its qualified name and its fields
// in declaration order.
type StructType struct {
	Schema string
	Name   string
	Fields []StructField
}

// NewStructType creates a StructType with the given fields.
func NewStructType(schema, name string, fields ...StructField) *StructType {
	return &StructType{Schema: schema, Name: name, Fields: fields}
}

// Value creates a StructValue of this type. Missing trailing values are NULL.
// It panics when given more values than the type has fields.
func (t *StructType) Value(values ...any) *StructValue {
	if len(values) > len(t.Fields) {
		panic(fmt.Sprintf("nodes: %d values for structured type %s with %d fields", len(values), t.Name, len(t.Fields)))
	}
	vals := make([]any, len(t.Fields))
	copy(vals, values)
	return &StructValue{Type: t, Values: vals}
}

// StructValue is an instance of a StructType. A nil *StructValue is SQL NULL.
// A value that is itself a *StructValue is a nested structured value.
type StructValue struct {
	Type   *StructType
	Values []any
}

// ScalarCount returns the number of scalar values in v once nested
// structured values are flattened. A nil nested *StructValue renders as
// NULL and contributes nothing.
func (v *StructValue) ScalarCount() int {
	if v == nil {
		return 0
	}
	n := 0
	for _, val := range v.Values {
		if nested, ok := val.(*StructValue); ok {
			n += nested.ScalarCount()
			continue
		}
		n++
	}
	return n
}

// RecordConstantNode embeds a structured value as a constant in a
// statement. Depending on the dialect it renders as a single placeholder or
// as an inline constructor such as ROW(1, 'a').
type RecordConstantNode struct {
	Predications
	Combinable
	Value  *StructValue
	Inline bool // always render as an inline constructor, never bind
}

func (n *RecordConstantNode) Accept(v Visitor) string { return v.VisitRecordConstant(n) }

// RecordConstant creates a RecordConstantNode for val.
func RecordConstant(val *StructValue) *RecordConstantNode {
	n := &RecordConstantNode{Value: val}
	n.Predications.self = n
	n.Combinable.self = n
	return n
}

// InlineRecordConstant creates a RecordConstantNode that is always inlined.
func InlineRecordConstant(val *StructValue) *RecordConstantNode {
	n := RecordConstant(val)
	n.Inline = true
	return n
}
