package nodes

// Attribute represents a column reference bound to a table or table alias.
type Attribute struct {
	Predications
	Combinable
	Name     string
	Relation Node   // *Table or *TableAlias
	TypeName string // SQL type for coercion (e.g. "integer", "text")
}

// NewAttribute creates an Attribute with Predications and Combinable
// properly initialized to reference the new Attribute as self.
func NewAttribute(relation Node, name string) *Attribute {
	a := &Attribute{Name: name, Relation: relation}
	a.Predications.self = a
	a.Combinable.self = a
	return a
}

func (a *Attribute) Accept(v Visitor) string { return v.VisitAttribute(a) }

// Typed returns a copy of the Attribute with TypeName set.
func (a *Attribute) Typed(typeName string) *Attribute {
	c := NewAttribute(a.Relation, a.Name)
	c.TypeName = typeName
	return c
}

// Coerce wraps val using the attribute's type. If TypeName is set the
// value is cast; otherwise it becomes a plain parameter.
func (a *Attribute) Coerce(val any) Node {
	if a.TypeName != "" {
		return Cast(val, a.TypeName)
	}
	return Param(val)
}
