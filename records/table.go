// Package records models table rows that know how to compile and execute
// their own INSERT, UPDATE, MERGE and DELETE statements. Every statement a
// record compiles takes the configuration as an explicit argument; the
// attached configuration is only consulted by the single-row executing
// methods.
package records

import (
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/plugins"
)

// Column describes one table column.
type Column struct {
	Name     string
	TypeName string // SQL type, informational
	Identity bool   // generated by the database on insert
}

// Table describes the shape of the rows a Record holds.
type Table struct {
	Schema     string
	Name       string
	Columns    []Column
	PrimaryKey []string

	index        map[string]int
	transformers []plugins.Transformer
}

// NewTable creates a table with the given columns and no primary key.
func NewTable(name string, cols ...Column) *Table {
	t := &Table{Name: name, Columns: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		t.index[c.Name] = i
	}
	return t
}

// InSchema sets the schema the table lives in.
func (t *Table) InSchema(schema string) *Table {
	t.Schema = schema
	return t
}

// Key sets the primary key columns. Unknown names are ignored.
func (t *Table) Key(cols ...string) *Table {
	t.PrimaryKey = t.PrimaryKey[:0]
	for _, c := range cols {
		if _, ok := t.index[c]; ok {
			t.PrimaryKey = append(t.PrimaryKey, c)
		}
	}
	return t
}

// Use registers a transformer applied to every statement built for this
// table.
func (t *Table) Use(tr plugins.Transformer) *Table {
	t.transformers = append(t.transformers, tr)
	return t
}

// Node returns the AST node for the table.
func (t *Table) Node() *nodes.Table {
	if t.Schema != "" {
		return nodes.NewSchemaTable(t.Schema, t.Name)
	}
	return nodes.NewTable(t.Name)
}

// Col returns a qualified column reference.
func (t *Table) Col(name string) *nodes.Attribute {
	return t.Node().Col(name)
}

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Identity returns the identity column, if the table has one.
func (t *Table) Identity() (Column, bool) {
	for _, c := range t.Columns {
		if c.Identity {
			return c, true
		}
	}
	return Column{}, false
}

// IsKey reports whether name is part of the primary key.
func (t *Table) IsKey(name string) bool {
	for _, k := range t.PrimaryKey {
		if k == name {
			return true
		}
	}
	return false
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
