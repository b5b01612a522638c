// Package plugins defines the Transformer interface for AST middleware.
// Transformers run on every statement a manager builds, including the
// statements records compile for single-row actions and batches, so a
// transformer changes the SQL text of every bucket it touches.
package plugins

import "github.com/bawdo/rowbatch/nodes"

// Transformer is the interface that AST transformation plugins implement.
// Plugins embed BaseTransformer and override only the methods they need.
// A transformer receives a private copy of the statement and may modify it
// in place.
type Transformer interface {
	TransformSelect(core *nodes.SelectCore) (*nodes.SelectCore, error)
	TransformInsert(stmt *nodes.InsertStatement) (*nodes.InsertStatement, error)
	TransformUpdate(stmt *nodes.UpdateStatement) (*nodes.UpdateStatement, error)
	TransformDelete(stmt *nodes.DeleteStatement) (*nodes.DeleteStatement, error)
}

// BaseTransformer provides no-op defaults for all Transformer methods.
type BaseTransformer struct{}

func (BaseTransformer) TransformSelect(c *nodes.SelectCore) (*nodes.SelectCore, error) {
	return c, nil
}
func (BaseTransformer) TransformInsert(s *nodes.InsertStatement) (*nodes.InsertStatement, error) {
	return s, nil
}
func (BaseTransformer) TransformUpdate(s *nodes.UpdateStatement) (*nodes.UpdateStatement, error) {
	return s, nil
}
func (BaseTransformer) TransformDelete(s *nodes.DeleteStatement) (*nodes.DeleteStatement, error) {
	return s, nil
}

// Pipeline is an ordered list of transformers applied one after another.
type Pipeline []Transformer

// Select runs every transformer's TransformSelect in order.
func (p Pipeline) Select(c *nodes.SelectCore) (*nodes.SelectCore, error) {
	var err error
	for _, t := range p {
		if c, err = t.TransformSelect(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Insert runs every transformer's TransformInsert in order.
func (p Pipeline) Insert(s *nodes.InsertStatement) (*nodes.InsertStatement, error) {
	var err error
	for _, t := range p {
		if s, err = t.TransformInsert(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Update runs every transformer's TransformUpdate in order.
func (p Pipeline) Update(s *nodes.UpdateStatement) (*nodes.UpdateStatement, error) {
	var err error
	for _, t := range p {
		if s, err = t.TransformUpdate(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Delete runs every transformer's TransformDelete in order.
func (p Pipeline) Delete(s *nodes.DeleteStatement) (*nodes.DeleteStatement, error) {
	var err error
	for _, t := range p {
		if s, err = t.TransformDelete(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}
