package records

import (
	"fmt"

	"github.com/bawdo/rowbatch/config"
	"github.com/bawdo/rowbatch/managers"
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/query"
)

// InsertQuery compiles an INSERT of the changed columns. A record without
// changed columns inserts DEFAULT VALUES.
func (r *Record) InsertQuery(cfg *config.Configuration) (query.Compiled, error) {
	q, _, err := r.insertQuery(cfg)
	return q, err
}

// UpdateQuery compiles an UPDATE of the changed columns identified by the
// primary key. A record without changed columns compiles to a no-op.
func (r *Record) UpdateQuery(cfg *config.Configuration) (query.Compiled, error) {
	if len(r.table.PrimaryKey) == 0 {
		return query.Compiled{}, fmt.Errorf("%w: %s", ErrNoPrimaryKey, r.table.Name)
	}
	if !r.IsChanged() {
		return query.NoOp(), nil
	}

	m := managers.NewUpdateManager(r.table.Node())
	for i, c := range r.table.Columns {
		if r.changed[i] {
			m.Set(nodes.NewAttribute(nil, c.Name), r.values[i])
		}
	}
	m.Where(r.keyPredicates()...)
	for _, t := range r.table.transformers {
		m.Use(t)
	}

	stmt, err := m.Build()
	if err != nil {
		return query.Compiled{}, fmt.Errorf("records: update %s: %w", r.table.Name, err)
	}
	return query.Compile(cfg, stmt)
}

// StoreQuery compiles an UPDATE for a loaded record whose key is unchanged
// and an INSERT otherwise. With UpdatablePrimaryKeys a changed key still
// updates the loaded row.
func (r *Record) StoreQuery(cfg *config.Configuration) (query.Compiled, error) {
	if r.storeUpdates(cfg) {
		return r.UpdateQuery(cfg)
	}
	return r.InsertQuery(cfg)
}

// MergeQuery compiles an INSERT of the changed columns that updates the
// changed non-key columns when the primary key already exists.
func (r *Record) MergeQuery(cfg *config.Configuration) (query.Compiled, error) {
	if len(r.table.PrimaryKey) == 0 {
		return query.Compiled{}, fmt.Errorf("%w: %s", ErrNoPrimaryKey, r.table.Name)
	}

	m := r.insertManager()
	keys := make([]*nodes.Attribute, len(r.table.PrimaryKey))
	for i, k := range r.table.PrimaryKey {
		keys[i] = nodes.NewAttribute(nil, k)
	}
	var updates []*nodes.Attribute
	for i, c := range r.table.Columns {
		if r.changed[i] && !r.table.IsKey(c.Name) {
			updates = append(updates, nodes.NewAttribute(nil, c.Name))
		}
	}
	if len(updates) == 0 {
		m.OnConflict(keys...).DoNothing()
	} else {
		m.OnConflict(keys...).DoUpdateExcluded(updates...)
	}

	stmt, err := m.Build()
	if err != nil {
		return query.Compiled{}, fmt.Errorf("records: merge %s: %w", r.table.Name, err)
	}
	return query.Compile(cfg, stmt)
}

// DeleteQuery compiles a DELETE identified by the primary key.
func (r *Record) DeleteQuery(cfg *config.Configuration) (query.Compiled, error) {
	if len(r.table.PrimaryKey) == 0 {
		return query.Compiled{}, fmt.Errorf("%w: %s", ErrNoPrimaryKey, r.table.Name)
	}

	m := managers.NewDeleteManager(r.table.Node()).Where(r.keyPredicates()...)
	for _, t := range r.table.transformers {
		m.Use(t)
	}

	stmt, err := m.Build()
	if err != nil {
		return query.Compiled{}, fmt.Errorf("records: delete %s: %w", r.table.Name, err)
	}
	return query.Compile(cfg, stmt)
}

// SelectQuery compiles a SELECT of every column of the row r identifies by
// its primary key. Table transformers apply, so a soft-deleted row is not
// found.
func (r *Record) SelectQuery(cfg *config.Configuration) (query.Compiled, error) {
	if len(r.table.PrimaryKey) == 0 {
		return query.Compiled{}, fmt.Errorf("%w: %s", ErrNoPrimaryKey, r.table.Name)
	}

	tbl := r.table.Node()
	cols := make([]nodes.Node, len(r.table.Columns))
	for i, c := range r.table.Columns {
		cols[i] = tbl.Col(c.Name)
	}
	m := managers.NewSelectManager(tbl).Select(cols...).Where(r.keyPredicates()...)
	for _, t := range r.table.transformers {
		m.Use(t)
	}

	core, err := m.Build()
	if err != nil {
		return query.Compiled{}, fmt.Errorf("records: select %s: %w", r.table.Name, err)
	}
	return query.Compile(cfg, core)
}

// Query compiles the statement for action.
func (r *Record) Query(cfg *config.Configuration, action Action) (query.Compiled, error) {
	switch action {
	case Store:
		return r.StoreQuery(cfg)
	case Insert:
		return r.InsertQuery(cfg)
	case Update:
		return r.UpdateQuery(cfg)
	case Merge:
		return r.MergeQuery(cfg)
	case Delete:
		return r.DeleteQuery(cfg)
	default:
		return query.Compiled{}, fmt.Errorf("records: unknown action %v", action)
	}
}

func (r *Record) storeUpdates(cfg *config.Configuration) bool {
	if !r.fetched || len(r.table.PrimaryKey) == 0 {
		return false
	}
	return cfg.Settings.UpdatablePrimaryKeys || !r.keyChanged()
}

func (r *Record) insertManager() *managers.InsertManager {
	m := managers.NewInsertManager(r.table.Node())
	var cols []*nodes.Attribute
	var vals []any
	for i, c := range r.table.Columns {
		if r.changed[i] {
			cols = append(cols, nodes.NewAttribute(nil, c.Name))
			vals = append(vals, r.values[i])
		}
	}
	if len(cols) > 0 {
		m.Columns(cols...).Values(vals...)
	}
	for _, t := range r.table.transformers {
		m.Use(t)
	}
	return m
}

// insertQuery also returns the column positions the statement returns.
func (r *Record) insertQuery(cfg *config.Configuration) (query.Compiled, []int, error) {
	m := r.insertManager()

	returning := r.returning(cfg)
	if len(returning) > 0 {
		cols := make([]nodes.Node, len(returning))
		for i, idx := range returning {
			cols[i] = nodes.NewAttribute(nil, r.table.Columns[idx].Name)
		}
		m.Returning(cols...)
	}

	stmt, err := m.Build()
	if err != nil {
		return query.Compiled{}, nil, fmt.Errorf("records: insert %s: %w", r.table.Name, err)
	}
	q, err := query.Compile(cfg, stmt)
	if err != nil {
		return query.Compiled{}, nil, err
	}
	return q, returning, nil
}

// returning lists the columns an insert fetches back. Families without
// RETURNING fetch nothing.
func (r *Record) returning(cfg *config.Configuration) []int {
	if !cfg.Capabilities().Returning {
		return nil
	}
	if cfg.Settings.ReturnAllOnUpdatableRecord {
		all := make([]int, len(r.table.Columns))
		for i := range all {
			all[i] = i
		}
		return all
	}
	if cfg.Settings.ReturnIdentityOnUpdatableRecord {
		for i, c := range r.table.Columns {
			if c.Identity {
				return []int{i}
			}
		}
	}
	return nil
}

func (r *Record) keyPredicates() []nodes.Node {
	preds := make([]nodes.Node, 0, len(r.table.PrimaryKey))
	for _, k := range r.table.PrimaryKey {
		i, _ := r.table.Index(k)
		preds = append(preds, r.table.Col(k).EqOrIsNull(r.keyValue(i)))
	}
	return preds
}
