// Package softdelete provides a Transformer that keeps soft-deleted rows out
// of reach. It appends "column IS NULL" guards to SELECT, UPDATE and DELETE
// statements so that reads skip soft-deleted rows and record updates or
// deletes never touch them.
//
// By default it guards the "deleted_at" column of every table. Both the
// column name and the set of tables can be customised via options.
//
// # Basic usage
//
//	sd := softdelete.New()
//	users := records.NewTable("users", ...).Key("id").Use(sd)
//	// UPDATE "users" SET "name" = $1 WHERE "users"."id" = $2 AND "users"."deleted_at" IS NULL
//
// # Custom column
//
//	sd := softdelete.New(softdelete.WithColumn("removed_at"))
//
// # Restrict to specific tables
//
//	sd := softdelete.New(softdelete.WithTables("users"))
//
// # Per-table columns
//
//	sd := softdelete.New(
//	    softdelete.WithTableColumn("users", "deleted_at"),
//	    softdelete.WithTableColumn("posts", "removed_at"),
//	)
package softdelete

import (
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/plugins"
)

// SoftDelete is a Transformer that appends IS NULL guards for a
// soft-delete column on every referenced table, or on a configured subset.
// INSERT statements pass through unchanged.
type SoftDelete struct {
	plugins.BaseTransformer
	column string
	scope  map[string]string // table -> column override ("" = default); nil guards every table
}

// Option configures a SoftDelete transformer.
type Option func(*SoftDelete)

// WithColumn sets the soft-delete column name. Default is "deleted_at".
func WithColumn(name string) Option {
	return func(sd *SoftDelete) { sd.column = name }
}

// WithTables restricts the guard to the named tables.
func WithTables(names ...string) Option {
	return func(sd *SoftDelete) {
		for _, n := range names {
			sd.limit(n, "")
		}
	}
}

// WithTableColumn guards table using its own column. The table joins the
// restricted set.
func WithTableColumn(table, column string) Option {
	return func(sd *SoftDelete) { sd.limit(table, column) }
}

func (sd *SoftDelete) limit(table, column string) {
	if sd.scope == nil {
		sd.scope = make(map[string]string)
	}
	if prev := sd.scope[table]; column == "" && prev != "" {
		return
	}
	sd.scope[table] = column
}

// New creates a SoftDelete transformer with the given options.
func New(opts ...Option) *SoftDelete {
	sd := &SoftDelete{column: "deleted_at"}
	for _, o := range opts {
		o(sd)
	}
	return sd
}

// TransformSelect guards every matching table in FROM and the joins.
func (sd *SoftDelete) TransformSelect(core *nodes.SelectCore) (*nodes.SelectCore, error) {
	for _, ref := range plugins.CollectTables(core) {
		if cond, ok := sd.condition(ref); ok {
			core.Wheres = append(core.Wheres, cond)
		}
	}
	return core, nil
}

// TransformUpdate guards the updated table so soft-deleted rows are never
// modified.
func (sd *SoftDelete) TransformUpdate(stmt *nodes.UpdateStatement) (*nodes.UpdateStatement, error) {
	if ref, ok := plugins.TableOf(stmt.Table); ok {
		if cond, ok := sd.condition(ref); ok {
			stmt.Wheres = append(stmt.Wheres, cond)
		}
	}
	return stmt, nil
}

// TransformDelete guards the target table so a hard delete only removes
// rows that are still live.
func (sd *SoftDelete) TransformDelete(stmt *nodes.DeleteStatement) (*nodes.DeleteStatement, error) {
	if ref, ok := plugins.TableOf(stmt.From); ok {
		if cond, ok := sd.condition(ref); ok {
			stmt.Wheres = append(stmt.Wheres, cond)
		}
	}
	return stmt, nil
}

// condition returns the IS NULL guard for ref, if ref is in scope.
func (sd *SoftDelete) condition(ref plugins.TableRef) (nodes.Node, bool) {
	col := sd.column
	if sd.scope != nil {
		override, ok := sd.scope[ref.Name]
		if !ok {
			return nil, false
		}
		if override != "" {
			col = override
		}
	}
	return nodes.NewAttribute(ref.Relation, col).IsNull(), true
}
