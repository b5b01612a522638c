package softdelete

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/internal/testutil"
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/plugins"
)

func joined(users, posts *nodes.Table) *nodes.SelectCore {
	return &nodes.SelectCore{
		From: users,
		Joins: []*nodes.JoinNode{{
			Right: posts,
			Type:  nodes.InnerJoin,
			On:    users.Col("id").Eq(posts.Col("user_id")),
		}},
	}
}

// --- SELECT ---

func TestDefaultColumnDeletedAt(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")

	result, err := New().TransformSelect(&nodes.SelectCore{From: users})
	require.NoError(t, err)
	testutil.AssertSQL(t, dialect.Postgres, result,
		`SELECT * FROM "users" WHERE "users"."deleted_at" IS NULL`)
}

func TestCustomColumnName(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")

	result, err := New(WithColumn("removed_at")).TransformSelect(&nodes.SelectCore{From: users})
	require.NoError(t, err)
	testutil.AssertSQL(t, dialect.Postgres, result,
		`SELECT * FROM "users" WHERE "users"."removed_at" IS NULL`)
}

func TestPreservesExistingWheres(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	core := &nodes.SelectCore{
		From:   users,
		Wheres: []nodes.Node{users.Col("active").Eq(true)},
	}

	result, err := New().TransformSelect(core)
	require.NoError(t, err)
	testutil.AssertInlined(t, dialect.Postgres, result,
		`SELECT * FROM "users" WHERE "users"."active" = TRUE AND "users"."deleted_at" IS NULL`)
}

func TestAppliedToJoinedTables(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	posts := nodes.NewTable("posts")

	result, err := New().TransformSelect(joined(users, posts))
	require.NoError(t, err)
	testutil.AssertSQL(t, dialect.Postgres, result,
		`SELECT * FROM "users" INNER JOIN "posts" ON "users"."id" = "posts"."user_id" WHERE "users"."deleted_at" IS NULL AND "posts"."deleted_at" IS NULL`)
}

func TestWithTablesFiltersToSpecifiedTables(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	posts := nodes.NewTable("posts")

	result, err := New(WithTables("users")).TransformSelect(joined(users, posts))
	require.NoError(t, err)
	testutil.AssertSQL(t, dialect.Postgres, result,
		`SELECT * FROM "users" INNER JOIN "posts" ON "users"."id" = "posts"."user_id" WHERE "users"."deleted_at" IS NULL`)
}

func TestAppliedToTableAlias(t *testing.T) {
	t.Parallel()
	u := nodes.NewTable("users").Alias("u")

	result, err := New(WithTables("users")).TransformSelect(&nodes.SelectCore{From: u})
	require.NoError(t, err)
	testutil.AssertSQL(t, dialect.MySQL, result,
		"SELECT * FROM `users` AS `u` WHERE `u`.`deleted_at` IS NULL")
}

func TestNoTablesIsNoOp(t *testing.T) {
	t.Parallel()
	result, err := New().TransformSelect(&nodes.SelectCore{})
	require.NoError(t, err)
	assert.Empty(t, result.Wheres)
}

func TestWithTableColumnMultiple(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	posts := nodes.NewTable("posts")
	sd := New(
		WithTableColumn("users", "deleted_at"),
		WithTableColumn("posts", "removed_at"),
	)

	result, err := sd.TransformSelect(joined(users, posts))
	require.NoError(t, err)
	testutil.AssertSQL(t, dialect.Postgres, result,
		`SELECT * FROM "users" INNER JOIN "posts" ON "users"."id" = "posts"."user_id" WHERE "users"."deleted_at" IS NULL AND "posts"."removed_at" IS NULL`)
}

func TestWithTableColumnRestrictsScope(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	posts := nodes.NewTable("posts")

	result, err := New(WithTableColumn("posts", "removed_at")).TransformSelect(joined(users, posts))
	require.NoError(t, err)
	testutil.AssertSQL(t, dialect.Postgres, result,
		`SELECT * FROM "users" INNER JOIN "posts" ON "users"."id" = "posts"."user_id" WHERE "posts"."removed_at" IS NULL`)
}

// --- UPDATE and DELETE ---

func TestGuardsUpdate(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	stmt := &nodes.UpdateStatement{
		Table:       users,
		Assignments: []*nodes.AssignmentNode{nodes.Assign(users.Col("name"), "Bob")},
		Wheres:      []nodes.Node{users.Col("id").Eq(7)},
	}

	result, err := New().TransformUpdate(stmt)
	require.NoError(t, err)
	testutil.AssertCompiled(t, dialect.Postgres, result,
		`UPDATE "users" SET "name" = $1 WHERE "users"."id" = $2 AND "users"."deleted_at" IS NULL`,
		"Bob", 7)
}

func TestGuardsDelete(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	stmt := &nodes.DeleteStatement{
		From:   users,
		Wheres: []nodes.Node{users.Col("id").Eq(7)},
	}

	result, err := New(WithColumn("archived_at")).TransformDelete(stmt)
	require.NoError(t, err)
	testutil.AssertCompiled(t, dialect.SQLite, result,
		`DELETE FROM "users" WHERE "users"."id" = ? AND "users"."archived_at" IS NULL`,
		7)
}

func TestSkipsUnlistedUpdateTarget(t *testing.T) {
	t.Parallel()
	posts := nodes.NewTable("posts")
	stmt := &nodes.UpdateStatement{Table: posts}

	result, err := New(WithTables("users")).TransformUpdate(stmt)
	require.NoError(t, err)
	assert.Empty(t, result.Wheres)
}

func TestInsertUnchanged(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	stmt := &nodes.InsertStatement{
		Into:    users,
		Columns: []*nodes.Attribute{users.Col("name")},
		Values:  [][]nodes.Node{{nodes.Param("Alice")}},
	}

	result, err := New().TransformInsert(stmt)
	require.NoError(t, err)
	assert.Same(t, stmt, result)
}

// --- Interface ---

func TestImplementsTransformer(t *testing.T) {
	t.Parallel()
	var _ plugins.Transformer = New()
}
