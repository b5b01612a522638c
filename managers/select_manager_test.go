package managers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/plugins/softdelete"
	"github.com/bawdo/rowbatch/visitors"
)

// --- Projections and filters ---

func TestSelectStar(t *testing.T) {
	t.Parallel()
	sql, args, err := NewSelectManager(nodes.NewTable("users")).ToSQL(render(t, dialect.Postgres))
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users"`, sql)
	assert.Empty(t, args)
}

func TestSelectProjectionsDistinctWhere(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	m := NewSelectManager(users).
		Select(users.Col("id"), users.Col("name")).
		Distinct().
		Where(users.Col("age").Gt(18), users.Col("name").Like("A%"))

	sql, args, err := m.ToSQL(render(t, dialect.Postgres))
	require.NoError(t, err)
	assert.Equal(t, `SELECT DISTINCT "users"."id", "users"."name" FROM "users" WHERE "users"."age" > $1 AND "users"."name" LIKE $2`, sql)
	assert.Equal(t, []any{18, "A%"}, args)

	m.Distinct(false)
	assert.False(t, m.Core().Distinct)
}

func TestSelectNamedParams(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	m := NewSelectManager(users).Where(users.Col("id").Eq(nodes.NamedParam("id", 4)))

	sql, args, err := m.ToSQL(render(t, dialect.Oracle, visitors.WithNamedParams()))
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" WHERE "users"."id" = :id`, sql)
	assert.Equal(t, []any{4}, args)
}

// --- Joins ---

func TestSelectJoinOn(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	posts := nodes.NewTable("posts")
	m := NewSelectManager(users).
		Join(posts).On(posts.Col("user_id").Eq(users.Col("id"))).
		Where(posts.Col("published").Eq(true))

	sql, args, err := m.ToSQL(render(t, dialect.SQLite))
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" INNER JOIN "posts" ON "posts"."user_id" = "users"."id" WHERE "posts"."published" = ?`, sql)
	assert.Equal(t, []any{true}, args)
}

func TestSelectOuterJoinUsing(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	m := NewSelectManager(users).OuterJoin(nodes.NewTable("profiles")).Using("user_id", "tenant_id")

	sql, _, err := m.ToSQL(render(t, dialect.MySQL))
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `users` LEFT OUTER JOIN `profiles` USING (`user_id`, `tenant_id`)", sql)
}

func TestSelectCrossJoin(t *testing.T) {
	t.Parallel()
	m := NewSelectManager(nodes.NewTable("a")).CrossJoin(nodes.NewTable("b"))

	sql, _, err := m.ToSQL(render(t, dialect.Postgres))
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "a" CROSS JOIN "b"`, sql)
}

func TestSelectNaturalJoins(t *testing.T) {
	t.Parallel()
	m := NewSelectManager(nodes.NewTable("a")).
		NaturalJoin(nodes.NewTable("b")).
		NaturalLeftJoin(nodes.NewTable("c"))

	sql, _, err := m.ToSQL(render(t, dialect.MySQL))
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `a` NATURAL JOIN `b` NATURAL LEFT OUTER JOIN `c`", sql)
}

func TestSelectNaturalFullJoinCapability(t *testing.T) {
	t.Parallel()
	m := NewSelectManager(nodes.NewTable("a")).NaturalFullJoin(nodes.NewTable("b"))

	sql, _, err := m.ToSQL(render(t, dialect.Postgres))
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "a" NATURAL FULL OUTER JOIN "b"`, sql)

	_, _, err = m.ToSQL(render(t, dialect.MySQL))
	require.Error(t, err)
	assert.True(t, dialect.IsUnsupported(err))
}

// --- Subqueries and transformers ---

func TestSelectAsSubquery(t *testing.T) {
	t.Parallel()
	posts := nodes.NewTable("posts")
	recent := NewSelectManager(posts).Where(posts.Col("id").Gt(100)).As("recent")

	sql, args, err := NewSelectManager(recent).ToSQL(render(t, dialect.Postgres))
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM (SELECT * FROM "posts" WHERE "posts"."id" > $1) AS "recent"`, sql)
	assert.Equal(t, []any{100}, args)
}

func TestSelectSoftDeleteDoesNotMutateCore(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	m := NewSelectManager(users).Use(softdelete.New())

	sql, _, err := m.ToSQL(render(t, dialect.Postgres))
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" WHERE "users"."deleted_at" IS NULL`, sql)
	assert.Empty(t, m.Core().Wheres)

	core, err := m.Build()
	require.NoError(t, err)
	assert.NotSame(t, m.Core(), core)
}
