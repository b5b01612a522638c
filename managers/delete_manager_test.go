package managers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/plugins/softdelete"
)

func TestDeleteWhere(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	m := NewDeleteManager(users).Where(users.Col("id").Eq(3))

	sql, args, err := m.ToSQL(render(t, dialect.MySQL))
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `users` WHERE `users`.`id` = ?", sql)
	assert.Equal(t, []any{3}, args)
}

func TestDeleteBuildKeepsTargetTable(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	stmt, err := NewDeleteManager(users).Build()
	require.NoError(t, err)
	assert.Same(t, users, stmt.From)
}

func TestDeleteAll(t *testing.T) {
	t.Parallel()
	sql, args, err := NewDeleteManager(nodes.NewTable("sessions")).ToSQL(render(t, dialect.Postgres))
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "sessions"`, sql)
	assert.Empty(t, args)
}

func TestDeleteSchemaQualified(t *testing.T) {
	t.Parallel()
	users := nodes.NewSchemaTable("app", "users")
	m := NewDeleteManager(users).Where(users.Col("id").Eq(3))

	sql, _, err := m.ToSQL(render(t, dialect.Postgres))
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "app"."users" WHERE "app"."users"."id" = $1`, sql)
}

func TestDeleteReturningUnsupported(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	m := NewDeleteManager(users).Returning(nodes.NewAttribute(nil, "id"))

	sql, _, err := m.ToSQL(render(t, dialect.Postgres))
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "users" RETURNING "id"`, sql)

	_, _, err = m.ToSQL(render(t, dialect.Oracle))
	assert.True(t, dialect.IsUnsupported(err))
}

func TestDeleteWithSoftDelete(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	m := NewDeleteManager(users).
		Where(users.Col("id").Eq(3)).
		Use(softdelete.New(softdelete.WithColumn("archived_at")))

	stmt, err := m.Build()
	require.NoError(t, err)
	assert.Len(t, stmt.Wheres, 2)
	assert.Len(t, m.Statement().Wheres, 1)
}
