package managers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/plugins"
	"github.com/bawdo/rowbatch/plugins/softdelete"
	"github.com/bawdo/rowbatch/visitors"
)

func TestUpdateSetAndWhere(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	m := NewUpdateManager(users).
		Set(users.Col("name"), "Bob").
		Set(users.Col("email"), nil).
		Where(users.Col("id").Eq(7))

	sql, args, err := m.ToSQL(render(t, dialect.Postgres))
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "name" = $1, "email" = $2 WHERE "users"."id" = $3`, sql)
	assert.Equal(t, []any{"Bob", nil, 7}, args)
}

func TestUpdateBuildKeepsTargetTable(t *testing.T) {
	t.Parallel()
	users := nodes.NewSchemaTable("app", "users")
	stmt, err := NewUpdateManager(users).Set(users.Col("name"), "Bob").Build()
	require.NoError(t, err)
	assert.Same(t, users, stmt.Table)
}

func TestUpdateOracleColonPlaceholders(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	m := NewUpdateManager(users).
		Set(users.Col("name"), "Bob").
		Where(users.Col("id").Eq(7))

	sql, _, err := m.ToSQL(render(t, dialect.Oracle))
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "name" = :1 WHERE "users"."id" = :2`, sql)
}

func TestUpdateInlined(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	m := NewUpdateManager(users).
		Set(users.Col("bio"), `back\slash`).
		Where(users.Col("id").Eq(7))

	sql, args, err := m.ToSQL(render(t, dialect.MySQL, visitors.WithoutParams()))
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `bio` = 'back\\\\slash' WHERE `users`.`id` = 7", sql)
	assert.Nil(t, args)
}

func TestUpdateReturning(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	m := NewUpdateManager(users).
		Set(users.Col("name"), "Bob").
		Returning(nodes.NewAttribute(nil, "updated_at"))

	sql, _, err := m.ToSQL(render(t, dialect.Postgres))
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "name" = $1 RETURNING "updated_at"`, sql)
}

func TestUpdateWithSoftDelete(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	m := NewUpdateManager(users).
		Set(users.Col("name"), "Bob").
		Where(users.Col("id").Eq(7)).
		Use(softdelete.New())

	sql, _, err := m.ToSQL(render(t, dialect.SQLite))
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "name" = ? WHERE "users"."id" = ? AND "users"."deleted_at" IS NULL`, sql)
	assert.Len(t, m.Statement().Wheres, 1)
}

type rejectUpdates struct {
	plugins.BaseTransformer
}

func (rejectUpdates) TransformUpdate(*nodes.UpdateStatement) (*nodes.UpdateStatement, error) {
	return nil, errors.New("read only")
}

func TestUpdateTransformerError(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	m := NewUpdateManager(users).Set(users.Col("name"), "Bob").Use(rejectUpdates{})

	_, _, err := m.ToSQL(render(t, dialect.Postgres))
	assert.EqualError(t, err, "read only")
}
