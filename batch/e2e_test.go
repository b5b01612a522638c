package batch

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/rowbatch/config"
	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/executor"
	"github.com/bawdo/rowbatch/records"
)

func TestStoreFiveRecordsTwoBuckets(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cfg := config.New(dialect.Postgres, executor.NewSQL(db))

	full := `INSERT INTO "users" ("name", "email") VALUES ($1, $2)`
	short := `INSERT INTO "users" ("name") VALUES ($1)`
	p1 := mock.ExpectPrepare(full)
	p1.ExpectExec().WithArgs("a", "a@example.com").WillReturnResult(sqlmock.NewResult(1, 1))
	p1.ExpectExec().WithArgs("c", "c@example.com").WillReturnResult(sqlmock.NewResult(3, 1))
	p1.ExpectExec().WithArgs("e", "e@example.com").WillReturnResult(sqlmock.NewResult(5, 1))
	p1.WillBeClosed()
	p2 := mock.ExpectPrepare(short)
	p2.ExpectExec().WithArgs("b").WillReturnResult(sqlmock.NewResult(2, 1))
	p2.ExpectExec().WithArgs("d").WillReturnResult(sqlmock.NewResult(4, 1))
	p2.WillBeClosed()

	recs := []*records.Record{
		newUser(t, "name", "a", "email", "a@example.com"),
		newUser(t, "name", "b"),
		newUser(t, "name", "c", "email", "c@example.com"),
		newUser(t, "name", "d"),
		newUser(t, "name", "e", "email", "e@example.com"),
	}
	b := Of(cfg, Store, recs...)

	p, err := b.Compile()
	require.NoError(t, err)
	require.Len(t, p.Buckets, 2)
	assert.Len(t, p.Buckets[0].Members, 3)
	assert.Len(t, p.Buckets[1].Members, 2)

	counts, err := b.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 1, 1, 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
	for _, r := range recs {
		assert.False(t, r.IsChanged())
		assert.True(t, r.IsFetched())
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()
	db, family, err := executor.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	ex := executor.NewSQL(db)
	_, err = ex.Exec(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, email TEXT)`, nil)
	require.NoError(t, err)
	cfg := config.New(family, ex)

	recs := []*records.Record{
		newUser(t, "id", 1, "name", "ann"),
		newUser(t, "id", 2, "name", "bob", "email", "bob@example.com"),
		newUser(t, "id", 3, "name", "cid"),
	}
	counts, err := Of(cfg, Store, recs...).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 1}, counts)

	for _, r := range recs {
		require.NoError(t, r.Set("email", "shared@example.com"))
	}
	counts, err = Of(cfg, Store, recs...).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 1}, counts)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = 'shared@example.com'`).Scan(&n))
	assert.Equal(t, 3, n)

	dup := newUser(t, "id", 2, "name", "dup")
	_, err = Of(cfg, Insert, dup).Execute(ctx)
	require.Error(t, err)
	assert.True(t, executor.IsUniqueViolation(err))
	assert.True(t, dup.IsChanged())

	counts, err = Of(cfg, Delete, recs...).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 1}, counts)
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Zero(t, n)
	for _, r := range recs {
		assert.True(t, r.IsChanged())
	}

	counts, err = Of(cfg, Store, recs...).Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, counts, 3)
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 3, n)
}
