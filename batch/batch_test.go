package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bawdo/rowbatch/config"
	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/records"
	"github.com/bawdo/rowbatch/visitors"
)

type execCall struct {
	SQL      string
	BindSets [][]any
}

// fakeExecutor records every call and reports one row per bind set.
type fakeExecutor struct {
	batches []execCall
	static  [][]string
	err     error
	short   bool
}

func (f *fakeExecutor) Exec(context.Context, string, []any) (int64, error) { return 1, f.err }

func (f *fakeExecutor) QueryRow(context.Context, string, []any, ...any) error { return f.err }

func (f *fakeExecutor) ExecBatch(_ context.Context, sql string, bindSets [][]any) ([]int64, error) {
	f.batches = append(f.batches, execCall{SQL: sql, BindSets: bindSets})
	if f.err != nil {
		return nil, f.err
	}
	return f.counts(len(bindSets)), nil
}

func (f *fakeExecutor) ExecStatic(_ context.Context, statements []string) ([]int64, error) {
	f.static = append(f.static, statements)
	if f.err != nil {
		return nil, f.err
	}
	return f.counts(len(statements)), nil
}

func (f *fakeExecutor) counts(n int) []int64 {
	if f.short {
		n--
	}
	out := make([]int64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func usersTable() *records.Table {
	return records.NewTable("users",
		records.Column{Name: "id", Identity: true},
		records.Column{Name: "name"},
		records.Column{Name: "email"},
	).Key("id")
}

func newUser(t *testing.T, kv ...any) *records.Record {
	t.Helper()
	r := records.NewRecord(usersTable())
	for i := 0; i < len(kv); i += 2 {
		require.NoError(t, r.Set(kv[i].(string), kv[i+1]))
	}
	return r
}

func setup(family dialect.Family, fn ...func(*config.Settings)) (*config.Configuration, *fakeExecutor) {
	ex := &fakeExecutor{}
	cfg := config.New(family, ex)
	for _, f := range fn {
		cfg = cfg.Derive(f)
	}
	return cfg, ex
}

// --- Bucketing ---

func TestIdenticalStatementsShareOneBucket(t *testing.T) {
	t.Parallel()
	cfg, _ := setup(dialect.Postgres)
	b := Of(cfg, Insert,
		newUser(t, "name", "a"),
		newUser(t, "name", "b"),
		newUser(t, "name", "c"),
	)

	p, err := b.Compile()
	require.NoError(t, err)
	require.Len(t, p.Buckets, 1)
	assert.Equal(t, `INSERT INTO "users" ("name") VALUES ($1)`, p.Buckets[0].SQL)
	assert.Equal(t, [][]any{{"a"}, {"b"}, {"c"}}, p.Buckets[0].BindSets)
	assert.Equal(t, []int{0, 1, 2}, p.Buckets[0].Members)
	assert.Equal(t, 3, p.Queries())
	assert.InDelta(t, 3.0, p.AverageBindSets(), 0.001)
}

func TestDistinctStatementsGetOwnBuckets(t *testing.T) {
	t.Parallel()
	cfg, _ := setup(dialect.MySQL)
	b := Of(cfg, Insert,
		newUser(t, "name", "a"),
		newUser(t, "email", "b@example.com"),
		newUser(t, "id", 3),
	)

	p, err := b.Compile()
	require.NoError(t, err)
	require.Len(t, p.Buckets, 3)
	assert.Equal(t, 3, p.Distinct())
}

func TestBucketOrderFollowsFirstOccurrence(t *testing.T) {
	t.Parallel()
	cfg, _ := setup(dialect.SQLite)
	b := Of(cfg, Insert,
		newUser(t, "email", "e1"),
		newUser(t, "name", "n1"),
		newUser(t, "email", "e2"),
		newUser(t, "name", "n2"),
		newUser(t, "email", "e3"),
	)

	p, err := b.Compile()
	require.NoError(t, err)
	require.Len(t, p.Buckets, 2)
	assert.Equal(t, `INSERT INTO "users" ("email") VALUES (?)`, p.Buckets[0].SQL)
	assert.Equal(t, `INSERT INTO "users" ("name") VALUES (?)`, p.Buckets[1].SQL)
	assert.Equal(t, [][]any{{"e1"}, {"e2"}, {"e3"}}, p.Buckets[0].BindSets)
	assert.Equal(t, [][]any{{"n1"}, {"n2"}}, p.Buckets[1].BindSets)
	assert.Equal(t, []int{1, 3}, p.Buckets[1].Members)
}

func TestMixedActions(t *testing.T) {
	t.Parallel()
	cfg, ex := setup(dialect.Postgres)
	fetched := records.Fetched(usersTable(), 7, "Old")
	require.NoError(t, fetched.Set("name", "New"))
	gone := records.Fetched(usersTable(), 8, "Gone")

	b := New(cfg,
		Operation{Action: Store, Record: fetched},
		Operation{Action: Delete, Record: gone},
	)
	b.Add(Insert, newUser(t, "name", "x"))
	assert.Equal(t, 3, b.Size())
	assert.Len(t, b.Operations(), 3)

	counts, err := b.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 1}, counts)
	require.Len(t, ex.batches, 3)
	assert.Equal(t, `UPDATE "users" SET "name" = $1 WHERE "users"."id" = $2`, ex.batches[0].SQL)
	assert.Equal(t, [][]any{{"New", 7}}, ex.batches[0].BindSets)
	assert.Equal(t, `DELETE FROM "users" WHERE "users"."id" = $1`, ex.batches[1].SQL)
	assert.Equal(t, "STORE:1,DELETE:1,INSERT:1", b.actionMix())
}

func TestBatchDisablesReturning(t *testing.T) {
	t.Parallel()
	cfg, _ := setup(dialect.Postgres, func(s *config.Settings) {
		s.ReturnAllOnUpdatableRecord = true
		s.ReturnIdentityOnUpdatableRecord = true
	})

	p, err := Of(cfg, Insert, newUser(t, "name", "a")).Compile()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("name") VALUES ($1)`, p.Buckets[0].SQL)
	assert.True(t, cfg.Settings.ReturnAllOnUpdatableRecord)
}

// --- No-ops ---

func TestNoOpUpdatesAreExcluded(t *testing.T) {
	t.Parallel()
	cfg, ex := setup(dialect.Postgres)
	recs := make([]*records.Record, 4)
	for i := range recs {
		recs[i] = records.Fetched(usersTable(), i+1, "name")
		if i != 2 {
			require.NoError(t, recs[i].Set("name", "renamed"))
		}
	}

	b := Of(cfg, Update, recs...)
	p, err := b.Compile()
	require.NoError(t, err)
	assert.Equal(t, []int{2}, p.Skipped)

	counts, err := b.Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, counts, 3)
	require.Len(t, ex.batches, 1)
	assert.Equal(t, [][]any{{"renamed", 1}, {"renamed", 2}, {"renamed", 4}}, ex.batches[0].BindSets)
	for _, r := range recs {
		assert.False(t, r.IsChanged())
		assert.True(t, r.IsFetched())
	}
}

func TestEmptyBatch(t *testing.T) {
	t.Parallel()
	cfg, ex := setup(dialect.Postgres)

	counts, err := New(cfg).Execute(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.Empty(t, ex.batches)
}

// --- Bookkeeping ---

func TestDeleteBookkeeping(t *testing.T) {
	t.Parallel()
	cfg, _ := setup(dialect.MySQL)
	recs := []*records.Record{
		records.Fetched(usersTable(), 1, "a"),
		records.Fetched(usersTable(), 2, "b"),
		records.Fetched(usersTable(), 3, "c"),
	}

	counts, err := Of(cfg, Delete, recs...).Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, counts, 3)
	for _, r := range recs {
		assert.True(t, r.IsChanged())
		assert.Equal(t, []string{"id", "name", "email"}, r.ChangedColumns())
		assert.False(t, r.IsFetched())
	}
}

func TestStoreBookkeepingThenSecondStoreUpdates(t *testing.T) {
	t.Parallel()
	cfg, ex := setup(dialect.MySQL)
	recs := []*records.Record{
		newUser(t, "id", 1, "name", "a"),
		newUser(t, "id", 2, "name", "b"),
		newUser(t, "id", 3, "name", "c"),
	}

	_, err := Of(cfg, Store, recs...).Execute(context.Background())
	require.NoError(t, err)
	for _, r := range recs {
		assert.False(t, r.IsChanged())
		assert.True(t, r.IsFetched())
		require.NoError(t, r.Set("email", "x"))
	}

	_, err = Of(cfg, Store, recs...).Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, ex.batches, 2)
	assert.Equal(t, "UPDATE `users` SET `email` = ? WHERE `users`.`id` = ?", ex.batches[1].SQL)
	assert.Equal(t, [][]any{{"x", 1}, {"x", 2}, {"x", 3}}, ex.batches[1].BindSets)
}

// --- Failure semantics ---

func TestCompileFailureSendsNothing(t *testing.T) {
	t.Parallel()
	cfg, ex := setup(dialect.Oracle)
	mine := config.New(dialect.Postgres, nil)
	ok := newUser(t, "id", 1, "name", "a")
	bad := newUser(t, "id", 2, "name", "b")
	ok.Attach(mine)
	bad.Attach(mine)

	b := New(cfg, Operation{Action: Insert, Record: ok}, Operation{Action: Merge, Record: bad})
	_, err := b.Execute(context.Background())
	require.Error(t, err)
	assert.True(t, dialect.IsUnsupported(err))
	assert.Contains(t, err.Error(), "operation 1 (MERGE users)")

	assert.Empty(t, ex.batches)
	for _, r := range []*records.Record{ok, bad} {
		assert.Same(t, mine, r.Configuration())
		assert.True(t, r.IsChanged())
		assert.False(t, r.IsFetched())
	}
}

func TestExecutionFailurePropagates(t *testing.T) {
	t.Parallel()
	cfg, ex := setup(dialect.Postgres)
	ex.err = errors.New("connection lost")
	r := newUser(t, "name", "a")

	_, err := Of(cfg, Insert, r).Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ex.err)
	assert.True(t, r.IsChanged())
	assert.False(t, r.IsFetched())
}

func TestOutcomeMismatch(t *testing.T) {
	t.Parallel()
	cfg, ex := setup(dialect.Postgres)
	ex.short = true

	_, err := Of(cfg, Insert, newUser(t, "name", "a"), newUser(t, "name", "b")).Execute(context.Background())
	assert.ErrorIs(t, err, ErrOutcomeMismatch)
}

func TestNilRecord(t *testing.T) {
	t.Parallel()
	cfg, _ := setup(dialect.Postgres)
	_, err := New(cfg, Operation{Action: Insert}).Compile()
	assert.Error(t, err)
}

func TestExecuteWithoutExecutor(t *testing.T) {
	t.Parallel()
	cfg := config.New(dialect.Postgres, nil)
	_, err := Of(cfg, Insert, newUser(t, "name", "a")).Execute(context.Background())
	assert.ErrorIs(t, err, records.ErrNoExecutor)
}

func TestBaseConfigurationUntouched(t *testing.T) {
	t.Parallel()
	cfg, _ := setup(dialect.Postgres)
	before := cfg.Settings

	_, err := Of(cfg, Insert, newUser(t, "name", "a")).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, cfg.Settings)
}

// --- Static mode ---

func TestStaticStatementsKeepDuplicatesByDefault(t *testing.T) {
	t.Parallel()
	cfg, ex := setup(dialect.Postgres, func(s *config.Settings) { s.ExecuteStaticStatements = true })
	r := records.Fetched(usersTable(), 1, "a")

	b := Of(cfg, Delete, r, records.Fetched(usersTable(), 2, "b"), r)
	assert.True(t, b.Static())

	counts, err := b.Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, counts, 3)
	require.Len(t, ex.static, 1)
	assert.Equal(t, []string{
		`DELETE FROM "users" WHERE "users"."id" = 1`,
		`DELETE FROM "users" WHERE "users"."id" = 2`,
		`DELETE FROM "users" WHERE "users"."id" = 1`,
	}, ex.static[0])
	assert.Empty(t, ex.batches)
}

func TestStaticStatementsDeduplicated(t *testing.T) {
	t.Parallel()
	cfg, ex := setup(dialect.Postgres, func(s *config.Settings) {
		s.ExecuteStaticStatements = true
		s.DeduplicateStaticStatements = true
	})
	r := records.Fetched(usersTable(), 1, "a")

	b := Of(cfg, Delete, r, records.Fetched(usersTable(), 2, "b"), r)
	p, err := b.Compile()
	require.NoError(t, err)
	assert.Equal(t, 2, p.Queries())
	assert.Equal(t, 2, p.Distinct())

	counts, err := b.Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, counts, 2)
	assert.Equal(t, []string{
		`DELETE FROM "users" WHERE "users"."id" = 1`,
		`DELETE FROM "users" WHERE "users"."id" = 2`,
	}, ex.static[0])
}

func TestInlinedParamTypeImpliesStatic(t *testing.T) {
	t.Parallel()
	cfg, ex := setup(dialect.MySQL, func(s *config.Settings) { s.ParamType = visitors.Inlined })

	_, err := Of(cfg, Insert, newUser(t, "name", `it's`)).Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, ex.static, 1)
	assert.Equal(t, []string{"INSERT INTO `users` (`name`) VALUES ('it''s')"}, ex.static[0])
}

// --- Structured values ---

func peopleTable() *records.Table {
	return records.NewTable("people",
		records.Column{Name: "id"},
		records.Column{Name: "home", TypeName: "address"},
	).Key("id")
}

func TestStructuredValueFlattenedBinding(t *testing.T) {
	t.Parallel()
	cfg, _ := setup(dialect.Postgres)
	geo := nodes.NewStructType("", "geo", nodes.StructField{Name: "lat"}, nodes.StructField{Name: "lng"})
	addr := nodes.NewStructType("", "address",
		nodes.StructField{Name: "street"},
		nodes.StructField{Name: "location", TypeName: "geo"},
	)

	r := records.NewRecord(peopleTable())
	require.NoError(t, r.Set("id", 1))
	home := addr.Value("Main St", geo.Value(1.5, 2.5))
	require.NoError(t, r.Set("home", home))

	p, err := Of(cfg, Insert, r).Compile()
	require.NoError(t, err)
	require.Len(t, p.Buckets, 1)
	assert.Equal(t,
		`INSERT INTO "people" ("id", "home") VALUES ($1, CAST(ROW($2, CAST(ROW($3, $4) AS "geo")) AS "address"))`,
		p.Buckets[0].SQL)
	assert.Equal(t, []any{1, "Main St", 1.5, 2.5}, p.Buckets[0].BindSets[0])
	assert.Len(t, p.Buckets[0].BindSets[0], 1+home.ScalarCount())
}

func TestStructuredValueUnsupportedBinding(t *testing.T) {
	t.Parallel()
	cfg, ex := setup(dialect.MySQL)
	addr := nodes.NewStructType("", "address", nodes.StructField{Name: "street"})

	r := records.NewRecord(peopleTable())
	require.NoError(t, r.Set("home", addr.Value("Main St")))

	_, err := Of(cfg, Insert, r).Execute(context.Background())
	require.Error(t, err)
	var unsupported *dialect.UnsupportedFeatureError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, dialect.MySQL, unsupported.Dialect)
	assert.Empty(t, ex.batches)
}

func TestStructuredValueInlinedInStaticBatch(t *testing.T) {
	t.Parallel()
	cfg, ex := setup(dialect.MySQL, func(s *config.Settings) { s.ExecuteStaticStatements = true })
	addr := nodes.NewStructType("", "address", nodes.StructField{Name: "street"})

	r := records.NewRecord(peopleTable())
	require.NoError(t, r.Set("home", addr.Value("Main St")))

	_, err := Of(cfg, Insert, r).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"INSERT INTO `people` (`home`) VALUES (`address`('Main St'))"}, ex.static[0])
}

// --- Logging ---

func TestExecuteLogsPlanSummary(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	ex := &fakeExecutor{}
	cfg := config.New(dialect.Postgres, ex, config.WithLogger(zap.New(core)))

	_, err := Of(cfg, Insert, newUser(t, "name", "a"), newUser(t, "name", "b")).Execute(context.Background())
	require.NoError(t, err)

	entries := logs.FilterMessage("batch").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "INSERT:2", fields["actions"])
	assert.Equal(t, int64(2), fields["records"])
	assert.Equal(t, int64(1), fields["distinct_statements"])
	assert.Equal(t, 2.0, fields["avg_bind_sets"])
	assert.Empty(t, logs.FilterMessage("compiled statement").All())
}
