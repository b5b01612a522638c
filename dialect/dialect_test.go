package dialect

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- ParseFamily ---

func TestParseFamily(t *testing.T) {
	t.Parallel()
	cases := map[string]Family{
		"pgx":        Postgres,
		"postgres":   Postgres,
		"PostgreSQL": Postgres,
		"pq":         Postgres,
		"yugabytedb": YugabyteDB,
		"mysql":      MySQL,
		"mariadb":    MySQL,
		"sqlite3":    SQLite,
		" sqlite ":   SQLite,
		"godror":     Oracle,
		"h2":         Default,
		"":           Default,
	}
	for name, want := range cases {
		assert.Equal(t, want, ParseFamily(name), "ParseFamily(%q)", name)
	}
}

func TestFamilyString(t *testing.T) {
	t.Parallel()
	for _, f := range Families() {
		assert.Equal(t, f, ParseFamily(f.String()))
	}
	assert.Equal(t, "default", Family(99).String())
	assert.Equal(t, "default", Family(-1).String())
}

// --- Lookup ---

func TestLookupUnknownFamilyIsConservative(t *testing.T) {
	t.Parallel()
	caps := Lookup(Family(42))
	assert.Equal(t, Lookup(Default), caps)
	assert.Equal(t, StructuredUnsupported, caps.StructuredBinding)
	assert.True(t, caps.InlineStructured())
	assert.Equal(t, UpsertUnsupported, caps.Upsert)
	assert.False(t, caps.Returning)
}

func TestLookupPostgresLike(t *testing.T) {
	t.Parallel()
	for _, f := range []Family{Postgres, YugabyteDB} {
		caps := Lookup(f)
		assert.Equal(t, StructuredFlattened, caps.StructuredBinding, f.String())
		assert.True(t, caps.RowConstructor)
		assert.True(t, caps.CastStructuredConstant)
		assert.True(t, caps.InlineStructured())
		assert.Equal(t, "$3", caps.PlaceholderAt(3))
		assert.Equal(t, `'\x01'::bytea`, caps.Binary([]byte{1}))
		assert.Equal(t, TimestampZoned, caps.TimestampLiteral)
	}
}

func TestLookupOracleBindsNatively(t *testing.T) {
	t.Parallel()
	caps := Lookup(Oracle)
	assert.Equal(t, StructuredNative, caps.StructuredBinding)
	assert.False(t, caps.InlineStructured())
	assert.Equal(t, ":2", caps.PlaceholderAt(2))
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "`users`", Lookup(MySQL).QuoteIdent("users"))
	assert.Equal(t, `"users"`, Lookup(SQLite).QuoteIdent("users"))
	assert.Equal(t, "?", Lookup(MySQL).PlaceholderAt(7))
}

// --- Errors ---

func TestUnsupportedFeatureError(t *testing.T) {
	t.Parallel()
	err := Unsupported(MySQL, "structured binding", "inline the value")
	assert.EqualError(t, err, "mysql: structured binding is not supported: inline the value")
	assert.True(t, IsUnsupported(err))

	wrapped := fmt.Errorf("bind: %w", Unsupported(Default, "upsert"))
	assert.True(t, IsUnsupported(wrapped))
	assert.EqualError(t, errors.Unwrap(wrapped), "default: upsert is not supported")

	var target *UnsupportedFeatureError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, Default, target.Dialect)
	assert.False(t, IsUnsupported(errors.New("boom")))
}
