package dialect

import (
	"strconv"

	"github.com/bawdo/rowbatch/internal/quoting"
)

// QuoteStyle selects how identifiers are quoted.
type QuoteStyle int

const (
	QuoteDouble   QuoteStyle = iota // "name"
	QuoteBacktick                   // `name`
)

// PlaceholderStyle selects how indexed bind placeholders are written.
type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota // ?
	PlaceholderDollar                           // $1, $2
	PlaceholderColon                            // :1, :2
)

// StructuredBinding describes how a structured (row / UDT) value reaches
// the driver.
type StructuredBinding int

const (
	// StructuredUnsupported: no driver channel exists; structured constants
	// render inline and cannot be bound.
	StructuredUnsupported StructuredBinding = iota
	// StructuredFlattened: the constant renders inline with one placeholder
	// per scalar field and the fields are bound depth-first.
	StructuredFlattened
	// StructuredNative: the driver accepts the whole value as one parameter.
	StructuredNative
)

// UpsertStyle selects the insert-or-update syntax.
type UpsertStyle int

const (
	UpsertUnsupported    UpsertStyle = iota
	UpsertOnConflict                 // ON CONFLICT (...) DO UPDATE SET
	UpsertOnDuplicateKey             // ON DUPLICATE KEY UPDATE
)

// EmptyInsertStyle selects the syntax of an INSERT without columns.
type EmptyInsertStyle int

const (
	EmptyInsertDefaultValues EmptyInsertStyle = iota // INSERT INTO t DEFAULT VALUES
	EmptyInsertEmptyLists                            // INSERT INTO t () VALUES ()
)

// BinaryLiteralStyle selects how inlined byte strings are written.
type BinaryLiteralStyle int

const (
	BinaryHex      BinaryLiteralStyle = iota // X'0a1b'
	BinaryBytea                              // '\x0a1b'::bytea
	BinaryHexToRaw                           // HEXTORAW('0a1b')
)

// TimestampLiteralStyle selects how inlined time.Time values are written.
type TimestampLiteralStyle int

const (
	// TimestampUTC: TIMESTAMP '...' holding the instant in UTC.
	TimestampUTC TimestampLiteralStyle = iota
	// TimestampZoned: TIMESTAMP WITH TIME ZONE '... +05:00'.
	TimestampZoned
	// TimestampText: a plain string in UTC, for engines without typed
	// literals.
	TimestampText
)

// Capabilities describes the rendering and binding features of a family.
type Capabilities struct {
	Quote                  QuoteStyle
	Placeholder            PlaceholderStyle
	StructuredBinding      StructuredBinding
	RowConstructor         bool // ROW(...) instead of TYPE_NAME(...)
	CastStructuredConstant bool // CAST(<constant> AS type_name)
	Upsert                 UpsertStyle
	Returning              bool
	EmptyInsert            EmptyInsertStyle
	NaturalJoins           bool
	FullOuterJoins         bool
	BackslashEscapes       bool // string literals treat \ as an escape
	BinaryLiteral          BinaryLiteralStyle
	TimestampLiteral       TimestampLiteralStyle
}

// QuoteIdent quotes a single identifier.
func (c Capabilities) QuoteIdent(name string) string {
	if c.Quote == QuoteBacktick {
		return quoting.Backtick(name)
	}
	return quoting.DoubleQuote(name)
}

// PlaceholderAt returns the indexed placeholder for the 1-based index i.
func (c Capabilities) PlaceholderAt(i int) string {
	switch c.Placeholder {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(i)
	case PlaceholderColon:
		return ":" + strconv.Itoa(i)
	default:
		return "?"
	}
}

// Binary renders b as a byte string literal.
func (c Capabilities) Binary(b []byte) string {
	switch c.BinaryLiteral {
	case BinaryBytea:
		return quoting.Bytea(b)
	case BinaryHexToRaw:
		return quoting.HexToRaw(b)
	default:
		return quoting.Hex(b)
	}
}

// InlineStructured reports whether structured constants are emitted in
// their positional-literal form rather than as one bound parameter.
func (c Capabilities) InlineStructured() bool {
	return c.StructuredBinding != StructuredNative || c.CastStructuredConstant
}

// conservative is the entry every unknown family resolves to.
var conservative = Capabilities{
	Quote:             QuoteDouble,
	Placeholder:       PlaceholderQuestion,
	StructuredBinding: StructuredUnsupported,
	Upsert:            UpsertUnsupported,
	EmptyInsert:       EmptyInsertDefaultValues,
}

var postgresLike = Capabilities{
	Quote:                  QuoteDouble,
	Placeholder:            PlaceholderDollar,
	StructuredBinding:      StructuredFlattened,
	RowConstructor:         true,
	CastStructuredConstant: true,
	Upsert:                 UpsertOnConflict,
	Returning:              true,
	EmptyInsert:            EmptyInsertDefaultValues,
	NaturalJoins:           true,
	FullOuterJoins:         true,
	BinaryLiteral:          BinaryBytea,
	TimestampLiteral:       TimestampZoned,
}

var capabilityTable = map[Family]Capabilities{
	Default:    conservative,
	Postgres:   postgresLike,
	YugabyteDB: postgresLike,
	MySQL: {
		Quote:             QuoteBacktick,
		Placeholder:       PlaceholderQuestion,
		StructuredBinding: StructuredUnsupported,
		Upsert:            UpsertOnDuplicateKey,
		EmptyInsert:       EmptyInsertEmptyLists,
		NaturalJoins:      true,
		BackslashEscapes:  true,
	},
	SQLite: {
		Quote:             QuoteDouble,
		Placeholder:       PlaceholderQuestion,
		StructuredBinding: StructuredUnsupported,
		Upsert:            UpsertOnConflict,
		Returning:         true,
		EmptyInsert:       EmptyInsertDefaultValues,
		NaturalJoins:      true,
		FullOuterJoins:    true,
		TimestampLiteral:  TimestampText,
	},
	Oracle: {
		Quote:             QuoteDouble,
		Placeholder:       PlaceholderColon,
		StructuredBinding: StructuredNative,
		Upsert:            UpsertUnsupported,
		EmptyInsert:       EmptyInsertDefaultValues,
		NaturalJoins:      true,
		FullOuterJoins:    true,
		BinaryLiteral:     BinaryHexToRaw,
		TimestampLiteral:  TimestampZoned,
	},
}

// Lookup returns the capabilities of f. It never fails: families without
// an entry get the conservative default.
func Lookup(f Family) Capabilities {
	if c, ok := capabilityTable[f]; ok {
		return c
	}
	return conservative
}
