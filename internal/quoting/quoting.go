// Package quoting provides identifier and literal quoting shared by the
// dialect table and the render context.
package quoting

import (
	"encoding/hex"
	"strings"
)

// DoubleQuote quotes a SQL identifier using double quotes (PostgreSQL, SQLite, ANSI SQL).
// Internal double quotes are escaped by doubling them.
func DoubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Backtick quotes a SQL identifier using backticks (MySQL).
// Internal backticks are escaped by doubling them.
func Backtick(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// String renders s as a single-quoted SQL string literal. When backslash is
// true, backslashes are escaped as well (MySQL's default sql_mode treats
// them as escape characters).
//
// SECURITY: intended for inlined rendering only. Bound parameters never
// pass through here.
func String(s string, backslash bool) string {
	if backslash {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Hex renders b as a SQL hex blob literal: X'0a1b'.
func Hex(b []byte) string {
	return "X'" + hex.EncodeToString(b) + "'"
}

// Bytea renders b as a PostgreSQL bytea literal in hex format: '\x0a1b'::bytea.
// X'..' is a bit string there, not a byte string.
func Bytea(b []byte) string {
	return `'\x` + hex.EncodeToString(b) + `'::bytea`
}

// HexToRaw renders b as an Oracle RAW constructor: HEXTORAW('0a1b').
func HexToRaw(b []byte) string {
	return "HEXTORAW('" + hex.EncodeToString(b) + "')"
}
