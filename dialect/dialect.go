// Package dialect classifies SQL engines into families and describes what
// each family can render and bind.
//
// Rendering code never switches on a Family directly. It asks Lookup for the
// family's Capabilities and branches on those, so adding a dialect means
// adding one table entry.
package dialect

import "strings"

// Family is a closed set of SQL dialect families.
type Family int

const (
	// Default is the generic family used for anything unrecognised.
	Default Family = iota
	Postgres
	YugabyteDB
	MySQL
	SQLite
	Oracle
)

var familyNames = [...]string{
	Default:    "default",
	Postgres:   "postgres",
	YugabyteDB: "yugabytedb",
	MySQL:      "mysql",
	SQLite:     "sqlite",
	Oracle:     "oracle",
}

// String returns the canonical lower-case name of the family.
func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return familyNames[Default]
	}
	return familyNames[f]
}

// Families returns every known family in declaration order.
func Families() []Family {
	return []Family{Default, Postgres, YugabyteDB, MySQL, SQLite, Oracle}
}

// ParseFamily maps an engine or database/sql driver name to its family.
// Unknown names resolve to Default.
func ParseFamily(name string) Family {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgx", "pq":
		return Postgres
	case "yugabyte", "yugabytedb":
		return YugabyteDB
	case "mysql", "mariadb":
		return MySQL
	case "sqlite", "sqlite3":
		return SQLite
	case "oracle", "godror":
		return Oracle
	default:
		return Default
	}
}
