package executor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestConstraintClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		constraint bool
		unique     bool
		foreignKey bool
	}{
		{"nil", nil, false, false, false},
		{"plain", errors.New("connection refused"), false, false, false},
		{"pgx unique", &pgconn.PgError{Code: "23505"}, true, true, false},
		{"pgx fk", &pgconn.PgError{Code: "23503"}, true, false, true},
		{"pgx not null", &pgconn.PgError{Code: "23502"}, true, false, false},
		{"pgx syntax", &pgconn.PgError{Code: "42601"}, false, false, false},
		{"pq unique", &pq.Error{Code: "23505"}, true, true, false},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true, true, false},
		{"mysql fk", &mysql.MySQLError{Number: 1452}, true, false, true},
		{"mysql other", &mysql.MySQLError{Number: 1064}, false, false, false},
		{"sqlite string", errors.New("constraint failed: UNIQUE constraint failed: t.id (2067)"), true, true, false},
		{"sqlite fk string", errors.New("FOREIGN KEY constraint failed"), true, false, true},
		{"wrapped", fmt.Errorf("executor: exec batch: %w", &pgconn.PgError{Code: "23505"}), true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.constraint, IsConstraintError(tt.err), "constraint")
			assert.Equal(t, tt.unique, IsUniqueViolation(tt.err), "unique")
			assert.Equal(t, tt.foreignKey, IsForeignKeyViolation(tt.err), "foreign key")
		})
	}
}
