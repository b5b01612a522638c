package records

import (
	"errors"
	"fmt"

	"github.com/bawdo/rowbatch/config"
)

var (
	// ErrUnknownColumn is returned when a column name is not part of the
	// record's table.
	ErrUnknownColumn = errors.New("records: unknown column")

	// ErrNoPrimaryKey is returned for actions that identify a row by its
	// primary key on a table without one.
	ErrNoPrimaryKey = errors.New("records: table has no primary key")

	// ErrDetached is returned by the executing methods when no
	// configuration is attached.
	ErrDetached = errors.New("records: record is not attached to a configuration")

	// ErrNoExecutor is returned by the executing methods when the attached
	// configuration cannot execute statements.
	ErrNoExecutor = errors.New("records: configuration has no executor")
)

// Record is one row of a Table. It tracks which columns changed since it
// was loaded and the values the row had in storage, which key predicates
// use.
type Record struct {
	table     *Table
	values    []any
	originals []any
	changed   []bool
	fetched   bool
	cfg       *config.Configuration
}

// NewRecord creates an empty record that does not exist in storage yet.
func NewRecord(t *Table) *Record {
	n := len(t.Columns)
	return &Record{
		table:     t,
		values:    make([]any, n),
		originals: make([]any, n),
		changed:   make([]bool, n),
	}
}

// Fetched creates a record as loaded from storage. values are given in
// column order; missing trailing values are nil.
func Fetched(t *Table, values ...any) *Record {
	r := NewRecord(t)
	copy(r.values, values)
	copy(r.originals, values)
	r.fetched = true
	return r
}

// Table returns the record's table.
func (r *Record) Table() *Table { return r.table }

// Set assigns a column value and marks the column changed.
func (r *Record) Set(col string, val any) error {
	i, ok := r.table.Index(col)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, r.table.Name, col)
	}
	r.values[i] = val
	r.changed[i] = true
	return nil
}

// Get returns the current value of a column, nil for unknown columns.
func (r *Record) Get(col string) any {
	if i, ok := r.table.Index(col); ok {
		return r.values[i]
	}
	return nil
}

// Original returns the value the column had when the record was last
// loaded or stored.
func (r *Record) Original(col string) any {
	if i, ok := r.table.Index(col); ok {
		return r.originals[i]
	}
	return nil
}

// Values returns a copy of the current values in column order.
func (r *Record) Values() []any {
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

// Changed reports whether the column changed.
func (r *Record) Changed(col string) bool {
	if i, ok := r.table.Index(col); ok {
		return r.changed[i]
	}
	return false
}

// IsChanged reports whether any column changed.
func (r *Record) IsChanged() bool {
	for _, c := range r.changed {
		if c {
			return true
		}
	}
	return false
}

// ChangedColumns returns the changed column names in column order.
func (r *Record) ChangedColumns() []string {
	var cols []string
	for i, c := range r.changed {
		if c {
			cols = append(cols, r.table.Columns[i].Name)
		}
	}
	return cols
}

// SetChanged marks every column changed or unchanged. Marking unchanged
// also makes the current values the originals.
func (r *Record) SetChanged(changed bool) {
	for i := range r.changed {
		r.changed[i] = changed
	}
	if !changed {
		copy(r.originals, r.values)
	}
}

// IsFetched reports whether the record is known to exist in storage.
func (r *Record) IsFetched() bool { return r.fetched }

// Attach sets the configuration used by the executing methods and returns
// the previous one.
func (r *Record) Attach(cfg *config.Configuration) *config.Configuration {
	prev := r.cfg
	r.cfg = cfg
	return prev
}

// Configuration returns the attached configuration, nil when detached.
func (r *Record) Configuration() *config.Configuration { return r.cfg }

// Executed applies the bookkeeping that follows a successful action.
// A deleted record becomes new and fully changed, so storing it again
// inserts it. Any other action leaves the record unchanged and fetched.
func (r *Record) Executed(action Action) {
	if action == Delete {
		r.SetChanged(true)
		r.fetched = false
		return
	}
	r.SetChanged(false)
	r.fetched = true
}

// keyValue is the value that identifies the row in storage: the original
// for loaded records, the current value otherwise.
func (r *Record) keyValue(i int) any {
	if r.fetched {
		return r.originals[i]
	}
	return r.values[i]
}

func (r *Record) keyChanged() bool {
	for _, k := range r.table.PrimaryKey {
		if r.Changed(k) {
			return true
		}
	}
	return false
}
