package batch

import "errors"

// ErrOutcomeMismatch is returned when the executor reports a different
// number of outcomes than statements or bind sets were sent.
var ErrOutcomeMismatch = errors.New("batch: outcome count mismatch")

// Bucket is a group of operations that compiled to identical SQL.
type Bucket struct {
	SQL string

	// BindSets holds one set of bound values per member.
	BindSets [][]any

	// Members are the operation indexes in input order.
	Members []int
}

// Plan is the result of compiling a batch.
type Plan struct {
	// Static is set when the batch sends inlined statements.
	Static bool

	// Buckets are the prepared groups in first-seen order.
	Buckets []*Bucket

	// Statements are the inlined statements of a static batch in input
	// order.
	Statements []string

	// Skipped are the indexes of operations that compiled to a no-op.
	Skipped []int
}

// Queries returns the number of statements or bind sets that will execute,
// which is also the length of the outcome slice.
func (p *Plan) Queries() int {
	if p.Static {
		return len(p.Statements)
	}
	n := 0
	for _, b := range p.Buckets {
		n += len(b.BindSets)
	}
	return n
}

// Distinct returns the number of distinct statements sent.
func (p *Plan) Distinct() int {
	if !p.Static {
		return len(p.Buckets)
	}
	seen := make(map[string]struct{}, len(p.Statements))
	for _, s := range p.Statements {
		seen[s] = struct{}{}
	}
	return len(seen)
}

// AverageBindSets returns the mean number of bind sets per bucket, zero
// for static or empty plans.
func (p *Plan) AverageBindSets() float64 {
	if p.Static || len(p.Buckets) == 0 {
		return 0
	}
	return float64(p.Queries()) / float64(len(p.Buckets))
}
