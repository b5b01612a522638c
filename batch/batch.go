// Package batch executes many record operations with as few round trips as
// possible. Operations are compiled up front against an isolated
// configuration, grouped by identical SQL text and sent as one prepared
// statement per group with a bind set per record. In static mode every
// value is inlined and the statements are sent as a plain ordered list.
package batch

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bawdo/rowbatch/config"
	"github.com/bawdo/rowbatch/records"
	"github.com/bawdo/rowbatch/visitors"
)

// Action aliases records.Action so callers need only this package.
type Action = records.Action

const (
	Store  = records.Store
	Insert = records.Insert
	Update = records.Update
	Merge  = records.Merge
	Delete = records.Delete
)

// Operation is one queued record action.
type Operation struct {
	Action Action
	Record *records.Record
}

// Batch is an ordered list of record operations sharing one base
// configuration. A Batch is not safe for concurrent use.
type Batch struct {
	cfg *config.Configuration
	ops []Operation
}

// New creates a batch over cfg with the given operations.
func New(cfg *config.Configuration, ops ...Operation) *Batch {
	return &Batch{cfg: cfg, ops: append([]Operation(nil), ops...)}
}

// Of creates a batch applying the same action to every record.
func Of(cfg *config.Configuration, action Action, recs ...*records.Record) *Batch {
	return New(cfg).Add(action, recs...)
}

// Add queues action for each record.
func (b *Batch) Add(action Action, recs ...*records.Record) *Batch {
	for _, r := range recs {
		b.ops = append(b.ops, Operation{Action: action, Record: r})
	}
	return b
}

// Size returns the number of queued operations.
func (b *Batch) Size() int { return len(b.ops) }

// Operations returns a copy of the queued operations.
func (b *Batch) Operations() []Operation {
	return append([]Operation(nil), b.ops...)
}

// Configuration returns the base configuration.
func (b *Batch) Configuration() *config.Configuration { return b.cfg }

// Static reports whether the batch runs in literal mode: either the
// settings ask for static statements or parameter binding is off.
func (b *Batch) Static() bool {
	s := b.cfg.Settings
	return s.ExecuteStaticStatements || s.ParamType == visitors.Inlined
}

// derive returns the configuration operations are compiled with. Single
// statement logging and generated key fetching are off; static batches
// inline every value.
func (b *Batch) derive() *config.Configuration {
	static := b.Static()
	return b.cfg.Derive(func(s *config.Settings) {
		s.ExecuteLogging = false
		s.ReturnAllOnUpdatableRecord = false
		s.ReturnIdentityOnUpdatableRecord = false
		if static {
			s.ParamType = visitors.Inlined
		}
	})
}

// Compile compiles every operation in input order and groups the
// executable statements. Nothing is executed and no record is modified.
func (b *Batch) Compile() (*Plan, error) {
	local := b.derive()
	p := &Plan{Static: b.Static()}
	index := make(map[string]*Bucket)
	seen := make(map[string]bool)

	for i, op := range b.ops {
		if op.Record == nil {
			return nil, fmt.Errorf("batch: operation %d: nil record", i)
		}
		q, err := op.Record.Query(local, op.Action)
		if err != nil {
			return nil, fmt.Errorf("batch: operation %d (%s %s): %w", i, op.Action, op.Record.Table().Name, err)
		}
		if !q.Executable {
			p.Skipped = append(p.Skipped, i)
			continue
		}

		if p.Static {
			if b.cfg.Settings.DeduplicateStaticStatements {
				if seen[q.SQL] {
					continue
				}
				seen[q.SQL] = true
			}
			p.Statements = append(p.Statements, q.SQL)
			continue
		}

		bucket, ok := index[q.SQL]
		if !ok {
			bucket = &Bucket{SQL: q.SQL}
			index[q.SQL] = bucket
			p.Buckets = append(p.Buckets, bucket)
		}
		bucket.BindSets = append(bucket.BindSets, q.Args)
		bucket.Members = append(bucket.Members, i)
	}
	return p, nil
}

// Execute compiles the batch, executes it and applies the bookkeeping to
// every record, including those whose operation was a no-op. It returns
// one affected-row count per executed statement or bind set, in bucket
// order. On error nothing is bookkept.
func (b *Batch) Execute(ctx context.Context) ([]int64, error) {
	if b.cfg.Executor == nil {
		return nil, records.ErrNoExecutor
	}
	p, err := b.Compile()
	if err != nil {
		return nil, err
	}
	b.logPlan(p)

	var counts []int64
	if p.Static {
		if len(p.Statements) > 0 {
			counts, err = b.cfg.Executor.ExecStatic(ctx, p.Statements)
			if err != nil {
				return nil, fmt.Errorf("batch: execute static: %w", err)
			}
			if len(counts) != len(p.Statements) {
				return nil, fmt.Errorf("%w: %d statements, %d outcomes", ErrOutcomeMismatch, len(p.Statements), len(counts))
			}
		}
	} else {
		for i, bucket := range p.Buckets {
			c, err := b.cfg.Executor.ExecBatch(ctx, bucket.SQL, bucket.BindSets)
			if err != nil {
				return nil, fmt.Errorf("batch: execute bucket %d: %w", i, err)
			}
			if len(c) != len(bucket.BindSets) {
				return nil, fmt.Errorf("%w: bucket %d has %d members, %d outcomes", ErrOutcomeMismatch, i, len(bucket.BindSets), len(c))
			}
			counts = append(counts, c...)
		}
	}

	for _, op := range b.ops {
		op.Record.Executed(op.Action)
	}
	if counts == nil {
		counts = []int64{}
	}
	return counts, nil
}

func (b *Batch) logPlan(p *Plan) {
	log := b.cfg.Log()
	if !log.Core().Enabled(zap.DebugLevel) {
		return
	}
	log.Debug("batch",
		zap.String("actions", b.actionMix()),
		zap.Int("records", len(b.ops)),
		zap.Int("distinct_statements", p.Distinct()),
		zap.Float64("avg_bind_sets", p.AverageBindSets()),
		zap.Bool("static", p.Static))
}

// actionMix summarises the queued actions as "STORE:3,DELETE:1" in
// first-seen order.
func (b *Batch) actionMix() string {
	var order []Action
	counts := make(map[Action]int)
	for _, op := range b.ops {
		if counts[op.Action] == 0 {
			order = append(order, op.Action)
		}
		counts[op.Action]++
	}
	parts := make([]string, len(order))
	for i, a := range order {
		parts[i] = fmt.Sprintf("%s:%d", a, counts[a])
	}
	return strings.Join(parts, ",")
}
