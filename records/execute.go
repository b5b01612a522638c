package records

import (
	"context"
	"fmt"

	"github.com/bawdo/rowbatch/query"
)

// Store executes StoreQuery on the attached configuration.
func (r *Record) Store(ctx context.Context) (int64, error) {
	return r.execute(ctx, Store)
}

// Insert executes InsertQuery on the attached configuration.
func (r *Record) Insert(ctx context.Context) (int64, error) {
	return r.execute(ctx, Insert)
}

// Update executes UpdateQuery on the attached configuration.
func (r *Record) Update(ctx context.Context) (int64, error) {
	return r.execute(ctx, Update)
}

// Merge executes MergeQuery on the attached configuration.
func (r *Record) Merge(ctx context.Context) (int64, error) {
	return r.execute(ctx, Merge)
}

// Delete executes DeleteQuery on the attached configuration.
func (r *Record) Delete(ctx context.Context) (int64, error) {
	return r.execute(ctx, Delete)
}

// Refresh reloads every column from the row r identifies. Afterwards r is
// fetched and unchanged.
func (r *Record) Refresh(ctx context.Context) error {
	cfg := r.cfg
	if cfg == nil {
		return ErrDetached
	}
	if cfg.Executor == nil {
		return ErrNoExecutor
	}
	q, err := r.SelectQuery(cfg)
	if err != nil {
		return err
	}

	dest := make([]any, len(r.values))
	ptrs := make([]any, len(dest))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := cfg.Executor.QueryRow(ctx, q.SQL, q.Args, ptrs...); err != nil {
		return fmt.Errorf("records: refresh %s: %w", r.table.Name, err)
	}
	copy(r.values, dest)
	r.SetChanged(false)
	r.fetched = true
	return nil
}

// execute compiles action against the attached configuration, runs it and
// applies the bookkeeping. Returned columns are copied into the record.
func (r *Record) execute(ctx context.Context, action Action) (int64, error) {
	cfg := r.cfg
	if cfg == nil {
		return 0, ErrDetached
	}
	if cfg.Executor == nil {
		return 0, ErrNoExecutor
	}

	if action == Store {
		if r.storeUpdates(cfg) {
			action = Update
		} else {
			action = Insert
		}
	}

	var (
		q         query.Compiled
		returning []int
		err       error
	)
	if action == Insert {
		q, returning, err = r.insertQuery(cfg)
	} else {
		q, err = r.Query(cfg, action)
	}
	if err != nil {
		return 0, err
	}
	if !q.Executable {
		r.Executed(action)
		return 0, nil
	}

	var n int64
	if len(returning) > 0 {
		dest := make([]any, len(returning))
		ptrs := make([]any, len(returning))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := cfg.Executor.QueryRow(ctx, q.SQL, q.Args, ptrs...); err != nil {
			return 0, fmt.Errorf("records: %s %s: %w", action, r.table.Name, err)
		}
		for i, idx := range returning {
			r.values[idx] = dest[i]
		}
		n = 1
	} else {
		n, err = cfg.Executor.Exec(ctx, q.SQL, q.Args)
		if err != nil {
			return 0, fmt.Errorf("records: %s %s: %w", action, r.table.Name, err)
		}
	}

	r.Executed(action)
	return n, nil
}
