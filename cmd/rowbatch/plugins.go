package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/plugins"
	"github.com/bawdo/rowbatch/plugins/softdelete"
)

// pluginEntry represents an enabled plugin in the registry.
type pluginEntry struct {
	name        string
	transformer plugins.Transformer
	status      func() string
}

// pluginRegistry holds the currently enabled plugins. Every table the
// session registers uses the registry as its transformer, so enabling or
// disabling a plugin affects records that already exist.
type pluginRegistry struct {
	entries []pluginEntry // applied in registration order
}

var _ plugins.Transformer = (*pluginRegistry)(nil)

// register adds or replaces a plugin by name.
func (r *pluginRegistry) register(entry pluginEntry) {
	for i, e := range r.entries {
		if e.name == entry.name {
			r.entries[i] = entry
			return
		}
	}
	r.entries = append(r.entries, entry)
}

// deregister removes a plugin by name. Returns false if not found.
func (r *pluginRegistry) deregister(name string) bool {
	for i, e := range r.entries {
		if e.name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (r *pluginRegistry) deregisterAll() {
	r.entries = nil
}

func (r *pluginRegistry) names() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.name
	}
	return out
}

func (r *pluginRegistry) pipeline() plugins.Pipeline {
	p := make(plugins.Pipeline, len(r.entries))
	for i, e := range r.entries {
		p[i] = e.transformer
	}
	return p
}

func (r *pluginRegistry) TransformSelect(c *nodes.SelectCore) (*nodes.SelectCore, error) {
	return r.pipeline().Select(c)
}

func (r *pluginRegistry) TransformInsert(s *nodes.InsertStatement) (*nodes.InsertStatement, error) {
	return r.pipeline().Insert(s)
}

func (r *pluginRegistry) TransformUpdate(s *nodes.UpdateStatement) (*nodes.UpdateStatement, error) {
	return r.pipeline().Update(s)
}

func (r *pluginRegistry) TransformDelete(s *nodes.DeleteStatement) (*nodes.DeleteStatement, error) {
	return r.pipeline().Delete(s)
}

// pluginConfigurer parses plugin arguments and registers the plugin.
type pluginConfigurer struct {
	name      string
	configure func(s *Session, args string) error
}

// configureSoftdelete parses softdelete arguments and registers the plugin.
//
//	plugin softdelete                          deleted_at on every table
//	plugin softdelete removed_at               custom column
//	plugin softdelete removed_at on users      custom column, listed tables
//	plugin softdelete users.removed_at, ...    per-table columns
func configureSoftdelete(s *Session, args string) error {
	rest := strings.TrimSpace(args)
	var opts []softdelete.Option
	var statusFn func() string

	switch {
	case strings.Contains(rest, "."):
		columns := map[string]string{}
		for _, pair := range strings.Split(rest, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			table, col, _ := strings.Cut(pair, ".")
			if table == "" || col == "" {
				return fmt.Errorf("invalid table.column pair: %q", pair)
			}
			opts = append(opts, softdelete.WithTableColumn(table, col))
			columns[table] = col
		}
		statusFn = func() string {
			pairs := make([]string, 0, len(columns))
			for t, c := range columns {
				pairs = append(pairs, t+"."+c)
			}
			sort.Strings(pairs)
			return strings.Join(pairs, ", ")
		}

	case strings.Contains(strings.ToLower(rest), " on "):
		idx := strings.Index(strings.ToLower(rest), " on ")
		col := strings.TrimSpace(rest[:idx])
		tableList := strings.Fields(rest[idx+4:])
		if col == "" || len(tableList) == 0 {
			return errors.New("usage: plugin softdelete <column> on <table1> [table2 ...]")
		}
		opts = append(opts, softdelete.WithColumn(col), softdelete.WithTables(tableList...))
		statusFn = func() string {
			return fmt.Sprintf("column: %s, tables: %s", col, strings.Join(tableList, ", "))
		}

	case rest != "":
		col := strings.Fields(rest)[0]
		opts = append(opts, softdelete.WithColumn(col))
		statusFn = func() string { return "column: " + col }

	default:
		statusFn = func() string { return "column: deleted_at" }
	}

	s.plugins.register(pluginEntry{
		name:        "softdelete",
		transformer: softdelete.New(opts...),
		status:      statusFn,
	})
	s.printf("  Soft-delete enabled (%s)\n", statusFn())
	return nil
}
