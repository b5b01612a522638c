package main

import (
	"sort"
	"strings"

	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/executor"
	"github.com/bawdo/rowbatch/records"
)

// completionContext describes what kind of completion is appropriate.
type completionContext int

const (
	contextCommand     completionContext = iota // start of line or partial command
	contextNone                                 // no completion
	contextTableName                            // registered table
	contextSchemaTable                          // registered or database table
	contextColumn                               // col= of a registered table
	contextAction                               // after queue
	contextDialect                              // after dialect
	contextEngine                               // after connect
	contextToggle                               // after static/dedupe
	contextParamType                            // after params
	contextPlugin                               // after plugin
	contextPluginOff                            // after plugin off
)

var toggles = []string{"off", "on"}
var paramTypes = []string{"indexed", "inlined", "named"}

// replCompleter implements readline's AutoCompleter interface.
type replCompleter struct {
	sess *Session
}

// Do returns completion candidates for the current line/cursor position.
// length is the number of chars from end of line[:pos] that form the prefix being completed.
// newLine contains the suffixes to append for each candidate.
func (c *replCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := string(line[:pos])
	ctx, prefix := c.parseContext(lineStr)

	var candidates []string
	trailer := " "
	switch ctx {
	case contextCommand:
		candidates = filterPrefix(c.sess.commandNames(), prefix)
	case contextTableName:
		candidates = filterPrefix(c.sess.tableNames(), prefix)
	case contextSchemaTable:
		candidates = c.completeSchemaTables(prefix)
	case contextColumn:
		table, col, _ := strings.Cut(prefix, ".")
		prefix = col
		candidates = c.completeColumns(table, col)
		trailer = "="
	case contextAction:
		candidates = filterPrefix(actionNames(), prefix)
	case contextDialect:
		candidates = filterPrefix(dialectNames(), prefix)
	case contextEngine:
		candidates = filterPrefix(executor.Engines(), prefix)
	case contextToggle:
		candidates = filterPrefix(toggles, prefix)
	case contextParamType:
		candidates = filterPrefix(paramTypes, prefix)
	case contextPlugin:
		candidates = filterPrefix(append([]string{"off"}, c.sess.pluginNames()...), prefix)
	case contextPluginOff:
		candidates = filterPrefix(c.sess.plugins.names(), prefix)
	}

	for _, cand := range candidates {
		suffix := cand[len(prefix):]
		newLine = append(newLine, []rune(suffix+trailer))
	}
	length = len([]rune(prefix))
	return
}

// parseContext examines the line up to cursor and determines what kind of
// completion is needed and the current prefix being typed.
func (c *replCompleter) parseContext(line string) (completionContext, string) {
	lower := strings.ToLower(line)

	for _, cmd := range c.sess.commands {
		if !strings.HasSuffix(cmd.prefix, " ") {
			continue // exact-match commands have no arg completion
		}
		if strings.HasPrefix(lower, cmd.prefix) {
			if cmd.completer == nil {
				return contextNone, ""
			}
			return cmd.completer(line[len(cmd.prefix):])
		}
	}

	return contextCommand, strings.TrimSpace(line)
}

// completeSchemaTables returns registered and database table names.
func (c *replCompleter) completeSchemaTables(prefix string) []string {
	names := c.sess.tableNames()
	if c.sess.conn != nil {
		names = append(names, c.sess.conn.schemaTables()...)
	}
	names = dedup(names)
	sort.Strings(names)
	return filterPrefix(names, prefix)
}

func (c *replCompleter) completeColumns(table, prefix string) []string {
	t, ok := c.sess.tables[table]
	if !ok {
		return nil
	}
	return filterPrefix(t.ColumnNames(), prefix)
}

func actionNames() []string {
	var names []string
	for _, a := range records.Actions() {
		names = append(names, strings.ToLower(a.String()))
	}
	return names
}

func dialectNames() []string {
	var names []string
	for _, f := range dialect.Families() {
		names = append(names, f.String())
	}
	sort.Strings(names)
	return names
}

// filterPrefix returns items that start with prefix (case-insensitive).
func filterPrefix(items []string, prefix string) []string {
	if prefix == "" {
		result := make([]string, len(items))
		copy(result, items)
		return result
	}
	lowerPrefix := strings.ToLower(prefix)
	var result []string
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item), lowerPrefix) {
			result = append(result, item)
		}
	}
	return result
}

// dedup removes duplicate strings while preserving order.
func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	var result []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
