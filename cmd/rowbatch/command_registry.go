package main

import (
	"errors"
	"sort"
	"strings"
)

// commandEntry maps a REPL prefix to its handler and optional tab-completer.
type commandEntry struct {
	prefix    string
	handler   func(args string) error
	completer func(args string) (completionContext, string) // nil = no arg completion
	hidden    bool                                          // excluded from commandNames()
}

// initCommands builds the command registry and sorts by prefix length descending.
func (s *Session) initCommands() {
	s.commands = []commandEntry{
		// --- display ---
		{prefix: "help", handler: func(_ string) error { s.cmdHelp(); return nil }},
		{prefix: "records", handler: func(_ string) error { return s.cmdRecords() }},
		{prefix: "tables", handler: func(_ string) error { return s.cmdTables() }},
		{prefix: "settings", handler: func(_ string) error { return s.cmdSettings() }},
		{prefix: "size", handler: func(_ string) error { return s.cmdSize() }},
		{prefix: "plan", handler: func(_ string) error { return s.cmdPlan() }},

		// --- tables and records ---
		{prefix: "table ", handler: func(a string) error { return s.cmdTable(a) }, completer: completeSchemaTable},
		{prefix: "t ", handler: func(a string) error { return s.cmdTable(a) }, hidden: true},
		{prefix: "new ", handler: func(a string) error { return s.cmdNew(a) }, completer: completeRecordTable},
		{prefix: "loaded ", handler: func(a string) error { return s.cmdLoaded(a) }, completer: completeRecordTable},
		{prefix: "set ", handler: func(a string) error { return s.cmdSet(a) }},
		{prefix: "select ", handler: func(a string) error { return s.cmdSelect(a) }},
		{prefix: "refresh ", handler: func(a string) error { return s.cmdRefresh(a) }},

		// --- batch ---
		{prefix: "queue ", handler: func(a string) error { return s.cmdQueue(a) }, completer: completeQueueArgs},
		{prefix: "exec", handler: func(_ string) error { return s.cmdExec() }},
		{prefix: "run", handler: func(_ string) error { return s.cmdExec() }, hidden: true},
		{prefix: "clear ", handler: func(a string) error { return s.cmdClear(a) }},
		{prefix: "clear", handler: func(_ string) error { return s.cmdClear("") }},

		// --- settings ---
		{prefix: "dialect ", handler: func(a string) error { return s.cmdDialect(a) }, completer: completeDialectArgs},
		{prefix: "dialect", handler: func(_ string) error { return s.cmdShowDialect() }},
		{prefix: "static ", handler: func(a string) error { return s.cmdStatic(a) }, completer: completeToggleArgs},
		{prefix: "dedupe ", handler: func(a string) error { return s.cmdDedupe(a) }, completer: completeToggleArgs},
		{prefix: "params ", handler: func(a string) error { return s.cmdParams(a) }, completer: completeParamArgs},

		// --- database connectivity ---
		{prefix: "connect ", handler: func(a string) error { return s.cmdConnect(a) }, completer: completeEngineArgs},
		{prefix: "connect", handler: func(_ string) error { return errors.New("usage: connect <engine> <dsn>") }},
		{prefix: "disconnect", handler: func(_ string) error { return s.cmdDisconnect() }},
		{prefix: "sql ", handler: func(a string) error { return s.cmdSQL(a) }},

		// --- plugins ---
		{prefix: "plugin ", handler: func(a string) error { return s.cmdPlugin(a) }, completer: completePluginArgs},
		{prefix: "plugins", handler: func(_ string) error { s.cmdPlugins(); return nil }},
	}

	// Sort by prefix length descending so longest prefixes match first.
	sort.SliceStable(s.commands, func(i, j int) bool {
		return len(s.commands[i].prefix) > len(s.commands[j].prefix)
	})
}

// commandNames derives the command name list from the registry for tab completion.
func (s *Session) commandNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, cmd := range s.commands {
		if cmd.hidden {
			continue
		}
		name := strings.TrimRight(cmd.prefix, " ")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	// exit/quit are handled by the REPL loop, not Execute().
	for _, extra := range []string{"exit", "quit"} {
		if !seen[extra] {
			names = append(names, extra)
		}
	}
	sort.Strings(names)
	return names
}

// --- Argument completion ---

func completeSchemaTable(args string) (completionContext, string) {
	if strings.Contains(args, " ") {
		return contextNone, ""
	}
	return contextSchemaTable, args
}

func completeRecordTable(args string) (completionContext, string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return contextTableName, ""
	}
	if len(fields) == 1 && !strings.HasSuffix(args, " ") {
		return contextTableName, fields[0]
	}
	last := ""
	if !strings.HasSuffix(args, " ") {
		last = fields[len(fields)-1]
	}
	if strings.Contains(last, "=") {
		return contextNone, ""
	}
	return contextColumn, fields[0] + "." + last
}

func completeQueueArgs(args string) (completionContext, string) {
	if strings.Contains(args, " ") {
		return contextNone, ""
	}
	return contextAction, args
}

func completeDialectArgs(args string) (completionContext, string) {
	return contextDialect, strings.TrimSpace(args)
}

func completeToggleArgs(args string) (completionContext, string) {
	return contextToggle, strings.TrimSpace(args)
}

func completeParamArgs(args string) (completionContext, string) {
	return contextParamType, strings.TrimSpace(args)
}

func completeEngineArgs(args string) (completionContext, string) {
	if strings.Contains(args, " ") {
		return contextNone, ""
	}
	return contextEngine, args
}

func completePluginArgs(args string) (completionContext, string) {
	lower := strings.ToLower(args)
	if strings.HasPrefix(lower, "off ") {
		return contextPluginOff, strings.TrimSpace(args[len("off "):])
	}
	if strings.Contains(args, " ") {
		return contextNone, ""
	}
	return contextPlugin, args
}
