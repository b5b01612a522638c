package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ergochat/readline"
	"go.uber.org/zap"

	"github.com/bawdo/rowbatch/batch"
	"github.com/bawdo/rowbatch/config"
	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/records"
	"github.com/bawdo/rowbatch/visitors"
)

var (
	errNotConnected = errors.New("not connected (use 'connect <engine> <dsn>' first)")
	errEmptyQueue   = errors.New("nothing queued (use 'queue <action> <n>' first)")
)

// Session holds the REPL state: table definitions, the records typed in so
// far, the queued batch operations and the active dialect and settings.
type Session struct {
	family      dialect.Family
	settings    config.Settings
	logger      *zap.Logger
	tables      map[string]*records.Table
	recs        []*records.Record
	queue       []batch.Operation
	plugins     pluginRegistry
	configurers []pluginConfigurer
	commands    []commandEntry // command registry (sorted by prefix length desc)
	conn        *dbConn        // nil when disconnected
	rl          *readline.Instance
	out         io.Writer // destination for REPL output (default os.Stdout)
}

// NewSession creates a session rendering for family.
func NewSession(family dialect.Family, settings config.Settings, logger *zap.Logger, rl *readline.Instance) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		family:   family,
		settings: settings,
		logger:   logger,
		tables:   make(map[string]*records.Table),
		rl:       rl,
		out:      os.Stdout,
	}
	s.configurers = []pluginConfigurer{
		{name: "softdelete", configure: configureSoftdelete},
	}
	s.initCommands()
	return s
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// configuration builds the configuration batches run with. Without a
// connection it can only compile.
func (s *Session) configuration() *config.Configuration {
	cfg := config.New(s.family, nil,
		config.WithSettings(s.settings),
		config.WithLogger(s.logger))
	if s.conn != nil {
		cfg.Executor = s.conn.exec
	}
	return cfg
}

func (s *Session) batch() *batch.Batch {
	return batch.New(s.configuration(), s.queue...)
}

// recordNumber returns the 1-based number of r, or 0.
func (s *Session) recordNumber(r *records.Record) int {
	for i, rec := range s.recs {
		if rec == r {
			return i + 1
		}
	}
	return 0
}

func (s *Session) pluginNames() []string {
	names := make([]string, len(s.configurers))
	for i, c := range s.configurers {
		names[i] = c.name
	}
	return names
}

func (s *Session) tableNames() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute parses and runs a single REPL command.
func (s *Session) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "--") {
		return nil
	}
	lower := strings.ToLower(line)

	for _, cmd := range s.commands {
		if strings.HasSuffix(cmd.prefix, " ") {
			if strings.HasPrefix(lower, cmd.prefix) {
				return cmd.handler(line[len(cmd.prefix):])
			}
		} else if lower == cmd.prefix {
			return cmd.handler("")
		}
	}

	word := strings.Fields(line)[0]
	return fmt.Errorf("unknown command: %s (type 'help' for commands)", word)
}

// --- Command handlers ---

func (s *Session) cmdDialect(args string) error {
	name := strings.ToLower(strings.TrimSpace(args))
	family := dialect.ParseFamily(name)
	if family == dialect.Default && name != dialect.Default.String() {
		return fmt.Errorf("unknown dialect %q", name)
	}
	if s.conn != nil && s.conn.family != family {
		s.printf("  Note: connected to %s, statements will render for %s\n", s.conn.family, family)
	}
	s.family = family
	s.printf("  Dialect: %s\n", family)
	return nil
}

func (s *Session) cmdShowDialect() error {
	s.printf("  Dialect: %s\n", s.family)
	return nil
}

func (s *Session) cmdConnect(args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return errors.New("usage: connect <engine> <dsn>")
	}
	engine := fields[0]
	dsn := strings.TrimSpace(strings.TrimSpace(args)[len(engine):])

	if s.conn != nil {
		_ = s.conn.close()
		s.conn = nil
	}
	conn, err := connect(engine, dsn, s.logger)
	if err != nil {
		return err
	}
	s.conn = conn
	s.family = conn.family
	s.printf("  Connected to %s (%s), dialect %s\n", conn.engine, sanitizeDSN(dsn), conn.family)
	return nil
}

func (s *Session) cmdDisconnect() error {
	if s.conn == nil {
		return errNotConnected
	}
	err := s.conn.close()
	s.conn = nil
	s.printf("  Disconnected\n")
	return err
}

// cmdTable registers a table. Without a column list the columns and key
// are introspected from the connected database.
//
//	table users id:serial, name:text, email key id
func (s *Session) cmdTable(args string) error {
	args = strings.TrimSpace(args)
	name, rest, _ := strings.Cut(args, " ")
	if name == "" {
		return errors.New("usage: table <name> <col>[:type], ... [key <col>, ...]")
	}
	rest = strings.TrimSpace(rest)

	var t *records.Table
	if rest == "" {
		if s.conn == nil {
			return errors.New("usage: table <name> <col>[:type], ... [key <col>, ...]")
		}
		cols := s.conn.schemaColumns(name)
		if len(cols) == 0 {
			return fmt.Errorf("table %q not found in the connected database", name)
		}
		t = tableFromSchema(name, cols)
	} else {
		colPart, keyPart := rest, ""
		if idx := strings.Index(strings.ToLower(rest), " key "); idx >= 0 {
			colPart, keyPart = rest[:idx], rest[idx+len(" key "):]
		} else if strings.HasPrefix(strings.ToLower(rest), "key ") {
			return errors.New("no columns before key")
		}
		cols, err := parseColumns(colPart)
		if err != nil {
			return err
		}
		t = records.NewTable(name, cols...)
		if keyPart != "" {
			var keys []string
			for _, k := range strings.Split(keyPart, ",") {
				k = strings.TrimSpace(k)
				if _, ok := t.Index(k); !ok {
					return fmt.Errorf("key column %q is not a column of %s", k, name)
				}
				keys = append(keys, k)
			}
			t.Key(keys...)
		}
	}
	t.Use(&s.plugins)
	s.tables[name] = t

	s.printf("  Table %s (%s)", name, strings.Join(t.ColumnNames(), ", "))
	if len(t.PrimaryKey) > 0 {
		s.printf(" key (%s)", strings.Join(t.PrimaryKey, ", "))
	}
	s.printf("\n")
	return nil
}

func tableFromSchema(name string, cols []columnInfo) *records.Table {
	rc := make([]records.Column, len(cols))
	var keys []string
	for i, c := range cols {
		rc[i] = records.Column{Name: c.name, TypeName: c.typeName}
		if c.key {
			keys = append(keys, c.name)
		}
	}
	// a single integer key is treated as generated
	if len(keys) == 1 {
		for i := range rc {
			if rc[i].Name == keys[0] && typeKind(rc[i].TypeName) == kindInt {
				rc[i].Identity = true
			}
		}
	}
	return records.NewTable(name, rc...).Key(keys...)
}

func (s *Session) cmdTables() error {
	if len(s.tables) == 0 {
		s.printf("  (no tables)\n")
		return nil
	}
	for _, name := range s.tableNames() {
		t := s.tables[name]
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = c.Name
			if c.TypeName != "" {
				cols[i] += ":" + c.TypeName
			}
		}
		s.printf("  %s (%s)", name, strings.Join(cols, ", "))
		if len(t.PrimaryKey) > 0 {
			s.printf(" key (%s)", strings.Join(t.PrimaryKey, ", "))
		}
		s.printf("\n")
	}
	return nil
}

func (s *Session) lookupTable(name string) (*records.Table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q (use 'table %s <cols>' first)", name, name)
	}
	return t, nil
}

// typedValues parses col=val pairs against t, typing values by column.
func typedValues(t *records.Table, pairs []assignment) ([]any, error) {
	values := make([]any, len(pairs))
	for n, p := range pairs {
		i, ok := t.Index(p.column)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", records.ErrUnknownColumn, t.Name, p.column)
		}
		v, err := parseValue(p.raw, t.Columns[i].TypeName)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.column, err)
		}
		values[n] = v
	}
	return values, nil
}

// assign applies col=val pairs to r. Nothing is changed when a pair does
// not fit r's table.
func assign(r *records.Record, pairs []assignment) error {
	values, err := typedValues(r.Table(), pairs)
	if err != nil {
		return err
	}
	for n, p := range pairs {
		if err := r.Set(p.column, values[n]); err != nil {
			return err
		}
	}
	return nil
}

// cmdNew creates a record that does not exist in storage yet.
func (s *Session) cmdNew(args string) error {
	name, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	if name == "" {
		return errors.New("usage: new <table> col=val ...")
	}
	t, err := s.lookupTable(name)
	if err != nil {
		return err
	}
	pairs, err := parseAssignments(rest)
	if err != nil {
		return err
	}
	r := records.NewRecord(t)
	if err := assign(r, pairs); err != nil {
		return err
	}
	s.recs = append(s.recs, r)
	s.printf("  Record %d (%s, new)\n", len(s.recs), name)
	return nil
}

// cmdLoaded creates a record as if it had been fetched with the given
// values. Unnamed columns are NULL.
func (s *Session) cmdLoaded(args string) error {
	name, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	if name == "" {
		return errors.New("usage: loaded <table> col=val ...")
	}
	t, err := s.lookupTable(name)
	if err != nil {
		return err
	}
	pairs, err := parseAssignments(rest)
	if err != nil {
		return err
	}
	values := make([]any, len(t.Columns))
	for _, p := range pairs {
		i, ok := t.Index(p.column)
		if !ok {
			return fmt.Errorf("%w: %s.%s", records.ErrUnknownColumn, name, p.column)
		}
		v, err := parseValue(p.raw, t.Columns[i].TypeName)
		if err != nil {
			return fmt.Errorf("%s: %w", p.column, err)
		}
		values[i] = v
	}
	s.recs = append(s.recs, records.Fetched(t, values...))
	s.printf("  Record %d (%s, fetched)\n", len(s.recs), name)
	return nil
}

func (s *Session) cmdSet(args string) error {
	num, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	idx, err := parseIndexes(num, len(s.recs))
	if err != nil {
		return err
	}
	pairs, err := parseAssignments(rest)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return errors.New("usage: set <n> col=val ...")
	}
	// Records may span tables; check every one before changing any.
	for _, i := range idx {
		if _, err := typedValues(s.recs[i].Table(), pairs); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	for _, i := range idx {
		if err := assign(s.recs[i], pairs); err != nil {
			return err
		}
	}
	s.printf("  Updated %d record(s)\n", len(idx))
	return nil
}

// cmdQueue queues an action for one or more records.
//
//	queue store 1,2,4-6
func (s *Session) cmdQueue(args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return errors.New("usage: queue <action> <n>[,<n>...]")
	}
	action, err := records.ParseAction(fields[0])
	if err != nil {
		return err
	}
	idx, err := parseIndexes(strings.Join(fields[1:], ""), len(s.recs))
	if err != nil {
		return err
	}
	for _, i := range idx {
		s.queue = append(s.queue, batch.Operation{Action: action, Record: s.recs[i]})
	}
	s.printf("  Queued %d %s operation(s), %d total\n", len(idx), action, len(s.queue))
	return nil
}

func (s *Session) cmdSize() error {
	s.printf("  %d operation(s) queued\n", len(s.queue))
	return nil
}

func (s *Session) cmdPlan() error {
	if len(s.queue) == 0 {
		return errEmptyQueue
	}
	p, err := s.batch().Compile()
	if err != nil {
		return err
	}
	_, _ = io.WriteString(s.out, formatPlan(p))
	return nil
}

// cmdExec executes the queued batch and clears the queue on success.
func (s *Session) cmdExec() error {
	if s.conn == nil {
		return errNotConnected
	}
	if len(s.queue) == 0 {
		return errEmptyQueue
	}
	b := s.batch()
	p, err := b.Compile()
	if err != nil {
		return err
	}
	outcomes, err := b.Execute(context.Background())
	if err != nil {
		return err
	}
	_, _ = io.WriteString(s.out, formatOutcomes(p, b.Operations(), s.recordNumber, outcomes))
	s.queue = nil
	return nil
}

// cmdSQL runs a statement directly, outside of any batch.
func (s *Session) cmdSQL(args string) error {
	if s.conn == nil {
		return errNotConnected
	}
	stmt := strings.TrimSpace(args)
	if stmt == "" {
		return errors.New("usage: sql <statement>")
	}
	n, err := s.conn.execRaw(context.Background(), stmt)
	if err != nil {
		return err
	}
	s.printf("  OK, %d row(s) affected\n", n)
	s.conn.schema.columns = make(map[string][]columnInfo)
	if err := s.conn.loadSchema(); err != nil {
		return fmt.Errorf("reload schema: %w", err)
	}
	return nil
}

// cmdSelect shows the query that reads back each listed record.
func (s *Session) cmdSelect(args string) error {
	idx, err := parseIndexes(strings.TrimSpace(args), len(s.recs))
	if err != nil {
		return err
	}
	cfg := s.configuration()
	for _, i := range idx {
		q, err := s.recs[i].SelectQuery(cfg)
		if err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		s.printf("  %d: %s\n", i+1, q.SQL)
		if len(q.Args) > 0 {
			s.printf("     %s\n", formatBindSet(q.Args))
		}
	}
	return nil
}

// cmdRefresh reloads the listed records from the connected database.
func (s *Session) cmdRefresh(args string) error {
	if s.conn == nil {
		return errNotConnected
	}
	idx, err := parseIndexes(strings.TrimSpace(args), len(s.recs))
	if err != nil {
		return err
	}
	cfg := s.configuration()
	for _, i := range idx {
		r := s.recs[i]
		prev := r.Attach(cfg)
		err := r.Refresh(context.Background())
		r.Attach(prev)
		if err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	s.printf("  Refreshed %d record(s)\n", len(idx))
	return nil
}

func (s *Session) cmdRecords() error {
	_, _ = io.WriteString(s.out, formatRecords(s.recs))
	return nil
}

func (s *Session) cmdStatic(args string) error {
	on, err := parseOnOff(args)
	if err != nil {
		return err
	}
	s.settings.ExecuteStaticStatements = on
	s.printf("  Static statements: %s\n", onOff(on))
	return nil
}

func (s *Session) cmdDedupe(args string) error {
	on, err := parseOnOff(args)
	if err != nil {
		return err
	}
	s.settings.DeduplicateStaticStatements = on
	s.printf("  Deduplicate static statements: %s\n", onOff(on))
	return nil
}

func (s *Session) cmdParams(args string) error {
	pt, err := visitors.ParseParamType(args)
	if err != nil {
		return err
	}
	s.settings.ParamType = pt
	s.printf("  Param type: %s\n", pt)
	return nil
}

func (s *Session) cmdSettings() error {
	st := s.settings
	s.printf("  dialect:                  %s\n", s.family)
	s.printf("  param_type:               %s\n", st.ParamType)
	s.printf("  static statements:        %s\n", onOff(st.ExecuteStaticStatements))
	s.printf("  deduplicate statements:   %s\n", onOff(st.DeduplicateStaticStatements))
	s.printf("  updatable primary keys:   %s\n", onOff(st.UpdatablePrimaryKeys))
	if s.conn != nil {
		s.printf("  connection:               %s %s\n", s.conn.engine, sanitizeDSN(s.conn.dsn))
	}
	return nil
}

// cmdClear empties the queue. 'clear all' also drops records.
func (s *Session) cmdClear(args string) error {
	n := len(s.queue)
	s.queue = nil
	if strings.EqualFold(strings.TrimSpace(args), "all") {
		s.recs = nil
		s.printf("  Cleared %d operation(s) and all records\n", n)
		return nil
	}
	s.printf("  Cleared %d operation(s)\n", n)
	return nil
}

func (s *Session) cmdPlugin(args string) error {
	args = strings.TrimSpace(args)
	name, rest, _ := strings.Cut(args, " ")
	name = strings.ToLower(name)
	if name == "off" {
		target := strings.TrimSpace(rest)
		if target == "" {
			s.plugins.deregisterAll()
			s.printf("  All plugins disabled\n")
			return nil
		}
		if !s.plugins.deregister(target) {
			return fmt.Errorf("plugin %q is not enabled", target)
		}
		s.printf("  Plugin %s disabled\n", target)
		return nil
	}
	for _, c := range s.configurers {
		if c.name == name {
			return c.configure(s, rest)
		}
	}
	return fmt.Errorf("unknown plugin %q (available: %s)", name, strings.Join(s.pluginNames(), ", "))
}

func (s *Session) cmdPlugins() {
	if len(s.plugins.entries) == 0 {
		s.printf("  (no plugins enabled)\n")
		return
	}
	for _, e := range s.plugins.entries {
		s.printf("  %s: %s\n", e.name, e.status())
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (s *Session) cmdHelp() {
	_, _ = fmt.Fprintln(s.out, `
  Tables and records:
    table <name> <col>[:type], ... [key <col>, ...]   Define a table
    table <name>              Introspect a table from the connected database
    tables                    List defined tables
    new <table> col=val ...   Create a record that is not stored yet
    loaded <table> col=val .. Create a record as if fetched from storage
    set <n> col=val ...       Change values of record n (n may be a list)
    records                   List records with change flags
    select <n>[,..]           Show the query that reads record n back
    refresh <n>[,..]          Reload record n from the connected database

  Batch:
    queue <action> <n>[,..]   Queue store|insert|update|merge|delete for records
    size                      Number of queued operations
    plan                      Compile the queue and show statement buckets
    exec                      Execute the queue on the connection
    clear [all]               Empty the queue (and records with 'all')

  Settings:
    dialect <family>          postgres, yugabytedb, mysql, sqlite, oracle, default
    static on|off             Inline values and send plain statements
    dedupe on|off             Drop repeated statements in static mode
    params <type>             indexed, named or inlined placeholders
    settings                  Show current settings

  Connection:
    connect <engine> <dsn>    Open a connection (pgx, postgres, mysql, sqlite)
    disconnect                Close the connection
    sql <statement>           Run a statement directly

  Plugins:
    plugin softdelete [col] [on <tables>]   Guard UPDATE and DELETE with col IS NULL
    plugin off [name]         Disable plugins
    plugins                   List enabled plugins

    exit | quit               Leave the REPL`)
}
