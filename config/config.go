// Package config holds the configuration threaded through compilation and
// execution: the dialect family, behaviour settings, the executor and the
// logger. Configurations are values; Derive never mutates its receiver.
package config

import (
	"go.uber.org/zap"

	"github.com/bawdo/rowbatch/dialect"
	"github.com/bawdo/rowbatch/executor"
	"github.com/bawdo/rowbatch/visitors"
)

// Settings are the togglable behaviour flags.
type Settings struct {
	// ExecuteLogging logs every compiled statement at debug level.
	ExecuteLogging bool `yaml:"execute_logging"`

	// ReturnAllOnUpdatableRecord fetches every column back after an insert.
	ReturnAllOnUpdatableRecord bool `yaml:"return_all_on_updatable_record"`

	// ReturnIdentityOnUpdatableRecord fetches the identity column back
	// after an insert.
	ReturnIdentityOnUpdatableRecord bool `yaml:"return_identity_on_updatable_record"`

	// ExecuteStaticStatements makes batches inline every value and send
	// plain statements instead of prepared bind sets.
	ExecuteStaticStatements bool `yaml:"execute_static_statements"`

	// DeduplicateStaticStatements drops repeated statements from a static
	// batch, keeping the first occurrence.
	DeduplicateStaticStatements bool `yaml:"deduplicate_static_statements"`

	// UpdatablePrimaryKeys lets Store update a fetched record whose primary
	// key changed instead of inserting a new row.
	UpdatablePrimaryKeys bool `yaml:"updatable_primary_keys"`

	// ParamType selects placeholder or inlined rendering.
	ParamType visitors.ParamType `yaml:"param_type"`
}

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() Settings {
	return Settings{
		ExecuteLogging:                  true,
		ReturnIdentityOnUpdatableRecord: true,
		ParamType:                       visitors.Indexed,
	}
}

// Configuration is the explicit context for compiling and executing
// statements.
type Configuration struct {
	Family   dialect.Family
	Settings Settings
	Executor executor.Executor
	Logger   *zap.Logger
}

// Option configures a Configuration at construction time.
type Option func(*Configuration)

// WithSettings replaces the default settings.
func WithSettings(s Settings) Option {
	return func(c *Configuration) { c.Settings = s }
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *Configuration) { c.Logger = l }
}

// New creates a Configuration for family executing through exec. exec may
// be nil for configurations that only compile.
func New(family dialect.Family, exec executor.Executor, opts ...Option) *Configuration {
	c := &Configuration{
		Family:   family,
		Settings: DefaultSettings(),
		Executor: exec,
		Logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Derive returns an independent copy with fn applied to its settings.
func (c *Configuration) Derive(fn func(*Settings)) *Configuration {
	d := *c
	if fn != nil {
		fn(&d.Settings)
	}
	return &d
}

// Capabilities returns the capability entry for the configured family.
func (c *Configuration) Capabilities() dialect.Capabilities {
	return dialect.Lookup(c.Family)
}

// Log returns the configured logger, never nil.
func (c *Configuration) Log() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
