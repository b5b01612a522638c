package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bawdo/rowbatch/dialect"
)

// File is the on-disk YAML configuration.
//
//	dialect: postgres
//	dsn: postgres://app@localhost/app
//	log: debug
//	settings:
//	  execute_static_statements: false
type File struct {
	Dialect  string   `yaml:"dialect"`
	Engine   string   `yaml:"engine,omitempty"`
	DSN      string   `yaml:"dsn,omitempty"`
	Log      string   `yaml:"log,omitempty"`
	Settings Settings `yaml:"settings"`
}

// Family resolves the configured dialect name. Unknown names fall back to
// dialect.Default.
func (f *File) Family() dialect.Family {
	return dialect.ParseFamily(f.Dialect)
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration. Settings missing from the document keep
// their DefaultSettings values.
func Parse(data []byte) (*File, error) {
	f := &File{Settings: DefaultSettings()}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if f.Engine == "" {
		f.Engine = f.Dialect
	}
	return f, nil
}
