// REPL binary for planning and executing record batches interactively.
//
// Configuration (env vars):
//
//	ROWBATCH_CONFIG=<path>               (optional YAML file, see config.File)
//	ROWBATCH_ENGINE=pgx|postgres|mysql|sqlite  (optional, overrides the file)
//	ROWBATCH_DSN=<dsn>                   (optional, auto-connects if set)
//
// Usage:
//
//	go run ./cmd/rowbatch
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"

	"github.com/bawdo/rowbatch/config"
)

const promptText = "rowbatch> "

func main() {
	file, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger, err := config.NewLogger(file.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:          promptText,
		HistoryFile:     historyPath(),
		HistoryLimit:    500,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	sess := NewSession(file.Family(), file.Settings, logger, rl)
	_ = rl.SetConfig(&readline.Config{
		Prompt:          promptText,
		HistoryFile:     historyPath(),
		HistoryLimit:    500,
		AutoComplete:    &replCompleter{sess: sess},
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})

	fmt.Printf("[Config] Dialect: %s\n", sess.family)
	if file.DSN != "" {
		engine := file.Engine
		if engine == "" {
			engine = sess.family.String()
		}
		fmt.Printf("[Config] Connecting to %s %s...\n", engine, sanitizeDSN(file.DSN))
		if err := sess.Execute("connect " + engine + " " + file.DSN); err != nil {
			fmt.Fprintf(os.Stderr, "  Warning: connect failed: %v\n", err)
		}
	}

	fmt.Println()
	fmt.Println("Rowbatch REPL: type 'help' for commands, 'exit' to quit")
	fmt.Println()

	for {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if lower == "exit" || lower == "quit" {
			break
		}
		if err := sess.Execute(line); err != nil {
			fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		}
	}
	if sess.conn != nil {
		_ = sess.conn.close()
	}
	fmt.Println()
}

// loadConfig reads ROWBATCH_CONFIG when set and applies the environment
// overrides.
func loadConfig() (*config.File, error) {
	file := &config.File{Settings: config.DefaultSettings()}
	if path := os.Getenv("ROWBATCH_CONFIG"); path != "" {
		f, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		file = f
	}
	applyEnv(file, os.Getenv)
	return file, nil
}

func applyEnv(file *config.File, getenv func(string) string) {
	if engine := strings.TrimSpace(getenv("ROWBATCH_ENGINE")); engine != "" {
		file.Engine = engine
		if file.Dialect == "" {
			file.Dialect = engine
		}
	}
	if dsn := strings.TrimSpace(getenv("ROWBATCH_DSN")); dsn != "" {
		file.DSN = dsn
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rowbatch_history")
}
