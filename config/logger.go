package config

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// NewLogger builds a zap logger for a level name: "debug" gives a
// development logger, "info", "warn" and "error" a production logger at that
// level, and "" or "off" a no-op logger.
func NewLogger(level string) (*zap.Logger, error) {
	switch lvl := strings.ToLower(strings.TrimSpace(level)); lvl {
	case "", "off", "none":
		return zap.NewNop(), nil
	case "debug":
		l, err := zap.NewDevelopmentConfig().Build()
		if err != nil {
			return nil, fmt.Errorf("config: logger: %w", err)
		}
		return l, nil
	default:
		at, err := zap.ParseAtomicLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("config: logger: %w", err)
		}
		cfg := zap.NewProductionConfig()
		cfg.Level = at
		l, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("config: logger: %w", err)
		}
		return l, nil
	}
}
