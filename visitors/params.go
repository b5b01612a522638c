package visitors

import (
	"fmt"
	"strings"
)

// ParamType selects how parameter values appear in rendered SQL.
type ParamType int

const (
	// Indexed renders the dialect's positional placeholder: ?, $1 or :1.
	Indexed ParamType = iota
	// Named renders :name for named parameters and :n otherwise.
	Named
	// Inlined renders every value as an escaped SQL literal. Nothing is bound.
	Inlined
)

var paramTypeNames = [...]string{
	Indexed: "indexed",
	Named:   "named",
	Inlined: "inlined",
}

func (p ParamType) String() string {
	if p >= 0 && int(p) < len(paramTypeNames) {
		return paramTypeNames[p]
	}
	return fmt.Sprintf("ParamType(%d)", int(p))
}

// ParseParamType parses a parameter mode name. "inline" and "literal" are
// accepted for Inlined.
func ParseParamType(s string) (ParamType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "indexed", "index", "positional":
		return Indexed, nil
	case "named":
		return Named, nil
	case "inlined", "inline", "literal":
		return Inlined, nil
	}
	return Indexed, fmt.Errorf("visitors: unknown param type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p ParamType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ParamType) UnmarshalText(b []byte) error {
	v, err := ParseParamType(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
