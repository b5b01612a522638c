package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/bawdo/rowbatch/records"
)

// assignment is one col=val pair as typed by the user.
type assignment struct {
	column string
	raw    string
}

// tokenize splits s on whitespace, keeping single-quoted strings (with ''
// escapes) together.
func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'':
			cur.WriteRune(r)
			if inQuote && i+1 < len(runes) && runes[i+1] == '\'' {
				cur.WriteRune(runes[i+1])
				i++
				continue
			}
			inQuote = !inQuote
		case unicode.IsSpace(r) && !inQuote:
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// parseAssignments parses "col=val col2='a b'" into pairs.
func parseAssignments(s string) ([]assignment, error) {
	var out []assignment
	for _, tok := range tokenize(s) {
		eq := strings.IndexByte(tok, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("expected col=value, got %q", tok)
		}
		out = append(out, assignment{column: tok[:eq], raw: tok[eq+1:]})
	}
	return out, nil
}

// parseValue converts a typed literal for a column of typeName. NULL is
// nil, quoted text is always a string.
func parseValue(raw, typeName string) (any, error) {
	if strings.EqualFold(raw, "null") {
		return nil, nil
	}
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		return strings.ReplaceAll(raw[1:len(raw)-1], "''", "'"), nil
	}
	switch typeKind(typeName) {
	case kindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", raw)
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}

type valueKind int

const (
	kindText valueKind = iota
	kindInt
	kindFloat
	kindBool
)

func typeKind(typeName string) valueKind {
	switch t := strings.ToLower(typeName); {
	case t == "serial" || t == "bigserial" || t == "identity" ||
		strings.Contains(t, "int") && !strings.Contains(t, "point") && !strings.HasPrefix(t, "interval"):
		return kindInt
	case t == "float" || t == "double" || t == "real" || t == "numeric" ||
		strings.HasPrefix(t, "decimal") || strings.HasPrefix(t, "double"):
		return kindFloat
	case t == "bool" || t == "boolean":
		return kindBool
	default:
		return kindText
	}
}

// parseColumns parses "id:serial, name:text, email" into columns. Serial
// and identity types are database generated.
func parseColumns(s string) ([]records.Column, error) {
	var cols []records.Column
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, typ, _ := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		typ = strings.ToLower(strings.TrimSpace(typ))
		if name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("invalid column %q", part)
		}
		cols = append(cols, records.Column{
			Name:     name,
			TypeName: typ,
			Identity: typ == "serial" || typ == "bigserial" || typ == "identity",
		})
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns")
	}
	return cols, nil
}

// parseIndexes parses a 1-based record list such as "1,2,5-7".
func parseIndexes(s string, max int) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi := part, part
		if a, b, ok := strings.Cut(part, "-"); ok {
			lo, hi = a, b
		}
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid record number %q", part)
		}
		to, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid record number %q", part)
		}
		if from > to {
			return nil, fmt.Errorf("invalid range %q", part)
		}
		for n := from; n <= to; n++ {
			if n < 1 || n > max {
				return nil, fmt.Errorf("no record %d (have %d)", n, max)
			}
			out = append(out, n-1)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no record numbers")
	}
	return out, nil
}

// parseOnOff parses a toggle argument.
func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
