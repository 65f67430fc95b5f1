// Package dialect selects the tree-sitter grammar used for a source file.
//
// Two dialects are supported: Baseline (C) and Extended (C++, a superset of C).
// The dialect fixes the node-kind and field vocabulary of every tree parsed and
// every query compiled with it.
package dialect

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDialect is returned by Parse for names that match no dialect.
var ErrUnknownDialect = errors.New("unknown dialect")

// Dialect identifies one of the two supported grammars.
type Dialect uint8

const (
	// Baseline is the C dialect.
	Baseline Dialect = iota
	// Extended is the C++ dialect.
	Extended
)

// String returns the grammar name of the dialect.
func (d Dialect) String() string {
	switch d {
	case Baseline:
		return "c"
	case Extended:
		return "cpp"
	default:
		return fmt.Sprintf("dialect(%d)", uint8(d))
	}
}

// IsExtended reports whether d is the Extended dialect.
func (d Dialect) IsExtended() bool { return d == Extended }

// Parse resolves a user-supplied dialect name. Accepted spellings are
// "baseline", "c", "extended", "cpp" and "c++", case-insensitive.
func Parse(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "baseline", "c":
		return Baseline, nil
	case "extended", "cpp", "c++", "cxx":
		return Extended, nil
	default:
		return Baseline, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Dialect) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Dialect) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}
