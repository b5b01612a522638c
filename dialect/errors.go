package dialect

import (
	"errors"
	"fmt"
)

// UnsupportedFeatureError reports that a statement needs a capability the
// active dialect family lacks.
type UnsupportedFeatureError struct {
	Feature string
	Dialect Family
	Hint    string
}

func (e *UnsupportedFeatureError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s is not supported: %s", e.Dialect, e.Feature, e.Hint)
	}
	return fmt.Sprintf("%s: %s is not supported", e.Dialect, e.Feature)
}

// Unsupported creates an UnsupportedFeatureError. At most one hint is used.
func Unsupported(f Family, feature string, hint ...string) error {
	err := &UnsupportedFeatureError{Feature: feature, Dialect: f}
	if len(hint) > 0 {
		err.Hint = hint[0]
	}
	return err
}

// IsUnsupported reports whether err is, or wraps, an UnsupportedFeatureError.
func IsUnsupported(err error) bool {
	var e *UnsupportedFeatureError
	return errors.As(err, &e)
}
