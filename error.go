package schemahelper

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrDuplicateMigration is returned by Apply when two migrations share a name.
	ErrDuplicateMigration = errors.New("duplicate migration name")

	// ErrInvalidIdentifier is returned for table names that are unsafe to
	// place into SQL.
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// DriverError records original sql driver error and supporting info that caused it.
type DriverError struct {
	// Info contains supporting info
	Info string

	// Err is the original (possibly driver-specific) error
	Err error
}

func (e *DriverError) Error() string { return e.Info + ": " + e.Err.Error() }

// Unwrap returns the driver error.
func (e *DriverError) Unwrap() error { return e.Err }

// UnderlyingError returns the underlying error from DriverError.
func UnderlyingError(err error) error {
	var derr *DriverError
	if errors.As(err, &derr) {
		return derr.Err
	}
	return err
}

var identifierRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// validateIdentifier ensures name contains only characters safe for SQL.
func validateIdentifier(name, what string) error {
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%w: %s must start with a letter and contain only letters, numbers and underscores (got %q)", ErrInvalidIdentifier, what, name)
	}
	return nil
}
