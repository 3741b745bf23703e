package appsettings

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotDeclared indicates a name was requested that the schema never
// declared.
var ErrNotDeclared = errors.New("setting not declared")

// ConfigurationError aggregates every per-setting failure found by a schema
// check. Checks never stop at the first failure; the full list is reported
// in one error.
type ConfigurationError struct {
	// Errors holds one entry per failing setting, in declaration order.
	Errors []error
}

// Error implements the error interface, one failure per line.
func (e *ConfigurationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *ConfigurationError) Unwrap() []error { return e.Errors }

// TypeError indicates a resolved value did not have the type a typed
// accessor asked for.
type TypeError struct {
	// Name is the declaration name of the setting.
	Name string
	// Expected is the requested type.
	Expected string
	// Actual is the resolved value's type.
	Actual string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("setting %s is not a %s (got %s)", e.Name, e.Expected, e.Actual)
}
