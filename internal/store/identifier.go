package store

import (
	"fmt"
	"regexp"
)

// identifierPattern matches the table and column names the accessor will
// place in statement text. Everything else is rejected before quoting.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

func validateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}
