package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// maxIdentifierLength is the maximum allowed length for any identifier
const maxIdentifierLength = 100

// validateIdentifier applies the rules shared by task, group and resource
// identifiers. Identifiers are free-form names such as "T1" or "Architect".
func validateIdentifier(kind, s string) error {
	if s == "" {
		return fmt.Errorf("%s ID cannot be empty", kind)
	}

	if len(s) > maxIdentifierLength {
		return fmt.Errorf("%s ID %q exceeds maximum length of %d characters", kind, s, maxIdentifierLength)
	}

	if strings.TrimSpace(s) != s {
		return fmt.Errorf("%s ID %q cannot start or end with whitespace", kind, s)
	}

	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("%s ID %q cannot contain control characters", kind, s)
		}
	}

	return nil
}
