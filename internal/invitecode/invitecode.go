// Package invitecode generates and normalizes group invite codes.
//
// Codes are Length upper-case hexadecimal characters. Both generation and
// lookup go through Normalize, so a code typed in any case or with stray
// whitespace finds its group.
package invitecode

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Length is the number of characters in a code.
const Length = 8

var codePattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

// Generate returns a fresh random code in canonical form. Uniqueness against
// existing groups is the caller's job.
func Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate invite code: %w", err)
	}
	// The first 8 hex digits of a v4 UUID are all random bits.
	return Normalize(strings.ReplaceAll(id.String(), "-", "")[:Length]), nil
}

// Normalize trims surrounding whitespace and upper-cases raw.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsValid reports whether raw is a well-formed code once normalized.
func IsValid(raw string) bool {
	return codePattern.MatchString(Normalize(raw))
}
