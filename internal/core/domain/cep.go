package domain

import (
	"fmt"
	"regexp"
)

// NamespaceCEP is the cache namespace for address lookups.
const NamespaceCEP = "ceps"

// Accepts xxxxx-xxx or xxxxxxxx.
var cepPattern = regexp.MustCompile(`^(\d{5})-?(\d{3})$`)

func checkCEPFormat(input string) error {
	if !cepPattern.MatchString(input) {
		return fmt.Errorf("%w: CEP must look like xxxxx-xxx or xxxxxxxx", ErrFormat)
	}
	return nil
}

// ValidateCEPFormat checks that the input is 8 numerals with an optional
// hyphen after the fifth one.
func ValidateCEPFormat(input string, strict bool) (bool, error) {
	return outcome(checkCEPFormat(input), strict)
}

// NormalizeCEP strips everything but numerals. It is the cache key and the
// value sent to the address service.
func NormalizeCEP(input string) string {
	return onlyDigits(input)
}
