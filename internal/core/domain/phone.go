package domain

import (
	"fmt"
	"regexp"
)

var (
	phonePattern    = regexp.MustCompile(`^\d{4}-\d{4}$`)
	phoneDDDPattern = regexp.MustCompile(`^\(\d{2}\) \d{4}-\d{4}$`)
)

// ValidatePhoneFormat checks a landline number written as xxxx-xxxx, or as
// (xx) xxxx-xxxx when includeDDD is set.
func ValidatePhoneFormat(phone string, includeDDD, strict bool) (bool, error) {
	pattern, shape := phonePattern, "xxxx-xxxx"
	if includeDDD {
		pattern, shape = phoneDDDPattern, "(xx) xxxx-xxxx"
	}

	var err error
	if !pattern.MatchString(phone) {
		err = fmt.Errorf("%w: phone must look like %s", ErrFormat, shape)
	}
	return outcome(err, strict)
}
