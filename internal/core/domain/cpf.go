/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package domain

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
)

// CPFLength is the number of numerals in a taxpayer ID.
const CPFLength = 11

// Accepts xxx.xxx.xxx-xx or xxxxxxxxxxx; each separator is optional.
var cpfPattern = regexp.MustCompile(`^(\d{3})\.?(\d{3})\.?(\d{3})-?(\d{2})$`)

// --- Checks ---
// Each check returns nil or a wrapped sentinel. The exported wrappers decide,
// through strict, whether the caller sees the error or just false.

func checkCPFFormat(input string) error {
	if !cpfPattern.MatchString(input) {
		return fmt.Errorf("%w: CPF must look like xxx.xxx.xxx-xx or xxxxxxxxxxx", ErrFormat)
	}
	return nil
}

func checkCPFLength(input string) error {
	if n := len(onlyDigits(input)); n != CPFLength {
		return fmt.Errorf("%w: CPF must have %d digits, got %d", ErrFormat, CPFLength, n)
	}
	return nil
}

func checkCPFNotTrivial(input string) error {
	digits := onlyDigits(input)
	if digits == "" {
		return nil
	}
	if strings.Count(digits, digits[:1]) == len(digits) {
		return fmt.Errorf("%w: %s", ErrTrivialDigits, digits)
	}
	return nil
}

func checkCPFChecksum(input string) error {
	digits := CPFDigits(input)
	if len(digits) != CPFLength {
		return fmt.Errorf("%w: CPF must have %d digits, got %d", ErrFormat, CPFLength, len(digits))
	}

	var base [9]int
	copy(base[:], digits[:9])
	first, second := CPFCheckDigits(base)

	if digits[9] != first {
		return fmt.Errorf("%w: first check digit is %d, expected %d", ErrChecksum, digits[9], first)
	}
	if digits[10] != second {
		return fmt.Errorf("%w: second check digit is %d, expected %d", ErrChecksum, digits[10], second)
	}
	return nil
}

// --- Public API ---

// ValidateCPFFormat checks the shape of the input (grouping and separators only).
func ValidateCPFFormat(input string, strict bool) (bool, error) {
	return outcome(checkCPFFormat(input), strict)
}

// ValidateCPFLength checks that the input carries exactly 11 numerals once
// every other character is removed.
func ValidateCPFLength(input string, strict bool) (bool, error) {
	return outcome(checkCPFLength(input), strict)
}

// ValidateCPFNotTrivial rejects sequences such as 111.111.111-11, which can pass
// the checksum but are never issued.
func ValidateCPFNotTrivial(input string, strict bool) (bool, error) {
	return outcome(checkCPFNotTrivial(input), strict)
}

// ValidateCPFChecksum recomputes both check digits from the first nine
// numerals and compares them with the last two.
func ValidateCPFChecksum(input string, strict bool) (bool, error) {
	return outcome(checkCPFChecksum(input), strict)
}

// ValidateCPF runs format, length, not-trivial and checksum checks in that
// order and stops at the first failure.
//
// In strict mode the failure is returned as an error wrapping ErrFormat,
// ErrTrivialDigits or ErrChecksum. Otherwise the result is simply false.
func ValidateCPF(input string, strict bool) (bool, error) {
	checks := []func(string) error{
		checkCPFFormat,
		checkCPFLength,
		checkCPFNotTrivial,
		checkCPFChecksum,
	}
	for _, check := range checks {
		if err := check(input); err != nil {
			return outcome(err, strict)
		}
	}
	return true, nil
}

// CPFCheckDigits computes the two check digits for the nine base digits.
// Both the validator and the generator go through here.
func CPFCheckDigits(base [9]int) (int, int) {
	var ten [10]int
	copy(ten[:], base[:])

	first := checkDigit(base[:], 10)
	ten[9] = first
	second := checkDigit(ten[:], 11)
	return first, second
}

// checkDigit weights the digits from startWeight downwards and reduces the sum mod 11.
func checkDigit(digits []int, startWeight int) int {
	sum := 0
	for i, d := range digits {
		sum += d * (startWeight - i)
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

// GenerateCPF returns a random CPF that always passes ValidateCPF.
// When masked is true it is formatted as xxx.xxx.xxx-xx.
func GenerateCPF(masked bool) string {
	return generateCPF(rand.IntN, masked)
}

func generateCPF(intn func(int) int, masked bool) string {
	var base [9]int
	for {
		for i := range base {
			base[i] = intn(10)
		}
		// A repeated base would yield a trivial CPF such as 111.111.111-11.
		if !allEqual(base[:]) {
			break
		}
	}
	first, second := CPFCheckDigits(base)

	var b strings.Builder
	b.Grow(CPFLength)
	for _, d := range base {
		b.WriteByte(byte('0' + d))
	}
	b.WriteByte(byte('0' + first))
	b.WriteByte(byte('0' + second))

	if masked {
		return MaskCPF(b.String())
	}
	return b.String()
}

// CPFDigits returns the numerals of the input as ints, ignoring everything else.
func CPFDigits(input string) []int {
	raw := onlyDigits(input)
	digits := make([]int, len(raw))
	for i := 0; i < len(raw); i++ {
		digits[i] = int(raw[i] - '0')
	}
	return digits
}

// MaskCPF formats 11 numerals as xxx.xxx.xxx-xx. Other inputs are returned
// as their bare numerals.
func MaskCPF(input string) string {
	d := onlyDigits(input)
	if len(d) != CPFLength {
		return d
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}

func allEqual(digits []int) bool {
	for _, d := range digits[1:] {
		if d != digits[0] {
			return false
		}
	}
	return true
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
