/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package domain

import "errors"

var (
	// ErrFormat is returned when the input does not match the expected shape of a CPF, CEP or phone number.
	ErrFormat = errors.New("invalid format")

	// ErrTrivialDigits is returned for a CPF made of 11 identical digits.
	ErrTrivialDigits = errors.New("all digits are identical")

	// ErrChecksum is returned when the CPF check digits do not match the computed ones.
	ErrChecksum = errors.New("check digit mismatch")

	// ErrLookup is returned when the address service has no result for a CEP,
	// or when the call itself fails.
	ErrLookup = errors.New("address lookup failed")

	// ErrInternal is returned when an unexpected error occurs.
	ErrInternal = errors.New("internal error")
)

// IsValidationError reports whether err belongs to the input validation family.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrFormat) || errors.Is(err, ErrTrivialDigits) || errors.Is(err, ErrChecksum)
}

// outcome turns a check result into the lenient or strict answer.
// A nil err is always (true, nil).
func outcome(err error, strict bool) (bool, error) {
	if err == nil {
		return true, nil
	}
	if strict {
		return false, err
	}
	return false, nil
}
