package domain

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCPF(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
		err   error
	}{
		{"masked valid", "123.456.789-09", true, nil},
		{"bare valid", "98765432100", true, nil},
		{"partial separators", "123456789-09", true, nil},
		{"repeated digits", "111.111.111-11", false, ErrTrivialDigits},
		{"zeros", "00000000000", false, ErrTrivialDigits},
		{"wrong first check digit", "123.456.789-19", false, ErrChecksum},
		{"wrong second check digit", "123.456.789-08", false, ErrChecksum},
		{"too short", "123.456.789-0", false, ErrFormat},
		{"too long", "987654321000", false, ErrFormat},
		{"letters", "abc.def.ghi-jk", false, ErrFormat},
		{"wrong separators", "123-456-789.09", false, ErrFormat},
		{"empty", "", false, ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := ValidateCPF(tt.input, false)
			assert.Equal(t, tt.valid, ok)
			assert.NoError(t, err, "lenient mode never returns an error")

			ok, err = ValidateCPF(tt.input, true)
			assert.Equal(t, tt.valid, ok)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestValidateCPF_TrivialSequencesAlwaysRejected(t *testing.T) {
	for d := '0'; d <= '9'; d++ {
		input := strings.Repeat(string(d), CPFLength)
		ok, _ := ValidateCPF(input, false)
		assert.False(t, ok, input)

		_, err := ValidateCPF(input, true)
		assert.ErrorIs(t, err, ErrTrivialDigits, input)
	}
}

func TestValidateCPF_StrictStopsAtFirstFailure(t *testing.T) {
	// Bad format and bad length at once: only the format error is reported.
	_, err := ValidateCPF("111.111.111-1", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
	assert.False(t, errors.Is(err, ErrTrivialDigits))
}

func TestValidateCPF_SeparatorsDoNotChangeResult(t *testing.T) {
	inputs := []string{"123.456.789-09", "987.654.321-00", "123.456.789-08", "111.111.111-11"}
	for _, masked := range inputs {
		bare := onlyDigits(masked)
		a, _ := ValidateCPF(masked, false)
		b, _ := ValidateCPF(bare, false)
		assert.Equal(t, a, b, masked)
	}
}

func TestValidateCPFFormat(t *testing.T) {
	ok, err := ValidateCPFFormat("123.456.789-09", false)
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, _ = ValidateCPFFormat("98765432100", false)
	assert.True(t, ok)

	ok, err = ValidateCPFFormat("123.456.789-0", false)
	assert.False(t, ok)
	assert.NoError(t, err)

	ok, _ = ValidateCPFFormat("987654321000", false)
	assert.False(t, ok)

	_, err = ValidateCPFFormat("123.456.789-0", true)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestValidateCPFLength(t *testing.T) {
	ok, _ := ValidateCPFLength("123.456.789-09", false)
	assert.True(t, ok)

	ok, _ = ValidateCPFLength("98765432100", false)
	assert.True(t, ok)

	ok, err := ValidateCPFLength("123.456.789-0", false)
	assert.False(t, ok)
	assert.NoError(t, err)

	ok, _ = ValidateCPFLength("987654321000", false)
	assert.False(t, ok)

	_, err = ValidateCPFLength("123.456.789-0", true)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestValidateCPFNotTrivial(t *testing.T) {
	ok, _ := ValidateCPFNotTrivial("111.111.111-11", false)
	assert.False(t, ok)

	ok, _ = ValidateCPFNotTrivial("11111111111", false)
	assert.False(t, ok)

	ok, _ = ValidateCPFNotTrivial("98765432100", false)
	assert.True(t, ok)

	_, err := ValidateCPFNotTrivial("22222222222", true)
	assert.ErrorIs(t, err, ErrTrivialDigits)
}

func TestValidateCPFChecksum(t *testing.T) {
	ok, _ := ValidateCPFChecksum("123.456.789-09", false)
	assert.True(t, ok)

	ok, err := ValidateCPFChecksum("123.456.789-10", false)
	assert.False(t, ok)
	assert.NoError(t, err)

	_, err = ValidateCPFChecksum("123.456.789-10", true)
	assert.ErrorIs(t, err, ErrChecksum)
	assert.Contains(t, err.Error(), "first check digit")

	_, err = ValidateCPFChecksum("123.456.789-00", true)
	assert.ErrorIs(t, err, ErrChecksum)
	assert.Contains(t, err.Error(), "second check digit")
}

func TestCPFCheckDigits(t *testing.T) {
	first, second := CPFCheckDigits([9]int{1, 2, 3, 4, 5, 6, 7, 8, 9})
	assert.Equal(t, 0, first)
	assert.Equal(t, 9, second)

	first, second = CPFCheckDigits([9]int{9, 8, 7, 6, 5, 4, 3, 2, 1})
	assert.Equal(t, 0, first)
	assert.Equal(t, 0, second)
}

func TestGenerateCPF(t *testing.T) {
	for i := 0; i < 500; i++ {
		cpf := GenerateCPF(false)
		assert.Len(t, cpf, CPFLength)
		assert.Regexp(t, `^\d{11}$`, cpf)

		ok, err := ValidateCPF(cpf, true)
		assert.True(t, ok, cpf)
		assert.NoError(t, err)
	}
}

func TestGenerateCPF_Masked(t *testing.T) {
	cpf := GenerateCPF(true)
	assert.Regexp(t, `^\d{3}\.\d{3}\.\d{3}-\d{2}$`, cpf)

	ok, _ := ValidateCPF(cpf, false)
	assert.True(t, ok)
}

func TestGenerateCPF_Deterministic(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	digits := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	i := 0
	fixed := func(int) int {
		d := digits[i%len(digits)]
		i++
		return d
	}

	assert.Equal(t, "12345678909", generateCPF(fixed, false))
	i = 0
	assert.Equal(t, "123.456.789-09", generateCPF(fixed, true))

	for n := 0; n < 100; n++ {
		cpf := generateCPF(r.IntN, true)
		ok, _ := ValidateCPF(cpf, false)
		assert.True(t, ok, cpf)
	}
}

func TestGenerateCPF_SkipsRepeatedBase(t *testing.T) {
	// First draw is nine 7s, then 1..9.
	seq := append([]int{7, 7, 7, 7, 7, 7, 7, 7, 7}, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	i := 0
	next := func(int) int {
		d := seq[i]
		i++
		return d
	}

	assert.Equal(t, "12345678909", generateCPF(next, false))
}

func TestMaskCPF(t *testing.T) {
	assert.Equal(t, "123.456.789-09", MaskCPF("12345678909"))
	assert.Equal(t, "123.456.789-09", MaskCPF("123.456.789-09"))
	assert.Equal(t, "1234", MaskCPF("12-34"))
}
