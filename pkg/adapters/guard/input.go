package guard

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "QUERENT_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// CheckInput enforces the size limit from the environment (or
// DefaultMaxInputSize) and validates UTF-8. It never rewrites the input:
// control characters are left for the prompt sanitizer to strip and report.
func CheckInput(input string) error {
	return checkText(input, MaxInputSize())
}

// checkText rejects text longer than limit bytes (limit <= 0 disables the
// check) or with invalid UTF-8.
func checkText(input string, limit int) error {
	if limit > 0 && len(input) > limit {
		// Rejected rather than truncated: a cut question changes its meaning.
		return fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return ErrInvalidUTF8
	}
	return nil
}

// sanitizeText applies checkText and drops control characters other than
// newline, tab and carriage return.
func sanitizeText(input string, limit int) (string, error) {
	if err := checkText(input, limit); err != nil {
		return "", err
	}

	// Fast path: if no control chars, return as is.
	if strings.IndexFunc(input, isUnsafeControl) < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !isUnsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

// MaxInputSize returns the configured input limit.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
