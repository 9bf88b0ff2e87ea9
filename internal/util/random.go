// Package util provides utility functions shared across Sharibot components.
package util

import (
	"math/rand/v2"
	"strings"
)

// GenerateRandomID generates a random ID with the specified prefix and hex length.
// The returned ID will be in the format: "{prefix}{hex_string}".
func GenerateRandomID(prefix string, hexLength int) string {
	return prefix + GenerateRandomHex(hexLength)
}

// GenerateRandomHex generates a random hexadecimal string of the specified length.
// Uses math/rand/v2; not suitable for cryptographic purposes.
func GenerateRandomHex(length int) string {
	if length <= 0 {
		return ""
	}

	const hexChars = "0123456789abcdef"
	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		builder.WriteByte(hexChars[rand.IntN(16)])
	}

	return builder.String()
}

// GenerateRandomDigits generates a random decimal digit string of the
// specified length. Used for order number collision retries.
func GenerateRandomDigits(length int) string {
	if length <= 0 {
		return ""
	}

	const digits = "0123456789"
	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		builder.WriteByte(digits[rand.IntN(10)])
	}

	return builder.String()
}

// GenerateMessageID generates a unique message audit ID with "m_" prefix.
func GenerateMessageID() string {
	return GenerateRandomID("m_", 32)
}
