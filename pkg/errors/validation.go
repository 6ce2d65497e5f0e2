package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxKeyLength bounds storage keys; they end up in file names and Redis keys.
const maxKeyLength = 256

// ValidateKey validates a storage key for safety and correctness.
// It rejects keys that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty keys
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - No colons (they separate store namespaces)
//   - Maximum length of 256 characters
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "key cannot be empty")
	}

	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "key contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
		":",    // Namespace separator
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "key contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateDimensions validates the size of the element being mapped.
// Zero or negative sizes are legal for the solver but never useful for a
// real element, so the tool layers reject them up front.
func ValidateDimensions(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidDimensions, "dimensions must be finite")
		}
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidDimensions, "width and height must be positive, got %gx%g", width, height)
	}
	return nil
}
