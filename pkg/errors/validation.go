package errors

import (
	"strings"
	"unicode"
)

// ValidateKey validates an item identity key received from a caller
// (CLI argument, URL path segment, cache label key).
//
// The validation rules are intentionally conservative:
//   - No empty keys
//   - No control characters
//   - No path separators
//   - Maximum length of 512 characters
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "item key cannot be empty")
	}

	if len(key) > 512 {
		return New(ErrCodeInvalidKey, "item key too long (max 512 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "item key contains invalid control characters")
		}
	}

	if strings.ContainsAny(key, "/\\") {
		return New(ErrCodeInvalidKey, "item key cannot contain path separators")
	}

	return nil
}

// ValidateBundleName validates an application bundle name such as
// "com.example.mail". Bundles are dot-separated and never blank.
func ValidateBundleName(name string) error {
	if err := ValidateKey(name); err != nil {
		return New(ErrCodeInvalidInput, "invalid bundle name %q: %s", name, UserMessage(err))
	}
	if strings.TrimSpace(name) != name || strings.Contains(name, " ") {
		return New(ErrCodeInvalidInput, "bundle name %q cannot contain spaces", name)
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "bundle name %q has an empty segment", name)
	}
	return nil
}

// ValidatePath validates a file path used for a local store or cache.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
