package errors

import (
	"strings"
	"unicode"
)

// ValidateMapName validates a map name taken from a filename or a request.
// It rejects names that could escape the output directory once they are
// used to build the output filename.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - No '-' (it separates name and floor in filenames)
//   - Maximum length of 128 characters
func ValidateMapName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "map name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "map name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "map name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",
		"/",
		"\\",
		"-",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "map name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePath validates a filesystem path given on the command line or in
// the config file.
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

// ValidateURL validates a URL string for safety.
// It ensures the URL has a redis scheme, which is the only remote
// endpoint the tool connects to.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidInput, "URL must use redis or rediss scheme")
	}

	return nil
}
