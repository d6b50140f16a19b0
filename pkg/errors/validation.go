package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// fieldNameRegex matches valid field names as they appear in data-field
// attributes: camelCase identifiers, optionally with digits and hyphens.
var fieldNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidateFieldName validates a field name taken from a data-field attribute.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Must start with a letter, then letters, digits, underscore, hyphen
//   - Maximum length of 128 characters
func ValidateFieldName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidField, "field name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidField, "field name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidField, "field name contains invalid control characters")
		}
	}

	if !fieldNameRegex.MatchString(name) {
		return New(ErrCodeInvalidField, "invalid field name: %q", name)
	}

	return nil
}

// ValidateTemplateName validates a template name for safety.
// It ensures the name is a simple basename without path components.
func ValidateTemplateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidTemplate, "template name cannot be empty")
	}

	// Must be a simple name, not a path
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidTemplate, "template name cannot contain path separators")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidTemplate, "template name cannot be a hidden file")
	}

	return nil
}

// ValidatePath validates a file path within the workspace for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Must not be absolute path
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// languageCodeRegex matches ISO 639-1 language codes with an optional
// region subtag (en, de, pt-BR, zh-CN).
var languageCodeRegex = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z]{2,4})?$`)

// ValidateLanguageCode validates a translation target language code.
func ValidateLanguageCode(code string) error {
	if code == "" {
		return New(ErrCodeInvalidLanguage, "language code cannot be empty")
	}

	if !languageCodeRegex.MatchString(code) {
		return New(ErrCodeInvalidLanguage, "invalid language code: %q", code)
	}

	return nil
}
