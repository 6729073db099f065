package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds node ids and names read from scene documents.
const maxIDLength = 256

// ValidateNodeID validates a scene node id.
// Ids are used as XML/DOT identifiers and cache key material, so the rules
// are conservative:
//   - No control characters
//   - No quotes or angle brackets
//   - Maximum length of 256 characters
//
// An empty id is valid; the scene loader assigns one.
func ValidateNodeID(id string) error {
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidScene, "node id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidScene, "node id contains invalid control characters")
		}
	}
	if strings.ContainsAny(id, `"'<>`) {
		return New(ErrCodeInvalidScene, "node id contains invalid characters: %q", id)
	}
	return nil
}

// ValidateColor validates a fill color. Accepted forms are "" (no fill),
// "#RGB" and "#RRGGBB".
func ValidateColor(c string) error {
	if c == "" {
		return nil
	}
	if !strings.HasPrefix(c, "#") || (len(c) != 4 && len(c) != 7) {
		return New(ErrCodeInvalidScene, "invalid color %q (want #RGB or #RRGGBB)", c)
	}
	for _, r := range c[1:] {
		if !unicode.Is(unicode.ASCII_Hex_Digit, r) {
			return New(ErrCodeInvalidScene, "invalid color %q (want #RGB or #RRGGBB)", c)
		}
	}
	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
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
