package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidateRoot validates a walk root or content directory path.
// The path must be non-empty, absolute and free of control characters.
// Existence is checked by the caller against its filesystem.
func ValidateRoot(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if !filepath.IsAbs(path) {
		return New(ErrCodeInvalidPath, "path must be absolute: %s", path)
	}

	return nil
}

// ValidateWithin validates path like ValidateRoot and requires it to be base
// or a directory below base.
func ValidateWithin(base, path string) error {
	if err := ValidateRoot(path); err != nil {
		return err
	}
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path %s is outside %s", path, base)
	}
	return nil
}

// ValidateEntryPath validates the name of an archive entry before it is
// joined onto a destination directory.
//
// Validation rules:
//   - Name cannot be empty
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..) in any segment
//   - No backslashes (Windows-style paths)
func ValidateEntryPath(name string) error {
	if name == "" {
		return New(ErrCodeInvalidEntry, "entry name cannot be empty")
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidEntry, "entry name contains invalid characters")
		}
	}

	if strings.HasPrefix(name, "/") {
		return New(ErrCodeInvalidEntry, "entry must be relative (cannot start with /): %s", name)
	}

	if strings.Contains(name, "\\") {
		return New(ErrCodeInvalidEntry, "entry cannot contain backslashes: %s", name)
	}

	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidEntry, "entry cannot contain path traversal sequences: %s", name)
		}
	}

	return nil
}

// groupIDRegex matches Maven groupId values made of dotted identifiers.
var groupIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)*$`)

// ValidateGroupID validates a Maven groupId used as a placeholder for
// synthesized dependencies.
func ValidateGroupID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "groupId cannot be empty")
	}
	if !groupIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid groupId: %q", id)
	}
	return nil
}
