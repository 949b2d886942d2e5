package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SupportedWellCounts lists the plate sizes plategen can lay out.
var SupportedWellCounts = []int{96, 384}

// ValidateWellCount checks that n names a supported plate size.
func ValidateWellCount(n int) error {
	for _, c := range SupportedWellCounts {
		if n == c {
			return nil
		}
	}
	return New(ErrCodeInvalidPlateSize, "invalid plate size %d (96 or 384)", n)
}

// uploadExtensions maps accepted experiment file extensions to decoder formats.
var uploadExtensions = map[string]string{
	".json": "json",
	".toml": "toml",
	".yaml": "yaml",
	".yml":  "yaml",
}

// ValidateUploadFilename validates the name of an uploaded experiment file and
// returns the decoder format implied by its extension.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No path separators (must be a basename)
//   - No control characters
//   - Extension must be .json, .toml, .yaml or .yml
func ValidateUploadFilename(name string) (string, error) {
	if name == "" {
		return "", New(ErrCodeInvalidInput, "upload filename cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return "", New(ErrCodeInvalidInput, "upload filename cannot contain path separators")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return "", New(ErrCodeInvalidInput, "upload filename contains invalid control characters")
		}
	}

	format, ok := uploadExtensions[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return "", New(ErrCodeInvalidFormat, "unsupported experiment file %q (want .json, .toml, .yaml)", name)
	}
	return format, nil
}

// ValidatePath validates an output path for safety.
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
