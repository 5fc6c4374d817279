package file

import (
	"path/filepath"
	"slices"
	"strings"
)

// LowerExt returns the extension of path in lower case, including the dot.
func LowerExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// HasExt reports whether path ends with one of exts, ignoring case.
func HasExt(path string, exts []string) bool {
	ext := LowerExt(path)
	if ext == "" {
		return false
	}
	return slices.Contains(exts, ext)
}
