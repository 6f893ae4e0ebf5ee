package generator

import (
	"path/filepath"
	"strings"
)

// TestPath returns the sibling test file of path: dir/name.ext becomes
// dir/name<suffix>.ext.
func TestPath(path, suffix string) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	return dir + strings.TrimSuffix(base, ext) + suffix + ext
}

// Eligible reports whether path is a source file with extension ext that is
// not itself a test file.
func Eligible(path, ext, suffix string) bool {
	return strings.HasSuffix(path, ext) && !strings.HasSuffix(path, suffix+ext)
}
