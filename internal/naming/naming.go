package naming

import (
	"path/filepath"
	"strings"
)

// SanitizeComponentName derives a component-safe name from an origin path,
// a $ref string, or a pre-existing component name.
//
// It strips the directory and extension, replaces any character outside
// [A-Za-z0-9_.-] with an underscore, trims leading/trailing "_-.", falls
// back to "Schema" if the result is empty, and prefixes "Schema_" if the
// first character is a digit.
func SanitizeComponentName(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		if isSafeNameChar(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), "_-.")

	if name == "" {
		return "Schema"
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "Schema_" + name
	}
	return name
}

func isSafeNameChar(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.' || r == '-':
		return true
	default:
		return false
	}
}
