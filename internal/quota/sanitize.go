package quota

import (
	"strings"
	"unicode"
)

// SecureFilename reduces a client-supplied filename to a form that is
// safe to join onto the storage root: directory components are stripped,
// whitespace collapses to underscores, and anything outside
// [A-Za-z0-9._-] is dropped. The result can be empty, in which case the
// caller must skip the file.
func SecureFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('_')
		}
	}

	// A name of only dots or underscores would escape nothing but also
	// store nothing useful; trimming makes ".." and "." come out empty.
	return strings.Trim(b.String(), "._")
}
