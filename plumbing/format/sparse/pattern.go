// Package sparse implements reading and writing sparse-checkout pattern
// files, and the cone-mode compression of directory selections into a
// minimal pattern set.
//
// https://git-scm.com/docs/git-sparse-checkout#_internalssparse_checkout
package sparse

import "strings"

// Pattern is a single non-cone sparse-checkout pattern. The glob itself
// is opaque to this package, matching is performed by an external
// matcher with gitignore semantics, where later patterns override
// earlier ones.
type Pattern struct {
	// Pattern is the raw glob, without the leading "!" and without the
	// trailing "/".
	Pattern string
	// Negate excludes the matched paths instead of including them.
	Negate bool
	// DirOnly restricts the pattern to matching directories.
	DirOnly bool
}

// ParsePattern parses a single pattern file line into a Pattern.
func ParsePattern(line string) Pattern {
	var p Pattern

	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		p.DirOnly = true
		line = line[:len(line)-1]
	}

	p.Pattern = line
	return p
}

// String returns the pattern in pattern file syntax.
func (p Pattern) String() string {
	var sb strings.Builder
	if p.Negate {
		sb.WriteByte('!')
	}

	sb.WriteString(p.Pattern)

	if p.DirOnly {
		sb.WriteByte('/')
	}

	return sb.String()
}
