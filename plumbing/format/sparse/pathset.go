package sparse

import (
	"bufio"
	"io"
	"strings"
)

// Mode selects the pattern dialect held by a PathSet.
type Mode int

const (
	// Literal stores an ordered sequence of raw patterns, applied with
	// standard ignore-file precedence by an external matcher.
	Literal Mode = iota
	// Cone restricts the selection to whole directories, allowing the
	// set to be compressed into a minimal pattern file.
	Cone
)

// PathSet is a normalized collection of directory selections. In Cone
// mode it keeps two derived sets: the directories whose whole subtree
// is materialized, and the ancestor directories that must stay walkable
// for a deeper selection to be reachable. In Literal mode it keeps the
// raw pattern sequence verbatim.
//
// A PathSet is not safe for concurrent use.
type PathSet struct {
	mode Mode

	recursive map[string]struct{}
	ancestors map[string]struct{}
	patterns  []Pattern
}

// NewPathSet returns an empty PathSet with the given mode.
func NewPathSet(mode Mode) *PathSet {
	return &PathSet{
		mode:      mode,
		recursive: make(map[string]struct{}),
		ancestors: make(map[string]struct{}),
	}
}

// Mode returns the pattern dialect of the set.
func (s *PathSet) Mode() Mode {
	return s.mode
}

// Patterns returns the raw pattern sequence of a Literal set, in file
// order.
func (s *PathSet) Patterns() []Pattern {
	return s.patterns
}

// Add inserts a directory into the recursive set, and every proper
// ancestor of it into the ancestor set, stopping below the repository
// root. Ancestors already selected recursively are not added again, so
// insertion is idempotent and transitive. Adding the root itself is a
// no-op.
//
// The path is normalized first: surrounding whitespace and any trailing
// separator are stripped, and a leading "/" is added when missing.
func (s *PathSet) Add(dir string) {
	dir = normalize(dir)
	if dir == "" {
		return
	}

	s.recursive[dir] = struct{}{}

	for {
		i := strings.LastIndexByte(dir, '/')
		if i <= 0 {
			break
		}

		dir = dir[:i]
		if _, ok := s.recursive[dir]; !ok {
			s.ancestors[dir] = struct{}{}
		}
	}
}

// AddPattern appends a raw pattern to a Literal set.
func (s *PathSet) AddPattern(p Pattern) {
	s.patterns = append(s.patterns, p)
}

// AddFromReader reads line-delimited input from r and adds every line
// to the set, as directories in Cone mode or as raw patterns in Literal
// mode.
func (s *PathSet) AddFromReader(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if s.mode == Cone {
			s.Add(line)
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		s.AddPattern(ParsePattern(line))
	}

	return scanner.Err()
}

// Match reports whether a worktree path is inside the materialization
// described by a Cone set. The path is treated as a file path: entries
// directly under the root are always materialized, entries directly
// under an ancestor or recursive directory are materialized, and
// anything below a recursive directory is materialized.
//
// Literal sets delegate matching to an external matcher and must not be
// queried through Match.
func (s *PathSet) Match(path string) bool {
	path = normalize(path)
	if path == "" {
		return true
	}

	if _, ok := s.recursive[path]; ok {
		return true
	}

	if _, ok := s.ancestors[path]; ok {
		return true
	}

	if hasCoveringAncestor(path, s.recursive) {
		return true
	}

	i := strings.LastIndexByte(path, '/')
	if i == 0 {
		return true
	}

	_, ok := s.ancestors[path[:i]]
	return ok
}

// normalize turns user input into the canonical PathSpec form: no
// surrounding whitespace, absolute from the repository root, no
// trailing separator. The root itself normalizes to the empty string.
func normalize(dir string) string {
	dir = strings.TrimSpace(dir)
	dir = strings.TrimRight(dir, "/")

	if dir == "" {
		return ""
	}

	if dir[0] != '/' {
		dir = "/" + dir
	}

	return dir
}

// hasCoveringAncestor reports whether some proper prefix of path,
// cut at a separator boundary, is present in set.
func hasCoveringAncestor(path string, set map[string]struct{}) bool {
	for {
		i := strings.LastIndexByte(path, '/')
		if i <= 0 {
			return false
		}

		path = path[:i]
		if _, ok := set[path]; ok {
			return true
		}
	}
}
