package sparse

import (
	"bufio"
	"io"
	"strings"
)

// A Decoder reads a PathSet from a sparse-checkout pattern file.
//
// A file holding exactly the cone shape written by Encoder (the fixed
// root lines, ancestor pairs and recursive lines) decodes into a Cone
// set whose materialization decisions are equivalent to the set it was
// compiled from. Any other content decodes into a Literal set holding
// the lines verbatim.
type Decoder struct {
	r io.Reader
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r}
}

// Decode reads the whole pattern file from its input and stores it in
// the value pointed to by s, replacing its previous content.
func (d *Decoder) Decode(s *PathSet) error {
	var lines []string

	scanner := bufio.NewScanner(d.r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	s.recursive = make(map[string]struct{})
	s.ancestors = make(map[string]struct{})
	s.patterns = nil

	if decodeCone(s, lines) {
		s.mode = Cone
		return nil
	}

	s.mode = Literal
	s.recursive = make(map[string]struct{})
	s.ancestors = make(map[string]struct{})
	for _, line := range lines {
		s.patterns = append(s.patterns, ParsePattern(line))
	}

	return nil
}

// decodeCone re-derives the recursive and ancestor sets from a
// cone-shaped file. It reports false as soon as a line falls outside
// the cone grammar, leaving the caller to fall back to Literal mode.
func decodeCone(s *PathSet, lines []string) bool {
	if len(lines) < 2 || lines[0] != "/*" || lines[1] != "!/*/" {
		return false
	}

	lines = lines[2:]
	for i := 0; i < len(lines); i++ {
		dir, ok := coneDir(lines[i])
		if !ok {
			return false
		}

		if i+1 < len(lines) && lines[i+1] == "!"+dir+"/*/" {
			s.ancestors[dir] = struct{}{}
			i++
			continue
		}

		s.Add(dir)
	}

	return true
}

// coneDir validates a "<dir>/" inclusion line and returns the directory
// without its trailing separator.
func coneDir(line string) (string, bool) {
	if !strings.HasPrefix(line, "/") || !strings.HasSuffix(line, "/") {
		return "", false
	}

	dir := line[:len(line)-1]
	if dir == "" || strings.ContainsAny(dir, "*?[]\\!") {
		return "", false
	}

	return dir, true
}
