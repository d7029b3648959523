package sparse

import (
	"fmt"
	"io"

	"github.com/emirpasic/gods/sets/treeset"
)

// An Encoder writes a PathSet to an output stream in sparse-checkout
// pattern file format. Cone sets are compressed into the minimal cone
// shape, Literal sets are written verbatim.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w}
}

// Encode writes the PathSet to the stream of the encoder.
func (e *Encoder) Encode(s *PathSet) error {
	if s.mode == Cone {
		return e.encodeCone(s)
	}

	return e.encodePatterns(s)
}

// encodeCone emits the fixed root lines, the ancestor pairs sorted
// lexicographically, then the recursive lines sorted lexicographically.
// Entries whose ancestor is itself selected recursively are dropped,
// the broader rule already implies them.
func (e *Encoder) encodeCone(s *PathSet) (err error) {
	if _, err = fmt.Fprint(e.w, "/*\n!/*/\n"); err != nil {
		return err
	}

	parents := treeset.NewWithStringComparator()
	for dir := range s.ancestors {
		if _, ok := s.recursive[dir]; ok {
			continue
		}

		if hasCoveringAncestor(dir, s.recursive) {
			continue
		}

		parents.Add(dir)
	}

	parents.Each(func(_ int, v interface{}) {
		if err != nil {
			return
		}

		dir := v.(string)
		_, err = fmt.Fprintf(e.w, "%s/\n!%s/*/\n", dir, dir)
	})

	if err != nil {
		return err
	}

	leaves := treeset.NewWithStringComparator()
	for dir := range s.recursive {
		if hasCoveringAncestor(dir, s.recursive) {
			continue
		}

		leaves.Add(dir)
	}

	leaves.Each(func(_ int, v interface{}) {
		if err != nil {
			return
		}

		_, err = fmt.Fprintf(e.w, "%s/\n", v.(string))
	})

	return err
}

func (e *Encoder) encodePatterns(s *PathSet) error {
	for _, p := range s.patterns {
		if _, err := fmt.Fprintln(e.w, p.String()); err != nil {
			return err
		}
	}

	return nil
}
