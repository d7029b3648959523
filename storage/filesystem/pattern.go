package filesystem

import (
	"errors"
	"os"

	"github.com/go-git/go-sparse/plumbing/format/sparse"
	"github.com/go-git/go-sparse/storage/filesystem/dotgit"
	"github.com/go-git/go-sparse/utils/ioutil"
)

// ErrNotSparse is returned by Patterns when no sparse-checkout file
// exists. It is informational: callers must treat it as "materialize
// everything", not as a hard failure.
var ErrNotSparse = errors.New("this worktree is not sparse (sparse-checkout file may not exist)")

// PatternStorage reads and writes the persisted sparse-checkout
// pattern file, the durable source of truth for which paths are
// materialized.
type PatternStorage struct {
	dir *dotgit.DotGit
}

// Patterns returns the persisted PathSet. ErrNotSparse is returned
// when the pattern file does not exist.
func (s *PatternStorage) Patterns() (ps *sparse.PathSet, err error) {
	f, err := s.dir.SparseCheckout()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotSparse
		}

		return nil, err
	}

	defer ioutil.CheckClose(f, &err)

	ps = sparse.NewPathSet(sparse.Literal)
	d := sparse.NewDecoder(f)
	err = d.Decode(ps)
	return ps, err
}

// SetPatterns persists ps, atomically replacing the previous pattern
// file. Callers must only invoke it after the working tree already
// realizes the materialization ps describes.
func (s *PatternStorage) SetPatterns(ps *sparse.PathSet) (err error) {
	f, err := s.dir.SparseCheckoutWriter()
	if err != nil {
		return err
	}

	defer ioutil.CheckClose(f, &err)

	e := sparse.NewEncoder(f)
	err = e.Encode(ps)
	return err
}

// RemovePatterns deletes the pattern file. A missing file is not an
// error.
func (s *PatternStorage) RemovePatterns() error {
	err := s.dir.RemoveSparseCheckout()
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	return err
}
