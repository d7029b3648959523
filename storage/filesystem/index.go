package filesystem

import (
	"bufio"
	"os"

	"github.com/go-git/go-sparse/plumbing/format/index"
	"github.com/go-git/go-sparse/storage/filesystem/dotgit"
	"github.com/go-git/go-sparse/utils/ioutil"
)

// IndexStorage reads and writes the repository index. SetIndex goes
// through a temporary file and an atomic rename, so a concurrent reader
// never observes a partially written index.
type IndexStorage struct {
	dir *dotgit.DotGit
}

// SetIndex persists idx, atomically replacing the previous index file.
func (s *IndexStorage) SetIndex(idx *index.Index) (err error) {
	f, err := s.dir.IndexWriter()
	if err != nil {
		return err
	}

	defer ioutil.CheckClose(f, &err)
	bw := bufio.NewWriter(f)
	defer func() {
		if e := bw.Flush(); err == nil && e != nil {
			err = e
		}
	}()

	e := index.NewEncoder(bw)
	err = e.Encode(idx)
	return err
}

// Index returns the current index. A repository without an index file
// yields an empty index, not an error.
func (s *IndexStorage) Index() (i *index.Index, err error) {
	idx := &index.Index{
		Version: 2,
	}

	f, err := s.dir.Index()
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}

		return nil, err
	}

	defer ioutil.CheckClose(f, &err)

	d := index.NewDecoder(f)
	err = d.Decode(idx)
	return idx, err
}

// Lock takes the exclusive index lock, failing with
// dotgit.ErrIndexLocked when it is already held.
func (s *IndexStorage) Lock() error {
	return s.dir.LockIndex()
}

// Unlock releases the exclusive index lock.
func (s *IndexStorage) Unlock() error {
	return s.dir.UnlockIndex()
}
