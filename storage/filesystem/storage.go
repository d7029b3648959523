// Package filesystem is a storage backend based on local files, using
// the standard .git directory layout for the index, the config and the
// sparse-checkout pattern file.
package filesystem

import (
	"github.com/go-git/go-billy/v6"

	"github.com/go-git/go-sparse/storage/filesystem/dotgit"
)

// Storage is an implementation of the repository metadata storage a
// sparse checkout works against, based on local files.
type Storage struct {
	fs  billy.Filesystem
	dir *dotgit.DotGit

	IndexStorage
	ConfigStorage
	PatternStorage
}

// NewStorage returns a new Storage backed by a given filesystem, which
// must be rooted at the .git directory.
func NewStorage(fs billy.Filesystem) *Storage {
	dir := dotgit.New(fs)
	return &Storage{
		fs:  fs,
		dir: dir,

		IndexStorage:   IndexStorage{dir: dir},
		ConfigStorage:  ConfigStorage{dir: dir},
		PatternStorage: PatternStorage{dir: dir},
	}
}

// Filesystem returns the underlying filesystem.
func (s *Storage) Filesystem() billy.Filesystem {
	return s.fs
}
