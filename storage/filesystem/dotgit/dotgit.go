// Package dotgit provides access to the well-known files of a .git
// directory used by a sparse checkout: the index, the config and the
// info/sparse-checkout pattern file.
package dotgit

import (
	"errors"
	"io"
	"os"

	"github.com/go-git/go-billy/v6"
)

const (
	indexPath     = "index"
	indexLockPath = "index.lock"
	configPath    = "config"
	infoPath      = "info"
	sparsePath    = "sparse-checkout"
)

var (
	// ErrIndexLocked is returned by LockIndex when the exclusive index
	// lock is already held. The lock is never waited out; a stale lock
	// usually means a crashed process and requires manual intervention.
	ErrIndexLocked = errors.New("index.lock exists: another git process seems to be running")
)

// The DotGit type represents a local git repository on disk. This
// type is not zero-value-safe, use the New function to initialize it.
type DotGit struct {
	fs billy.Filesystem
}

// New returns a DotGit value ready to be used. The filesystem must be
// rooted at the .git directory.
func New(fs billy.Filesystem) *DotGit {
	return &DotGit{fs: fs}
}

// Fs returns the underlying filesystem of the DotGit folder.
func (d *DotGit) Fs() billy.Filesystem {
	return d.fs
}

// LockIndex takes the exclusive index lock. It fails immediately with
// ErrIndexLocked when another process holds it.
func (d *DotGit) LockIndex() error {
	f, err := d.fs.OpenFile(indexLockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return ErrIndexLocked
		}

		return err
	}

	return f.Close()
}

// UnlockIndex releases the exclusive index lock.
func (d *DotGit) UnlockIndex() error {
	return d.fs.Remove(indexLockPath)
}

// Index opens the index file for reading.
func (d *DotGit) Index() (billy.File, error) {
	return d.fs.Open(indexPath)
}

// IndexWriter returns a writer for a new index file. The index is
// written to a temporary file and only replaces the previous one
// atomically when the writer is closed.
func (d *DotGit) IndexWriter() (io.WriteCloser, error) {
	return newFileWriter(d.fs, "", "tmp_index_", indexPath)
}

// Config opens the config file for reading.
func (d *DotGit) Config() (billy.File, error) {
	return d.fs.Open(configPath)
}

// ConfigWriter returns a writer for a new config file, replaced
// atomically on Close.
func (d *DotGit) ConfigWriter() (io.WriteCloser, error) {
	return newFileWriter(d.fs, "", "tmp_config_", configPath)
}

// SparseCheckout opens the info/sparse-checkout pattern file for
// reading.
func (d *DotGit) SparseCheckout() (billy.File, error) {
	return d.fs.Open(d.fs.Join(infoPath, sparsePath))
}

// SparseCheckoutWriter returns a writer for a new pattern file,
// replaced atomically on Close.
func (d *DotGit) SparseCheckoutWriter() (io.WriteCloser, error) {
	if err := d.fs.MkdirAll(infoPath, 0o755); err != nil {
		return nil, err
	}

	return newFileWriter(d.fs, infoPath, "tmp_sparse_", d.fs.Join(infoPath, sparsePath))
}

// RemoveSparseCheckout deletes the pattern file.
func (d *DotGit) RemoveSparseCheckout() error {
	return d.fs.Remove(d.fs.Join(infoPath, sparsePath))
}
