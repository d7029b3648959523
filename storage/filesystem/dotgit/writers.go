package dotgit

import "github.com/go-git/go-billy/v6"

// fileWriter writes to a temporary file and moves it over path when
// Close is called. Until then the previous content under path stays
// visible to other processes; a writer that is abandoned before Close
// leaves it untouched.
type fileWriter struct {
	fs   billy.Filesystem
	f    billy.File
	path string
}

func newFileWriter(fs billy.Filesystem, dir, prefix, path string) (*fileWriter, error) {
	f, err := fs.TempFile(dir, prefix)
	if err != nil {
		return nil, err
	}

	return &fileWriter{
		fs:   fs,
		f:    f,
		path: path,
	}, nil
}

func (w *fileWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

// Close closes the temporary file and saves it under its final name.
// The rename is the durability boundary: a crash before it leaves the
// previous file intact.
func (w *fileWriter) Close() error {
	if err := w.f.Close(); err != nil {
		return err
	}

	return w.fs.Rename(w.f.Name(), w.path)
}
