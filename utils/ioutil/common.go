// Package ioutil implements some I/O utility functions.
package ioutil

import "io"

// CheckClose calls Close on the given io.Closer. If the given *error points to
// nil, it will be assigned the error returned by Close. Otherwise, any error
// returned by Close will be ignored. CheckClose is usually called with defer.
func CheckClose(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// WriteNopCloser returns a WriteCloser with a no-op Close method wrapping the
// provided Writer w.
func WriteNopCloser(w io.Writer) io.WriteCloser {
	return writeNopCloser{w}
}

type writeNopCloser struct {
	io.Writer
}

func (writeNopCloser) Close() error { return nil }
