package index

import (
	"bufio"
	"bytes"
	"crypto"
	"errors"
	"io"
	"time"

	"github.com/go-git/go-sparse/plumbing/hash"
	"github.com/go-git/go-sparse/utils/binary"
)

var (
	// DecodeVersionSupported is the range of supported index versions
	DecodeVersionSupported = struct{ Min, Max uint32 }{Min: 2, Max: 3}

	// ErrMalformedSignature is returned by Decode when the index header file is
	// malformed
	ErrMalformedSignature = errors.New("malformed index signature file")
	// ErrInvalidChecksum is returned by Decode if the SHA1 hash mismatch with
	// the read content
	ErrInvalidChecksum = errors.New("invalid checksum")
	// ErrUnknownExtension is returned when an index extension is encountered
	// that is considered mandatory
	ErrUnknownExtension = errors.New("unknown extension")
)

const (
	entryHeaderLength = 62
	entryExtended     = 0x4000
	nameMask          = 0xfff
	intentToAddMask   = 1 << 13
	skipWorkTreeMask  = 1 << 14
)

// A Decoder reads and decodes index files from an input stream.
//
// Extensions are validated and skipped: the decoded Index keeps the
// entry list only, which is all a sparse synchronization rewrites. Git
// itself invalidates the cached tree and resolve-undo data on a sparse
// update, so dropping them here is equivalent to clearing them.
type Decoder struct {
	buf  *bufio.Reader
	r    io.Reader
	hash hash.Hash
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	h := hash.New(crypto.SHA1)
	buf := bufio.NewReader(r)
	return &Decoder{
		buf:  buf,
		r:    io.TeeReader(buf, h),
		hash: h,
	}
}

// Decode reads the whole index object from its input and stores it in the
// value pointed to by idx.
func (d *Decoder) Decode(idx *Index) error {
	var err error
	idx.Version, err = validateHeader(d.r)
	if err != nil {
		return err
	}

	entryCount, err := binary.ReadUint32(d.r)
	if err != nil {
		return err
	}

	if err := d.readEntries(idx, int(entryCount)); err != nil {
		return err
	}

	return d.readExtensions()
}

func validateHeader(r io.Reader) (version uint32, err error) {
	var s = make([]byte, 4)
	if _, err := io.ReadFull(r, s); err != nil {
		return 0, err
	}

	if !bytes.Equal(s, indexSignature) {
		return 0, ErrMalformedSignature
	}

	version, err = binary.ReadUint32(r)
	if err != nil {
		return 0, err
	}

	if version < DecodeVersionSupported.Min || version > DecodeVersionSupported.Max {
		return 0, ErrUnsupportedVersion
	}

	return
}

func (d *Decoder) readEntries(idx *Index, count int) error {
	for i := 0; i < count; i++ {
		e, err := d.readEntry()
		if err != nil {
			return err
		}

		idx.Entries = append(idx.Entries, e)
	}

	return nil
}

func (d *Decoder) readEntry() (*Entry, error) {
	e := &Entry{}

	var msec, mnsec, sec, nsec uint32
	var flags uint16

	flow := []interface{}{
		&sec, &nsec,
		&msec, &mnsec,
		&e.Dev,
		&e.Inode,
		&e.Mode,
		&e.UID,
		&e.GID,
		&e.Size,
	}

	if err := binary.Read(d.r, flow...); err != nil {
		return nil, err
	}

	if _, err := io.ReadFull(d.r, e.Hash[:]); err != nil {
		return nil, err
	}

	if err := binary.Read(d.r, &flags); err != nil {
		return nil, err
	}

	read := entryHeaderLength

	if sec != 0 || nsec != 0 {
		e.CreatedAt = time.Unix(int64(sec), int64(nsec))
	}

	if msec != 0 || mnsec != 0 {
		e.ModifiedAt = time.Unix(int64(msec), int64(mnsec))
	}

	e.Stage = Stage(flags>>12) & 0x3

	if flags&entryExtended != 0 {
		extended, err := binary.ReadUint16(d.r)
		if err != nil {
			return nil, err
		}

		read += 2
		e.IntentToAdd = extended&intentToAddMask != 0
		e.SkipWorktree = extended&skipWorkTreeMask != 0
	}

	if err := d.readEntryName(e, flags); err != nil {
		return nil, err
	}

	return e, d.padEntry(e, read)
}

func (d *Decoder) readEntryName(e *Entry, flags uint16) error {
	name := make([]byte, flags&nameMask)
	if _, err := io.ReadFull(d.r, name); err != nil {
		return err
	}

	e.Name = string(name)
	return nil
}

// Index entries are padded out to the next 8 byte alignment
// for historical reasons related to how C Git read the files.
func (d *Decoder) padEntry(e *Entry, read int) error {
	entrySize := read + len(e.Name)
	padLen := 8 - entrySize%8
	_, err := io.CopyN(io.Discard, d.r, int64(padLen))
	return err
}

func (d *Decoder) readExtensions() error {
	var expected []byte
	var peeked []byte
	var err error

	// we should always be able to peek for 4 bytes (signature) +
	// 4 bytes (extension size) + the final hash. If this fails, we know
	// that we're at the end of the index.
	peekLen := 4 + 4 + d.hash.Size()

	for {
		expected = d.hash.Sum(nil)
		peeked, err = d.buf.Peek(peekLen)
		if len(peeked) < peekLen {
			// there can't be an extension at this point, so let's bail out
			break
		}
		if err != nil {
			return err
		}

		if err := d.skipExtension(); err != nil {
			return err
		}
	}

	return d.readChecksum(expected)
}

// skipExtension reads an extension header and discards its payload. As
// per https://git-scm.com/docs/index-format, extensions whose signature
// starts with 'A'..'Z' are optional and can be ignored; anything else
// is mandatory and renders the index unreadable.
func (d *Decoder) skipExtension() error {
	var header [4]byte

	if _, err := io.ReadFull(d.r, header[:]); err != nil {
		return err
	}

	if header[0] < 'A' || header[0] > 'Z' {
		return ErrUnknownExtension
	}

	size, err := binary.ReadUint32(d.r)
	if err != nil {
		return err
	}

	_, err = io.CopyN(io.Discard, d.r, int64(size))
	return err
}

func (d *Decoder) readChecksum(expected []byte) error {
	stored := make([]byte, d.hash.Size())
	if _, err := io.ReadFull(d.buf, stored); err != nil {
		return err
	}

	if !bytes.Equal(stored, expected) {
		return ErrInvalidChecksum
	}

	return nil
}
