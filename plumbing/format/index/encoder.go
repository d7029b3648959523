package index

import (
	"bytes"
	"crypto"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/go-git/go-sparse/plumbing/hash"
	"github.com/go-git/go-sparse/utils/binary"
)

var (
	// EncodeVersionSupported is the maximum index version supported by
	// Encode.
	EncodeVersionSupported uint32 = 3

	// ErrInvalidTimestamp is returned by Encode if an Index with an Entry
	// with negative timestamp values is encoded
	ErrInvalidTimestamp = errors.New("negative timestamps are not allowed")
)

// An Encoder writes an Index to an output stream.
type Encoder struct {
	w    io.Writer
	hash hash.Hash
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	h := hash.New(crypto.SHA1)
	mw := io.MultiWriter(w, h)
	return &Encoder{mw, h}
}

// Encode writes the Index to the stream of the encoder. The version
// written is the index's own, bumped to 3 when any entry carries
// extended flags, since version 2 cannot represent them.
func (e *Encoder) Encode(idx *Index) error {
	version, err := e.version(idx)
	if err != nil {
		return err
	}

	if err := e.encodeHeader(idx, version); err != nil {
		return err
	}

	if err := e.encodeEntries(idx); err != nil {
		return err
	}

	return e.encodeFooter()
}

func (e *Encoder) version(idx *Index) (uint32, error) {
	if idx.Version > EncodeVersionSupported {
		return 0, ErrUnsupportedVersion
	}

	version := idx.Version
	if version < 2 {
		version = 2
	}

	for _, entry := range idx.Entries {
		if entry.IntentToAdd || entry.SkipWorktree {
			if version < 3 {
				version = 3
			}

			break
		}
	}

	return version, nil
}

func (e *Encoder) encodeHeader(idx *Index, version uint32) error {
	return binary.Write(e.w,
		indexSignature,
		version,
		uint32(len(idx.Entries)),
	)
}

func (e *Encoder) encodeEntries(idx *Index) error {
	sort.Sort(byName(idx.Entries))

	for _, entry := range idx.Entries {
		if err := e.encodeEntry(entry); err != nil {
			return err
		}

		entryLength := entryHeaderLength
		if entry.IntentToAdd || entry.SkipWorktree {
			entryLength += 2
		}

		wrote := entryLength + len(entry.Name)
		if err := e.padEntry(wrote); err != nil {
			return err
		}
	}

	return nil
}

func (e *Encoder) encodeEntry(entry *Entry) error {
	sec, nsec, err := e.timeToUint32(&entry.CreatedAt)
	if err != nil {
		return err
	}

	msec, mnsec, err := e.timeToUint32(&entry.ModifiedAt)
	if err != nil {
		return err
	}

	flags := uint16(entry.Stage&0x3) << 12
	if l := len(entry.Name); l < nameMask {
		flags |= uint16(l)
	} else {
		flags |= nameMask
	}

	flow := []interface{}{
		sec, nsec,
		msec, mnsec,
		entry.Dev,
		entry.Inode,
		entry.Mode,
		entry.UID,
		entry.GID,
		entry.Size,
		entry.Hash.Bytes(),
	}

	flagsFlow := []interface{}{flags}

	if entry.IntentToAdd || entry.SkipWorktree {
		var extendedFlags uint16

		if entry.IntentToAdd {
			extendedFlags |= intentToAddMask
		}
		if entry.SkipWorktree {
			extendedFlags |= skipWorkTreeMask
		}

		flagsFlow = []interface{}{flags | entryExtended, extendedFlags}
	}

	flow = append(flow, flagsFlow...)

	if err := binary.Write(e.w, flow...); err != nil {
		return err
	}

	return binary.Write(e.w, []byte(entry.Name))
}

func (e *Encoder) timeToUint32(t *time.Time) (uint32, uint32, error) {
	if t.IsZero() {
		return 0, 0, nil
	}

	if t.Unix() < 0 || t.UnixNano() < 0 {
		return 0, 0, ErrInvalidTimestamp
	}

	return uint32(t.Unix()), uint32(t.Nanosecond()), nil
}

// Index entries are padded out to the next 8 byte alignment
// for historical reasons related to how C Git read the files.
func (e *Encoder) padEntry(wrote int) error {
	padLen := 8 - wrote%8

	_, err := e.w.Write(bytes.Repeat([]byte{'\x00'}, padLen))
	return err
}

func (e *Encoder) encodeFooter() error {
	return binary.Write(e.w, e.hash.Sum(nil))
}

type byName []*Entry

func (l byName) Len() int      { return len(l) }
func (l byName) Swap(i, j int) { l[i], l[j] = l[j], l[i] }

// Unmerged paths appear once per stage, ordered by stage.
func (l byName) Less(i, j int) bool {
	if l[i].Name != l[j].Name {
		return l[i].Name < l[j].Name
	}

	return l[i].Stage < l[j].Stage
}
