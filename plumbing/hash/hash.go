// Package hash provides a way for managing the
// underlying hash implementations used across go-sparse.
package hash

import (
	"crypto"
	"fmt"
	"hash"

	"github.com/pjbgf/sha1cd"
)

// algos is a map of hash algorithms.
var algos = map[crypto.Hash]func() hash.Hash{}

func init() {
	allowedAlgos := []crypto.Hash{crypto.SHA1}
	for _, a := range allowedAlgos {
		if a.Available() {
			algos[a] = a.New
		}
	}

	// sha1cd is used as a collision-detecting fallback and is always
	// preferred for SHA1, regardless of availability.
	algos[crypto.SHA1] = sha1cd.New
}

// RegisterHash allows for the hash algorithm used to be overridden.
// This ensures the hash selection for go-sparse must be explicit, when
// overriding the default value.
func RegisterHash(h crypto.Hash, f func() hash.Hash) error {
	if f == nil {
		return fmt.Errorf("cannot register hash: f is nil")
	}

	switch h {
	case crypto.SHA1:
		algos[h] = f
	default:
		return fmt.Errorf("unsupported hash function: %v", h)
	}
	return nil
}

// Hash is the same as hash.Hash. This allows consumers
// to not having to import this package alongside "hash".
type Hash interface {
	hash.Hash
}

// New returns a new Hash for the given hash function.
// It panics if the hash function is not registered.
func New(h crypto.Hash) Hash {
	hh, ok := algos[h]
	if !ok {
		panic(fmt.Sprintf("hash algorithm not registered: %v", h))
	}
	return hh()
}
