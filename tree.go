package sparse

import (
	"errors"

	"github.com/go-git/go-sparse/plumbing"
	format "github.com/go-git/go-sparse/plumbing/format/sparse"
	"github.com/go-git/go-sparse/plumbing/format/index"
)

var (
	// ErrTreeNotFound is returned by TreeResolver implementations when
	// the reference cannot be resolved to a tree, typically a fresh
	// repository without commits. Synchronization treats it as a
	// successful no-op.
	ErrTreeNotFound = errors.New("tree not found")

	// ErrReconcileConflict is returned by Reconciler implementations
	// when the one-sided update runs into a conflict. One-sided updates
	// are not expected to conflict, so this signals an internal
	// invariant violation and aborts the synchronization.
	ErrReconcileConflict = errors.New("conflict during one-sided reconciliation")
)

// TreeSnapshot is an opaque snapshot of a committed tree. Values are
// produced by a TreeResolver and consumed by a Reconciler; this package
// only moves them between the two.
type TreeSnapshot interface {
	// Hash returns the object id of the underlying tree.
	Hash() plumbing.Hash
}

// TreeResolver resolves a reference name to a tree snapshot, backed by
// the repository object storage.
type TreeResolver interface {
	// ResolveTree returns the tree the given reference points to, or
	// ErrTreeNotFound when the reference cannot be resolved.
	ResolveTree(ref string) (TreeSnapshot, error)
}

// FilterFunc decides whether a tracked path is materialized in the
// working directory. A nil FilterFunc materializes everything.
type FilterFunc func(path string) bool

// Reconciler applies a one-sided update of the index and the working
// directory against a tree snapshot. Entries accepted by the filter are
// written to disk; entries rejected by it stay tracked in the index,
// flagged skip-worktree, and are removed from disk.
type Reconciler interface {
	Reconcile(idx *index.Index, tree TreeSnapshot, filter FilterFunc) error
}

// Matcher matches a worktree path against a raw pattern sequence with
// gitignore semantics, where later patterns override earlier ones. It
// is only consulted for Literal pattern sets; cone sets are matched by
// this package directly.
type Matcher interface {
	Match(path string, patterns []format.Pattern) bool
}
