package sparse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-sparse/storage/filesystem"
	"github.com/go-git/go-sparse/storage/filesystem/dotgit"
)

// ErrBusy is returned when another process holds the repository lock.
// The lock is never waited out: a held lock usually belongs to a
// crashed process and has to be resolved externally.
var ErrBusy = errors.New("repository is locked by another process")

// UnresolvedConflictsError is returned when the index holds entries
// staged above zero. The user must resolve the conflicts before the
// materialization can change.
type UnresolvedConflictsError struct {
	Paths []string
}

func (e *UnresolvedConflictsError) Error() string {
	return fmt.Sprintf("you need to resolve your current index first, unmerged paths: %s",
		strings.Join(e.Paths, ", "))
}

// syncState tracks the progress of a working tree synchronization.
type syncState int

const (
	stateIdle syncState = iota
	stateLockAcquired
	stateTreeResolved
	stateReconciled
	stateCommitted
	stateRolledBack
)

// syncer reconciles the working directory and the index against the
// current committed tree under the exclusive repository lock. A syncer
// runs once and is not reused.
type syncer struct {
	storage    *filesystem.Storage
	resolver   TreeResolver
	reconciler Reconciler

	state syncState
}

// run drives the synchronization to completion. A nil filter
// materializes every tracked path. Nothing observable by other
// processes changes before the index commit: any failure after the
// lock is acquired rolls back by releasing the lock with the previous
// index still in place.
func (s *syncer) run(filter FilterFunc) (err error) {
	if err := s.storage.Lock(); err != nil {
		if errors.Is(err, dotgit.ErrIndexLocked) {
			return ErrBusy
		}

		return err
	}

	s.state = stateLockAcquired
	defer func() {
		if uerr := s.storage.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	}()

	idx, err := s.storage.Index()
	if err != nil {
		return s.rollback(err)
	}

	if unmerged := idx.Unmerged(); len(unmerged) > 0 {
		return s.rollback(&UnresolvedConflictsError{Paths: unmerged})
	}

	tree, err := s.resolver.ResolveTree(head)
	if errors.Is(err, ErrTreeNotFound) {
		// Fresh repository without commits: nothing to materialize.
		s.state = stateCommitted
		return nil
	}

	if err != nil {
		return s.rollback(err)
	}

	s.state = stateTreeResolved

	if err := s.reconciler.Reconcile(idx, tree, filter); err != nil {
		return s.rollback(err)
	}

	s.state = stateReconciled

	// The atomic index replacement is the single durability boundary.
	if err := s.storage.SetIndex(idx); err != nil {
		return s.rollback(err)
	}

	s.state = stateCommitted
	return nil
}

func (s *syncer) rollback(err error) error {
	s.state = stateRolledBack
	return err
}
