// Package sparse implements sparse checkouts for git worktrees: it
// keeps the whole repository history while only materializing a subset
// of the tracked files on disk, selected by directory in cone mode or
// by raw patterns otherwise.
//
// The package owns the pattern compilation and the transactional
// synchronization of the working directory and the index against the
// committed tree. Object storage, tree resolution and the one-sided
// merge that moves files in and out of the worktree are consumed
// through the TreeResolver, Reconciler and Matcher interfaces.
package sparse
