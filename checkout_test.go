package sparse

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/stretchr/testify/suite"

	"github.com/go-git/go-sparse/plumbing"
	gitconfig "github.com/go-git/go-sparse/plumbing/format/config"
	format "github.com/go-git/go-sparse/plumbing/format/sparse"
	"github.com/go-git/go-sparse/plumbing/format/index"
	"github.com/go-git/go-sparse/storage/filesystem"
)

// fakeTree is a TreeSnapshot carrying a flat file list.
type fakeTree struct {
	files []string
}

func (t *fakeTree) Hash() plumbing.Hash {
	return plumbing.NewHash("e25b29c8946e0e192fae2edc1dabf7be71e8ecf3")
}

type fakeResolver struct {
	tree *fakeTree
	err  error
}

func (r *fakeResolver) ResolveTree(ref string) (TreeSnapshot, error) {
	if r.err != nil {
		return nil, r.err
	}

	return r.tree, nil
}

// fakeReconciler performs a trivial one-sided update over a worktree
// filesystem: filtered-in paths are written to disk, filtered-out
// paths are removed and flagged skip-worktree.
type fakeReconciler struct {
	fs billy.Filesystem

	failures int
	calls    int
}

func (r *fakeReconciler) Reconcile(idx *index.Index, tree TreeSnapshot, filter FilterFunc) error {
	r.calls++
	if r.failures > 0 {
		r.failures--
		return ErrReconcileConflict
	}

	idx.Entries = nil
	for _, path := range tree.(*fakeTree).files {
		e := idx.Add(path)
		e.Hash = tree.(*fakeTree).Hash()

		if filter == nil || filter(path) {
			if err := util.WriteFile(r.fs, path, []byte(path), 0o644); err != nil {
				return err
			}

			continue
		}

		e.SkipWorktree = true
		if err := r.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// prefixMatcher includes a path when a non-negated pattern prefixes
// it, with later patterns overriding earlier ones.
type prefixMatcher struct{}

func (prefixMatcher) Match(path string, patterns []format.Pattern) bool {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	matched := false
	for _, p := range patterns {
		pat := p.Pattern
		if !strings.HasPrefix(pat, "/") {
			pat = "/" + pat
		}

		if strings.HasPrefix(path, pat) {
			matched = !p.Negate
		}
	}

	return matched
}

type CheckoutSuite struct {
	suite.Suite

	storage    *filesystem.Storage
	worktree   billy.Filesystem
	resolver   *fakeResolver
	reconciler *fakeReconciler
	checkout   *Checkout
}

func TestCheckoutSuite(t *testing.T) {
	suite.Run(t, new(CheckoutSuite))
}

func (s *CheckoutSuite) SetupTest() {
	s.storage = filesystem.NewStorage(memfs.New())
	s.worktree = memfs.New()
	s.resolver = &fakeResolver{tree: &fakeTree{files: []string{
		"README.md",
		"src/Makefile",
		"src/lib/a.go",
		"src/lib/deep/b.go",
		"src/bin/c.go",
		"docs/guide.md",
	}}}
	s.reconciler = &fakeReconciler{fs: s.worktree}
	s.checkout = NewCheckout(s.storage, s.resolver, s.reconciler, prefixMatcher{})
}

func (s *CheckoutSuite) configOption(key string) string {
	cfg, err := s.storage.Config()
	s.Require().NoError(err)
	return cfg.GetOption("core", gitconfig.NoSubsection, key)
}

func (s *CheckoutSuite) patternFile() string {
	ps, err := s.storage.Patterns()
	s.Require().NoError(err)

	buf := bytes.NewBuffer(nil)
	s.Require().NoError(format.NewEncoder(buf).Encode(ps))
	return buf.String()
}

func (s *CheckoutSuite) onDisk(path string) bool {
	_, err := s.worktree.Stat(path)
	return err == nil
}

func (s *CheckoutSuite) TestInitConeWritesDefaultPatterns() {
	s.Require().NoError(s.checkout.Init(InitOptions{Cone: true}))

	s.Equal("true", s.configOption(sparseCheckoutKey))
	s.Equal("true", s.configOption(sparseCheckoutConeKey))
	s.Equal("/*\n!/*/\n", s.patternFile())

	// only the tree root stays materialized
	s.True(s.onDisk("README.md"))
	s.False(s.onDisk("src/lib/a.go"))
}

func (s *CheckoutSuite) TestInitFreshRepository() {
	s.resolver.err = ErrTreeNotFound

	s.Require().NoError(s.checkout.Init(InitOptions{Cone: true}))

	s.Equal("true", s.configOption(sparseCheckoutKey))
	s.Equal("/*\n!/*/\n", s.patternFile())
	s.Equal(0, s.reconciler.calls)
}

func (s *CheckoutSuite) TestInitReusesExistingPatternFile() {
	ps := format.NewPathSet(format.Cone)
	ps.Add("/src/lib")
	s.Require().NoError(s.storage.SetPatterns(ps))

	s.Require().NoError(s.checkout.Init(InitOptions{Cone: true}))

	s.Equal("/*\n!/*/\n/src/\n!/src/*/\n/src/lib/\n", s.patternFile())
	s.True(s.onDisk("src/lib/a.go"))
	s.False(s.onDisk("docs/guide.md"))
}

func (s *CheckoutSuite) TestListNotSparse() {
	buf := bytes.NewBuffer(nil)
	s.Require().NoError(s.checkout.List(buf))

	s.Equal("this worktree is not sparse (sparse-checkout file may not exist)\n", buf.String())
}

func (s *CheckoutSuite) TestListAfterSet() {
	s.Require().NoError(s.checkout.Set(SetOptions{
		Directories: []string{"src/lib"},
		Cone:        true,
	}))

	buf := bytes.NewBuffer(nil)
	s.Require().NoError(s.checkout.List(buf))

	s.Equal("/*\n!/*/\n/src/\n!/src/*/\n/src/lib/\n", buf.String())
}

func (s *CheckoutSuite) TestSetCone() {
	err := s.checkout.Set(SetOptions{
		Directories: []string{"src/lib"},
		Cone:        true,
	})
	s.Require().NoError(err)

	s.Equal("true", s.configOption(sparseCheckoutKey))
	s.Equal("true", s.configOption(sparseCheckoutConeKey))

	// materialized: root files, ancestor direct entries, the subtree
	s.True(s.onDisk("README.md"))
	s.True(s.onDisk("src/Makefile"))
	s.True(s.onDisk("src/lib/a.go"))
	s.True(s.onDisk("src/lib/deep/b.go"))

	// sparse: sibling subtree and unrelated directories
	s.False(s.onDisk("src/bin/c.go"))
	s.False(s.onDisk("docs/guide.md"))

	idx, err := s.storage.Index()
	s.Require().NoError(err)

	skipped, err := idx.Entry("src/bin/c.go")
	s.Require().NoError(err)
	s.True(skipped.SkipWorktree)

	kept, err := idx.Entry("src/lib/a.go")
	s.Require().NoError(err)
	s.False(kept.SkipWorktree)
}

func (s *CheckoutSuite) TestSetFromInput() {
	err := s.checkout.Set(SetOptions{
		Input: strings.NewReader("a/b\nc\n"),
		Cone:  true,
	})
	s.Require().NoError(err)

	s.Equal("/*\n!/*/\n/a/\n!/a/*/\n/a/b/\n/c/\n", s.patternFile())
}

func (s *CheckoutSuite) TestSetLiteral() {
	err := s.checkout.Set(SetOptions{
		Directories: []string{"docs"},
	})
	s.Require().NoError(err)

	s.Equal("false", s.configOption(sparseCheckoutConeKey))
	s.True(s.onDisk("docs/guide.md"))
	s.False(s.onDisk("src/lib/a.go"))
	s.Equal("docs\n", s.patternFile())
}

func (s *CheckoutSuite) TestSetLiteralWithoutMatcher() {
	s.checkout = NewCheckout(s.storage, s.resolver, s.reconciler, nil)

	err := s.checkout.Set(SetOptions{Directories: []string{"docs"}})
	s.ErrorIs(err, ErrNoMatcher)
}

func (s *CheckoutSuite) TestSetFailureRestoresFullMaterialization() {
	s.reconciler.failures = 1

	err := s.checkout.Set(SetOptions{
		Directories: []string{"src/lib"},
		Cone:        true,
	})
	s.Require().Error(err)
	s.ErrorIs(err, ErrReconcileConflict)

	// the call enabled sparse mode, so the flag must be reverted
	s.Equal("false", s.configOption(sparseCheckoutKey))

	// and the worktree is fully materialized again
	s.True(s.onDisk("src/bin/c.go"))
	s.True(s.onDisk("docs/guide.md"))

	// no pattern file was persisted
	_, err = s.storage.Patterns()
	s.ErrorIs(err, filesystem.ErrNotSparse)
}

func (s *CheckoutSuite) TestSetFailureKeepsPreviouslyEnabledFlag() {
	s.Require().NoError(s.checkout.Init(InitOptions{Cone: true}))

	s.reconciler.failures = 1
	err := s.checkout.Set(SetOptions{
		Directories: []string{"src/lib"},
		Cone:        true,
	})
	s.Require().Error(err)

	// sparse mode was already enabled before this call, keep it
	s.Equal("true", s.configOption(sparseCheckoutKey))

	// but full materialization is still the fallback
	s.True(s.onDisk("docs/guide.md"))
}

func (s *CheckoutSuite) TestSetBusy() {
	s.Require().NoError(s.storage.Lock())

	err := s.checkout.Set(SetOptions{
		Directories: []string{"src/lib"},
		Cone:        true,
	})
	s.ErrorIs(err, ErrBusy)
}

func (s *CheckoutSuite) TestSetUnresolvedConflicts() {
	idx := &index.Index{Version: 2}
	e := idx.Add("conflicted.go")
	e.Stage = index.OurMode
	e = idx.Add("conflicted.go")
	e.Stage = index.TheirMode
	s.Require().NoError(s.storage.SetIndex(idx))

	err := s.checkout.Set(SetOptions{
		Directories: []string{"src/lib"},
		Cone:        true,
	})
	s.Require().Error(err)

	var conflicts *UnresolvedConflictsError
	s.Require().True(errors.As(err, &conflicts))
	s.Equal([]string{"conflicted.go"}, conflicts.Paths)
}

func (s *CheckoutSuite) TestDisable() {
	s.Require().NoError(s.checkout.Set(SetOptions{
		Directories: []string{"src/lib"},
		Cone:        true,
	}))
	s.False(s.onDisk("docs/guide.md"))

	s.Require().NoError(s.checkout.Disable())

	s.Equal("false", s.configOption(sparseCheckoutKey))
	s.Equal("false", s.configOption(sparseCheckoutConeKey))

	_, err := s.storage.Patterns()
	s.ErrorIs(err, filesystem.ErrNotSparse)

	s.True(s.onDisk("docs/guide.md"))
	s.True(s.onDisk("src/bin/c.go"))

	idx, err := s.storage.Index()
	s.Require().NoError(err)
	for _, e := range idx.Entries {
		s.False(e.SkipWorktree, e.Name)
	}
}
