package sparse

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	gitconfig "github.com/go-git/go-sparse/plumbing/format/config"
	format "github.com/go-git/go-sparse/plumbing/format/sparse"
	"github.com/go-git/go-sparse/storage/filesystem"
)

// head is the reference every synchronization runs against.
const head = "HEAD"

const (
	coreSection       = "core"
	extensionsSection = "extensions"

	sparseCheckoutKey     = "sparseCheckout"
	sparseCheckoutConeKey = "sparseCheckoutCone"
	worktreeConfigKey     = "worktreeConfig"
)

// ErrNoMatcher is returned when a literal pattern set must be applied
// but the Checkout was built without a Matcher.
var ErrNoMatcher = errors.New("no matcher configured for literal patterns")

// Checkout drives the sparse materialization of a single worktree. All
// state lives in the repository: the config flags, the pattern file
// and the index. A Checkout holds nothing between operations and is
// not safe for concurrent use within a process; cross-process safety
// comes from the repository lock.
type Checkout struct {
	storage    *filesystem.Storage
	resolver   TreeResolver
	reconciler Reconciler
	matcher    Matcher
}

// NewCheckout returns a Checkout working against the given storage and
// collaborators. The matcher may be nil when only cone mode is used.
func NewCheckout(storage *filesystem.Storage, resolver TreeResolver, reconciler Reconciler, matcher Matcher) *Checkout {
	return &Checkout{
		storage:    storage,
		resolver:   resolver,
		reconciler: reconciler,
		matcher:    matcher,
	}
}

// Init enables sparse checkout mode. When a pattern file already
// exists its selection is reused untouched; otherwise the default
// root-only selection is written, keeping top-level files and no
// subdirectories. On failure the enable flag is reverted when this
// call set it, leaving the repository unsparse.
func (c *Checkout) Init(o InitOptions) error {
	enabled, err := c.sparseEnabled()
	if err != nil {
		return err
	}

	if err := c.setConfig(true, o.Cone); err != nil {
		return err
	}

	ps, err := c.storage.Patterns()
	if err != nil && !errors.Is(err, filesystem.ErrNotSparse) {
		return err
	}

	if errors.Is(err, filesystem.ErrNotSparse) {
		ps = defaultPathSet(o.Cone)
		if err := c.storage.SetPatterns(ps); err != nil {
			return err
		}
	}

	if err := c.apply(ps); err != nil {
		if !enabled {
			if cerr := c.setConfig(false, false); cerr != nil {
				return errors.Join(err, cerr)
			}
		}

		return err
	}

	return nil
}

// List writes the current selection to w in pattern file syntax. A
// worktree that is not sparse is reported with a notice; that is
// informational, not an error.
func (c *Checkout) List(w io.Writer) error {
	ps, err := c.storage.Patterns()
	if errors.Is(err, filesystem.ErrNotSparse) {
		_, werr := fmt.Fprintln(w, "this worktree is not sparse (sparse-checkout file may not exist)")
		return werr
	}

	if err != nil {
		return err
	}

	return format.NewEncoder(w).Encode(ps)
}

// Set replaces the sparse selection with the one described by o,
// synchronizes the worktree and, only after that succeeded, persists
// the new pattern file. Sparse mode is enabled first when it is not
// already.
//
// On failure the worktree is restored to full materialization, not to
// the previous selection; this conservative fallback is the intended
// contract. When this call was the one that enabled sparse mode, the
// enable flag is reverted as well, so sparse mode is never left
// enabled without a successful materialization behind it.
func (c *Checkout) Set(o SetOptions) error {
	ps, err := c.newPathSet(o)
	if err != nil {
		return err
	}

	filter, err := c.filter(ps)
	if err != nil {
		return err
	}

	enabled, err := c.sparseEnabled()
	if err != nil {
		return err
	}

	if err := c.setConfig(true, o.Cone); err != nil {
		return err
	}

	if err := c.sync(filter); err != nil {
		rerr := c.sync(nil)

		var cerr error
		if !enabled {
			cerr = c.setConfig(false, false)
		}

		return errors.Join(err, rerr, cerr)
	}

	return c.storage.SetPatterns(ps)
}

// Disable restores the non-sparse baseline: every tracked path
// materialized, the pattern file removed and the config flags cleared.
func (c *Checkout) Disable() error {
	if err := c.setConfig(true, false); err != nil {
		return err
	}

	// Same transitional file git writes: include everything while the
	// refresh runs, so a crash mid-way still describes a valid state.
	ps := format.NewPathSet(format.Literal)
	ps.AddPattern(format.Pattern{Pattern: "/*"})
	if err := c.storage.SetPatterns(ps); err != nil {
		return err
	}

	if err := c.sync(nil); err != nil {
		return fmt.Errorf("error while refreshing working directory: %w", err)
	}

	if err := c.storage.RemovePatterns(); err != nil {
		return err
	}

	return c.setConfig(false, false)
}

// apply synchronizes the worktree with the given selection.
func (c *Checkout) apply(ps *format.PathSet) error {
	filter, err := c.filter(ps)
	if err != nil {
		return err
	}

	return c.sync(filter)
}

func (c *Checkout) sync(filter FilterFunc) error {
	s := &syncer{
		storage:    c.storage,
		resolver:   c.resolver,
		reconciler: c.reconciler,
	}

	return s.run(filter)
}

// filter builds the materialization predicate for a selection. A nil
// selection materializes everything.
func (c *Checkout) filter(ps *format.PathSet) (FilterFunc, error) {
	if ps == nil {
		return nil, nil
	}

	if ps.Mode() == format.Cone {
		return ps.Match, nil
	}

	if c.matcher == nil {
		return nil, ErrNoMatcher
	}

	patterns := ps.Patterns()
	return func(path string) bool {
		return c.matcher.Match(path, patterns)
	}, nil
}

func (c *Checkout) newPathSet(o SetOptions) (*format.PathSet, error) {
	mode := format.Literal
	if o.Cone {
		mode = format.Cone
	}

	ps := format.NewPathSet(mode)

	if o.Input != nil {
		if err := ps.AddFromReader(o.Input); err != nil {
			return nil, err
		}

		return ps, nil
	}

	for _, dir := range o.Directories {
		if o.Cone {
			ps.Add(dir)
		} else {
			ps.AddPattern(format.ParsePattern(dir))
		}
	}

	return ps, nil
}

// defaultPathSet is the initial root-only selection: all blobs at the
// root, no subdirectories.
func defaultPathSet(cone bool) *format.PathSet {
	if cone {
		return format.NewPathSet(format.Cone)
	}

	ps := format.NewPathSet(format.Literal)
	ps.AddPattern(format.Pattern{Pattern: "/*"})
	ps.AddPattern(format.Pattern{Pattern: "/*", Negate: true, DirOnly: true})
	return ps
}

func (c *Checkout) sparseEnabled() (bool, error) {
	cfg, err := c.storage.Config()
	if err != nil {
		return false, err
	}

	return cfg.GetOption(coreSection, gitconfig.NoSubsection, sparseCheckoutKey) == "true", nil
}

// setConfig persists the sparse-checkout flags. The worktreeConfig
// extension is always turned on alongside, mirroring git.
func (c *Checkout) setConfig(enabled, cone bool) error {
	cfg, err := c.storage.Config()
	if err != nil {
		return err
	}

	cfg.SetOption(extensionsSection, gitconfig.NoSubsection, worktreeConfigKey, "true")
	cfg.SetOption(coreSection, gitconfig.NoSubsection, sparseCheckoutKey, strconv.FormatBool(enabled))
	cfg.SetOption(coreSection, gitconfig.NoSubsection, sparseCheckoutConeKey, strconv.FormatBool(cone))

	return c.storage.SetConfig(cfg)
}
