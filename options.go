package sparse

import "io"

// InitOptions describes how to initialize the sparse checkout.
type InitOptions struct {
	// Cone enables cone pattern mode, restricting selections to whole
	// directories in exchange for fast, unambiguous pattern files.
	Cone bool
}

// SetOptions describes the new selection for Set.
type SetOptions struct {
	// Directories is the list of directories to materialize in cone
	// mode, or raw patterns in literal mode.
	Directories []string

	// Input is an optional line-delimited source read in place of
	// Directories, one directory or pattern per line.
	Input io.Reader

	// Cone selects the pattern dialect for this call and is persisted
	// in the repository config.
	Cone bool
}
