package config

import "strings"

// Section is a list of options with a name. A Section can contain
// Subsections, delimited in the file form by a double quoted string
// after the section name.
//
//	[core]
//		sparseCheckout = true
//
//	[remote "origin"]
//		url = git@github.com:go-git/go-sparse.git
type Section struct {
	Name        string
	Options     Options
	Subsections Subsections
}

// Sections is a list of Sections.
type Sections []*Section

// Subsection is a Section with a case-sensitive name.
type Subsection struct {
	Name    string
	Options Options
}

// Subsections is a list of Subsections.
type Subsections []*Subsection

// Option is a key/value pair inside a Section or Subsection.
type Option struct {
	// Key preserving original caseness.
	// Use IsKey instead to compare key regardless of caseness.
	Key string
	// Original value as string, could be not normalized.
	Value string
}

// Options is a list of Options.
type Options []*Option

// IsName checks if the name provided is equals to the Section name,
// ignoring case.
func (s *Section) IsName(name string) bool {
	return strings.EqualFold(s.Name, name)
}

// Subsection returns a Subsection from the specified Section. If the
// Subsection does not exist, new one is created and added to Section.
func (s *Section) Subsection(name string) *Subsection {
	for i := len(s.Subsections) - 1; i >= 0; i-- {
		ss := s.Subsections[i]
		if ss.IsName(name) {
			return ss
		}
	}

	ss := &Subsection{Name: name}
	s.Subsections = append(s.Subsections, ss)
	return ss
}

// HasSubsection checks if the Section has a Subsection with the
// specified name.
func (s *Section) HasSubsection(name string) bool {
	for _, ss := range s.Subsections {
		if ss.IsName(name) {
			return true
		}
	}

	return false
}

// AddOption adds a new Option to the Section. The updated Section is
// returned.
func (s *Section) AddOption(key string, value string) *Section {
	s.Options = s.Options.withAddedOption(key, value)
	return s
}

// SetOption adds a new Option to the Section. If the option already
// exists, is replaced. The updated Section is returned.
func (s *Section) SetOption(key string, value string) *Section {
	s.Options = s.Options.withSettedOption(key, value)
	return s
}

// GetOption returns the value for the specified key. Empty string is
// returned if key does not exist.
func (s *Section) GetOption(key string) string {
	return s.Options.Get(key)
}

// IsName checks if the name is equal to the subsection name, case
// sensitively.
func (s *Subsection) IsName(name string) bool {
	return s.Name == name
}

// AddOption adds a new Option to the Subsection. The updated Subsection
// is returned.
func (s *Subsection) AddOption(key string, value string) *Subsection {
	s.Options = s.Options.withAddedOption(key, value)
	return s
}

// SetOption adds a new Option to the Subsection. If the option already
// exists, is replaced. The updated Subsection is returned.
func (s *Subsection) SetOption(key string, value string) *Subsection {
	s.Options = s.Options.withSettedOption(key, value)
	return s
}

// GetOption returns the value for the specified key. Empty string is
// returned if key does not exist.
func (s *Subsection) GetOption(key string) string {
	return s.Options.Get(key)
}

// IsKey returns true if the given key matches this option's key,
// ignoring case.
func (o *Option) IsKey(key string) bool {
	return strings.EqualFold(o.Key, key)
}

// Get gets the value for the given key if set, otherwise it returns the
// empty string.
//
// Note that there is no difference. This matches git behaviour since
// git v1.8.1-rc1, if there are multiple definitions of a key, the last
// one wins.
func (opts Options) Get(key string) string {
	for i := len(opts) - 1; i >= 0; i-- {
		o := opts[i]
		if o.IsKey(key) {
			return o.Value
		}
	}
	return ""
}

// Has checks if an Option exist with the given key.
func (opts Options) Has(key string) bool {
	for _, o := range opts {
		if o.IsKey(key) {
			return true
		}
	}
	return false
}

func (opts Options) withAddedOption(key string, value string) Options {
	return append(opts, &Option{key, value})
}

func (opts Options) withSettedOption(key string, value string) Options {
	for i := len(opts) - 1; i >= 0; i-- {
		o := opts[i]
		if o.IsKey(key) {
			opts[i] = &Option{key, value}
			return opts
		}
	}

	return opts.withAddedOption(key, value)
}
