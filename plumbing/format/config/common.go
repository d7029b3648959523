// Package config implements encoding and decoding of git config files.
//
//	Configuration File
//	https://git-scm.com/book/en/v2/Customizing-Git-Git-Configuration
package config

// New creates a new config instance.
func New() *Config {
	return &Config{}
}

// Config contains all the sections from a config file.
type Config struct {
	Sections Sections
}

const (
	// NoSubsection token is passed to Config.SetOption and
	// Config.GetOption to represent the absence of a subsection.
	NoSubsection = ""
)

// Section returns an existing section with the given name or creates a new one.
func (c *Config) Section(name string) *Section {
	for i := len(c.Sections) - 1; i >= 0; i-- {
		s := c.Sections[i]
		if s.IsName(name) {
			return s
		}
	}

	s := &Section{Name: name}
	c.Sections = append(c.Sections, s)
	return s
}

// HasSection checks if the Config has a section with the specified name.
func (c *Config) HasSection(name string) bool {
	for _, s := range c.Sections {
		if s.IsName(name) {
			return true
		}
	}
	return false
}

// AddOption adds an option to a given section and subsection. Use the
// NoSubsection constant for the subsection argument if no subsection is
// wanted.
func (c *Config) AddOption(section string, subsection string, key string, value string) *Config {
	if subsection == NoSubsection {
		c.Section(section).AddOption(key, value)
	} else {
		c.Section(section).Subsection(subsection).AddOption(key, value)
	}

	return c
}

// SetOption sets an option to a given section and subsection. Use the
// NoSubsection constant for the subsection argument if no subsection is
// wanted.
func (c *Config) SetOption(section string, subsection string, key string, value string) *Config {
	if subsection == NoSubsection {
		c.Section(section).SetOption(key, value)
	} else {
		c.Section(section).Subsection(subsection).SetOption(key, value)
	}

	return c
}

// GetOption gets the value of a named Option from the Section and Subsection.
// If the option does not exist or is not set, it returns the empty string.
// If there are multiple definitions of a key, the last one wins, matching
// git behaviour since git v1.8.1-rc1.
func (c *Config) GetOption(section string, subsection string, key string) string {
	if subsection == NoSubsection {
		return c.Section(section).GetOption(key)
	}

	return c.Section(section).Subsection(subsection).GetOption(key)
}
