package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestDecode() {
	text := "[core]\n" +
		"\tsparseCheckout = true\n" +
		"\tsparseCheckoutCone = true\n" +
		"[extensions]\n" +
		"\tworktreeConfig = true\n" +
		"[remote \"origin\"]\n" +
		"\turl = git@github.com:go-git/go-sparse.git\n"

	cfg := New()
	err := NewDecoder(strings.NewReader(text)).Decode(cfg)
	s.NoError(err)

	s.Equal("true", cfg.GetOption("core", NoSubsection, "sparseCheckout"))
	s.Equal("true", cfg.GetOption("extensions", NoSubsection, "worktreeConfig"))
	s.Equal("git@github.com:go-git/go-sparse.git",
		cfg.GetOption("remote", "origin", "url"))
}

func (s *ConfigSuite) TestKeysAreCaseInsensitive() {
	cfg := New()
	cfg.SetOption("core", NoSubsection, "sparseCheckout", "true")

	s.Equal("true", cfg.GetOption("CORE", NoSubsection, "sparsecheckout"))
}

func (s *ConfigSuite) TestSetOptionReplaces() {
	cfg := New()
	cfg.SetOption("core", NoSubsection, "sparseCheckout", "true")
	cfg.SetOption("core", NoSubsection, "sparseCheckout", "false")

	s.Len(cfg.Section("core").Options, 1)
	s.Equal("false", cfg.GetOption("core", NoSubsection, "sparseCheckout"))
}

func (s *ConfigSuite) TestEncode() {
	cfg := New()
	cfg.SetOption("core", NoSubsection, "sparseCheckout", "true")
	cfg.SetOption("remote", "origin", "url", "git@github.com:go-git/go-sparse.git")

	buf := bytes.NewBuffer(nil)
	err := NewEncoder(buf).Encode(cfg)
	s.NoError(err)

	s.Equal("[core]\n"+
		"\tsparseCheckout = true\n"+
		"[remote \"origin\"]\n"+
		"\turl = git@github.com:go-git/go-sparse.git\n", buf.String())
}

func (s *ConfigSuite) TestRoundTripPreservesOtherSections() {
	text := "[core]\n" +
		"\tbare = false\n" +
		"[branch \"main\"]\n" +
		"\tremote = origin\n"

	cfg := New()
	s.NoError(NewDecoder(strings.NewReader(text)).Decode(cfg))

	cfg.SetOption("core", NoSubsection, "sparseCheckout", "true")

	buf := bytes.NewBuffer(nil)
	s.NoError(NewEncoder(buf).Encode(cfg))

	out := buf.String()
	s.Contains(out, "bare = false")
	s.Contains(out, "[branch \"main\"]")
	s.Contains(out, "remote = origin")
	s.Contains(out, "sparseCheckout = true")
}
