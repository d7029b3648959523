package filesystem

import (
	"os"

	format "github.com/go-git/go-sparse/plumbing/format/config"
	"github.com/go-git/go-sparse/storage/filesystem/dotgit"
	"github.com/go-git/go-sparse/utils/ioutil"
)

// ConfigStorage reads and writes the repository config file. The whole
// file is kept as parsed sections, so rewriting the sparse-checkout
// flags preserves every other section untouched.
type ConfigStorage struct {
	dir *dotgit.DotGit
}

// Config returns the current config. A repository without a config file
// yields an empty config, not an error.
func (s *ConfigStorage) Config() (cfg *format.Config, err error) {
	cfg = format.New()

	f, err := s.dir.Config()
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return nil, err
	}

	defer ioutil.CheckClose(f, &err)

	d := format.NewDecoder(f)
	err = d.Decode(cfg)
	return cfg, err
}

// SetConfig persists cfg, atomically replacing the previous config
// file.
func (s *ConfigStorage) SetConfig(cfg *format.Config) (err error) {
	f, err := s.dir.ConfigWriter()
	if err != nil {
		return err
	}

	defer ioutil.CheckClose(f, &err)

	e := format.NewEncoder(f)
	err = e.Encode(cfg)
	return err
}
