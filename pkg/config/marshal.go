package config

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/deployer/pkg/errors"
)

// tomlPackages mirrors Packages with a readable timeout.
type tomlPackages struct {
	Server      string   `toml:"server"`
	Directory   string   `toml:"directory"`
	Exclude     []string `toml:"exclude"`
	Concurrency int      `toml:"concurrency"`
	Timeout     string   `toml:"timeout"`
}

type tomlConfig struct {
	Deployment Deployment   `toml:"deployment"`
	Packages   tomlPackages `toml:"packages"`
	Settings   Settings     `toml:"settings"`
}

// MarshalTOML renders the configuration in the config file format.
func (c *Config) MarshalTOML() ([]byte, error) {
	out := tomlConfig{
		Deployment: c.Deployment,
		Packages: tomlPackages{
			Server:      c.Packages.Server,
			Directory:   c.Packages.Directory,
			Exclude:     c.Packages.Exclude,
			Concurrency: c.Packages.Concurrency,
			Timeout:     c.Packages.Timeout.String(),
		},
		Settings: c.Settings,
	}
	data, err := toml.Marshal(out)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return data, nil
}
