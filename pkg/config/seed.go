package config

import (
	"strconv"
	"strings"

	"github.com/arthur-debert/deployer/pkg/constants"
	"github.com/arthur-debert/deployer/pkg/packages"
	"github.com/arthur-debert/deployer/pkg/variables"
)

// Seed fills reserved variables the store does not define yet. Flag-like
// variables are only set when enabled, since their presence is the signal.
func (c *Config) Seed(store *variables.Store) {
	d := c.Deployment
	setNonEmpty(store, constants.VarOverwrite, d.Overwrite)
	setNonEmpty(store, constants.VarVerbosity, d.Verbosity)
	setNonEmpty(store, constants.VarDestination, d.Destination)
	if d.Expansion {
		store.SetDefault(constants.VarExpansion, strconv.FormatBool(true))
	}
	if d.IgnoreDeploymentFile {
		store.SetDefault(constants.VarIgnoreDeploymentFile, strconv.FormatBool(true))
	}

	setNonEmpty(store, constants.VarPackageServer, c.PackageServer())
	store.SetDefault(constants.VarPackageDirectory, c.PackageDirectory())
}

// PackageServer returns the configured registry or the public one.
func (c *Config) PackageServer() string {
	if s := strings.TrimSpace(c.Packages.Server); s != "" {
		return s
	}
	return packages.DefaultServer
}

// PackageDirectory returns the configured packages directory or
// ~/.nuget/packages.
func (c *Config) PackageDirectory() string {
	if d := strings.TrimSpace(c.Packages.Directory); d != "" {
		return d
	}
	return packages.DefaultDirectory()
}

func setNonEmpty(store *variables.Store, name, value string) {
	if strings.TrimSpace(value) != "" {
		store.SetDefault(name, value)
	}
}
