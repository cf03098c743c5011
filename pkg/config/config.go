package config

import "time"

// Config is the effective deployer configuration.
type Config struct {
	Deployment Deployment `koanf:"deployment" toml:"deployment"`
	Packages   Packages   `koanf:"packages" toml:"packages"`
	Settings   Settings   `koanf:"settings" toml:"settings"`
}

// Deployment holds defaults for the reserved deployment variables.
type Deployment struct {
	Overwrite            string `koanf:"overwrite" toml:"overwrite"`
	Verbosity            string `koanf:"verbosity" toml:"verbosity"`
	Destination          string `koanf:"destination" toml:"destination"`
	Expansion            bool   `koanf:"expansion" toml:"expansion"`
	IgnoreDeploymentFile bool   `koanf:"ignore_deployment_file" toml:"ignore_deployment_file"`
}

// Packages configures the package client.
type Packages struct {
	Server      string        `koanf:"server" toml:"server"`
	Directory   string        `koanf:"directory" toml:"directory"`
	Exclude     []string      `koanf:"exclude" toml:"exclude"`
	Concurrency int           `koanf:"concurrency" toml:"concurrency"`
	Timeout     time.Duration `koanf:"timeout" toml:"timeout"`
}

// Settings lists application settings files flattened into variables.
type Settings struct {
	Files []string `koanf:"files" toml:"files"`
}
