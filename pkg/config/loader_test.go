package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/deployer/pkg/config"
	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "always", cfg.Deployment.Overwrite)
	assert.Equal(t, "normal", cfg.Deployment.Verbosity)
	assert.False(t, cfg.Deployment.Expansion)
	assert.Equal(t, "https://api.nuget.org/v3/index.json", cfg.Packages.Server)
	assert.Equal(t, 4, cfg.Packages.Concurrency)
	assert.Equal(t, 2*time.Minute, cfg.Packages.Timeout)
	assert.Contains(t, cfg.Packages.Exclude, "System.")
	assert.Equal(t, []string{"appsettings.json"}, cfg.Settings.Files)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := config.Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_DotFileWins(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".deployer.toml", "[deployment]\noverwrite = \"newest\"\n")
	writeConfig(t, dir, "deployer.toml", "[deployment]\noverwrite = \"never\"\n")

	cfg, err := config.Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "newest", cfg.Deployment.Overwrite)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "deployer.toml", `
[deployment]
verbosity = "detail"
expansion = true
ignore_deployment_file = true

[packages]
server = "https://packages.example.test/v3/index.json"
exclude = ["Contoso.Internal."]
concurrency = 8
timeout = "30s"
`)

	cfg, err := config.Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "detail", cfg.Deployment.Verbosity)
	assert.Equal(t, "always", cfg.Deployment.Overwrite)
	assert.True(t, cfg.Deployment.Expansion)
	assert.True(t, cfg.Deployment.IgnoreDeploymentFile)
	assert.Equal(t, "https://packages.example.test/v3/index.json", cfg.Packages.Server)
	assert.Equal(t, []string{"Contoso.Internal."}, cfg.Packages.Exclude)
	assert.Equal(t, 8, cfg.Packages.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Packages.Timeout)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "deployer.toml", "[deployment]\noverwrite = \"never\"\n")
	explicit := writeConfig(t, t.TempDir(), "custom.toml", "[deployment]\noverwrite = \"newest\"\n")

	cfg, err := config.Load(dir, explicit)
	require.NoError(t, err)
	assert.Equal(t, "newest", cfg.Deployment.Overwrite)

	_, err = config.Load(dir, filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "deployer.toml", "[deployment\n")

	_, err := config.Load(dir, "")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DEPLOYER_PACKAGES_DIRECTORY", "/var/cache/packages")
	t.Setenv("DEPLOYER_DEPLOYMENT_IGNORE_DEPLOYMENT_FILE", "true")
	t.Setenv("DEPLOYER_PACKAGES_EXCLUDE", "A.,B.")

	cfg, err := config.Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/packages", cfg.Packages.Directory)
	assert.True(t, cfg.Deployment.IgnoreDeploymentFile)
	assert.Equal(t, []string{"A.", "B."}, cfg.Packages.Exclude)
}

func TestMarshalTOML(t *testing.T) {
	data, err := config.Default().MarshalTOML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout = '2m0s'")

	path := writeConfig(t, t.TempDir(), "roundtrip.toml", string(data))
	cfg, err := config.Load("", path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}
