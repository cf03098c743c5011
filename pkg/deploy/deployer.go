package deploy

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deployer/pkg/constants"
	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/logging"
	"github.com/arthur-debert/deployer/pkg/manifest"
	"github.com/arthur-debert/deployer/pkg/requisite"
	"github.com/arthur-debert/deployer/pkg/types"
	"github.com/arthur-debert/deployer/pkg/variables"
	"github.com/arthur-debert/deployer/pkg/wildcard"
)

// Loader reads a manifest.
type Loader func(fsys types.FS, path string) (*manifest.Profile, error)

// Options configures a Deployer. FS, Output and Variables are required.
type Options struct {
	FS        types.FS
	Output    types.Output
	Variables *variables.Store
	// Registry defaults to NewRegistry().
	Registry *Registry
	// Regulators redirect directories before wildcard listing.
	Regulators []wildcard.Regulator
	// WorkingDir anchors relative paths. Defaults to the process working directory.
	WorkingDir string
	// Loader defaults to manifest.Load.
	Loader Loader
}

// Deployer runs manifests against a shared variable store.
type Deployer struct {
	fs         types.FS
	output     types.Output
	vars       *variables.Store
	registry   *Registry
	regulators []wildcard.Regulator
	workingDir string
	load       Loader
}

// New creates a Deployer.
func New(opts Options) *Deployer {
	d := &Deployer{
		fs:         opts.FS,
		output:     opts.Output,
		vars:       opts.Variables,
		registry:   opts.Registry,
		regulators: opts.Regulators,
		workingDir: opts.WorkingDir,
		load:       opts.Loader,
	}
	if d.vars == nil {
		d.vars = variables.NewStore()
	}
	if d.registry == nil {
		d.registry = NewRegistry()
	}
	if d.load == nil {
		d.load = manifest.Load
	}
	if d.workingDir == "" {
		if wd, err := os.Getwd(); err == nil {
			d.workingDir = wd
		}
	}
	return d
}

func (d *Deployer) Variables() *variables.Store { return d.vars }
func (d *Deployer) Output() types.Output        { return d.output }
func (d *Deployer) FS() types.FS                { return d.fs }
func (d *Deployer) Registry() *Registry         { return d.registry }

// Expander returns a wildcard expander honoring the expansion variable and
// the configured regulators.
func (d *Deployer) Expander(opts ...wildcard.Option) *wildcard.Expander {
	base := []wildcard.Option{wildcard.WithExpansion(d.vars.Has(constants.VarExpansion))}
	for _, r := range d.regulators {
		base = append(base, wildcard.WithRegulator(r))
	}
	return wildcard.New(d.fs, append(base, opts...)...)
}

// Deploy deploys the manifest at manifestPath into destination. A directory
// holding a conventionally named manifest is accepted. An empty destination
// falls back to the destination variable, then to the working directory.
//
// The returned error is set when the manifest or the destination root is
// unusable or the context is canceled; the counter is valid either way.
func (d *Deployer) Deploy(ctx context.Context, manifestPath, destination string) (*Counter, error) {
	logger := logging.GetLogger("deploy")

	if strings.TrimSpace(manifestPath) == "" {
		return NewCounter(""), errors.New(errors.ErrInvalidInput, "manifest path is required")
	}

	path := d.resolvePath(manifestPath)
	counter := NewCounter(path)

	path, err := d.locateManifest(path)
	if err != nil {
		counter.Fail()
		return counter, err
	}
	counter.FilePath = path

	destination, err = d.destinationRoot(destination)
	if err != nil {
		return counter, err
	}

	profile, err := d.load(d.fs, path)
	if err != nil {
		counter.Fail()
		return counter, err
	}

	done := logging.LogOperationStart(logger, "deploy "+path)
	defer done()
	logger.Info().Str("manifest", path).Str("destination", destination).Msg("Deploying manifest")

	dc := &Context{
		Deployer:             d,
		Profile:              profile,
		DestinationDirectory: destination,
		Counter:              counter,
	}
	for _, item := range profile.Items {
		if err := d.visit(ctx, dc, item); err != nil {
			return counter, err
		}
	}
	return counter, nil
}

func (d *Deployer) resolvePath(path string) string {
	resolved := variables.Resolve(path, d.vars, func(name string) {
		d.output.UndefinedVariable(name, path, "", 0)
	})
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(d.workingDir, resolved)
	}
	return filepath.Clean(resolved)
}

func (d *Deployer) locateManifest(path string) (string, error) {
	info, err := d.fs.Stat(path)
	if err == nil && !info.IsDir() {
		return path, nil
	}
	if err == nil && info.IsDir() {
		candidate := filepath.Join(path, constants.DeploymentFileName)
		if isFile(d.fs, candidate) {
			return candidate, nil
		}
	}
	return path, errors.Newf(errors.ErrManifestNotFound, "deployment file %s does not exist", path).
		WithDetail("path", path)
}

func (d *Deployer) destinationRoot(destination string) (string, error) {
	if strings.TrimSpace(destination) == "" {
		destination = d.workingDir
		if v, ok := d.vars.Get(constants.VarDestination); ok && strings.TrimSpace(v) != "" {
			destination = v
		}
	}

	destination = d.resolvePath(destination)
	if err := d.fs.MkdirAll(destination, 0755); err != nil {
		return destination, errors.Wrapf(err, errors.ErrDirCreate, "cannot create destination %s", destination)
	}
	return destination, nil
}

func (d *Deployer) visit(ctx context.Context, dc *Context, item manifest.Item) error {
	logger := logging.GetLogger("deploy")
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCanceled, "deployment canceled")
	}

	switch node := item.(type) {
	case *manifest.Section:
		dir := filepath.Join(dc.DestinationDirectory, dc.Resolve(node.Path(), "["+node.FullName()+"]", node.Line()))
		if err := d.fs.MkdirAll(dir, 0755); err != nil {
			logger.Warn().Err(err).Str("dir", dir).Msg("Cannot create section directory")
		}
		for _, child := range node.Items {
			if err := d.visit(ctx, dc, child); err != nil {
				return err
			}
		}

	case *manifest.Entry:
		if !requisite.Evaluate(d.vars, Requisition(node)) {
			logger.Trace().Str("entry", node.Name).Int("line", node.Line()).Msg("Requisite not met")
			return nil
		}

		entry := NewEntry(dc, node)
		resolver, ok := d.registry.Get(entry.Name)
		if !ok {
			d.output.UndefinedResolver(entry.Name, dc.Profile.FilePath, node.Line())
			return nil
		}
		return resolver.Resolve(ctx, dc, entry)
	}
	return nil
}
