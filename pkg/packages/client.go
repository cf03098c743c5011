package packages

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/framework"
	"github.com/arthur-debert/deployer/pkg/logging"
)

// DefaultExcludes are dependency id prefixes owned by the runtime, never
// downloaded as dependencies.
var DefaultExcludes = []string{"System.", "Microsoft.NETCore.", "Microsoft.Extensions.", "NETStandard.Library", "runtime."}

const defaultConcurrency = 4

// Package is an extracted package.
type Package struct {
	ID      string
	Version string
	Path    string
}

// Client resolves, downloads and caches packages.
type Client struct {
	registry    *Registry
	store       *Store
	excludes    []string
	concurrency int

	versions     *Cache[[]string]
	downloads    *Cache[string]
	dependencies *Cache[[]Package]
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithExcludes replaces the excluded dependency prefixes.
func WithExcludes(prefixes ...string) ClientOption {
	return func(c *Client) {
		c.excludes = append([]string(nil), prefixes...)
	}
}

// WithConcurrency bounds parallel dependency downloads.
func WithConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// NewClient creates a Client with fresh caches.
func NewClient(registry *Registry, store *Store, opts ...ClientOption) *Client {
	c := &Client{
		registry:     registry,
		store:        store,
		excludes:     DefaultExcludes,
		concurrency:  defaultConcurrency,
		versions:     NewCache[[]string](),
		downloads:    NewCache[string](),
		dependencies: NewCache[[]Package](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the local package store.
func (c *Client) Store() *Store { return c.store }

// Versions returns the published versions of id, ascending.
func (c *Client) Versions(ctx context.Context, id string) ([]string, error) {
	return c.versions.GetOrCompute(ctx, id, func(ctx context.Context) ([]string, error) {
		return c.registry.Versions(ctx, id)
	})
}

// ResolveVersion maps a requested version, empty or "latest" for the
// highest one, to a published version.
func (c *Client) ResolveVersion(ctx context.Context, id, requested string) (string, error) {
	versions, err := c.Versions(ctx, id)
	if err != nil {
		return "", err
	}

	var (
		version string
		ok      bool
	)
	if requested == "" || strings.EqualFold(requested, LatestVersion) {
		version, ok = Latest(versions)
	} else {
		version, ok = Find(versions, requested)
	}
	if !ok {
		return "", errors.Newf(errors.ErrPackageNotFound, "package %s has no version %q", id, requested).
			WithDetail("package", id).
			WithDetail("version", requested)
	}
	return version, nil
}

// Install makes id at version available in the store and returns its path.
// Packages already extracted are not downloaded again.
func (c *Client) Install(ctx context.Context, id, version string) (string, error) {
	key := id + "@" + NormalizeVersion(version)
	return c.downloads.GetOrCompute(ctx, key, func(ctx context.Context) (string, error) {
		if c.store.Has(id, version) {
			return c.store.PackagePath(id, version), nil
		}

		logger := logging.GetLogger("packages")
		logger.Info().Str("package", id).Str("version", version).Msg("Downloading package")

		data, err := c.registry.Download(ctx, id, version)
		if err != nil {
			return "", err
		}
		return c.store.Extract(id, version, data, c.registry.Server())
	})
}

// Dependencies installs the direct dependencies of pkg for target, leaving
// out excluded prefixes. Downloads run concurrently; the first failure
// cancels the rest.
func (c *Client) Dependencies(ctx context.Context, pkg Package, target framework.Framework) ([]Package, error) {
	key := pkg.ID + "@" + NormalizeVersion(pkg.Version) + "@" + target.String()
	return c.dependencies.GetOrCompute(ctx, key, func(ctx context.Context) ([]Package, error) {
		spec, err := c.store.Nuspec(pkg.Path)
		if err != nil {
			return nil, err
		}

		var deps []Dependency
		for _, d := range spec.DependenciesFor(target) {
			if !c.excluded(d.ID) {
				deps = append(deps, d)
			}
		}

		var (
			mu  sync.Mutex
			out = make([]Package, len(deps))
		)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)
		for i, d := range deps {
			i, d := i, d
			g.Go(func() error {
				resolved, err := c.resolveDependency(gctx, d)
				if err != nil {
					return err
				}
				mu.Lock()
				out[i] = resolved
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	})
}

func (c *Client) resolveDependency(ctx context.Context, d Dependency) (Package, error) {
	versions, err := c.Versions(ctx, d.ID)
	if err != nil {
		return Package{}, dependencyError(err, d.ID, d.Version)
	}

	min, inclusive := d.MinVersion()
	version, ok := LowestAtLeast(versions, min, inclusive)
	if !ok {
		return Package{}, dependencyError(nil, d.ID, d.Version)
	}

	path, err := c.Install(ctx, d.ID, version)
	if err != nil {
		return Package{}, dependencyError(err, d.ID, version)
	}
	return Package{ID: d.ID, Version: version, Path: path}, nil
}

// dependencyError carries the failed dependency in its details so callers
// can report it.
func dependencyError(err error, id, version string) error {
	e := &errors.DeployError{
		Code:    errors.ErrPackageDownload,
		Message: fmt.Sprintf("dependency %s %s unavailable", id, version),
		Wrapped: err,
	}
	return e.WithDetail("package", id).WithDetail("version", version)
}

func (c *Client) excluded(id string) bool {
	for _, p := range c.excludes {
		if p != "" && len(id) >= len(p) && strings.EqualFold(id[:len(p)], p) {
			return true
		}
	}
	return false
}
