package packages

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/deployer/pkg/constants"
	"github.com/arthur-debert/deployer/pkg/deploy"
	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/framework"
	"github.com/arthur-debert/deployer/pkg/logging"
	"github.com/arthur-debert/deployer/pkg/wildcard"
)

// Finder yields the files of a package entry: an explicit subpath, the
// package's own manifest, or every file under the nearest lib folder of the
// package and of its direct dependencies.
type Finder struct {
	client *Client
}

// NewFinder returns a finder backed by client.
func NewFinder(client *Client) *Finder {
	return &Finder{client: client}
}

// NewResolver returns the resolver registered under the "nuget" tag.
func NewResolver(client *Client) *deploy.SourceResolver {
	return deploy.NewSourceResolver(constants.ResolverPackage, NewFinder(client))
}

func (f *Finder) Sources(ctx context.Context, dc *deploy.Context, entry *deploy.Entry) ([]wildcard.Token, error) {
	out := dc.Output()
	logger := logging.GetLogger("packages.resolver")

	id, ok := ParseIdentity(entry.Source.Name)
	if !ok {
		out.PackageIllegal(entry.Source.Name)
		return nil, errors.Newf(errors.ErrPackageInvalid, "illegal package expression %q", entry.Source.Name)
	}

	version, err := f.client.ResolveVersion(ctx, id.Name, id.Version)
	if err != nil {
		if ctx.Err() != nil {
			return nil, canceled(ctx)
		}
		if errors.IsErrorCode(err, errors.ErrPackageNotFound) {
			out.PackageNotFound(id.Name, id.Version)
		} else {
			out.PackageDownloadFailed(id.Name, id.Version, err)
		}
		return nil, err
	}

	root, err := f.client.Install(ctx, id.Name, version)
	if err != nil {
		if ctx.Err() != nil {
			return nil, canceled(ctx)
		}
		out.PackageDownloadFailed(id.Name, version, err)
		return nil, err
	}
	pkg := Package{ID: id.Name, Version: version, Path: root}
	logger.Debug().Str("package", id.Name).Str("version", version).Str("path", root).Msg("Package ready")

	expander := dc.Deployer.Expander()
	if id.Path != "" {
		return expander.Files(ctx, filepath.Join(root, filepath.FromSlash(id.Path)))
	}

	manifest := filepath.Join(root, constants.DeploymentFileName)
	if info, err := dc.FS().Stat(manifest); err == nil && !info.IsDir() {
		return []wildcard.Token{wildcard.NewToken(manifest, "")}, nil
	}

	value, _ := dc.Variables().Get(constants.VarFramework)
	target, err := framework.Parse(value)
	if err != nil {
		out.PackageUnmatched(id.Name, version, value)
		return nil, errors.Newf(errors.ErrPackageUnmatched, "no target framework to select libraries of %s", id.Name)
	}

	deps, err := f.client.Dependencies(ctx, pkg, target)
	if err != nil {
		if ctx.Err() != nil {
			return nil, canceled(ctx)
		}
		depID, depVersion := id.Name, version
		details := errors.GetErrorDetails(err)
		if v, ok := details["package"]; ok {
			depID = fmt.Sprint(v)
		}
		if v, ok := details["version"]; ok {
			depVersion = fmt.Sprint(v)
		}
		out.PackageDownloadFailed(depID, depVersion, err)
		return nil, err
	}

	var libs []string
	for _, p := range append([]Package{pkg}, deps...) {
		if lib, ok := f.client.Store().NearestLib(p.Path, target); ok {
			libs = append(libs, lib)
		}
	}
	if len(libs) == 0 {
		out.PackageUnmatched(id.Name, version, value)
		return nil, errors.Newf(errors.ErrPackageUnmatched, "package %s %s has no library for %s", id.Name, version, value)
	}

	seen := make(map[string]bool)
	var tokens []wildcard.Token
	for _, lib := range libs {
		files, err := expander.Files(ctx, filepath.Join(lib, "**", "*"))
		if err != nil {
			return nil, err
		}
		for _, t := range files {
			if seen[t.Path] {
				continue
			}
			seen[t.Path] = true
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}

func canceled(ctx context.Context) error {
	return errors.Wrap(ctx.Err(), errors.ErrCanceled, "package resolution canceled")
}
