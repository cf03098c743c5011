package deploy

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/deployer/pkg/constants"
	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/logging"
	"github.com/arthur-debert/deployer/pkg/types"
	"github.com/arthur-debert/deployer/pkg/wildcard"
)

// SourceFinder produces the source files of an entry. A cancellation error
// stops the deployment; any other error means the finder already reported
// the problem and the entry counts as one failure.
type SourceFinder interface {
	Sources(ctx context.Context, dc *Context, entry *Entry) ([]wildcard.Token, error)
}

// SourceFinderFunc adapts a function to SourceFinder.
type SourceFinderFunc func(ctx context.Context, dc *Context, entry *Entry) ([]wildcard.Token, error)

func (f SourceFinderFunc) Sources(ctx context.Context, dc *Context, entry *Entry) ([]wildcard.Token, error) {
	return f(ctx, dc, entry)
}

// GlobFinder expands the entry source path with the deployer's expander.
type GlobFinder struct{}

func (GlobFinder) Sources(ctx context.Context, dc *Context, entry *Entry) ([]wildcard.Token, error) {
	return dc.Deployer.Expander().Files(ctx, entry.Source.FullPath())
}

// SourceResolver deploys the files a SourceFinder returns.
type SourceResolver struct {
	name   string
	finder SourceFinder
}

// NewSourceResolver creates a resolver named name around finder.
func NewSourceResolver(name string, finder SourceFinder) *SourceResolver {
	return &SourceResolver{name: name, finder: finder}
}

func (r *SourceResolver) Name() string { return r.name }

func (r *SourceResolver) Resolve(ctx context.Context, dc *Context, entry *Entry) error {
	logger := logging.GetLogger("deploy.resolver")

	sources, err := r.finder.Sources(ctx, dc, entry)
	if err != nil {
		if isCanceled(ctx, err) {
			return err
		}
		logger.Debug().Err(err).Str("source", entry.Source.Name).Msg("No sources resolved")
		dc.Counter.Fail()
		return nil
	}

	fsys := dc.FS()
	out := dc.Output()
	verbosity := dc.Verbosity()
	overwrite := dc.Overwrite()

	for _, source := range sources {
		if !source.Valid() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCanceled, "deployment canceled")
		}

		destinationDir := entry.Destination.Path
		if source.Suffix != "" {
			destinationDir = filepath.Join(destinationDir, filepath.FromSlash(source.Suffix))
		}
		name := entry.Destination.Name
		if name == "" {
			name = filepath.Base(source.Path)
		}
		destinationFile := filepath.Join(destinationDir, name)

		if !isFile(fsys, source.Path) {
			dc.Counter.Fail()
			if verbosity != types.VerbosityQuiet {
				out.FileNotExists(source.Path, IsDeploymentFile(source.Path))
			}
			continue
		}

		if IsDeploymentFile(source.Path) && !dc.Variables().Has(constants.VarIgnoreDeploymentFile) {
			sub, err := dc.Deployer.Deploy(ctx, source.Path, destinationDir)
			dc.Counter.Add(sub)
			if err != nil {
				if isCanceled(ctx, err) {
					return err
				}
				if verbosity != types.VerbosityQuiet {
					out.ManifestFailed(source.Path, err)
				}
			}
			continue
		}

		copied, err := CopyFile(ctx, fsys, source.Path, destinationFile, overwrite)
		if err != nil && isCanceled(ctx, err) {
			return err
		}
		if copied {
			dc.Counter.Success()
			if verbosity == types.VerbosityDetail {
				out.FileDeploySucceed(source.Path, destinationFile)
			}
			continue
		}

		dc.Counter.Fail()
		logger.Debug().Err(err).Str("source", source.Path).Str("destination", destinationFile).Msg("File not deployed")
		if verbosity != types.VerbosityQuiet {
			out.FileDeployFailed(source.Path, destinationFile, overwrite, err)
		}
	}
	return nil
}

func isFile(fsys types.FS, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && !info.IsDir()
}

func isCanceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.IsErrorCode(err, errors.ErrCanceled)
}
