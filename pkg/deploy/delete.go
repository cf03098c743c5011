package deploy

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/deployer/pkg/constants"
	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/types"
)

// DeleteResolver removes destinationDir/sourceName. Source names are not
// expanded and failures are reported without being counted.
type DeleteResolver struct{}

func (DeleteResolver) Name() string { return constants.ResolverDelete }

func (DeleteResolver) Resolve(ctx context.Context, dc *Context, entry *Entry) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCanceled, "deployment canceled")
	}
	if entry.Source.Name == "" {
		return nil
	}

	path := filepath.Join(entry.Destination.Path, entry.Source.Name)
	err := dc.FS().Remove(path)
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		if dc.Verbosity() != types.VerbosityQuiet {
			dc.Output().FileDeleteFailed(path, errors.Wrapf(err, errors.ErrFileDelete, "cannot delete %s", path))
		}
		return nil
	}

	if dc.Verbosity() == types.VerbosityDetail {
		dc.Output().FileDeleteSucceed(path)
	}
	return nil
}
