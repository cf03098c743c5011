package deploy

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/types"
)

const copyBufferSize = 64 * 1024

// CopyRequired applies the overwrite policy. A missing destination is always
// copied; Newest copies when the source is at least as recent.
func CopyRequired(fsys types.FS, source, destination string, overwrite types.Overwrite) (bool, error) {
	dst, err := fsys.Stat(destination)
	if err != nil {
		return true, nil
	}

	switch overwrite {
	case types.OverwriteNever:
		return false, nil
	case types.OverwriteNewest:
		src, err := fsys.Stat(source)
		if err != nil {
			return false, errors.Wrapf(err, errors.ErrFileNotFound, "cannot stat %s", source)
		}
		return !src.ModTime().Before(dst.ModTime()), nil
	default:
		return true, nil
	}
}

// CopyFile copies source to destination when the overwrite policy allows
// it, creating parent directories and keeping the source modification
// time. It reports whether a copy happened. A policy skip returns false
// with a nil error. A failed copy may leave a partial destination.
func CopyFile(ctx context.Context, fsys types.FS, source, destination string, overwrite types.Overwrite) (bool, error) {
	if strings.TrimSpace(source) == "" || strings.TrimSpace(destination) == "" {
		return false, errors.New(errors.ErrInvalidInput, "source and destination are required")
	}

	required, err := CopyRequired(fsys, source, destination, overwrite)
	if err != nil || !required {
		return false, err
	}

	info, err := fsys.Stat(source)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileNotFound, "cannot stat %s", source)
	}

	if err := fsys.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(destination))
	}

	if err := copyContents(ctx, fsys, source, destination); err != nil {
		return false, err
	}

	if err := fsys.Chtimes(destination, info.ModTime(), info.ModTime()); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileCopy, "cannot set times on %s", destination)
	}
	return true, nil
}

func copyContents(ctx context.Context, fsys types.FS, source, destination string) (err error) {
	in, err := fsys.Open(source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot open %s", source)
	}
	defer func() { _ = in.Close() }()

	out, err := fsys.Create(destination)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot create %s", destination)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, errors.ErrFileCopy, "cannot close %s", destination)
		}
	}()

	if _, err := io.CopyBuffer(out, &contextReader{ctx: ctx, r: in}, make([]byte, copyBufferSize)); err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), errors.ErrCanceled, "copy canceled")
		}
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot copy %s to %s", source, destination)
	}
	return nil
}

// contextReader fails reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
