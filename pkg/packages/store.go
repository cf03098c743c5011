package packages

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/framework"
	"github.com/arthur-debert/deployer/pkg/logging"
	"github.com/arthur-debert/deployer/pkg/types"
)

const (
	// metadataFile marks a completely extracted package.
	metadataFile = ".nupkg.metadata"

	// maxExtractedBytes bounds the uncompressed size of one package (2 GB).
	maxExtractedBytes = 2 << 30

	libDirectory = "lib"
)

// Store is a local packages directory laid out as <id>/<version>/.
type Store struct {
	fs  types.FS
	dir string
}

type packageMetadata struct {
	Version int    `json:"version"`
	Source  string `json:"source,omitempty"`
}

// NewStore returns a store rooted at dir.
func NewStore(fsys types.FS, dir string) *Store {
	return &Store{fs: fsys, dir: filepath.Clean(dir)}
}

// DefaultDirectory is ~/.nuget/packages.
func DefaultDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".nuget", "packages")
	}
	return filepath.Join(home, ".nuget", "packages")
}

// Dir returns the store root.
func (s *Store) Dir() string { return s.dir }

// PackagePath returns the directory holding id at version.
func (s *Store) PackagePath(id, version string) string {
	return filepath.Join(s.dir, strings.ToLower(id), NormalizeVersion(version))
}

// Has reports whether id at version is completely extracted.
func (s *Store) Has(id, version string) bool {
	_, err := s.fs.Stat(filepath.Join(s.PackagePath(id, version), metadataFile))
	return err == nil
}

// Extract unpacks a .nupkg into the store and returns the package path.
// The completion marker is written last so an interrupted extraction is
// redone on the next run.
func (s *Store) Extract(id, version string, data []byte, source string) (string, error) {
	root := s.PackagePath(id, version)
	logger := logging.GetLogger("packages.store")

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrPackageInvalid, "reading package %s %s", id, version)
	}
	if err := s.fs.MkdirAll(root, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "creating %s", root)
	}

	var total int64
	for _, f := range zr.File {
		name, ok := entryName(f.Name)
		if !ok {
			continue
		}
		total += int64(f.UncompressedSize64)
		if total > maxExtractedBytes {
			return "", errors.Newf(errors.ErrPackageInvalid, "package %s %s exceeds %d bytes extracted", id, version, int64(maxExtractedBytes))
		}

		target := filepath.Join(root, filepath.FromSlash(name))
		if f.FileInfo().IsDir() {
			if err := s.fs.MkdirAll(target, 0755); err != nil {
				return "", errors.Wrapf(err, errors.ErrDirCreate, "creating %s", target)
			}
			continue
		}
		if err := s.extractFile(f, target); err != nil {
			return "", err
		}
	}

	meta, err := json.Marshal(packageMetadata{Version: 2, Source: source})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "encoding package metadata")
	}
	if err := s.fs.WriteFile(filepath.Join(root, metadataFile), meta, 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileCopy, "writing metadata for %s %s", id, version)
	}

	logger.Debug().Str("package", id).Str("version", version).Str("path", root).Msg("Package extracted")
	return root, nil
}

func (s *Store) extractFile(f *zip.File, target string) error {
	if err := s.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "creating %s", filepath.Dir(target))
	}

	rc, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, errors.ErrPackageInvalid, "opening %s", f.Name)
	}
	defer rc.Close()

	w, err := s.fs.Create(target)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "creating %s", target)
	}
	if _, err := io.Copy(w, io.LimitReader(rc, int64(f.UncompressedSize64))); err != nil {
		w.Close()
		return errors.Wrapf(err, errors.ErrFileCopy, "extracting %s", target)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "closing %s", target)
	}
	if mtime := f.Modified; !mtime.IsZero() {
		_ = s.fs.Chtimes(target, mtime, mtime)
	}
	return nil
}

// entryName maps a zip entry to a relative path inside the package, leaving
// out packaging metadata and anything escaping the package root.
func entryName(name string) (string, bool) {
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(name, "/") {
		return "", false
	}

	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}

	lower := strings.ToLower(clean)
	switch {
	case lower == "[content_types].xml",
		strings.HasPrefix(lower, "_rels/"),
		strings.HasPrefix(lower, "package/"),
		strings.HasSuffix(lower, ".psmdcp"):
		return "", false
	}
	return clean, true
}

// Nuspec reads the .nuspec at the root of an extracted package.
func (s *Store) Nuspec(root string) (*Nuspec, error) {
	entries, err := s.fs.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPackageInvalid, "reading %s", root)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".nuspec") {
			continue
		}
		data, err := s.fs.ReadFile(filepath.Join(root, e.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrPackageInvalid, "reading %s", e.Name())
		}
		return ParseNuspec(data)
	}
	return nil, errors.Newf(errors.ErrPackageInvalid, "no nuspec in %s", root)
}

// LibFrameworks lists the framework folder names under root/lib.
func (s *Store) LibFrameworks(root string) []string {
	entries, err := s.fs.ReadDir(filepath.Join(root, libDirectory))
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

// NearestLib returns the lib folder of root nearest to target.
func (s *Store) NearestLib(root string, target framework.Framework) (string, bool) {
	name, ok := framework.NearestName(target, s.LibFrameworks(root))
	if !ok {
		return "", false
	}
	return filepath.Join(root, libDirectory, name), true
}
