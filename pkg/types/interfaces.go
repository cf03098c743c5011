package types

import (
	"io"
	"io/fs"
	"time"
)

// FS is the filesystem used by every component that touches disk.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Open(name string) (io.ReadCloser, error)
	Create(name string) (io.WriteCloser, error)
	Chtimes(name string, atime, mtime time.Time) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}

// Output receives one call per user-visible deployment event. Callers
// decide whether an event is reported at the active verbosity; an Output
// only renders.
type Output interface {
	FileDeploySucceed(source, destination string)
	FileDeployFailed(source, destination string, overwrite Overwrite, err error)
	FileDeleteSucceed(path string)
	FileDeleteFailed(path string, err error)
	// FileNotExists reports a missing source. deploymentFile is set when the
	// missing file was itself a manifest.
	FileNotExists(path string, deploymentFile bool)
	UndefinedVariable(variable, expression, file string, line int)
	UndefinedResolver(resolver, file string, line int)
	// ManifestFailed reports a sub-manifest that could not be deployed.
	ManifestFailed(path string, err error)

	PackageIllegal(argument string)
	PackageNotFound(id, version string)
	PackageUnmatched(id, version, framework string)
	PackageDownloadFailed(id, version string, err error)
}
