package deploy

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deployer/pkg/constants"
	"github.com/arthur-debert/deployer/pkg/manifest"
	"github.com/arthur-debert/deployer/pkg/requisite"
)

// Target is a (name, directory) pair. An empty destination name means the
// source file keeps its own name.
type Target struct {
	Name string
	Path string
}

// FullPath joins the directory and the name. Absolute names stand alone.
func (t Target) FullPath() string {
	if filepath.IsAbs(t.Name) {
		return t.Name
	}
	return filepath.Join(t.Path, t.Name)
}

// Entry is a manifest entry with its tag split off, placeholders resolved
// and requisites combined.
type Entry struct {
	// Name is the resolver tag, empty for the default resolver.
	Name        string
	Source      Target
	Destination Target
	Requisition string
	Item        *manifest.Entry
}

// Requisition returns the combined requisite of a manifest entry's source
// and destination.
func Requisition(item *manifest.Entry) string {
	_, src := requisite.Extract(item.Name)
	_, dst := requisite.Extract(item.Value)
	return requisite.Combine(src, dst)
}

// NewEntry builds the Entry for item in dc.
func NewEntry(dc *Context, item *manifest.Entry) *Entry {
	source, _ := requisite.Extract(item.Name)
	destination, _ := requisite.Extract(item.Value)

	tag, source := splitTag(source)
	if strings.HasPrefix(source, "!") {
		tag = constants.ResolverDelete
		source = strings.TrimSpace(source[1:])
	}

	line := item.Line()
	sourceName := dc.Resolve(source, source, line)
	sourcePath := dc.SourceDirectory()
	if filepath.IsAbs(sourceName) {
		sourcePath = filepath.Dir(sourceName)
	}

	destinationName := ""
	if destination != "" {
		destinationName = dc.Resolve(destination, destination, line)
	}
	destinationPath := dc.DestinationDirectory
	if item.Section != nil {
		sectionPath := dc.Resolve(item.Section.Path(), "["+item.Section.FullName()+"]", line)
		destinationPath = filepath.Join(destinationPath, sectionPath)
	}

	return &Entry{
		Name:        tag,
		Source:      Target{Name: sourceName, Path: sourcePath},
		Destination: Target{Name: destinationName, Path: destinationPath},
		Requisition: Requisition(item),
		Item:        item,
	}
}

// splitTag separates a "tag:" prefix. A single letter followed by a path
// separator is a drive letter, not a tag.
func splitTag(source string) (string, string) {
	i := strings.IndexByte(source, ':')
	if i < 0 {
		return "", source
	}
	if i == 1 && len(source) > 2 && (source[2] == '\\' || source[2] == '/') {
		return "", source
	}
	return strings.TrimSpace(source[:i]), strings.TrimSpace(source[i+1:])
}

// IsDeploymentFile reports whether path names a manifest.
func IsDeploymentFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), constants.DeploymentFileExt)
}
