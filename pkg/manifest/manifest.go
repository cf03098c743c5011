// Package manifest reads deployment profiles.
//
// A profile is a line based text file:
//
//	# comment
//	; comment
//	readme.txt
//	[bin x64]
//	app.dll
//	app.pdb = symbols.pdb <Environment:Debug>
//
// Section headers name destination subdirectories; whitespace separated
// words nest, so [bin x64] is section x64 inside section bin. Entries are
// source[=destination] lines. Entries before the first header belong to
// the profile root.
package manifest

import (
	"bufio"
	"io"
	"strings"

	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/types"
)

// Item is a Section or an Entry.
type Item interface {
	Line() int
}

// Profile is a parsed manifest.
type Profile struct {
	FilePath string
	Items    []Item
}

// Section groups items under a destination subdirectory.
type Section struct {
	Name   string
	Parent *Section
	Items  []Item
	line   int
}

func (s *Section) Line() int { return s.line }

// FullName is the space separated path from the root section.
func (s *Section) FullName() string {
	if s.Parent == nil {
		return s.Name
	}
	return s.Parent.FullName() + " " + s.Name
}

// Path is FullName with '/' between the words.
func (s *Section) Path() string {
	return strings.ReplaceAll(s.FullName(), " ", "/")
}

// Entry is one source[=destination] line.
type Entry struct {
	Name    string
	Value   string
	Section *Section
	Profile *Profile
	line    int
}

func (e *Entry) Line() int { return e.line }

// Load reads and parses the profile at path.
func Load(fsys types.FS, path string) (*Profile, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestNotFound, "cannot open manifest %s", path)
	}
	defer func() { _ = f.Close() }()
	return Parse(f, path)
}

// Parse reads a profile from r. path is recorded for diagnostics.
func Parse(r io.Reader, path string) (*Profile, error) {
	profile := &Profile{FilePath: path}
	var current *Section

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		if line[0] == '[' {
			if !strings.HasSuffix(line, "]") {
				return nil, errors.Newf(errors.ErrManifestParse, "%s(%d): unterminated section header", path, lineNo).
					WithDetail("line", lineNo)
			}
			words := strings.Fields(line[1 : len(line)-1])
			if len(words) == 0 {
				return nil, errors.Newf(errors.ErrManifestParse, "%s(%d): empty section name", path, lineNo).
					WithDetail("line", lineNo)
			}
			current = profile.section(words, lineNo)
			continue
		}

		name, value, _ := strings.Cut(line, "=")
		entry := &Entry{
			Name:    strings.TrimSpace(name),
			Value:   strings.TrimSpace(value),
			Section: current,
			Profile: profile,
			line:    lineNo,
		}
		if entry.Name == "" {
			return nil, errors.Newf(errors.ErrManifestParse, "%s(%d): entry without a source", path, lineNo).
				WithDetail("line", lineNo)
		}
		if current == nil {
			profile.Items = append(profile.Items, entry)
		} else {
			current.Items = append(current.Items, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "cannot read manifest %s", path)
	}
	return profile, nil
}

// section finds or creates the nested section named by words.
func (p *Profile) section(words []string, line int) *Section {
	var parent *Section
	items := &p.Items
	for _, word := range words {
		var found *Section
		for _, item := range *items {
			if s, ok := item.(*Section); ok && s.Name == word {
				found = s
				break
			}
		}
		if found == nil {
			found = &Section{Name: word, Parent: parent, line: line}
			*items = append(*items, found)
		}
		parent = found
		items = &found.Items
	}
	return parent
}
