package packages

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/framework"
)

// Nuspec is the subset of a package manifest the resolver reads.
type Nuspec struct {
	ID      string
	Version string
	// Groups holds framework-specific dependency groups. Dependencies
	// declared outside any group land in a group with an empty framework.
	Groups []DependencyGroup
}

// DependencyGroup lists the dependencies for one target framework.
type DependencyGroup struct {
	// TargetFramework is the short folder name, for example "netstandard2.0".
	// Empty means any framework.
	TargetFramework string
	Dependencies    []Dependency
}

// Dependency references another package by id and version range.
type Dependency struct {
	ID      string
	Version string
}

// ParseNuspec reads a .nuspec document.
func ParseNuspec(data []byte) (*Nuspec, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrPackageInvalid, "parsing nuspec")
	}

	metadata := doc.FindElement("//metadata")
	if metadata == nil {
		return nil, errors.New(errors.ErrPackageInvalid, "nuspec has no metadata element")
	}

	spec := &Nuspec{}
	if el := metadata.SelectElement("id"); el != nil {
		spec.ID = strings.TrimSpace(el.Text())
	}
	if el := metadata.SelectElement("version"); el != nil {
		spec.Version = strings.TrimSpace(el.Text())
	}

	deps := metadata.SelectElement("dependencies")
	if deps == nil {
		return spec, nil
	}

	if loose := readDependencies(deps); len(loose) > 0 {
		spec.Groups = append(spec.Groups, DependencyGroup{Dependencies: loose})
	}
	for _, group := range deps.SelectElements("group") {
		spec.Groups = append(spec.Groups, DependencyGroup{
			TargetFramework: ShortFrameworkName(group.SelectAttrValue("targetFramework", "")),
			Dependencies:    readDependencies(group),
		})
	}
	return spec, nil
}

func readDependencies(parent *etree.Element) []Dependency {
	var out []Dependency
	for _, el := range parent.SelectElements("dependency") {
		id := strings.TrimSpace(el.SelectAttrValue("id", ""))
		if id == "" {
			continue
		}
		out = append(out, Dependency{ID: id, Version: strings.TrimSpace(el.SelectAttrValue("version", ""))})
	}
	return out
}

// DependenciesFor returns the dependencies of the group nearest to target.
// The any-framework group is used when no specific group fits.
func (n *Nuspec) DependenciesFor(target framework.Framework) []Dependency {
	var (
		candidates []framework.Framework
		groups     []DependencyGroup
		fallback   *DependencyGroup
	)
	for i := range n.Groups {
		g := n.Groups[i]
		if g.TargetFramework == "" {
			fallback = &n.Groups[i]
			continue
		}
		f, err := framework.Parse(g.TargetFramework)
		if err != nil {
			continue
		}
		candidates = append(candidates, f)
		groups = append(groups, g)
	}

	if i := framework.Nearest(target, candidates); i >= 0 {
		return groups[i].Dependencies
	}
	if fallback != nil {
		return fallback.Dependencies
	}
	return nil
}

// MinVersion returns the lower bound of the dependency version range.
func (d Dependency) MinVersion() (string, bool) {
	return LowerBound(d.Version)
}

var longFrameworkNames = []struct {
	long, short string
	compact     bool
}{
	{".netstandard", "netstandard", false},
	{".netcoreapp", "netcoreapp", false},
	{".netframework", "net", true},
	{"netframework", "net", true},
}

// ShortFrameworkName turns a nuspec framework such as ".NETStandard2.0" or
// ".NETFramework4.7.2" into its folder spelling ("netstandard2.0", "net472").
// Short names pass through lower cased.
func ShortFrameworkName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, n := range longFrameworkNames {
		rest, ok := strings.CutPrefix(name, n.long)
		if !ok {
			continue
		}
		if n.compact {
			rest = strings.ReplaceAll(rest, ".", "")
		}
		return n.short + rest
	}
	return name
}
