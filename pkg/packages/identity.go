package packages

import (
	"strings"
)

// LatestVersion selects the highest published version.
const LatestVersion = "latest"

// Identity is a parsed package expression: name[@version][/subpath].
type Identity struct {
	Name    string
	Version string
	// Path is an explicit location inside the package, using '/'.
	Path string
}

// ParseIdentity parses text. The second result is false when no package name
// can be read, for instance when text starts with a separator or '@'.
func ParseIdentity(text string) (Identity, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Identity{}, false
	}

	head, path := text, ""
	if i := strings.IndexAny(text, `/\`); i == 0 {
		return Identity{}, false
	} else if i > 0 {
		head, path = text[:i], strings.TrimSpace(text[i+1:])
	}

	name, version, _ := strings.Cut(head, "@")
	name = strings.TrimSpace(name)
	if name == "" {
		return Identity{}, false
	}
	return Identity{
		Name:    name,
		Version: strings.TrimSpace(version),
		Path:    strings.ReplaceAll(path, `\`, "/"),
	}, true
}

// IsLatest reports whether the identity asks for the highest version.
func (id Identity) IsLatest() bool {
	return id.Version == "" || strings.EqualFold(id.Version, LatestVersion)
}

func (id Identity) String() string {
	var b strings.Builder
	b.WriteString(id.Name)
	if id.Version != "" {
		b.WriteString("@")
		b.WriteString(id.Version)
	}
	if id.Path != "" {
		b.WriteString("/")
		b.WriteString(id.Path)
	}
	return b.String()
}
