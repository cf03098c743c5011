package wildcard

import (
	"path/filepath"
	"strings"
)

// Token is an expanded path and the suffix its wildcard segments matched.
// Tokens are values; the methods return modified copies.
type Token struct {
	Path   string
	Suffix string
}

// NewToken builds a token, normalizing the suffix to '/' separators with
// no leading or trailing separator.
func NewToken(path, suffix string) Token {
	return Token{Path: path, Suffix: cleanSuffix(suffix)}
}

// Join returns the token with name appended to its path.
func (t Token) Join(name string) Token {
	t.Path = filepath.Join(t.Path, name)
	return t
}

// WithPath returns the token pointing at path, keeping the suffix.
func (t Token) WithPath(path string) Token {
	t.Path = path
	return t
}

// AppendSuffix returns the token with segment added to its suffix. Empty
// and pure separator segments leave the suffix unchanged.
func (t Token) AppendSuffix(segment string) Token {
	segment = cleanSuffix(segment)
	if segment == "" {
		return t
	}
	if t.Suffix == "" {
		t.Suffix = segment
	} else {
		t.Suffix = t.Suffix + "/" + segment
	}
	return t
}

// Valid reports whether the token points anywhere.
func (t Token) Valid() bool { return t.Path != "" }

func (t Token) String() string {
	if t.Suffix == "" {
		return t.Path
	}
	return t.Path + "?" + t.Suffix
}

func cleanSuffix(s string) string {
	return strings.Trim(filepath.ToSlash(s), "/")
}

// suffixEndsWith reports whether the last segments of suffix equal segment.
func suffixEndsWith(suffix, segment string) bool {
	return suffix == segment || strings.HasSuffix(suffix, "/"+segment)
}
