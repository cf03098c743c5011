package variables

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/deployer/pkg/errors"
)

var placeholderPattern = regexp.MustCompile(`\$\((\w+)\)|%(\w+)%`)

// Resolve expands $(name) and %name% tokens in text. Undefined names are
// passed to onUndefined, which may be nil, and expand to the empty string.
// Blank input yields the empty string.
func Resolve(text string, lookup Lookup, onUndefined func(name string)) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	text = filepath.FromSlash(text)
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderName(match)
		if value, ok := lookup.Get(name); ok {
			return value
		}
		if onUndefined != nil {
			onUndefined(name)
		}
		return ""
	})
}

// ResolveStrict is Resolve where the first undefined name is an error.
func ResolveStrict(text string, lookup Lookup) (string, error) {
	var missing string
	out := Resolve(text, lookup, func(name string) {
		if missing == "" {
			missing = name
		}
	})
	if missing != "" {
		return "", errors.Newf(errors.ErrVariableUndefined, "undefined variable %q in %q", missing, text).
			WithDetail("variable", missing)
	}
	return out, nil
}

// Placeholders lists the variable names referenced by text in order.
func Placeholders(text string) []string {
	matches := placeholderPattern.FindAllString(text, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, placeholderName(m))
	}
	return names
}

func placeholderName(match string) string {
	if strings.HasPrefix(match, "$(") {
		return match[2 : len(match)-1]
	}
	return match[1 : len(match)-1]
}
