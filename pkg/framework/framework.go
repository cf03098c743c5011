// Package framework parses and compares target framework monikers such as
// net8.0, netstandard2.0 or net8.0-windows10.0 and answers whether one
// framework satisfies a requirement.
package framework

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/arthur-debert/deployer/pkg/errors"
)

// UpwardSuffix marks a requirement that accepts the same or a newer version.
const UpwardSuffix = "^"

// Version is a major.minor pair.
type Version struct {
	Major uint16
	Minor uint16
}

// ParseVersion accepts "N", ".N" and "N.M".
func ParseVersion(text string) (Version, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Version{}, errors.New(errors.ErrInvalidInput, "empty version")
	}

	major, minor, hasDot := strings.Cut(text, ".")
	var v Version
	if major != "" {
		n, err := strconv.ParseUint(major, 10, 16)
		if err != nil {
			return Version{}, errors.Wrapf(err, errors.ErrInvalidInput, "invalid version %q", text)
		}
		v.Major = uint16(n)
	}
	if hasDot {
		n, err := strconv.ParseUint(minor, 10, 16)
		if err != nil {
			return Version{}, errors.Wrapf(err, errors.ErrInvalidInput, "invalid version %q", text)
		}
		v.Minor = uint16(n)
	}
	return v, nil
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		if v.Major < o.Major {
			return -1
		}
		return 1
	case v.Minor != o.Minor:
		if v.Minor < o.Minor {
			return -1
		}
		return 1
	}
	return 0
}

func (v Version) IsZero() bool { return v.Major == 0 && v.Minor == 0 }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Framework is a parsed target framework moniker.
type Framework struct {
	Name            string
	Version         Version
	Platform        string
	PlatformVersion Version
}

// Parse parses a moniker of the form name<version>[-platform[<version>]].
// The framework version is required and its major part must be positive.
// A version written without a dot and with more than one digit is read one
// digit per component, so net472 is 4.7 and net8 is 8.0.
func Parse(text string) (Framework, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	fwPart, platformPart, _ := strings.Cut(text, "-")

	name, ver := splitAtDigit(fwPart)
	if name == "" || ver == "" {
		return Framework{}, errors.Newf(errors.ErrInvalidInput, "invalid framework %q", text)
	}
	version, err := parseCompactVersion(ver)
	if err != nil {
		return Framework{}, errors.Wrapf(err, errors.ErrInvalidInput, "invalid framework %q", text)
	}
	if version.Major == 0 {
		return Framework{}, errors.Newf(errors.ErrInvalidInput, "invalid framework version in %q", text)
	}

	f := Framework{Name: name, Version: version}
	if platformPart != "" {
		pname, pver := splitAtDigit(platformPart)
		f.Platform = pname
		if pver != "" {
			if f.PlatformVersion, err = ParseVersion(pver); err != nil {
				return Framework{}, errors.Wrapf(err, errors.ErrInvalidInput, "invalid platform version in %q", text)
			}
		}
	}
	return f, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(text string) Framework {
	f, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return f
}

func splitAtDigit(s string) (string, string) {
	i := strings.IndexFunc(s, func(r rune) bool { return unicode.IsDigit(r) || r == '.' })
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// parseCompactVersion reads dotless versions the NuGet way: the first digit
// is the major and the second the minor, so net472 is 4.7 and net10 is 1.0.
func parseCompactVersion(s string) (Version, error) {
	if strings.Contains(s, ".") || len(s) < 2 {
		return ParseVersion(s)
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return ParseVersion(s)
		}
	}
	return Version{Major: uint16(s[0] - '0'), Minor: uint16(s[1] - '0')}, nil
}

func (f Framework) String() string {
	s := f.Name + f.Version.String()
	if f.Platform != "" {
		s += "-" + f.Platform
		if !f.PlatformVersion.IsZero() {
			s += f.PlatformVersion.String()
		}
	}
	return s
}

// IsFramework reports whether the framework names match.
func (f Framework) IsFramework(o Framework) bool { return f.Name == o.Name }

// IsPlatform reports whether the platform names match. Two empty platforms match.
func (f Framework) IsPlatform(o Framework) bool { return f.Platform == o.Platform }

// Equal requires matching names and matching versions on both sides.
func (f Framework) Equal(o Framework) bool {
	return f.IsFramework(o) && f.IsPlatform(o) &&
		f.Version == o.Version && f.PlatformVersion == o.PlatformVersion
}

// IsSatisfiedBy reports whether candidate fulfils requirement. Names and
// platforms must match exactly; a platform given on one side only is a
// mismatch. When upward is set the candidate versions may be newer.
func IsSatisfiedBy(candidate, requirement Framework, upward bool) bool {
	if !candidate.IsFramework(requirement) || !candidate.IsPlatform(requirement) {
		return false
	}
	if upward {
		return candidate.Version.Compare(requirement.Version) >= 0 &&
			candidate.PlatformVersion.Compare(requirement.PlatformVersion) >= 0
	}
	return candidate.Version == requirement.Version && candidate.PlatformVersion == requirement.PlatformVersion
}

// Satisfies reports whether the framework named by value meets any of the
// requirement lists. Each target may hold several requirements separated by
// ',' or ';', each optionally ending in '^'. With no targets every value is
// accepted; an empty value is accepted only when there are no targets.
func Satisfies(value string, targets ...string) bool {
	if len(targets) == 0 {
		return true
	}
	if strings.TrimSpace(value) == "" {
		return false
	}

	candidate, err := Parse(value)
	if err != nil {
		return false
	}

	for _, target := range targets {
		for _, spec := range SplitTargets(target) {
			upward := strings.HasSuffix(spec, UpwardSuffix)
			requirement, err := Parse(strings.TrimSuffix(spec, UpwardSuffix))
			if err != nil {
				continue
			}
			if IsSatisfiedBy(candidate, requirement, upward) {
				return true
			}
		}
	}
	return false
}

// SplitTargets splits a requirement list on ',' and ';', dropping blanks.
func SplitTargets(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
