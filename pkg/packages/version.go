package packages

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// NormalizeVersion returns the canonical spelling of a NuGet version:
// lower case, three release numbers without leading zeros (a fourth is kept
// only when it is not zero) and no build metadata.
func NormalizeVersion(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return ""
	}
	v, _, _ = strings.Cut(v, "+")
	release, pre, hasPre := strings.Cut(v, "-")

	parts := strings.Split(release, ".")
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	if len(parts) == 4 && strings.Trim(parts[3], "0") == "" {
		parts = parts[:3]
	}
	for i, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			parts[i] = strconv.Itoa(n)
		}
	}

	out := strings.Join(parts, ".")
	if hasPre {
		out += "-" + pre
	}
	return out
}

func semverOf(v string) string {
	return "v" + NormalizeVersion(v)
}

// CompareVersions orders two NuGet versions. Versions semver cannot read
// sort below valid ones.
func CompareVersions(a, b string) int {
	sa, sb := semverOf(a), semverOf(b)
	va, vb := semver.IsValid(sa), semver.IsValid(sb)
	switch {
	case va && vb:
		return semver.Compare(sa, sb)
	case va:
		return 1
	case vb:
		return -1
	default:
		return strings.Compare(NormalizeVersion(a), NormalizeVersion(b))
	}
}

// SortVersions sorts versions in ascending order in place.
func SortVersions(versions []string) {
	slices.SortStableFunc(versions, CompareVersions)
}

// IsPrerelease reports whether v carries a pre-release label.
func IsPrerelease(v string) bool {
	return strings.Contains(NormalizeVersion(v), "-")
}

// Latest returns the highest stable version, or the highest pre-release when
// nothing stable is published.
func Latest(versions []string) (string, bool) {
	best, bestStable := "", false
	for _, v := range versions {
		stable := !IsPrerelease(v)
		switch {
		case best == "":
		case stable && !bestStable:
		case stable == bestStable && CompareVersions(v, best) > 0:
		default:
			continue
		}
		best, bestStable = v, stable
	}
	return best, best != ""
}

// Find returns the published spelling of version.
func Find(versions []string, version string) (string, bool) {
	want := NormalizeVersion(version)
	for _, v := range versions {
		if NormalizeVersion(v) == want {
			return v, true
		}
	}
	return "", false
}

// LowestAtLeast returns the lowest version satisfying a lower bound. An empty
// bound accepts everything; exclusive bounds reject min itself.
func LowestAtLeast(versions []string, min string, inclusive bool) (string, bool) {
	sorted := slices.Clone(versions)
	SortVersions(sorted)
	for _, v := range sorted {
		if min == "" {
			return v, true
		}
		c := CompareVersions(v, min)
		if c > 0 || (c == 0 && inclusive) {
			return v, true
		}
	}
	return "", false
}

// LowerBound reads the minimum of a NuGet version range such as "1.0",
// "[1.0,2.0)" or "(1.0,)".
func LowerBound(rng string) (version string, inclusive bool) {
	rng = strings.TrimSpace(rng)
	if rng == "" {
		return "", true
	}
	inclusive = true
	switch rng[0] {
	case '[':
		rng = rng[1:]
	case '(':
		inclusive = false
		rng = rng[1:]
	}
	lower, _, _ := strings.Cut(rng, ",")
	lower = strings.TrimSpace(strings.TrimRight(lower, "])"))
	if lower == "" {
		return "", true
	}
	return lower, inclusive
}
