package framework

// Compatibility tiers, best first.
const (
	tierSameFamily = iota
	tierCoreApp
	tierStandard
	tierNone
)

var (
	v2_0 = Version{Major: 2}
	v2_1 = Version{Major: 2, Minor: 1}
	v3_0 = Version{Major: 3}
	v3_1 = Version{Major: 3, Minor: 1}
	v5_0 = Version{Major: 5}
)

func isModernNet(f Framework) bool {
	return f.Name == "net" && f.Version.Compare(v5_0) >= 0
}

// tier ranks how well candidate serves target. Lower is better.
func tier(target, candidate Framework) int {
	if isModernNet(target) && candidate.Name == "net" && !isModernNet(candidate) {
		// .NET Framework 4.x libraries do not load on net5+
		return tierNone
	}
	if candidate.Name == target.Name && candidate.Version.Compare(target.Version) <= 0 {
		if candidate.Platform == "" {
			return tierSameFamily
		}
		if candidate.Platform == target.Platform &&
			candidate.PlatformVersion.Compare(target.PlatformVersion) <= 0 {
			return tierSameFamily
		}
		return tierNone
	}
	if candidate.Platform != "" {
		return tierNone
	}

	switch candidate.Name {
	case "netcoreapp":
		if isModernNet(target) && candidate.Version.Compare(v3_1) <= 0 {
			return tierCoreApp
		}
	case "netstandard":
		switch {
		case isModernNet(target), target.Name == "netcoreapp" && target.Version.Compare(v3_0) >= 0:
			if candidate.Version.Compare(v2_1) <= 0 {
				return tierStandard
			}
		case target.Name == "netcoreapp" && target.Version.Compare(v2_0) >= 0:
			if candidate.Version.Compare(v2_0) <= 0 {
				return tierStandard
			}
		}
	}
	return tierNone
}

// better reports whether a beats b for the same target tier.
func better(a, b Framework) bool {
	if (a.Platform != "") != (b.Platform != "") {
		return a.Platform != ""
	}
	if c := a.Version.Compare(b.Version); c != 0 {
		return c > 0
	}
	if a.Name != b.Name {
		// netcoreapp is closer than netstandard at equal versions
		return a.Name == "netcoreapp"
	}
	return a.PlatformVersion.Compare(b.PlatformVersion) > 0
}

// Nearest picks the candidate closest to target: the same family at the
// highest version not above the target first, then older compatible
// families. Platform-specific candidates win over portable ones of the same
// tier. It returns the index of the winner, or -1 when nothing is compatible.
func Nearest(target Framework, candidates []Framework) int {
	best, bestTier := -1, tierNone
	for i, c := range candidates {
		t := tier(target, c)
		if t == tierNone {
			continue
		}
		if best < 0 || t < bestTier || (t == bestTier && better(c, candidates[best])) {
			best, bestTier = i, t
		}
	}
	return best
}

// NearestName parses names and returns the one nearest to target. Names that
// do not parse are ignored.
func NearestName(target Framework, names []string) (string, bool) {
	parsed := make([]Framework, 0, len(names))
	kept := make([]string, 0, len(names))
	for _, n := range names {
		f, err := Parse(n)
		if err != nil {
			continue
		}
		parsed = append(parsed, f)
		kept = append(kept, n)
	}
	i := Nearest(target, parsed)
	if i < 0 {
		return "", false
	}
	return kept[i], true
}
