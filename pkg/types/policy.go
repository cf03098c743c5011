package types

import "strings"

// Overwrite decides whether an existing destination file is replaced.
type Overwrite int

const (
	OverwriteAlways Overwrite = iota
	OverwriteNever
	OverwriteNewest
)

func (o Overwrite) String() string {
	switch o {
	case OverwriteNever:
		return "Never"
	case OverwriteNewest:
		return "Newest"
	default:
		return "Always"
	}
}

// ParseOverwrite parses a policy name case-insensitively. The legacy
// spellings "alway" and "latest" are accepted. Anything else is Always.
func ParseOverwrite(s string) Overwrite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "never":
		return OverwriteNever
	case "newest", "latest":
		return OverwriteNewest
	default:
		return OverwriteAlways
	}
}

// Verbosity controls which events reach the Output.
type Verbosity int

const (
	VerbosityQuiet Verbosity = iota
	VerbosityNormal
	VerbosityDetail
)

func (v Verbosity) String() string {
	switch v {
	case VerbosityQuiet:
		return "Quiet"
	case VerbosityDetail:
		return "Detail"
	default:
		return "Normal"
	}
}

// ParseVerbosity parses a verbosity name case-insensitively, defaulting to Normal.
func ParseVerbosity(s string) Verbosity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiet":
		return VerbosityQuiet
	case "detail", "detailed":
		return VerbosityDetail
	default:
		return VerbosityNormal
	}
}
