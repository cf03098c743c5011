package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/deployer/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/deployer/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/deployer/internal/version.Date={{.Date}}
)

// String is the one-line version used in user agents and logs.
func String() string {
	if Commit == "unknown" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
