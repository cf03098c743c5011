package output

import "github.com/arthur-debert/deployer/pkg/types"

// Tally is the read side of a deployment counter.
type Tally interface {
	Total() int64
	Successes() int64
	Failures() int64
}

// Pair is one labelled value of the start banner.
type Pair struct {
	Key   string
	Value string
}

// Banner describes a deployment run before it starts.
type Banner struct {
	Manifests []string
	Options   []Pair
	Variables []Pair
}

// Reporter is a types.Output that also frames a run.
type Reporter interface {
	types.Output
	StartDeployment(banner Banner)
	// CompleteDeployment summarises one manifest. last is set for the final
	// manifest of the run.
	CompleteDeployment(path string, tally Tally, last bool)
}
