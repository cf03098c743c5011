package output

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/arthur-debert/deployer/pkg/logging"
	"github.com/arthur-debert/deployer/pkg/types"
)

// Event is the JSON shape of one reported event.
type Event struct {
	Event          string            `json:"event"`
	Source         string            `json:"source,omitempty"`
	Destination    string            `json:"destination,omitempty"`
	Path           string            `json:"path,omitempty"`
	Overwrite      string            `json:"overwrite,omitempty"`
	DeploymentFile bool              `json:"deploymentFile,omitempty"`
	Variable       string            `json:"variable,omitempty"`
	Expression     string            `json:"expression,omitempty"`
	Resolver       string            `json:"resolver,omitempty"`
	File           string            `json:"file,omitempty"`
	Line           int               `json:"line,omitempty"`
	Argument       string            `json:"argument,omitempty"`
	Package        string            `json:"package,omitempty"`
	Version        string            `json:"version,omitempty"`
	Framework      string            `json:"framework,omitempty"`
	Manifests      []string          `json:"manifests,omitempty"`
	Options        map[string]string `json:"options,omitempty"`
	Variables      map[string]string `json:"variables,omitempty"`
	Total          *int64            `json:"total,omitempty"`
	Successes      *int64            `json:"successes,omitempty"`
	Failures       *int64            `json:"failures,omitempty"`
	Message        string            `json:"message,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// JSON writes one compact JSON object per line.
type JSON struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

var _ Reporter = (*JSON)(nil)

// NewJSON creates a JSON sink writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{encoder: json.NewEncoder(w)}
}

func (j *JSON) emit(e Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.encoder.Encode(e); err != nil {
		logger := logging.GetLogger("output.JSON")
		logger.Warn().Err(err).Str("event", e.Event).Msg("Event not written")
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (j *JSON) FileDeploySucceed(source, destination string) {
	j.emit(Event{
		Event:       "FileDeploySucceed",
		Source:      source,
		Destination: destination,
		Message:     deploySucceedMessage(source, destination),
	})
}

func (j *JSON) FileDeployFailed(source, destination string, overwrite types.Overwrite, err error) {
	j.emit(Event{
		Event:       "FileDeployFailed",
		Source:      source,
		Destination: destination,
		Overwrite:   overwrite.String(),
		Message:     deployFailedMessage(source, destination, overwrite, err),
		Error:       errText(err),
	})
}

func (j *JSON) FileDeleteSucceed(path string) {
	j.emit(Event{Event: "FileDeleteSucceed", Path: path, Message: deleteSucceedMessage(path)})
}

func (j *JSON) FileDeleteFailed(path string, err error) {
	j.emit(Event{Event: "FileDeleteFailed", Path: path, Message: deleteFailedMessage(path, err), Error: errText(err)})
}

func (j *JSON) FileNotExists(path string, deploymentFile bool) {
	if path == "" {
		return
	}
	j.emit(Event{
		Event:          "FileNotExists",
		Path:           path,
		DeploymentFile: deploymentFile,
		Message:        notExistsMessage(path, deploymentFile),
	})
}

func (j *JSON) UndefinedVariable(variable, expression, file string, line int) {
	j.emit(Event{
		Event:      "UndefinedVariable",
		Variable:   variable,
		Expression: expression,
		File:       file,
		Line:       line,
		Message:    undefinedVariableMessage(variable, expression, file, line),
	})
}

func (j *JSON) UndefinedResolver(resolver, file string, line int) {
	j.emit(Event{
		Event:    "UndefinedResolver",
		Resolver: resolver,
		File:     file,
		Line:     line,
		Message:  undefinedResolverMessage(resolver, file, line),
	})
}

func (j *JSON) ManifestFailed(path string, err error) {
	j.emit(Event{Event: "ManifestFailed", Path: path, Message: manifestFailedMessage(path, err), Error: errText(err)})
}

func (j *JSON) PackageIllegal(argument string) {
	j.emit(Event{Event: "PackageIllegal", Argument: argument, Message: packageIllegalMessage(argument)})
}

func (j *JSON) PackageNotFound(id, version string) {
	j.emit(Event{
		Event:   "PackageNotFound",
		Package: id,
		Version: displayVersion(version),
		Message: packageNotFoundMessage(id, version),
	})
}

func (j *JSON) PackageUnmatched(id, version, framework string) {
	j.emit(Event{
		Event:     "PackageUnmatched",
		Package:   id,
		Version:   displayVersion(version),
		Framework: framework,
		Message:   packageUnmatchedMessage(id, version, framework),
	})
}

func (j *JSON) PackageDownloadFailed(id, version string, err error) {
	j.emit(Event{
		Event:   "PackageDownloadFailed",
		Package: id,
		Version: displayVersion(version),
		Message: packageDownloadFailedMessage(id, version, err),
		Error:   errText(err),
	})
}

func pairMap(pairs []Pair) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.Key] = p.Value
	}
	return m
}

func (j *JSON) StartDeployment(banner Banner) {
	j.emit(Event{
		Event:     "StartDeployment",
		Manifests: banner.Manifests,
		Options:   pairMap(banner.Options),
		Variables: pairMap(banner.Variables),
	})
}

func (j *JSON) CompleteDeployment(path string, tally Tally, _ bool) {
	total, successes, failures := tally.Total(), tally.Successes(), tally.Failures()
	j.emit(Event{
		Event:     "CompleteDeployment",
		Path:      path,
		Total:     &total,
		Successes: &successes,
		Failures:  &failures,
		Message:   completeMessage(path, total),
	})
}
