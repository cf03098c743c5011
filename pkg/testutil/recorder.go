package testutil

import (
	"fmt"
	"sync"

	"github.com/arthur-debert/deployer/pkg/types"
)

// Event is one recorded Output call.
type Event struct {
	Kind string
	Args []string
}

func (e Event) String() string {
	return fmt.Sprintf("%s%v", e.Kind, e.Args)
}

// Recorder is a types.Output that keeps every event for assertions.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ types.Output = (*Recorder)(nil)

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(kind string, args ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: kind, Args: args})
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns the recorded event kinds in order.
func (r *Recorder) Kinds() []string {
	events := r.Events()
	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, e := range r.Events() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Recorder) FileDeploySucceed(source, destination string) {
	r.record("FileDeploySucceed", source, destination)
}

func (r *Recorder) FileDeployFailed(source, destination string, overwrite types.Overwrite, err error) {
	r.record("FileDeployFailed", source, destination, overwrite.String(), errString(err))
}

func (r *Recorder) FileDeleteSucceed(path string) {
	r.record("FileDeleteSucceed", path)
}

func (r *Recorder) FileDeleteFailed(path string, err error) {
	r.record("FileDeleteFailed", path, errString(err))
}

func (r *Recorder) FileNotExists(path string, deploymentFile bool) {
	r.record("FileNotExists", path, fmt.Sprint(deploymentFile))
}

func (r *Recorder) UndefinedVariable(variable, expression, file string, line int) {
	r.record("UndefinedVariable", variable, expression, file, fmt.Sprint(line))
}

func (r *Recorder) UndefinedResolver(resolver, file string, line int) {
	r.record("UndefinedResolver", resolver, file, fmt.Sprint(line))
}

func (r *Recorder) ManifestFailed(path string, err error) {
	r.record("ManifestFailed", path, errString(err))
}

func (r *Recorder) PackageIllegal(argument string) {
	r.record("PackageIllegal", argument)
}

func (r *Recorder) PackageNotFound(id, version string) {
	r.record("PackageNotFound", id, version)
}

func (r *Recorder) PackageUnmatched(id, version, framework string) {
	r.record("PackageUnmatched", id, version, framework)
}

func (r *Recorder) PackageDownloadFailed(id, version string, err error) {
	r.record("PackageDownloadFailed", id, version, errString(err))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
