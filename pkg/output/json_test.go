package output_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/deployer/pkg/deploy"
	"github.com/arthur-debert/deployer/pkg/output"
	"github.com/arthur-debert/deployer/pkg/types"
)

func decodeEvents(t *testing.T, buf *bytes.Buffer) []output.Event {
	t.Helper()
	var events []output.Event
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var e output.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e), scanner.Text())
		events = append(events, e)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestJSON_OneObjectPerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := output.NewJSON(&buf)

	sink.FileDeploySucceed("/src/a", "/dst/a")
	sink.FileDeployFailed("/src/b", "/dst/b", types.OverwriteNewest, nil)
	sink.PackageDownloadFailed("Foo", "", stderrors.New("timeout"))
	sink.FileNotExists("/src/sub/.deploy", true)

	events := decodeEvents(t, &buf)
	require.Len(t, events, 4)

	assert.Equal(t, "FileDeploySucceed", events[0].Event)
	assert.Equal(t, "/src/a", events[0].Source)
	assert.Equal(t, "/dst/a", events[0].Destination)

	assert.Equal(t, "FileDeployFailed", events[1].Event)
	assert.Equal(t, "Newest", events[1].Overwrite)
	assert.Empty(t, events[1].Error)

	assert.Equal(t, "PackageDownloadFailed", events[2].Event)
	assert.Equal(t, "latest", events[2].Version)
	assert.Equal(t, "timeout", events[2].Error)

	assert.True(t, events[3].DeploymentFile)
}

func TestJSON_Summary(t *testing.T) {
	counter := deploy.NewCounter("/src/.deploy")
	counter.Fail()

	var buf bytes.Buffer
	sink := output.NewJSON(&buf)
	sink.StartDeployment(output.Banner{
		Manifests: []string{"/src/.deploy"},
		Variables: []output.Pair{{Key: "NUGET_SERVER", Value: "https://nuget.example/v3/index.json"}},
	})
	sink.CompleteDeployment("/src/.deploy", counter, true)

	events := decodeEvents(t, &buf)
	require.Len(t, events, 2)

	assert.Equal(t, []string{"/src/.deploy"}, events[0].Manifests)
	assert.Equal(t, "https://nuget.example/v3/index.json", events[0].Variables["NUGET_SERVER"])
	assert.Nil(t, events[0].Options)

	require.NotNil(t, events[1].Total)
	assert.Equal(t, int64(1), *events[1].Total)
	assert.Equal(t, int64(0), *events[1].Successes)
	assert.Equal(t, int64(1), *events[1].Failures)
}
