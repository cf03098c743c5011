// Package testutil provides utilities for testing deployer components.
//
// Key components:
//   - NewTestFS: in-memory filesystem backed by afero
//   - WriteFiles / WriteFileWithTime: declarative file setup
//   - Recorder: a types.Output that records every event
//
// All test data should be defined inline, not in external files.
package testutil
