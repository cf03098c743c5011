// Package output renders deployment events for people and machines.
//
// Terminal implements types.Output with lipgloss styles declared in the
// embedded styles.yaml. The colour profile is chosen by DetectFormat:
// rich colours on a capable terminal, plain text when piped or when
// NO_COLOR is set. JSON emits one object per event for tooling.
//
// Both sinks also implement Reporter, which adds the start banner listing
// manifests, options and variables, and the framed per-manifest summary.
package output
