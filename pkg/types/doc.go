// Package types defines the interfaces and small value types shared by the
// deployment engine: the filesystem abstraction, the output sink that
// receives user-facing events, and the overwrite and verbosity policies.
package types
