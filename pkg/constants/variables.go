// Package constants provides shared constants used across the deployer codebase.
// This package has no dependencies to avoid circular imports.
package constants

// Reserved variable names. Lookups are case-insensitive.
const (
	// VarFramework selects the target framework for requisites and package libraries.
	VarFramework = "Framework"
	// VarDestination is the default destination root.
	VarDestination = "destination"
	VarOverwrite   = "overwrite"
	VarVerbosity   = "verbosity"
	// VarExpansion turns on suffix-preserving wildcard expansion when present.
	VarExpansion = "expansion"
	// VarIgnoreDeploymentFile disables recursion into sub-manifests when present.
	VarIgnoreDeploymentFile = "ignoreDeploymentFile"

	VarPackageServer    = "NUGET_SERVER"
	VarPackageDirectory = "NUGET_PACKAGES"

	// VarApplication is aliased from ApplicationName in settings files.
	VarApplication     = "Application"
	VarApplicationName = "ApplicationName"
)

const (
	// DeploymentFileName is the conventional manifest name looked up inside
	// directories and package roots.
	DeploymentFileName = ".deploy"
	// DeploymentFileExt identifies a file as a manifest.
	DeploymentFileExt = ".deploy"
)

// Resolver tags.
const (
	ResolverDefault = ""
	ResolverDelete  = "delete"
	ResolverRemove  = "remove"
	ResolverPackage = "nuget"
)
