package deployer

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort       = "Deploy files described by deployment manifests"
	MsgVersionShort    = "Print version information"
	MsgConfigShort     = "Print the effective configuration"
	MsgCompletionShort = "Generate shell completion script"

	MsgNoManifest      = "no manifest given and no %s file in %s"
	MsgInvalidSet      = "invalid --set value %q, expected name=value"
	MsgInvalidOption   = "option %s: %w"
	MsgErrConfig       = "failed to load configuration: %w"
	MsgErrEnvironment  = "failed to read the environment: %w"
	MsgErrSettings     = "failed to load settings: %w"
	MsgCanceled        = "deployment canceled"
	MsgVersionFormat   = "deployer version %s\n  commit: %s\n  built:  %s\n"
	MsgFailuresSummary = "%d of %d files failed"

	MsgFlagVerbose              = "Increase log verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagSet                  = "Set a variable, as name=value (repeatable)"
	MsgFlagDestination          = "Destination directory"
	MsgFlagFramework            = "Target framework, such as net8.0 or netstandard2.0"
	MsgFlagOverwrite            = "Overwrite policy: always, never or newest"
	MsgFlagVerbosity            = "Report verbosity: quiet, normal or detail"
	MsgFlagExpansion            = "Keep literal directories after wildcards in destination paths"
	MsgFlagIgnoreDeploymentFile = "Copy nested .deploy files instead of deploying them"
	MsgFlagFormat               = "Output format: auto, term, text or json"
	MsgFlagConfig               = "Configuration file (default .deployer.toml or deployer.toml)"
	MsgFlagStrict               = "Exit with an error when any file fails to deploy"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/root-example.txt
	msgRootExampleRaw string
	MsgRootExample    = strings.TrimRight(msgRootExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
