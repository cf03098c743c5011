package deployer

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/deployer/internal/version"
	"github.com/arthur-debert/deployer/pkg/cobrax/topics"
	"github.com/arthur-debert/deployer/pkg/config"
	"github.com/arthur-debert/deployer/pkg/filesystem"
	"github.com/arthur-debert/deployer/pkg/logging"
	"github.com/arthur-debert/deployer/pkg/types"
)

//go:embed topics/*.md
var topicsFS embed.FS

// Env is what a run needs from its surroundings. Zero fields take the
// process defaults.
type Env struct {
	FS         types.FS
	WorkingDir string
	Stdout     io.Writer
	// HTTPClient overrides the package registry client built from the
	// configured timeout.
	HTTPClient *http.Client
}

func (e Env) withDefaults() Env {
	if e.FS == nil {
		e.FS = filesystem.NewOS()
	}
	if e.WorkingDir == "" {
		if wd, err := os.Getwd(); err == nil {
			e.WorkingDir = wd
		}
	}
	if e.Stdout == nil {
		e.Stdout = os.Stdout
	}
	return e
}

// rootOptions holds the flag values of one invocation.
type rootOptions struct {
	verbose              int
	sets                 []string
	destination          string
	framework            string
	overwrite            string
	verbosity            string
	expansion            bool
	ignoreDeploymentFile bool
	strict               bool
	format               string
	configFile           string
}

// NewRootCmd creates the deployer command for the current process.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithEnv(Env{})
}

// NewRootCmdWithEnv creates the deployer command running against env.
func NewRootCmdWithEnv(env Env) *cobra.Command {
	initTemplateFormatting()
	env = env.withDefaults()
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "deployer [manifest...]",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbose)
			log.Debug().Str("command", cmd.Name()).Str("version", version.String()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return newRun(env, opts, cmd.Flags().Changed).execute(cmd.Context(), args)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&opts.verbose, "verbose", "v", MsgFlagVerbose)
	pf.StringVar(&opts.configFile, "config", "", MsgFlagConfig)

	f := rootCmd.Flags()
	f.StringArrayVarP(&opts.sets, "set", "s", nil, MsgFlagSet)
	f.StringVarP(&opts.destination, "destination", "d", "", MsgFlagDestination)
	f.StringVarP(&opts.framework, "framework", "f", "", MsgFlagFramework)
	f.StringVar(&opts.overwrite, "overwrite", "", MsgFlagOverwrite)
	f.StringVar(&opts.verbosity, "verbosity", "", MsgFlagVerbosity)
	f.BoolVar(&opts.expansion, "expansion", false, MsgFlagExpansion)
	f.BoolVar(&opts.ignoreDeploymentFile, "ignore-deployment-file", false, MsgFlagIgnoreDeploymentFile)
	f.BoolVar(&opts.strict, "strict", false, MsgFlagStrict)
	f.StringVar(&opts.format, "format", "auto", MsgFlagFormat)

	_ = rootCmd.RegisterFlagCompletionFunc("overwrite", fixedCompletion("always", "never", "newest"))
	_ = rootCmd.RegisterFlagCompletionFunc("verbosity", fixedCompletion("quiet", "normal", "detail"))
	_ = rootCmd.RegisterFlagCompletionFunc("format", fixedCompletion("auto", "term", "text", "json"))
	rootCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"deploy"}, cobra.ShellCompDirectiveFilterFileExt
	}

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(env, opts))
	rootCmd.AddCommand(newCompletionCmd())

	if sub, err := fs.Sub(topicsFS, "topics"); err == nil {
		if _, err := topics.Initialize(rootCmd, sub, topics.Options{
			Extensions: []string{".md"},
			Renderer:   topics.NewGlamourRenderer(),
		}); err != nil {
			log.Debug().Err(err).Msg("Help topics unavailable")
		}
	}

	return rootCmd
}

func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newConfigCmd(env Env, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Long:  MsgConfigLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(env.WorkingDir, opts.configFile)
			if err != nil {
				return fmt.Errorf(MsgErrConfig, err)
			}
			data, err := cfg.MarshalTOML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(w)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}
}
