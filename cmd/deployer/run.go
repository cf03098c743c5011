package deployer

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/arthur-debert/deployer/internal/version"
	"github.com/arthur-debert/deployer/pkg/config"
	"github.com/arthur-debert/deployer/pkg/constants"
	"github.com/arthur-debert/deployer/pkg/deploy"
	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/logging"
	"github.com/arthur-debert/deployer/pkg/output"
	"github.com/arthur-debert/deployer/pkg/packages"
	"github.com/arthur-debert/deployer/pkg/types"
	"github.com/arthur-debert/deployer/pkg/variables"
	"github.com/arthur-debert/deployer/pkg/wildcard"
)

// bannerVariables are the variables shown in the start banner below the
// detail verbosity.
var bannerVariables = []string{
	"application",
	"environment",
	constants.VarPackageServer,
	constants.VarPackageDirectory,
}

// run is one deployer invocation.
type run struct {
	env     Env
	opts    *rootOptions
	changed func(flag string) bool
}

func newRun(env Env, opts *rootOptions, changed func(string) bool) *run {
	return &run{env: env, opts: opts, changed: changed}
}

func (r *run) execute(ctx context.Context, args []string) error {
	logger := logging.GetLogger("cmd.deployer")

	format, err := output.ParseFormat(r.opts.format)
	if err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid --format")
	}
	reporter := output.New(format, r.env.Stdout)

	cfg, err := config.Load(r.env.WorkingDir, r.opts.configFile)
	if err != nil {
		return fmt.Errorf(MsgErrConfig, err)
	}

	store, err := r.variables(cfg)
	if err != nil {
		return err
	}
	cfg.Seed(store)
	options, err := r.applyOptions(store)
	if err != nil {
		return err
	}

	manifests, err := r.manifests(store, reporter, args)
	if err != nil {
		return err
	}

	d := deploy.New(deploy.Options{
		FS:         r.env.FS,
		Output:     reporter,
		Variables:  store,
		Registry:   r.registry(cfg, store),
		Regulators: []wildcard.Regulator{packages.NewRegulator(r.env.FS, store)},
		WorkingDir: r.env.WorkingDir,
	})

	verbosity := types.ParseVerbosity(value(store, constants.VarVerbosity))
	reporter.StartDeployment(output.Banner{
		Manifests: manifests,
		Options:   options,
		Variables: bannerPairs(store, verbosity),
	})

	total := deploy.NewCounter("")
	for i, path := range manifests {
		counter, err := d.Deploy(ctx, path, "")
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrCanceled) || ctx.Err() != nil {
				return errors.Wrap(err, errors.ErrCanceled, MsgCanceled)
			}
			logger.Debug().Err(err).Str("manifest", path).Msg("Manifest not deployed")
			if errors.IsErrorCode(err, errors.ErrManifestNotFound) {
				reporter.FileNotExists(path, true)
			} else {
				reporter.ManifestFailed(path, err)
			}
		}
		total.Add(counter)
		reporter.CompleteDeployment(counter.FilePath, counter, i == len(manifests)-1)
	}

	logger.Info().
		Int64("successes", total.Successes()).
		Int64("failures", total.Failures()).
		Msg("Deployment finished")

	if r.opts.strict && total.Failures() > 0 {
		return errors.Newf(errors.ErrFileCopy, MsgFailuresSummary, total.Failures(), total.Total()).
			WithDetail("failures", total.Failures())
	}
	return nil
}

// variables gathers the environment, overlaid with application settings.
func (r *run) variables(cfg *config.Config) (*variables.Store, error) {
	store, err := variables.FromEnvironment()
	if err != nil {
		return nil, fmt.Errorf(MsgErrEnvironment, err)
	}
	settings, err := config.LoadSettings(r.env.FS, r.env.WorkingDir, cfg.Settings.Files)
	if err != nil {
		return nil, fmt.Errorf(MsgErrSettings, err)
	}
	config.ApplySettings(store, settings)
	return store, nil
}

// applyOptions sets the command line variables in order: --set values
// first, then the named options. It runs after the configuration is
// seeded, so options win and an explicit false flag stays removed. Each
// value may refer to the variables defined before it; an undefined one is
// an error.
func (r *run) applyOptions(store *variables.Store) ([]output.Pair, error) {
	type option struct{ name, value string }
	var list []option

	for _, s := range r.opts.sets {
		name, val, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, MsgInvalidSet, s)
		}
		list = append(list, option{name, val})
	}

	named := []struct {
		flag, variable, value string
	}{
		{"destination", constants.VarDestination, r.opts.destination},
		{"framework", constants.VarFramework, r.opts.framework},
		{"overwrite", constants.VarOverwrite, r.opts.overwrite},
		{"verbosity", constants.VarVerbosity, r.opts.verbosity},
		{"expansion", constants.VarExpansion, strconv.FormatBool(r.opts.expansion)},
		{"ignore-deployment-file", constants.VarIgnoreDeploymentFile, strconv.FormatBool(r.opts.ignoreDeploymentFile)},
	}
	for _, n := range named {
		if !r.changed(n.flag) {
			continue
		}
		if n.value == "false" && (n.flag == "expansion" || n.flag == "ignore-deployment-file") {
			// presence is the signal; an explicit false removes it
			store.Delete(n.variable)
			continue
		}
		list = append(list, option{n.variable, n.value})
	}

	pairs := make([]output.Pair, 0, len(list))
	for _, o := range list {
		resolved, err := variables.ResolveStrict(o.value, store)
		if err != nil {
			return nil, fmt.Errorf(MsgInvalidOption, o.name, err)
		}
		store.Set(o.name, resolved)
		pairs = append(pairs, output.Pair{Key: o.name, Value: resolved})
	}
	return pairs, nil
}

// manifests resolves, anchors and deduplicates the manifest arguments.
// Without arguments the working directory manifest is used.
func (r *run) manifests(store *variables.Store, out types.Output, args []string) ([]string, error) {
	if len(args) == 0 {
		path := filepath.Join(r.env.WorkingDir, constants.DeploymentFileName)
		if _, err := r.env.FS.Stat(path); err != nil {
			return nil, errors.Newf(errors.ErrManifestNotFound, MsgNoManifest, constants.DeploymentFileName, r.env.WorkingDir).
				WithDetail("path", path)
		}
		return []string{path}, nil
	}

	seen := make(map[string]bool, len(args))
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		path := variables.Resolve(arg, store, func(name string) {
			out.UndefinedVariable(name, arg, "", 0)
		})
		if path == "" {
			continue
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.env.WorkingDir, path)
		}
		key := filepath.Clean(path)
		if runtime.GOOS == "windows" {
			key = strings.ToLower(key)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		paths = append(paths, path)
	}
	return paths, nil
}

// registry binds the package resolver to a client for the configured feed
// and packages directory.
func (r *run) registry(cfg *config.Config, store *variables.Store) *deploy.Registry {
	httpClient := r.env.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Packages.Timeout}
	}

	registry := packages.NewRegistry(
		packages.WithHTTPClient(httpClient),
		packages.WithServer(value(store, constants.VarPackageServer)),
		packages.WithUserAgent("deployer/"+version.Version),
	)
	clientOpts := []packages.ClientOption{packages.WithConcurrency(cfg.Packages.Concurrency)}
	if cfg.Packages.Exclude != nil {
		clientOpts = append(clientOpts, packages.WithExcludes(cfg.Packages.Exclude...))
	}
	client := packages.NewClient(
		registry,
		packages.NewStore(r.env.FS, value(store, constants.VarPackageDirectory)),
		clientOpts...,
	)

	resolvers := deploy.NewRegistry()
	resolvers.Register(constants.ResolverPackage, packages.NewResolver(client))
	return resolvers
}

func value(store variables.Lookup, name string) string {
	v, _ := store.Get(name)
	return v
}

func bannerPairs(store *variables.Store, verbosity types.Verbosity) []output.Pair {
	var pairs []output.Pair
	if verbosity == types.VerbosityDetail {
		snapshot := store.Snapshot()
		for _, key := range store.Keys() {
			pairs = append(pairs, output.Pair{Key: key, Value: snapshot[key]})
		}
		return pairs
	}
	for _, name := range bannerVariables {
		if v, ok := store.Get(name); ok {
			pairs = append(pairs, output.Pair{Key: name, Value: v})
		}
	}
	return pairs
}
