package deploy_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/deployer/pkg/deploy"
	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/testutil"
	"github.com/arthur-debert/deployer/pkg/types"
	"github.com/arthur-debert/deployer/pkg/variables"
	"github.com/arthur-debert/deployer/pkg/wildcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	fs       types.FS
	recorder *testutil.Recorder
	vars     *variables.Store
	deployer *deploy.Deployer
}

func newHarness(t *testing.T, files map[string]string, vars map[string]string) *harness {
	t.Helper()
	h := &harness{
		fs:       testutil.NewTestFS(),
		recorder: testutil.NewRecorder(),
		vars:     variables.FromMap(vars),
	}
	testutil.WriteFiles(t, h.fs, "/", files)
	h.deployer = deploy.New(deploy.Options{
		FS:         h.fs,
		Output:     h.recorder,
		Variables:  h.vars,
		WorkingDir: "/work",
	})
	return h
}

func (h *harness) deploy(t *testing.T, manifest, destination string) *deploy.Counter {
	t.Helper()
	counter, err := h.deployer.Deploy(context.Background(), manifest, destination)
	require.NoError(t, err)
	return counter
}

func assertCounter(t *testing.T, c *deploy.Counter, successes, failures int64) {
	t.Helper()
	assert.Equal(t, successes, c.Successes(), "successes")
	assert.Equal(t, failures, c.Failures(), "failures")
}

const requisiteManifest = `[bin]
app.dll
debug.pdb<Environment:Debug>
`

func TestDeploy_RequisiteScenario(t *testing.T) {
	files := map[string]string{
		"src/.deploy":   requisiteManifest,
		"src/app.dll":   "app",
		"src/debug.pdb": "pdb",
	}

	t.Run("environment unset", func(t *testing.T) {
		h := newHarness(t, files, nil)
		c := h.deploy(t, "/src/.deploy", "/out")

		assertCounter(t, c, 1, 0)
		assert.Equal(t, "app", testutil.ReadString(t, h.fs, "/out/bin/app.dll"))
		assert.False(t, testutil.Exists(h.fs, "/out/bin/debug.pdb"))
	})

	t.Run("environment debug", func(t *testing.T) {
		h := newHarness(t, files, map[string]string{"Environment": "Debug"})
		c := h.deploy(t, "/src/.deploy", "/out")

		assertCounter(t, c, 2, 0)
		assert.True(t, testutil.Exists(h.fs, "/out/bin/debug.pdb"))
	})
}

func TestDeploy_ManifestLocation(t *testing.T) {
	files := map[string]string{
		"work/app/.deploy": "a.txt\n",
		"work/app/a.txt":   "a",
	}

	t.Run("directory argument", func(t *testing.T) {
		h := newHarness(t, files, nil)
		c := h.deploy(t, "/work/app", "/out")
		assertCounter(t, c, 1, 0)
		assert.Equal(t, filepath.FromSlash("/work/app/.deploy"), c.FilePath)
	})

	t.Run("relative to working directory", func(t *testing.T) {
		h := newHarness(t, files, nil)
		c := h.deploy(t, "app/.deploy", "/out")
		assertCounter(t, c, 1, 0)
	})

	t.Run("placeholder in path", func(t *testing.T) {
		h := newHarness(t, files, map[string]string{"app": "app"})
		c := h.deploy(t, "/work/$(app)", "/out")
		assertCounter(t, c, 1, 0)
	})

	t.Run("missing manifest", func(t *testing.T) {
		h := newHarness(t, files, nil)
		c, err := h.deployer.Deploy(context.Background(), "/nowhere/.deploy", "/out")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestNotFound))
		assertCounter(t, c, 0, 1)
	})

	t.Run("directory without manifest", func(t *testing.T) {
		h := newHarness(t, map[string]string{"empty/x.txt": "x"}, nil)
		_, err := h.deployer.Deploy(context.Background(), "/empty", "/out")
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestNotFound))
	})

	t.Run("invalid manifest", func(t *testing.T) {
		h := newHarness(t, map[string]string{"bad/.deploy": "[broken\n"}, nil)
		c, err := h.deployer.Deploy(context.Background(), "/bad", "/out")
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestParse))
		assertCounter(t, c, 0, 1)
	})

	t.Run("empty path", func(t *testing.T) {
		h := newHarness(t, files, nil)
		_, err := h.deployer.Deploy(context.Background(), " ", "/out")
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestDeploy_DestinationRoot(t *testing.T) {
	files := map[string]string{
		"src/.deploy": "a.txt\n",
		"src/a.txt":   "a",
	}

	t.Run("from variable relative to working directory", func(t *testing.T) {
		h := newHarness(t, files, map[string]string{"destination": "site"})
		h.deploy(t, "/src/.deploy", "")
		assert.True(t, testutil.Exists(h.fs, "/work/site/a.txt"))
	})

	t.Run("defaults to working directory", func(t *testing.T) {
		h := newHarness(t, files, nil)
		h.deploy(t, "/src/.deploy", "")
		assert.True(t, testutil.Exists(h.fs, "/work/a.txt"))
	})

	t.Run("placeholders resolved", func(t *testing.T) {
		h := newHarness(t, files, map[string]string{"stage": "qa"})
		h.deploy(t, "/src/.deploy", "/out/$(stage)")
		assert.True(t, testutil.Exists(h.fs, "/out/qa/a.txt"))
	})
}

func TestDeploy_Entries(t *testing.T) {
	manifest := `readme.txt = README
missing.txt
$(Undefined)ghost.txt
bogus:thing
lib/**/*.dll
[bin x64]
native.dll
`
	h := newHarness(t, map[string]string{
		"src/.deploy":       manifest,
		"src/readme.txt":    "readme",
		"src/native.dll":    "native",
		"src/lib/a.dll":     "a",
		"src/lib/sub/b.dll": "b",
		"src/lib/sub/c.txt": "c",
		"src/ghost.txt":     "ghost",
	}, nil)

	c := h.deploy(t, "/src/.deploy", "/out")

	// readme, ghost, a.dll, b.dll, native.dll succeed; missing.txt fails
	assertCounter(t, c, 5, 1)
	assert.Equal(t, "readme", testutil.ReadString(t, h.fs, "/out/README"))
	assert.True(t, testutil.Exists(h.fs, "/out/a.dll"))
	assert.True(t, testutil.Exists(h.fs, "/out/sub/b.dll"))
	assert.False(t, testutil.Exists(h.fs, "/out/sub/c.txt"))
	assert.True(t, testutil.Exists(h.fs, "/out/bin/x64/native.dll"))

	assert.Equal(t, 1, h.recorder.Count("FileNotExists"))
	assert.Equal(t, 1, h.recorder.Count("UndefinedResolver"))
	require.Equal(t, 1, h.recorder.Count("UndefinedVariable"))
	for _, e := range h.recorder.Events() {
		if e.Kind == "UndefinedVariable" {
			assert.Equal(t, []string{"Undefined", "$(Undefined)ghost.txt", "/src/.deploy", "3"}, e.Args)
		}
	}
}

func TestDeploy_Expansion(t *testing.T) {
	files := map[string]string{
		"src/.deploy":             "plugins/*/bin/*.dll\n",
		"src/plugins/a/bin/a.dll": "a",
	}

	h := newHarness(t, files, nil)
	h.deploy(t, "/src/.deploy", "/out")
	assert.True(t, testutil.Exists(h.fs, "/out/a/a.dll"))

	h = newHarness(t, files, map[string]string{"expansion": ""})
	h.deploy(t, "/src/.deploy", "/out")
	assert.True(t, testutil.Exists(h.fs, "/out/a/bin/a.dll"))
}

func TestDeploy_LiteralFileUnderWildcardDirectories(t *testing.T) {
	h := newHarness(t, map[string]string{
		"src/.deploy":             "plugins/*/bin/a.dll\n",
		"src/plugins/a/bin/a.dll": "a",
		"src/plugins/b/bin/b.dll": "b",
	}, nil)

	c := h.deploy(t, "/src/.deploy", "/out")

	assertCounter(t, c, 1, 1)
	assert.True(t, testutil.Exists(h.fs, "/out/a/a.dll"))
	require.Equal(t, 1, h.recorder.Count("FileNotExists"))
	for _, e := range h.recorder.Events() {
		if e.Kind == "FileNotExists" {
			assert.Equal(t, filepath.FromSlash("/src/plugins/b/bin/a.dll"), e.Args[0])
		}
	}
}

func TestDeploy_OverwritePolicy(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	setup := func(t *testing.T, vars map[string]string) *harness {
		h := newHarness(t, map[string]string{"src/.deploy": "a.txt\n"}, vars)
		testutil.WriteFileWithTime(t, h.fs, "/src/a.txt", "new", older)
		testutil.WriteFileWithTime(t, h.fs, "/out/a.txt", "old", newer)
		return h
	}

	t.Run("never", func(t *testing.T) {
		h := setup(t, map[string]string{"overwrite": "Never"})
		c := h.deploy(t, "/src/.deploy", "/out")
		assertCounter(t, c, 0, 1)
		assert.Equal(t, "old", testutil.ReadString(t, h.fs, "/out/a.txt"))

		events := h.recorder.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "FileDeployFailed", events[0].Kind)
		assert.Equal(t, "Never", events[0].Args[2])
	})

	t.Run("newest keeps newer destination", func(t *testing.T) {
		h := setup(t, map[string]string{"overwrite": "newest"})
		c := h.deploy(t, "/src/.deploy", "/out")
		assertCounter(t, c, 0, 1)
	})

	t.Run("always by default", func(t *testing.T) {
		h := setup(t, nil)
		c := h.deploy(t, "/src/.deploy", "/out")
		assertCounter(t, c, 1, 0)
		assert.Equal(t, "new", testutil.ReadString(t, h.fs, "/out/a.txt"))
	})
}

func TestDeploy_SubManifest(t *testing.T) {
	files := map[string]string{
		"src/.deploy":         "[plugins]\nplugin/.deploy\nroot.txt\n",
		"src/root.txt":        "root",
		"src/plugin/.deploy":  "p.dll\n[docs]\nhelp.txt\n",
		"src/plugin/p.dll":    "p",
		"src/plugin/help.txt": "help",
	}

	t.Run("recurses into destination directory", func(t *testing.T) {
		h := newHarness(t, files, nil)
		c := h.deploy(t, "/src/.deploy", "/out")

		assertCounter(t, c, 3, 0)
		assert.True(t, testutil.Exists(h.fs, "/out/plugins/p.dll"))
		assert.True(t, testutil.Exists(h.fs, "/out/plugins/docs/help.txt"))
		assert.True(t, testutil.Exists(h.fs, "/out/plugins/root.txt"))
		assert.False(t, testutil.Exists(h.fs, "/out/plugins/.deploy"))
	})

	t.Run("ignored when disabled", func(t *testing.T) {
		h := newHarness(t, files, map[string]string{"ignoreDeploymentFile": ""})
		c := h.deploy(t, "/src/.deploy", "/out")

		assertCounter(t, c, 2, 0)
		assert.True(t, testutil.Exists(h.fs, "/out/plugins/.deploy"))
		assert.False(t, testutil.Exists(h.fs, "/out/plugins/p.dll"))
	})

	t.Run("broken sub manifest is counted", func(t *testing.T) {
		broken := map[string]string{
			"src/.deploy":        "plugin/.deploy\n",
			"src/plugin/.deploy": "[oops\n",
		}
		h := newHarness(t, broken, nil)
		c := h.deploy(t, "/src/.deploy", "/out")

		assertCounter(t, c, 0, 1)
		assert.Equal(t, 1, h.recorder.Count("ManifestFailed"))
	})
}

func TestDeploy_Delete(t *testing.T) {
	h := newHarness(t, map[string]string{
		"src/.deploy":       "[bin]\n!old.dll\nremove:gone.dll\ndelete:stale.dll\n",
		"out/bin/old.dll":   "x",
		"out/bin/stale.dll": "x",
	}, map[string]string{"verbosity": "detail"})

	c := h.deploy(t, "/src/.deploy", "/out")

	assertCounter(t, c, 0, 0)
	assert.False(t, testutil.Exists(h.fs, "/out/bin/old.dll"))
	assert.False(t, testutil.Exists(h.fs, "/out/bin/stale.dll"))
	assert.Equal(t, 3, h.recorder.Count("FileDeleteSucceed"))
	assert.Equal(t, 0, h.recorder.Count("FileDeleteFailed"))
}

func TestDeploy_Verbosity(t *testing.T) {
	files := map[string]string{
		"src/.deploy": "a.txt\nmissing.txt\n",
		"src/a.txt":   "a",
	}

	h := newHarness(t, files, map[string]string{"verbosity": "Detail"})
	h.deploy(t, "/src/.deploy", "/out")
	assert.Equal(t, []string{"FileDeploySucceed", "FileNotExists"}, h.recorder.Kinds())

	h = newHarness(t, files, map[string]string{"verbosity": "Quiet"})
	c := h.deploy(t, "/src/.deploy", "/out")
	assert.Empty(t, h.recorder.Kinds())
	assertCounter(t, c, 1, 1)

	h = newHarness(t, files, nil)
	h.deploy(t, "/src/.deploy", "/out")
	assert.Equal(t, []string{"FileNotExists"}, h.recorder.Kinds())
}

func TestDeploy_Canceled(t *testing.T) {
	h := newHarness(t, map[string]string{
		"src/.deploy": "a.txt\n",
		"src/a.txt":   "a",
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, err := h.deployer.Deploy(ctx, "/src/.deploy", "/out")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCanceled))
	assertCounter(t, c, 0, 0)
}

func TestDeploy_CustomResolver(t *testing.T) {
	h := newHarness(t, map[string]string{
		"src/.deploy":     "pkg:Thing\n",
		"cache/thing.dll": "thing",
	}, nil)

	var seen *deploy.Entry
	finder := deploy.SourceFinderFunc(func(ctx context.Context, dc *deploy.Context, entry *deploy.Entry) ([]wildcard.Token, error) {
		seen = entry
		return []wildcard.Token{wildcard.NewToken(filepath.FromSlash("/cache/thing.dll"), "")}, nil
	})
	h.deployer.Registry().Register("PKG", deploy.NewSourceResolver("pkg", finder))

	c := h.deploy(t, "/src/.deploy", "/out")
	assertCounter(t, c, 1, 0)
	require.NotNil(t, seen)
	assert.Equal(t, "pkg", seen.Name)
	assert.Equal(t, "Thing", seen.Source.Name)
	assert.True(t, testutil.Exists(h.fs, "/out/thing.dll"))
}

func TestDeploy_FinderFailureCounts(t *testing.T) {
	h := newHarness(t, map[string]string{"src/.deploy": "pkg:Thing\n"}, nil)
	finder := deploy.SourceFinderFunc(func(ctx context.Context, dc *deploy.Context, entry *deploy.Entry) ([]wildcard.Token, error) {
		return nil, errors.New(errors.ErrPackageNotFound, "no such package")
	})
	h.deployer.Registry().Register("pkg", deploy.NewSourceResolver("pkg", finder))

	c := h.deploy(t, "/src/.deploy", "/out")
	assertCounter(t, c, 0, 1)
}

func TestRegistry(t *testing.T) {
	r := deploy.NewRegistry()

	for _, tag := range []string{"", "delete", "Remove", "DELETE"} {
		_, ok := r.Get(tag)
		assert.True(t, ok, tag)
	}
	_, ok := r.Get("nuget")
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"", "delete", "remove"}, r.Tags())
}

func TestIsDeploymentFile(t *testing.T) {
	assert.True(t, deploy.IsDeploymentFile("/a/.deploy"))
	assert.True(t, deploy.IsDeploymentFile("/a/site.DEPLOY"))
	assert.False(t, deploy.IsDeploymentFile("/a/app.dll"))
}
