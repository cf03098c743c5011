package packages_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/deployer/pkg/constants"
	"github.com/arthur-debert/deployer/pkg/deploy"
	"github.com/arthur-debert/deployer/pkg/packages"
	"github.com/arthur-debert/deployer/pkg/testutil"
	"github.com/arthur-debert/deployer/pkg/types"
	"github.com/arthur-debert/deployer/pkg/variables"
	"github.com/arthur-debert/deployer/pkg/wildcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type packageHarness struct {
	fs       types.FS
	recorder *testutil.Recorder
	deployer *deploy.Deployer
}

func newPackageHarness(t *testing.T, reg *fakeRegistry, manifest string, vars map[string]string) *packageHarness {
	t.Helper()
	fsys := testutil.NewTestFS()
	testutil.WriteFiles(t, fsys, "/src", map[string]string{".deploy": manifest})

	store := variables.FromMap(vars)
	store.Set(constants.VarPackageDirectory, "/pkgs")
	client := packages.NewClient(
		packages.NewRegistry(packages.WithServer(reg.IndexURL())),
		packages.NewStore(fsys, "/pkgs"),
	)

	registry := deploy.NewRegistry()
	registry.Register(constants.ResolverPackage, packages.NewResolver(client))

	h := &packageHarness{fs: fsys, recorder: testutil.NewRecorder()}
	h.deployer = deploy.New(deploy.Options{
		FS:         fsys,
		Output:     h.recorder,
		Variables:  store,
		Registry:   registry,
		Regulators: []wildcard.Regulator{packages.NewRegulator(fsys, store)},
		WorkingDir: "/work",
	})
	return h
}

func (h *packageHarness) deploy(t *testing.T) *deploy.Counter {
	t.Helper()
	counter, err := h.deployer.Deploy(context.Background(), "/src/.deploy", "/out")
	require.NoError(t, err)
	return counter
}

func addContosoLib(t *testing.T, reg *fakeRegistry) {
	t.Helper()
	reg.add(t, "Contoso.Lib", "1.0.0", map[string]string{
		"Contoso.Lib.nuspec": nuspecXML("Contoso.Lib", "1.0.0", map[string][]string{
			"net6.0":          {"Contoso.Core:[2.0.0, )", "System.Text.Json:6.0.0"},
			".NETStandard2.0": {"Contoso.Core:[2.0.0, )"},
		}),
		"lib/netstandard2.0/Contoso.Lib.dll":      "ns20",
		"lib/net6.0/Contoso.Lib.dll":              "net6",
		"lib/net6.0/de/Contoso.Lib.resources.dll": "de",
		"content/appsettings.json":                "{}",
	})
	reg.add(t, "Contoso.Core", "2.0.0", map[string]string{
		"Contoso.Core.nuspec":         nuspecXML("Contoso.Core", "2.0.0", nil),
		"lib/net6.0/Contoso.Core.dll": "core",
	})
}

func TestPackageResolver_NearestLibraries(t *testing.T) {
	reg := newFakeRegistry(t)
	addContosoLib(t, reg)
	h := newPackageHarness(t, reg, "[bin]\nnuget:Contoso.Lib@1.0.0\n", map[string]string{"Framework": "net8.0"})

	c := h.deploy(t)

	assert.Equal(t, int64(3), c.Successes())
	assert.Equal(t, int64(0), c.Failures())
	assert.Equal(t, "net6", testutil.ReadString(t, h.fs, "/out/bin/Contoso.Lib.dll"))
	assert.Equal(t, "de", testutil.ReadString(t, h.fs, "/out/bin/de/Contoso.Lib.resources.dll"))
	assert.Equal(t, "core", testutil.ReadString(t, h.fs, "/out/bin/Contoso.Core.dll"))
	assert.False(t, testutil.Exists(h.fs, "/out/bin/appsettings.json"))
	assert.Empty(t, h.recorder.Events())
}

func TestPackageResolver_Subpath(t *testing.T) {
	reg := newFakeRegistry(t)
	addContosoLib(t, reg)
	h := newPackageHarness(t, reg, "[config]\nnuget:Contoso.Lib/content/*.json\n", nil)

	c := h.deploy(t)

	assert.Equal(t, int64(1), c.Successes())
	assert.True(t, testutil.Exists(h.fs, "/out/config/appsettings.json"))
}

func TestPackageResolver_SubpathRegulated(t *testing.T) {
	reg := newFakeRegistry(t)
	addContosoLib(t, reg)
	h := newPackageHarness(t, reg, "nuget:Contoso.Lib/lib/netstandard2.0/*.dll\n", map[string]string{"Framework": "net8.0"})

	c := h.deploy(t)

	assert.Equal(t, int64(1), c.Successes())
	assert.Equal(t, "net6", testutil.ReadString(t, h.fs, "/out/Contoso.Lib.dll"))
}

func TestPackageResolver_PackageManifest(t *testing.T) {
	reg := newFakeRegistry(t)
	reg.add(t, "Contoso.Tools", "1.0.0", map[string]string{
		".deploy":          "[tools]\ntool.exe\n",
		"tool.exe":         "tool",
		"lib/net6.0/x.dll": "x",
	})
	h := newPackageHarness(t, reg, "[bin]\nnuget:Contoso.Tools\n", map[string]string{"Framework": "net8.0"})

	c := h.deploy(t)

	assert.Equal(t, int64(1), c.Successes())
	assert.Equal(t, int64(0), c.Failures())
	assert.Equal(t, "tool", testutil.ReadString(t, h.fs, "/out/bin/tools/tool.exe"))
	assert.False(t, testutil.Exists(h.fs, "/out/bin/x.dll"))
}

func TestPackageResolver_Failures(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		vars     map[string]string
		kind     string
		args     []string
	}{
		{
			name:     "illegal expression",
			manifest: "nuget:@1.0\n",
			kind:     "PackageIllegal",
			args:     []string{"@1.0"},
		},
		{
			name:     "unknown package",
			manifest: "nuget:Missing@1.0\n",
			kind:     "PackageNotFound",
			args:     []string{"Missing", "1.0"},
		},
		{
			name:     "unknown version",
			manifest: "nuget:Contoso.Lib@9.0\n",
			kind:     "PackageNotFound",
			args:     []string{"Contoso.Lib", "9.0"},
		},
		{
			name:     "no framework",
			manifest: "nuget:Contoso.Lib\n",
			kind:     "PackageUnmatched",
			args:     []string{"Contoso.Lib", "1.0.0", ""},
		},
		{
			name:     "no compatible library",
			manifest: "nuget:Contoso.Core\n",
			vars:     map[string]string{"Framework": "netcoreapp3.1"},
			kind:     "PackageUnmatched",
			args:     []string{"Contoso.Core", "2.0.0", "netcoreapp3.1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newFakeRegistry(t)
			addContosoLib(t, reg)
			h := newPackageHarness(t, reg, tt.manifest, tt.vars)

			c := h.deploy(t)

			assert.Equal(t, int64(0), c.Successes())
			assert.Equal(t, int64(1), c.Failures())
			events := h.recorder.Events()
			require.Len(t, events, 1)
			assert.Equal(t, tt.kind, events[0].Kind)
			assert.Equal(t, tt.args, events[0].Args)
		})
	}
}

func TestPackageResolver_DependencyDownloadFailed(t *testing.T) {
	reg := newFakeRegistry(t)
	reg.add(t, "Contoso.Lib", "1.0.0", map[string]string{
		"Contoso.Lib.nuspec": nuspecXML("Contoso.Lib", "1.0.0", map[string][]string{
			"net6.0": {"Contoso.Gone:1.0.0"},
		}),
		"lib/net6.0/Contoso.Lib.dll": "net6",
	})
	h := newPackageHarness(t, reg, "nuget:Contoso.Lib\n", map[string]string{"Framework": "net6.0"})

	c := h.deploy(t)

	assert.Equal(t, int64(1), c.Failures())
	require.Equal(t, 1, h.recorder.Count("PackageDownloadFailed"))
	assert.Equal(t, "Contoso.Gone", h.recorder.Events()[0].Args[0])
}
