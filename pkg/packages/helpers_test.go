package packages_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildNupkg zips files the way pack does, metadata parts included.
func buildNupkg(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	all := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types/>`,
		"_rels/.rels":         `<?xml version="1.0"?><Relationships/>`,
	}
	all["package/services/metadata/core-properties/0.psmdcp"] = `<coreProperties/>`
	for name, content := range files {
		all[name] = content
	}
	for name, content := range all {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// nuspecXML renders a nuspec. groups maps a framework to "id:range" pairs.
func nuspecXML(id, version string, groups map[string][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://schemas.microsoft.com/packaging/2013/05/nuspec.xsd">
  <metadata>
    <id>%s</id>
    <version>%s</version>
    <dependencies>
`, id, version)
	for fw, deps := range groups {
		fmt.Fprintf(&b, "      <group targetFramework=%q>\n", fw)
		for _, d := range deps {
			depID, rng, _ := strings.Cut(d, ":")
			fmt.Fprintf(&b, "        <dependency id=%q version=%q exclude=\"Build,Analyzers\" />\n", depID, rng)
		}
		b.WriteString("      </group>\n")
	}
	b.WriteString("    </dependencies>\n  </metadata>\n</package>\n")
	return b.String()
}

// fakeRegistry serves a service index at /v3/index.json and a flat
// container under /flat/.
type fakeRegistry struct {
	*httptest.Server

	mu        sync.Mutex
	packages  map[string]map[string][]byte
	downloads atomic.Int64
	agents    []string
}

func newFakeRegistry(t *testing.T) *fakeRegistry {
	t.Helper()
	f := &fakeRegistry{packages: make(map[string]map[string][]byte)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeRegistry) IndexURL() string { return f.URL + "/v3/index.json" }

func (f *fakeRegistry) userAgents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.agents...)
}

func (f *fakeRegistry) add(t *testing.T, id, version string, files map[string]string) {
	t.Helper()
	data := buildNupkg(t, files)
	f.mu.Lock()
	defer f.mu.Unlock()
	lid := strings.ToLower(id)
	if f.packages[lid] == nil {
		f.packages[lid] = make(map[string][]byte)
	}
	f.packages[lid][strings.ToLower(version)] = data
}

func (f *fakeRegistry) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.agents = append(f.agents, r.UserAgent())

	if r.URL.Path == "/v3/index.json" {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"version": "3.0.0",
			"resources": []map[string]string{
				{"@id": f.URL + "/search", "@type": "SearchQueryService"},
				{"@id": f.URL + "/flat/", "@type": "PackageBaseAddress/3.0.0"},
			},
		})
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/flat/"), "/")
	versions, ok := f.packages[parts[0]]
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch len(parts) {
	case 2:
		list := make([]string, 0, len(versions))
		for v := range versions {
			list = append(list, v)
		}
		_ = json.NewEncoder(w).Encode(map[string][]string{"versions": list})
	case 3:
		data, ok := versions[parts[1]]
		if !ok || parts[2] != parts[0]+"."+parts[1]+".nupkg" {
			http.NotFound(w, r)
			return
		}
		f.downloads.Add(1)
		_, _ = w.Write(data)
	default:
		http.NotFound(w, r)
	}
}
