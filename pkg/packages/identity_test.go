package packages_test

import (
	"testing"

	"github.com/arthur-debert/deployer/pkg/packages"
	"github.com/stretchr/testify/assert"
)

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  packages.Identity
		ok    bool
	}{
		{"name only", "Contoso.Lib", packages.Identity{Name: "Contoso.Lib"}, true},
		{"with version", "Contoso.Lib@1.2.3", packages.Identity{Name: "Contoso.Lib", Version: "1.2.3"}, true},
		{"with path", "Contoso.Lib/lib/net6.0", packages.Identity{Name: "Contoso.Lib", Path: "lib/net6.0"}, true},
		{"version and path", "Contoso.Lib@latest/content/*.json", packages.Identity{Name: "Contoso.Lib", Version: "latest", Path: "content/*.json"}, true},
		{"backslash path", `Contoso.Lib@2.0\tools\run.ps1`, packages.Identity{Name: "Contoso.Lib", Version: "2.0", Path: "tools/run.ps1"}, true},
		{"trims", "  Contoso.Lib @ 1.0 ", packages.Identity{Name: "Contoso.Lib", Version: "1.0"}, true},
		{"empty", "", packages.Identity{}, false},
		{"leading separator", "/lib", packages.Identity{}, false},
		{"leading at", "@1.0", packages.Identity{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := packages.ParseIdentity(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentity_IsLatest(t *testing.T) {
	assert.True(t, packages.Identity{Name: "a"}.IsLatest())
	assert.True(t, packages.Identity{Name: "a", Version: "Latest"}.IsLatest())
	assert.False(t, packages.Identity{Name: "a", Version: "1.0"}.IsLatest())
}

func TestIdentity_String(t *testing.T) {
	assert.Equal(t, "a", packages.Identity{Name: "a"}.String())
	assert.Equal(t, "a@1.0/lib", packages.Identity{Name: "a", Version: "1.0", Path: "lib"}.String())
	assert.Equal(t, "a/lib", packages.Identity{Name: "a", Path: "lib"}.String())
}
