package packages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"lib/net6.0/a.dll", "lib/net6.0/a.dll", true},
		{`lib\net6.0\a.dll`, "lib/net6.0/a.dll", true},
		{"content/My%20File.txt", "content/My File.txt", true},
		{"lib/../a.dll", "a.dll", true},
		{"../evil.dll", "", false},
		{"lib/../../evil.dll", "", false},
		{"/etc/passwd", "", false},
		{"[Content_Types].xml", "", false},
		{"_rels/.rels", "", false},
		{"package/services/metadata/core-properties/x.psmdcp", "", false},
	}
	for _, tt := range tests {
		got, ok := entryName(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
