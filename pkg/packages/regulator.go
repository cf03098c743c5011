package packages

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/arthur-debert/deployer/pkg/constants"
	"github.com/arthur-debert/deployer/pkg/framework"
	"github.com/arthur-debert/deployer/pkg/logging"
	"github.com/arthur-debert/deployer/pkg/types"
	"github.com/arthur-debert/deployer/pkg/variables"
)

// Regulator redirects a framework folder inside the packages directory, such
// as <pkg>/<ver>/lib/netstandard2.0, to the sibling nearest to the framework
// variable. Manifests can then name one folder and still deploy the build
// matching the active framework.
type Regulator struct {
	fs   types.FS
	vars variables.Lookup
}

// NewRegulator returns a regulator reading the packages directory and the
// framework from vars on every call.
func NewRegulator(fsys types.FS, vars variables.Lookup) *Regulator {
	return &Regulator{fs: fsys, vars: vars}
}

func (r *Regulator) Regulate(dir string) (string, bool) {
	root, ok := r.vars.Get(constants.VarPackageDirectory)
	if !ok || strings.TrimSpace(root) == "" || dir == "" {
		return "", false
	}
	if !within(filepath.Clean(root), filepath.Clean(dir)) {
		return "", false
	}

	value, ok := r.vars.Get(constants.VarFramework)
	if !ok {
		return "", false
	}
	target, err := framework.Parse(value)
	if err != nil {
		return "", false
	}

	dir = filepath.Clean(dir)
	parent, current := filepath.Dir(dir), filepath.Base(dir)
	if _, err := framework.Parse(current); err != nil {
		return "", false
	}

	entries, err := r.fs.ReadDir(parent)
	if err != nil {
		return "", false
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}

	nearest, ok := framework.NearestName(target, names)
	if !ok || nearest == current {
		return "", false
	}

	logger := logging.GetLogger("packages.regulator")
	logger.Debug().
		Str("from", dir).
		Str("framework", value).
		Str("to", nearest).
		Msg("Redirecting package directory")
	return filepath.Join(parent, nearest), true
}

func within(root, dir string) bool {
	if runtime.GOOS == "windows" {
		root, dir = strings.ToLower(root), strings.ToLower(dir)
	}
	rel, err := filepath.Rel(root, dir)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
