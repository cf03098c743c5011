package deploy

import (
	"path/filepath"

	"github.com/arthur-debert/deployer/pkg/constants"
	"github.com/arthur-debert/deployer/pkg/manifest"
	"github.com/arthur-debert/deployer/pkg/types"
	"github.com/arthur-debert/deployer/pkg/variables"
)

// Context is the state of one manifest being deployed. Sub-manifests get
// their own Context whose counter is folded into the parent's.
type Context struct {
	Deployer             *Deployer
	Profile              *manifest.Profile
	DestinationDirectory string
	Counter              *Counter
}

// SourceDirectory is the directory holding the manifest. Relative sources
// resolve against it.
func (c *Context) SourceDirectory() string {
	return filepath.Dir(c.Profile.FilePath)
}

func (c *Context) Variables() *variables.Store { return c.Deployer.vars }
func (c *Context) Output() types.Output        { return c.Deployer.output }
func (c *Context) FS() types.FS                { return c.Deployer.fs }

// Verbosity reads the verbosity variable.
func (c *Context) Verbosity() types.Verbosity {
	v, _ := c.Deployer.vars.Get(constants.VarVerbosity)
	return types.ParseVerbosity(v)
}

// Overwrite reads the overwrite variable.
func (c *Context) Overwrite() types.Overwrite {
	v, _ := c.Deployer.vars.Get(constants.VarOverwrite)
	return types.ParseOverwrite(v)
}

// Resolve expands placeholders in text, reporting undefined variables
// against the manifest location.
func (c *Context) Resolve(text, expression string, line int) string {
	return variables.Resolve(text, c.Deployer.vars, func(name string) {
		c.Deployer.output.UndefinedVariable(name, expression, c.Profile.FilePath, line)
	})
}
