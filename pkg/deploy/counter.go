package deploy

import (
	"fmt"
	"sync/atomic"
)

// Counter tallies the outcome of a deployment. It is safe for concurrent use.
type Counter struct {
	FilePath  string
	successes atomic.Int64
	failures  atomic.Int64
}

// NewCounter returns an empty counter for the manifest at filePath.
func NewCounter(filePath string) *Counter {
	return &Counter{FilePath: filePath}
}

func (c *Counter) Success() { c.successes.Add(1) }
func (c *Counter) Fail()    { c.failures.Add(1) }

// Add folds other into c, field by field.
func (c *Counter) Add(other *Counter) {
	if other == nil {
		return
	}
	c.successes.Add(other.Successes())
	c.failures.Add(other.Failures())
}

func (c *Counter) Successes() int64 { return c.successes.Load() }
func (c *Counter) Failures() int64  { return c.failures.Load() }
func (c *Counter) Total() int64     { return c.Successes() + c.Failures() }

func (c *Counter) String() string {
	return fmt.Sprintf("%s: total=%d success=%d failure=%d", c.FilePath, c.Total(), c.Successes(), c.Failures())
}
