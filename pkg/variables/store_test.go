package variables_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/arthur-debert/deployer/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CaseInsensitive(t *testing.T) {
	s := variables.NewStore()
	s.Set("Framework", "net8.0")

	v, ok := s.Get("FRAMEWORK")
	require.True(t, ok)
	assert.Equal(t, "net8.0", v)
	assert.True(t, s.Has("framework"))

	s.Set("FRAMEWORK", "net6.0")
	assert.Equal(t, 1, s.Len())
	v, _ = s.Get("framework")
	assert.Equal(t, "net6.0", v)
	assert.Equal(t, []string{"FRAMEWORK"}, s.Keys())

	s.Delete("Framework")
	assert.False(t, s.Has("framework"))
}

func TestStore_SetDefault(t *testing.T) {
	s := variables.FromMap(map[string]string{"overwrite": "Never"})

	assert.False(t, s.SetDefault("Overwrite", "Always"))
	assert.True(t, s.SetDefault("verbosity", "Normal"))

	v, _ := s.Get("overwrite")
	assert.Equal(t, "Never", v)
	assert.Equal(t, map[string]string{"overwrite": "Never", "verbosity": "Normal"}, s.Snapshot())
}

func TestStore_Keys_Sorted(t *testing.T) {
	s := variables.FromMap(map[string]string{"b": "1", "A": "2", "c": "3"})
	assert.Equal(t, []string{"A", "b", "c"}, s.Keys())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := variables.NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set(fmt.Sprintf("key%d", i), "v")
			_, _ = s.Get("key0")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}

func TestFromEnvironment(t *testing.T) {
	t.Setenv("DEPLOYER_TEST_VALUE", "from-env")

	s, err := variables.FromEnvironment()
	require.NoError(t, err)

	v, ok := s.Get("deployer_test_value")
	require.True(t, ok)
	assert.Equal(t, "from-env", v)
}
