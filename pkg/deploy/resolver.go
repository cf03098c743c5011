package deploy

import (
	"context"
	"strings"
	"sync"

	"github.com/arthur-debert/deployer/pkg/constants"
)

// Resolver carries out one entry. Resolvers are stateless; the only error
// they return is cancellation; everything else is reported and counted.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, dc *Context, entry *Entry) error
}

// Registry maps resolver tags to resolvers. Tags are case-insensitive.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
}

// NewRegistry returns a registry holding the default and delete resolvers.
func NewRegistry() *Registry {
	r := &Registry{resolvers: make(map[string]Resolver)}
	r.Register(constants.ResolverDefault, NewSourceResolver(constants.ResolverDefault, GlobFinder{}))
	deleter := DeleteResolver{}
	r.Register(constants.ResolverDelete, deleter)
	r.Register(constants.ResolverRemove, deleter)
	return r
}

// Register binds tag to resolver, replacing any previous binding.
func (r *Registry) Register(tag string, resolver Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[strings.ToLower(tag)] = resolver
}

// Get returns the resolver for tag.
func (r *Registry) Get(tag string) (Resolver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resolvers[strings.ToLower(strings.TrimSpace(tag))]
	return res, ok
}

// Tags lists the registered tags.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.resolvers))
	for t := range r.resolvers {
		tags = append(tags, t)
	}
	return tags
}
