package listing

import (
	"log/slog"
	"sync"
	"time"

	"github.com/open-sspm/userdesk/internal/metrics"
	"github.com/patrickmn/go-cache"
)

const defaultWorkspaceTTL = 24 * time.Hour

// Registry keeps one Orchestrator per session workspace. Idle workspaces
// expire after the TTL; every Get extends it.
type Registry struct {
	dir    Directory
	logger *slog.Logger
	ttl    time.Duration

	mu    sync.Mutex
	cache *cache.Cache
}

func NewRegistry(dir Directory, ttl time.Duration, logger *slog.Logger) *Registry {
	if ttl <= 0 {
		ttl = defaultWorkspaceTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := cache.New(ttl, ttl/2)
	r := &Registry{dir: dir, logger: logger, ttl: ttl, cache: c}
	c.OnEvicted(func(id string, _ interface{}) {
		metrics.ListingWorkspaces.Set(float64(c.ItemCount()))
		logger.Debug("listing workspace released", "workspace", id)
	})
	return r
}

// Get returns the workspace for id, creating it on first use.
func (r *Registry) Get(id string) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.cache.Get(id); ok {
		o := v.(*Orchestrator)
		r.cache.Set(id, o, r.ttl)
		return o
	}
	o := NewOrchestrator(r.dir, r.logger.With("workspace", id))
	r.cache.Set(id, o, r.ttl)
	metrics.ListingWorkspaces.Set(float64(r.cache.ItemCount()))
	return o
}

// Drop discards the workspace for id, if any.
func (r *Registry) Drop(id string) {
	if id == "" {
		return
	}
	r.cache.Delete(id)
}

// Len is the number of live workspaces.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}
