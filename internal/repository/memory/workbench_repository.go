package memory

import (
	"time"

	"doc-workbench-be/pkg/store"
	"doc-workbench-be/pkg/upstream"

	"github.com/patrickmn/go-cache"
)

// Workbench bundles the per-browser-session stores with the upstream client
// that carries that session's upstream cookies.
type Workbench struct {
	ID       string
	Files    *store.Workspace
	Chat     *store.ChatStore
	Upstream *upstream.Client
}

// WorkbenchRepository holds the live workbenches. State is page-lifetime by
// design: an expired entry just means the browser re-syncs from the
// upstream via the collection and session-files listings.
type WorkbenchRepository struct {
	cache       *cache.Cache
	newUpstream func() *upstream.Client
}

func NewWorkbenchRepository(newUpstream func() *upstream.Client) *WorkbenchRepository {
	// Workbenches idle for a day are purged; sweep every 10 minutes
	c := cache.New(24*time.Hour, 10*time.Minute)
	return &WorkbenchRepository{
		cache:       c,
		newUpstream: newUpstream,
	}
}

// GetOrCreate returns the workbench for the browser session id, constructing
// stores and an upstream client on first contact. Each call refreshes the
// entry's TTL.
func (r *WorkbenchRepository) GetOrCreate(id string) *Workbench {
	if x, found := r.cache.Get(id); found {
		bench := x.(*Workbench)
		r.cache.Set(id, bench, cache.DefaultExpiration)
		return bench
	}
	bench := &Workbench{
		ID:       id,
		Files:    store.NewWorkspace(),
		Chat:     store.NewChatStore(),
		Upstream: r.newUpstream(),
	}
	r.cache.Set(id, bench, cache.DefaultExpiration)
	return bench
}

func (r *WorkbenchRepository) Get(id string) (*Workbench, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(*Workbench), true
	}
	return nil, false
}

func (r *WorkbenchRepository) Delete(id string) {
	r.cache.Delete(id)
}
