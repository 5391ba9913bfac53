package pipeline

import (
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/gestorjudicial/gestor/internal/model"
)

// View memoizes Apply on input equality. The case set is identified by the
// state revision, which changes on every committed mutation, so a hit always
// equals a full recomputation.
type View struct {
	cache *gocache.Cache
	mu    sync.Mutex
	stats Stats
}

// Stats counts cache outcomes.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// NewView creates a view cache whose entries expire after ttl.
func NewView(ttl time.Duration) *View {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &View{cache: gocache.New(ttl, ttl*2)}
}

// Apply returns the ordered list for (revision, status, filters), computing
// it on a miss. Callers receive their own slice.
func (v *View) Apply(revision uint64, all []model.Case, status model.Status, f Filters) []model.Case {
	key := cacheKey(revision, status, f)

	v.mu.Lock()
	defer v.mu.Unlock()

	if data, found := v.cache.Get(key); found {
		if list, ok := data.([]model.Case); ok {
			v.stats.Hits++
			return copyCases(list)
		}
	}

	v.stats.Misses++
	list := Apply(all, status, f)
	v.cache.Set(key, list, gocache.DefaultExpiration)
	return copyCases(list)
}

func copyCases(list []model.Case) []model.Case {
	return append(make([]model.Case, 0, len(list)), list...)
}

// Invalidate drops every cached view.
func (v *View) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cache.Flush()
}

// Stats returns a copy of the counters.
func (v *View) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.stats
	s.Size = v.cache.ItemCount()
	return s
}

func cacheKey(revision uint64, status model.Status, f Filters) string {
	return fmt.Sprintf("view:%d:%s:%s", revision, status, f.key())
}
