package executor

import (
	"sync"

	"github.com/handsomefox/ridit/filter"
)

// registry serializes candidates that share a url within one pass.
type registry struct {
	mu      sync.Mutex
	entries map[string]*urlEntry
}

type urlEntry struct {
	mu sync.Mutex

	// placed is a file already written for this url, copied instead of fetching again.
	placed string
	dims   filter.Dimensions
	probed bool
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]*urlEntry)}
}

// lock returns the locked entry for url.
func (r *registry) lock(url string) *urlEntry {
	r.mu.Lock()
	entry, ok := r.entries[url]
	if !ok {
		entry = &urlEntry{}
		r.entries[url] = entry
	}
	r.mu.Unlock()

	entry.mu.Lock()
	return entry
}

func (e *urlEntry) unlock() {
	e.mu.Unlock()
}
