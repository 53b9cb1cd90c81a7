package licenses

import (
	"context"
	"fmt"
	"sync"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// Registry caches the license master list and resolves licenses by URL.
// Safe for concurrent use. Population happens at most once successfully;
// a failed population leaves the registry empty and is retried on the next call.
type Registry struct {
	source cnx.LicenseSource

	mu        sync.Mutex
	populated bool
	licenses  []*cnx.License
}

// NewRegistry creates a registry that loads its list from source on first use.
// A nil source yields an empty registry on which every lookup misses.
func NewRegistry(source cnx.LicenseSource) *Registry {
	return &Registry{source: source}
}

// NewStaticRegistry creates an already populated registry holding licenses.
func NewStaticRegistry(licenses ...cnx.License) *Registry {
	r := &Registry{populated: true}
	r.licenses = toPointers(licenses)
	return r
}

// Populate loads the full list from the source unless already loaded.
// On error nothing is cached.
func (r *Registry) Populate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.populateLocked(ctx)
}

func (r *Registry) populateLocked(ctx context.Context) error {
	if r.populated {
		return nil
	}
	if r.source == nil {
		r.populated = true
		return nil
	}

	list, err := r.source.Licenses(ctx)
	if err != nil {
		return fmt.Errorf("failed to load licenses: %w", err)
	}

	r.licenses = toPointers(list)
	r.populated = true
	return nil
}

// RetrieveByURL returns the first license whose URL equals url exactly.
// The registry is populated first if needed. The returned pointer is shared
// and must not be modified. found is false on a miss; err is set only when
// population fails.
func (r *Registry) RetrieveByURL(ctx context.Context, url string) (license *cnx.License, found bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.populateLocked(ctx); err != nil {
		return nil, false, err
	}
	for _, l := range r.licenses {
		if l.URL == url {
			return l, true, nil
		}
	}
	return nil, false, nil
}

// Licenses returns the cached list in source order.
// The slice is a copy; the License values are shared.
func (r *Registry) Licenses() []*cnx.License {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*cnx.License, len(r.licenses))
	copy(out, r.licenses)
	return out
}

// IsPopulated reports whether the list has been loaded.
func (r *Registry) IsPopulated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.populated
}

func toPointers(list []cnx.License) []*cnx.License {
	out := make([]*cnx.License, len(list))
	for i := range list {
		l := list[i]
		out[i] = &l
	}
	return out
}
