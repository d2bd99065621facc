package ref

import (
	"slices"

	"github.com/arloliu/pakref/format"
)

// Registry tracks the sites waiting for a key's canonical decoded value.
//
// Sites are registered while records are decoded, before anything is
// resolved, and drained once per key when its decode is published. A
// Registry is scoped to one load context and is not safe for concurrent use.
type Registry struct {
	pending map[format.Key][]Site
	count   int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[format.Key][]Site)}
}

// Register adds site under its key. Null and resolved sites are ignored, as
// is a site already registered.
//
// Returns:
//   - bool: Whether the site was added
func (r *Registry) Register(site Site) bool {
	if site == nil || site.IsNull() || site.IsResolved() {
		return false
	}

	key := site.Key()
	if slices.Contains(r.pending[key], site) {
		return false
	}

	r.pending[key] = append(r.pending[key], site)
	r.count++

	return true
}

// Drain fills every site pending on key as typ with value.
//
// Filled sites are removed. Sites waiting for another file type, or that
// reject the value's Go type, stay pending for a later decode of the same key
// under a matching type.
//
// Parameters:
//   - key: Key whose decode was published
//   - typ: File type the value was decoded as
//   - value: Canonical decoded value
//
// Returns:
//   - int: Number of sites filled
func (r *Registry) Drain(key format.Key, typ format.FileType, value any) int {
	sites, ok := r.pending[key]
	if !ok {
		return 0
	}

	filled := 0
	kept := sites[:0]
	for _, site := range sites {
		switch {
		case site.IsResolved():
			// resolved elsewhere since registration
		case site.Type() == typ && site.Fill(value):
			filled++
		default:
			kept = append(kept, site)
		}
	}
	clear(sites[len(kept):])

	r.count -= len(sites) - len(kept)
	if len(kept) == 0 {
		delete(r.pending, key)
	} else {
		r.pending[key] = kept
	}

	return filled
}

// Pending returns the number of sites waiting on key.
func (r *Registry) Pending(key format.Key) int {
	return len(r.pending[key])
}

// Len returns the number of waiting sites across all keys.
func (r *Registry) Len() int {
	return r.count
}

// Keys returns the keys with waiting sites in ascending order.
func (r *Registry) Keys() []format.Key {
	keys := make([]format.Key, 0, len(r.pending))
	for key := range r.pending {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return keys
}

// Reset drops every waiting site.
func (r *Registry) Reset() {
	clear(r.pending)
	r.count = 0
}
