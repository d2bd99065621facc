package collision

import (
	"fmt"

	"github.com/arloliu/pakref/errs"
)

// Tracker records the keys handed out while building a container and detects
// collisions between asset names that fold to the same 32-bit key.
//
// Unlike a 64-bit name hash, a 32-bit content key has no room to store the
// colliding names alongside it, so every collision is reported as an error.
type Tracker struct {
	names map[uint32]string // key → asset name ("" for keys added without a name)
	order []uint32          // keys in insertion order
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names: make(map[uint32]string),
		order: make([]uint32, 0),
	}
}

// TrackKey tracks a key supplied directly by the caller.
// Returns ErrDuplicateKey if the key was already tracked.
func (t *Tracker) TrackKey(key uint32) error {
	if _, exists := t.names[key]; exists {
		return fmt.Errorf("%w: %08x", errs.ErrDuplicateKey, key)
	}

	t.names[key] = ""
	t.order = append(t.order, key)

	return nil
}

// TrackName tracks an asset name together with the key derived from it.
//
// Returns:
//   - ErrDuplicateKey if the same name was tracked before
//   - ErrKeyCollision if a different name (or a raw key) already owns the key
func (t *Tracker) TrackName(name string, key uint32) error {
	if existing, exists := t.names[key]; exists {
		if existing == name {
			return fmt.Errorf("%w: %q", errs.ErrDuplicateKey, name)
		}

		return fmt.Errorf("%w: %q and %q both map to %08x", errs.ErrKeyCollision, existing, name, key)
	}

	t.names[key] = name
	t.order = append(t.order, key)

	return nil
}

// Name returns the asset name tracked for key, if any.
func (t *Tracker) Name(key uint32) (string, bool) {
	name, ok := t.names[key]
	if !ok || name == "" {
		return "", false
	}

	return name, true
}

// Keys returns the tracked keys in insertion order.
func (t *Tracker) Keys() []uint32 {
	return t.order
}

// Count returns the number of tracked keys.
func (t *Tracker) Count() int {
	return len(t.order)
}

// Reset clears all tracked keys so the tracker can serve a new container.
func (t *Tracker) Reset() {
	clear(t.names)
	t.order = t.order[:0]
}
