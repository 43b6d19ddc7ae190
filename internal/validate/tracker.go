package validate

import "sync"

// Key is the composite identity used for duplicate detection.
type Key struct {
	Number string
	Seller string
	Date   string
}

// DuplicateTracker records which composite invoice identities a batch
// has already seen. It is constructed fresh per validation batch and
// discarded with it; it is never process-wide state.
type DuplicateTracker struct {
	mu   sync.Mutex
	seen map[Key]struct{}
}

// NewDuplicateTracker creates an empty tracker for one batch.
func NewDuplicateTracker() *DuplicateTracker {
	return &DuplicateTracker{seen: make(map[Key]struct{})}
}

// Seen reports whether the key has been recorded.
func (t *DuplicateTracker) Seen(k Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.seen[k]
	return ok
}

// Record marks the key as seen.
func (t *DuplicateTracker) Record(k Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen[k] = struct{}{}
}

// CheckAndRecord reports whether the key was already seen and records
// it, under one lock, so concurrent workers cannot both observe a key
// as a first occurrence.
func (t *DuplicateTracker) CheckAndRecord(k Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seen[k]; ok {
		return true
	}
	t.seen[k] = struct{}{}
	return false
}
