package app

import "sync"

// handleLocks serializes operations per party handle. Entries are created on
// first use and kept for the process lifetime; the handle space is bounded by
// the number of live parties so the map stays small.
type handleLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (h *handleLocks) lock(handle string) func() {
	h.mu.Lock()
	if h.locks == nil {
		h.locks = make(map[string]*sync.Mutex)
	}
	l, ok := h.locks[handle]
	if !ok {
		l = &sync.Mutex{}
		h.locks[handle] = l
	}
	h.mu.Unlock()

	l.Lock()
	return l.Unlock
}
