package core

// Handle identifies a renderable owned by the simulation. The zero Handle
// means "no renderable".
type Handle uint64

// Handles allocates renderable handles. Handles are issued in increasing
// order and never reissued, so any issued handle that is no longer live has
// been retired.
type Handles struct {
	next Handle
	live map[Handle]RenderKind
}

// NewHandles constructs an empty allocator.
func NewHandles() *Handles {
	return &Handles{
		live: make(map[Handle]RenderKind),
	}
}

// Allocate returns a fresh handle for a renderable of the given kind.
func (h *Handles) Allocate(kind RenderKind) Handle {
	h.next++
	h.live[h.next] = kind
	return h.next
}

// Retire marks id as released. It returns false if id was not live.
func (h *Handles) Retire(id Handle) bool {
	if _, ok := h.live[id]; !ok {
		return false
	}
	delete(h.live, id)
	return true
}

// IsRetired reports whether id has been released.
func (h *Handles) IsRetired(id Handle) bool {
	if id == 0 || id > h.next {
		return false
	}
	_, live := h.live[id]
	return !live
}

// Live returns how many renderables of the given kind are still held.
func (h *Handles) Live(kind RenderKind) int {
	n := 0
	for _, k := range h.live {
		if k == kind {
			n++
		}
	}
	return n
}
