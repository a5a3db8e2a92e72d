package core

import "testing"

func TestHandlesRetireAndReuse(t *testing.T) {
	h := NewHandles()
	if h.IsRetired(0) || h.IsRetired(1) {
		t.Fatalf("unissued handles reported retired")
	}

	p := h.Allocate(KindProjectile)
	e := h.Allocate(KindEffect)
	if p == 0 || e <= p {
		t.Fatalf("handles not increasing: %d, %d", p, e)
	}
	if h.IsRetired(p) {
		t.Fatalf("live handle reported retired")
	}

	if !h.Retire(p) {
		t.Fatalf("Retire(%d) = false", p)
	}
	if h.Retire(p) {
		t.Fatalf("second Retire(%d) = true", p)
	}
	if !h.IsRetired(p) || h.IsRetired(e) {
		t.Fatalf("IsRetired: p=%v e=%v", h.IsRetired(p), h.IsRetired(e))
	}

	if next := h.Allocate(KindProjectile); next == p || next <= e {
		t.Fatalf("retired handle %d reissued as %d", p, next)
	}
	if h.Live(KindProjectile) != 1 || h.Live(KindEffect) != 1 {
		t.Fatalf("live counts projectile=%d effect=%d", h.Live(KindProjectile), h.Live(KindEffect))
	}
}

func TestHandlesStateDoesNotGrowWithRetirement(t *testing.T) {
	h := NewHandles()
	for i := 0; i < 1000; i++ {
		h.Retire(h.Allocate(KindMarker))
	}
	if len(h.live) != 0 {
		t.Fatalf("live map holds %d entries after retiring everything", len(h.live))
	}
	if !h.IsRetired(500) {
		t.Fatalf("handle 500 not reported retired")
	}
}
