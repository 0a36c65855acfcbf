package easel

// clipStack tracks the rectangular clip region active during replay.
// Each entry intersects with the region above it, so replaying an event
// under a pushed bounding box never touches pixels outside the damage
// area.
type clipStack struct {
	entries []Rect
	bounds  Rect
}

// newClipStack creates a clip stack whose outermost bounds cover the
// whole bitmap.
func newClipStack(width, height int) *clipStack {
	return &clipStack{
		entries: make([]Rect, 0, 8),
		bounds:  NewRect(0, 0, float64(width), float64(height)),
	}
}

// PushRect narrows the clip region to the intersection of the current
// bounds and r. The returned func pops the entry; callers defer it.
func (cs *clipStack) PushRect(r Rect) func() {
	cs.entries = append(cs.entries, cs.bounds)
	cs.bounds = cs.bounds.Intersect(r)
	return cs.Pop
}

// Pop restores the bounds from before the most recent push. Popping an
// empty stack is a no-op.
func (cs *clipStack) Pop() {
	if len(cs.entries) == 0 {
		return
	}
	last := len(cs.entries) - 1
	cs.bounds = cs.entries[last]
	cs.entries = cs.entries[:last]
}

// Bounds returns the current effective clip rectangle.
func (cs *clipStack) Bounds() Rect {
	return cs.bounds
}

// Full reports whether the current clip covers the entire bitmap, which
// is only true when nothing is pushed.
func (cs *clipStack) Full() bool {
	return len(cs.entries) == 0
}

// Depth returns how many clips are pushed. Useful in tests.
func (cs *clipStack) Depth() int {
	return len(cs.entries)
}
