package easel

// BufferCreateEvent creates a buffer. It is always at log index 0 and is
// never removed, only possibly undone; undoing it makes the whole buffer
// logically absent.
type BufferCreateEvent struct {
	EventBase

	BufferID   int
	ClearColor RGBA
	HasAlpha   bool
	Opacity    float64
}

// NewBufferCreateEvent creates a buffer-creation event.
func NewBufferCreateEvent(bufferID int, clearColor RGBA, hasAlpha bool, opacity float64) *BufferCreateEvent {
	return &BufferCreateEvent{
		BufferID:   bufferID,
		ClearColor: clearColor,
		HasAlpha:   hasAlpha,
		Opacity:    opacity,
	}
}

// Type returns TypeBufferCreate.
func (e *BufferCreateEvent) Type() EventType { return TypeBufferCreate }

// BoundingBox is empty: creation has no pixel footprint of its own.
func (e *BufferCreateEvent) BoundingBox(int, int) Rect { return Rect{} }

// Scale is a no-op: the event carries no geometry.
func (e *BufferCreateEvent) Scale(float64) {}

// BufferRemoveEvent marks a buffer as removed from the stack. Several
// authors may remove (and undo removing) the same buffer concurrently,
// so removal is counted, not flagged.
type BufferRemoveEvent struct {
	EventBase

	BufferID int
}

// NewBufferRemoveEvent creates a buffer-removal event.
func NewBufferRemoveEvent(bufferID int) *BufferRemoveEvent {
	return &BufferRemoveEvent{BufferID: bufferID}
}

// Type returns TypeBufferRemove.
func (e *BufferRemoveEvent) Type() EventType { return TypeBufferRemove }

// BoundingBox is empty: removal has no pixel footprint of its own.
func (e *BufferRemoveEvent) BoundingBox(int, int) Rect { return Rect{} }

// Scale is a no-op: the event carries no geometry.
func (e *BufferRemoveEvent) Scale(float64) {}

// BufferMergeEvent composites the buffer identified by MergedID into the
// buffer whose log holds this event, and logically retires the source.
type BufferMergeEvent struct {
	EventBase

	MergedID int
	Opacity  float64

	// merged is resolved from MergedID by the owning Picture when the
	// event is routed. Serialization carries only the id.
	merged *Buffer
}

// NewBufferMergeEvent creates a merge event targeting the buffer the
// event is pushed to.
func NewBufferMergeEvent(mergedID int, opacity float64) *BufferMergeEvent {
	return &BufferMergeEvent{MergedID: mergedID, Opacity: opacity}
}

// Type returns TypeBufferMerge.
func (e *BufferMergeEvent) Type() EventType { return TypeBufferMerge }

// Merged returns the resolved source buffer, or nil if the event has not
// been routed through a Picture yet.
func (e *BufferMergeEvent) Merged() *Buffer { return e.merged }

// BoundingBox covers the whole bitmap: the merged buffer may have pixels
// anywhere.
func (e *BufferMergeEvent) BoundingBox(width, height int) Rect {
	return NewRect(0, 0, float64(width), float64(height))
}

// Scale is a no-op: the event carries no geometry.
func (e *BufferMergeEvent) Scale(float64) {}

// BufferMoveEvent records a reordering of the buffer stack.
type BufferMoveEvent struct {
	EventBase

	BufferID  int
	FromIndex int
	ToIndex   int
}

// NewBufferMoveEvent creates a stack-reorder event.
func NewBufferMoveEvent(bufferID, fromIndex, toIndex int) *BufferMoveEvent {
	return &BufferMoveEvent{BufferID: bufferID, FromIndex: fromIndex, ToIndex: toIndex}
}

// Type returns TypeBufferMove.
func (e *BufferMoveEvent) Type() EventType { return TypeBufferMove }

// BoundingBox is empty: moving a buffer does not touch its pixels.
func (e *BufferMoveEvent) BoundingBox(int, int) Rect { return Rect{} }

// Scale is a no-op: the event carries no geometry.
func (e *BufferMoveEvent) Scale(float64) {}
