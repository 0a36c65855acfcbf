package easel

// EventType identifies the variant of an edit record.
type EventType uint8

const (
	// TypeBrush is a connected stroke of stamped brush tips.
	TypeBrush EventType = iota
	// TypeScatter is a set of unconnected brush stamps.
	TypeScatter
	// TypeGradient is a linear gradient fill.
	TypeGradient
	// TypeImageImport composites a decoded image.
	TypeImageImport
	// TypeBufferCreate creates a buffer; always at log index 0.
	TypeBufferCreate
	// TypeBufferRemove marks the buffer as removed from the stack.
	TypeBufferRemove
	// TypeBufferMerge composites another buffer into this one and
	// retires it.
	TypeBufferMerge
	// TypeBufferMove records a reordering of the buffer stack.
	TypeBufferMove
	// TypeHide toggles the hide counter of another event.
	TypeHide
)

// eventTypeNames maps EventType values to their serialized tags.
var eventTypeNames = [...]string{
	TypeBrush:        "brush",
	TypeScatter:      "scatter",
	TypeGradient:     "gradient",
	TypeImageImport:  "image",
	TypeBufferCreate: "create",
	TypeBufferRemove: "remove",
	TypeBufferMerge:  "merge",
	TypeBufferMove:   "move",
	TypeHide:         "hide",
}

// String returns the serialized tag of the event type.
func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// Structural reports whether the type mutates the buffer stack rather
// than pixels.
func (t EventType) Structural() bool {
	switch t {
	case TypeBufferCreate, TypeBufferRemove, TypeBufferMerge, TypeBufferMove, TypeHide:
		return true
	}
	return false
}

// EventBase carries the bookkeeping shared by all event variants.
// Events are immutable after creation except for the undone flag, the
// hide counter, and (for in-progress strokes) appended geometry.
type EventBase struct {
	// AuthorID identifies the authoring session the event came from.
	AuthorID int

	// AuthorSeq is the per-author monotonic sequence number. Within one
	// buffer's log, events of the same author appear in non-decreasing
	// AuthorSeq order.
	AuthorSeq int

	undone     bool
	hideCount  int
	generation int
}

// Undone reports whether the event is currently undone.
func (b *EventBase) Undone() bool { return b.undone }

// Hidden reports whether at least one non-undone hide event targets
// this event.
func (b *EventBase) Hidden() bool { return b.hideCount > 0 }

// Generation identifies the current rasterizable content of the event.
// It is bumped whenever geometry changes, invalidating any cached
// rasterization.
func (b *EventBase) Generation() int { return b.generation }

func (b *EventBase) setUndone(u bool) { b.undone = u }
func (b *EventBase) bumpGeneration()  { b.generation++ }
func (b *EventBase) adjustHide(d int) { b.hideCount += d }

// Base returns the shared bookkeeping fields. It satisfies part of the
// Event interface for every variant embedding EventBase.
func (b *EventBase) Base() *EventBase { return b }

// active reports whether the event contributes to playback.
func (b *EventBase) active() bool { return !b.undone && b.hideCount == 0 }

// Event is one immutable-after-creation edit record in a buffer's
// history.
type Event interface {
	// Type returns the variant tag.
	Type() EventType

	// Base returns the shared bookkeeping fields.
	Base() *EventBase

	// BoundingBox returns the pixel region the event can touch on a
	// bitmap of the given size. Structural events return an empty
	// rectangle.
	BoundingBox(width, height int) Rect

	// Scale multiplies all stored geometry by factor. Parsing applies
	// the global bitmap-scale factor through this.
	Scale(factor float64)
}

// Drawable is implemented by events that rasterize into a coverage mask.
type Drawable interface {
	Event

	// Draw rasterizes the event into the mask. The caller has already
	// set the clip rectangle and cleared the mask.
	Draw(r Rasterizer)

	// Style returns how the mask composites into the bitmap.
	Style() DrawStyle
}

// DrawStyle is the compositing style of a drawable event.
type DrawStyle struct {
	Color   RGBA
	Opacity float64
	Mode    BlendMode
}

// sameSession reports whether e was created by the given author with the
// given sequence number.
func sameSession(e Event, authorID, authorSeq int) bool {
	b := e.Base()
	return b.AuthorID == authorID && b.AuthorSeq == authorSeq
}
