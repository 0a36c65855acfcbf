package easel

// HideEvent toggles the hide counter of another event, identified by its
// authoring session. Several authors may hide the same event; it stays
// hidden while any non-undone hide targets it, and replay is triggered
// only when the counter crosses zero.
type HideEvent struct {
	EventBase

	HiddenAuthorID int
	HiddenSeq      int
}

// NewHideEvent creates a hide event targeting the event created by the
// given author with the given sequence number.
func NewHideEvent(hiddenAuthorID, hiddenSeq int) *HideEvent {
	return &HideEvent{HiddenAuthorID: hiddenAuthorID, HiddenSeq: hiddenSeq}
}

// Type returns TypeHide.
func (e *HideEvent) Type() EventType { return TypeHide }

// BoundingBox is empty: the pixel effect belongs to the hidden event,
// and the hide-counter zero crossing replays that event's own box.
func (e *HideEvent) BoundingBox(int, int) Rect { return Rect{} }

// Scale is a no-op: the event carries no geometry.
func (e *HideEvent) Scale(float64) {}
