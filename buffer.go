package easel

import (
	"errors"
	"fmt"
)

// Contract-violation errors. These indicate caller bugs (undoing an
// already-undone event, out-of-range indices); the log is never left in
// an inconsistent state when they are returned.
var (
	ErrEventIndex      = errors.New("easel: event index out of range")
	ErrAlreadyUndone   = errors.New("easel: event is already undone")
	ErrNotUndone       = errors.New("easel: event is not undone")
	ErrCreateImmutable = errors.New("easel: buffer-create event cannot be inserted or removed")
	ErrMergeNotUndone  = errors.New("easel: merge event must be undone before removal")
	ErrInsertionPoint  = errors.New("easel: insertion point out of range")
	ErrSelfMerge       = errors.New("easel: buffer cannot merge into itself")
)

// Buffer is one layer of a picture: an ordered event log, the live
// bitmap rendered from it, and a checkpoint cache bounding replay cost.
//
// The log is the authority. The bitmap always equals a full replay of
// the non-undone, non-hidden events from a cleared bitmap; checkpoints
// and bounded replay only make keeping that equality cheap.
//
// Buffers are not safe for concurrent use; the host serializes calls
// into one Picture.
type Buffer struct {
	id     int
	width  int
	height int
	opts   BitmapOptions

	backend Backend
	bitmap  Bitmap
	rast    Rasterizer

	events         []Event
	insertionPoint int

	// removeCount counts non-undone BufferRemove events in this buffer's
	// log. A counter rather than a flag: several authors may remove and
	// un-remove the same buffer concurrently.
	removeCount int

	// mergedTo points at the buffer this one was merged into, for lookup
	// only. Cleared when the merge is undone.
	mergedTo *Buffer

	clip        *clipStack
	checkpoints *checkpointCache

	// pic points at the owning picture, nil for a standalone buffer.
	// Move events reorder the stack through it.
	pic *Picture

	visible bool
	opacity float64
	freed   bool
}

// NewBuffer creates a buffer from its creation event. The event becomes
// log index 0; it is never removed, only possibly undone. The rasterizer
// is shared with the owning picture.
func NewBuffer(backend Backend, rast Rasterizer, width, height int, create *BufferCreateEvent, checkpointBudget int) (*Buffer, error) {
	opts := BitmapOptions{ClearColor: create.ClearColor, HasAlpha: create.HasAlpha}
	bm, err := backend.NewBitmap(width, height, opts)
	if err != nil {
		return nil, fmt.Errorf("easel: creating bitmap for buffer %d: %w", create.BufferID, err)
	}
	b := &Buffer{
		id:             create.BufferID,
		width:          width,
		height:         height,
		opts:           opts,
		backend:        backend,
		bitmap:         bm,
		rast:           rast,
		events:         []Event{create},
		insertionPoint: 1,
		clip:           newClipStack(width, height),
		checkpoints:    newCheckpointCache(checkpointBudget, DefaultCheckpointInterval),
		visible:        true,
		opacity:        create.Opacity,
	}
	return b, nil
}

// ID returns the buffer identifier from the creation event.
func (b *Buffer) ID() int { return b.id }

// Width returns the bitmap width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the bitmap height in pixels.
func (b *Buffer) Height() int { return b.height }

// Opts returns the bitmap creation options.
func (b *Buffer) Opts() BitmapOptions { return b.opts }

// Bitmap returns the live bitmap, which may be nil while freed.
func (b *Buffer) Bitmap() Bitmap { return b.bitmap }

// EventCount returns the length of the event log.
func (b *Buffer) EventCount() int { return len(b.events) }

// EventAt returns the event at a log position, or nil if out of range.
func (b *Buffer) EventAt(i int) Event {
	if i < 0 || i >= len(b.events) {
		return nil
	}
	return b.events[i]
}

// InsertionPoint returns the log position the next InsertEvent targets.
func (b *Buffer) InsertionPoint() int { return b.insertionPoint }

// SetInsertionPoint moves the insertion cursor. Position 0 is reserved
// for the creation event.
func (b *Buffer) SetInsertionPoint(i int) error {
	if i < 1 || i > len(b.events) {
		return ErrInsertionPoint
	}
	b.insertionPoint = i
	return nil
}

// RemoveCount returns how many non-undone removal events target the
// buffer.
func (b *Buffer) RemoveCount() int { return b.removeCount }

// MergedTo returns the buffer this one was merged into, or nil.
func (b *Buffer) MergedTo() *Buffer { return b.mergedTo }

// Visible returns the user-controlled visibility flag.
func (b *Buffer) Visible() bool { return b.visible }

// SetVisible sets the user-controlled visibility flag. It does not touch
// the log; compositing simply skips invisible buffers.
func (b *Buffer) SetVisible(v bool) { b.visible = v }

// Opacity returns the buffer-level compositing opacity.
func (b *Buffer) Opacity() float64 { return b.opacity }

// SetOpacity sets the buffer-level compositing opacity.
func (b *Buffer) SetOpacity(o float64) { b.opacity = clamp01(o) }

// Absent reports whether the buffer is logically gone: its creation
// event undone, a non-undone removal targeting it, or merged into
// another buffer. Absent buffers contribute nothing to compositing or
// blame.
func (b *Buffer) Absent() bool {
	return b.removeCount > 0 || b.mergedTo != nil || b.events[0].Base().Undone()
}

// Freed reports whether the bitmap and snapshots have been released.
func (b *Buffer) Freed() bool { return b.freed }

// PushEvent appends an event to the log. If the event is not undone it
// is applied immediately, scoped to its bounding box, and checkpoint
// maintenance runs. A snapshot allocation failure during maintenance is
// only a warning; the event is in the log and on the bitmap either way.
func (b *Buffer) PushEvent(e Event) error {
	if e.Type() == TypeBufferCreate {
		return ErrCreateImmutable
	}
	if err := b.checkMerge(e); err != nil {
		return err
	}
	atEnd := b.insertionPoint == len(b.events)
	b.events = append(b.events, e)
	if atEnd {
		b.insertionPoint = len(b.events)
	}
	if !e.Base().Undone() {
		b.applySideEffects(e, +1)
		b.renderEventScoped(e)
		b.maintainCheckpoints()
	}
	return nil
}

// InsertEvent inserts an event at the insertion point, which is not
// necessarily the end of the log, and advances the cursor past it. The
// caller must place the event so every author's sequence numbers stay
// non-decreasing in log order. Inserting below the top triggers a
// bounded replay rather than an incremental apply, since an earlier
// z-order event can be occluded by later ones.
func (b *Buffer) InsertEvent(e Event) error {
	if e.Type() == TypeBufferCreate {
		return ErrCreateImmutable
	}
	if err := b.checkMerge(e); err != nil {
		return err
	}
	i := b.insertionPoint
	if i < 1 || i > len(b.events) {
		return ErrInsertionPoint
	}
	b.events = append(b.events, nil)
	copy(b.events[i+1:], b.events[i:])
	b.events[i] = e
	b.insertionPoint = i + 1
	b.checkpoints.shiftForInsert(i)
	if !e.Base().Undone() {
		b.checkpoints.addCost(i, +1)
		b.applySideEffects(e, +1)
		if i == len(b.events)-1 {
			b.renderEventScoped(e)
		} else if eventRepaints(e) {
			b.playbackAfterChange(i, e.BoundingBox(b.width, b.height))
		}
	}
	return nil
}

// UndoEventIndex flips the event at log position i to undone, leaving
// its position unchanged, and replays the affected region.
func (b *Buffer) UndoEventIndex(i int) error {
	if i < 0 || i >= len(b.events) {
		return ErrEventIndex
	}
	e := b.events[i]
	if e.Base().Undone() {
		return ErrAlreadyUndone
	}
	e.Base().setUndone(true)
	b.checkpoints.addCost(i, -1)
	b.applySideEffects(e, -1)
	if eventRepaints(e) && !e.Base().Hidden() {
		b.playbackAfterChange(i, e.BoundingBox(b.width, b.height))
	}
	return nil
}

// RedoEventIndex flips the event at log position i back to applied and
// replays the affected region. Redoing the top of the log applies
// incrementally instead.
func (b *Buffer) RedoEventIndex(i int) error {
	if i < 0 || i >= len(b.events) {
		return ErrEventIndex
	}
	e := b.events[i]
	if !e.Base().Undone() {
		return ErrNotUndone
	}
	e.Base().setUndone(false)
	b.checkpoints.addCost(i, +1)
	b.applySideEffects(e, +1)
	if eventRepaints(e) && !e.Base().Hidden() {
		if i == len(b.events)-1 {
			b.renderEventScoped(e)
		} else {
			b.playbackAfterChange(i, e.BoundingBox(b.width, b.height))
		}
	}
	b.maintainCheckpoints()
	return nil
}

// RemoveEventIndex splices the event at log position i out of the log,
// undoing it first if needed. Removal is terminal: the event is gone and
// later checkpoint indices shift down. A non-undone merge must be undone
// explicitly before removal, since dropping it silently would also drop
// the merged buffer's pixels.
func (b *Buffer) RemoveEventIndex(i int) error {
	if i < 0 || i >= len(b.events) {
		return ErrEventIndex
	}
	e := b.events[i]
	if e.Type() == TypeBufferCreate {
		return ErrCreateImmutable
	}
	if !e.Base().Undone() {
		if e.Type() == TypeBufferMerge {
			return ErrMergeNotUndone
		}
		if err := b.UndoEventIndex(i); err != nil {
			return err
		}
	}
	b.events = append(b.events[:i], b.events[i+1:]...)
	if b.insertionPoint > i {
		b.insertionPoint--
	}
	b.checkpoints.shiftForRemove(i)
	return nil
}

// ReplaceWithEvent clears everything after the creation event and
// optionally pushes one new event. Used for low-latency preview buffers
// whose in-progress stroke is rewritten every frame without touching
// permanent history. Pass nil to just clear.
func (b *Buffer) ReplaceWithEvent(e Event) error {
	for k := len(b.events) - 1; k >= 1; k-- {
		old := b.events[k]
		if !old.Base().Undone() {
			b.applySideEffects(old, -1)
		}
	}
	b.events = b.events[:1]
	b.insertionPoint = 1
	b.checkpoints.reset()
	if b.bitmap != nil && !b.freed {
		b.bitmap.Clear(b.fullRect(), b.opts.ClearColor)
	}
	if e == nil {
		return nil
	}
	return b.PushEvent(e)
}

// EventIndexBySession returns the log position of the event created by
// the given author with the given sequence number, or -1.
func (b *Buffer) EventIndexBySession(authorID, authorSeq int) int {
	for i, e := range b.events {
		if sameSession(e, authorID, authorSeq) {
			return i
		}
	}
	return -1
}

// LatestBySession returns the highest sequence number the author has in
// this buffer's log. Because same-author events appear in non-decreasing
// sequence order, this is the last one found in log order.
func (b *Buffer) LatestBySession(authorID int) (seq int, ok bool) {
	for i := len(b.events) - 1; i >= 0; i-- {
		base := b.events[i].Base()
		if base.AuthorID == authorID {
			return base.AuthorSeq, true
		}
	}
	return 0, false
}

// Free releases the bitmap and all checkpoint snapshots under memory
// pressure. The log stays; Regenerate rebuilds the pixels by full
// replay.
func (b *Buffer) Free() {
	if b.bitmap != nil {
		b.bitmap.Free()
		b.bitmap = nil
	}
	b.checkpoints.freeAll()
	b.freed = true
}

// Regenerate rebuilds a freed buffer's bitmap by full replay, repairing
// checkpoint snapshots in place as the replay crosses them.
func (b *Buffer) Regenerate() error {
	if !b.freed && b.bitmap != nil {
		return nil
	}
	bm, err := b.backend.NewBitmap(b.width, b.height, b.opts)
	if err != nil {
		return fmt.Errorf("easel: regenerating buffer %d: %w", b.id, err)
	}
	b.bitmap = bm
	b.freed = false
	b.bitmap.Clear(b.fullRect(), b.opts.ClearColor)
	b.playbackStartingFrom(0)
	Logger().Debug("buffer regenerated", "buffer", b.id, "events", len(b.events))
	return nil
}

// CheckpointStats reports the checkpoint cache state: entry count, total
// charged cost and snapshot memory held.
func (b *Buffer) CheckpointStats() (count, totalCost, memBytes int) {
	return len(b.checkpoints.items), b.checkpoints.totalCost(), b.checkpoints.memBytes()
}

func (b *Buffer) fullRect() Rect {
	return NewRect(0, 0, float64(b.width), float64(b.height))
}

// checkMerge validates a merge event before it enters the log.
func (b *Buffer) checkMerge(e Event) error {
	m, ok := e.(*BufferMergeEvent)
	if !ok {
		return nil
	}
	if m.merged == b || m.MergedID == b.id {
		return ErrSelfMerge
	}
	return nil
}

// eventRepaints reports whether flipping the event's undone flag changes
// pixels. Structural bookkeeping events have no pixel footprint of their
// own; hide zero-crossings replay the hidden event's box instead.
func eventRepaints(e Event) bool {
	switch e.Type() {
	case TypeBufferCreate, TypeBufferRemove, TypeBufferMove, TypeHide:
		return false
	}
	return true
}

// applySideEffects applies (dir = +1) or reverses (dir = -1) an event's
// log-state side effects: the removal counter, the merge back-reference
// and the hide counter. Pixel effects are handled separately so replays
// never double-count these.
func (b *Buffer) applySideEffects(e Event, dir int) {
	switch ev := e.(type) {
	case *BufferRemoveEvent:
		b.removeCount += dir
		if b.removeCount < 0 {
			b.removeCount = 0
		}
	case *BufferMergeEvent:
		if ev.merged == nil {
			return
		}
		if dir > 0 {
			ev.merged.mergedTo = b
		} else if ev.merged.mergedTo == b {
			ev.merged.mergedTo = nil
		}
	case *BufferMoveEvent:
		if b.pic == nil {
			return
		}
		if dir > 0 {
			b.pic.moveBufferToIndex(ev.BufferID, ev.ToIndex)
		} else {
			b.pic.moveBufferToIndex(ev.BufferID, ev.FromIndex)
		}
	case *HideEvent:
		t := b.EventIndexBySession(ev.HiddenAuthorID, ev.HiddenSeq)
		if t < 0 {
			Logger().Warn("hide target not found",
				"buffer", b.id, "author", ev.HiddenAuthorID, "seq", ev.HiddenSeq)
			return
		}
		target := b.events[t]
		was := target.Base().Hidden()
		target.Base().adjustHide(dir)
		// Replay only at the zero crossing; stacked hides are pure
		// bookkeeping.
		if target.Base().Hidden() != was && !target.Base().Undone() {
			b.playbackAfterChange(t, target.BoundingBox(b.width, b.height))
		}
	}
}

// renderEventScoped incrementally applies one event's pixel effects,
// clipped to its own bounding box. Only valid when the event is at the
// top of the log, where nothing can occlude it.
func (b *Buffer) renderEventScoped(e Event) {
	if b.freed || b.bitmap == nil || !e.Base().active() {
		return
	}
	box := e.BoundingBox(b.width, b.height)
	if box.IsEmpty() {
		return
	}
	pop := b.clip.PushRect(box)
	defer pop()
	b.renderEvent(e)
}

// renderEvent draws one event's pixel effects into the bitmap, scoped to
// the current clip rectangle.
func (b *Buffer) renderEvent(e Event) {
	switch ev := e.(type) {
	case *ImageImportEvent:
		b.bitmap.DrawImage(b.clip.Bounds(), ev.Image, ev.TopLeft)
	case *BufferMergeEvent:
		if ev.merged == nil || ev.merged == b {
			Logger().Warn("merge event skipped", "buffer", b.id, "merged", ev.MergedID)
			return
		}
		if ev.merged.Freed() {
			if err := ev.merged.Regenerate(); err != nil {
				Logger().Warn("merge source regeneration failed",
					"buffer", b.id, "merged", ev.MergedID, "err", err)
				return
			}
		}
		b.bitmap.DrawBitmap(b.clip.Bounds(), ev.merged.bitmap, ev.Opacity)
	case Drawable:
		box := ev.BoundingBox(b.width, b.height).Intersect(b.clip.Bounds())
		if box.IsEmpty() {
			return
		}
		b.rast.SetClip(box)
		b.rast.Clear()
		ev.Draw(b.rast)
		st := ev.Style()
		b.bitmap.DrawMask(box, b.rast, st.Color, st.Opacity, st.Mode)
	}
}

// playbackAfterChange is the bounded replay underlying undo, redo,
// remove, insert and hide: restore the nearest checkpoint at or before
// the changed position, then replay every later active event, all
// clipped to the changed event's bounding box.
func (b *Buffer) playbackAfterChange(i int, box Rect) {
	if b.freed || b.bitmap == nil {
		return
	}
	pop := b.clip.PushRect(box)
	defer pop()
	if b.clip.Bounds().IsEmpty() {
		return
	}
	// Checkpoints past the change hold stale pixels inside the clip;
	// keep their data and repair the damaged region as replay crosses
	// them.
	b.checkpoints.invalidateAfter(i)
	start := 0
	if cp := b.checkpoints.latestRestorable(i); cp != nil {
		if err := b.bitmap.Restore(cp.snap, b.clip.Bounds()); err == nil {
			start = cp.index
		} else {
			Logger().Warn("checkpoint restore failed", "buffer", b.id, "index", cp.index, "err", err)
			b.bitmap.Clear(b.clip.Bounds(), b.opts.ClearColor)
		}
	} else {
		b.bitmap.Clear(b.clip.Bounds(), b.opts.ClearColor)
	}
	Logger().Debug("bounded replay", "buffer", b.id, "changed", i, "from", start,
		"events", len(b.events)-start)
	b.playbackStartingFrom(start)
}

// playbackStartingFrom replays every active event from a log position to
// the end, scoped to the current clip, repairing each checkpoint it
// crosses. A checkpoint at position k is reached before the event at k
// is applied, since its snapshot represents state after [0, k).
func (b *Buffer) playbackStartingFrom(start int) {
	for pos := start; pos <= len(b.events); pos++ {
		if pos > start {
			if cp := b.checkpoints.at(pos); cp != nil && cp.invalid {
				b.repairCheckpoint(cp)
			}
		}
		if pos == len(b.events) {
			break
		}
		e := b.events[pos]
		if !e.Base().active() {
			continue
		}
		b.renderEvent(e)
	}
}

// repairCheckpoint refreshes a stale checkpoint from the bitmap, which
// at this point holds state [0, index) inside the clip. Data-bearing
// checkpoints get the clipped region patched in place; ones whose data
// was dropped need a whole-bitmap capture and can only be rebuilt under
// a full clip.
func (b *Buffer) repairCheckpoint(cp *checkpoint) {
	if cp.snap != nil {
		if err := b.bitmap.UpdateSnapshot(cp.snap, b.clip.Bounds()); err != nil {
			Logger().Warn("checkpoint repair failed", "buffer", b.id, "index", cp.index, "err", err)
			return
		}
		cp.invalid = false
		return
	}
	if !b.clip.Full() {
		return
	}
	snap, err := b.bitmap.Snapshot()
	if err != nil {
		Logger().Warn("checkpoint rebuild failed", "buffer", b.id, "index", cp.index, "err", err)
		return
	}
	cp.snap = snap
	cp.invalid = false
}

// maintainCheckpoints creates a checkpoint at the log end once enough
// applied events have accumulated past the newest one, then evicts down
// to budget. Snapshot allocation failure is a warning, not an error:
// checkpoints are an optimization.
func (b *Buffer) maintainCheckpoints() {
	if b.checkpoints.budget <= 0 || b.freed || b.bitmap == nil {
		return
	}
	tail := b.activeTail()
	if tail < b.checkpoints.interval {
		return
	}
	snap, err := b.bitmap.Snapshot()
	if err != nil {
		Logger().Warn("checkpoint snapshot failed", "buffer", b.id, "err", err)
		return
	}
	b.checkpoints.add(&checkpoint{index: len(b.events), cost: tail, snap: snap})
	Logger().Debug("checkpoint created", "buffer", b.id, "index", len(b.events), "cost", tail)
}

// activeTail counts the non-undone events at or past the newest
// checkpoint. Hidden events still count: cost accounting flips only on
// undo and redo, so creation must use the same definition or the two
// drift apart.
func (b *Buffer) activeTail() int {
	n := 0
	for _, e := range b.events[b.checkpoints.newestIndex():] {
		if !e.Base().Undone() {
			n++
		}
	}
	return n
}
