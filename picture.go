package easel

import (
	"errors"
	"fmt"
	"image"
	"sort"
)

var (
	ErrBufferNotFound   = errors.New("easel: buffer not found")
	ErrBufferIndex      = errors.New("easel: buffer stack index out of range")
	ErrDuplicateBuffer  = errors.New("easel: buffer id already in use")
	ErrEventNotFound    = errors.New("easel: no event matches the session")
	ErrPictureDimension = errors.New("easel: picture dimensions must be positive")
)

// Picture is an ordered stack of buffers plus the active authoring
// session. Index 0 is the bottom of the stack; the last buffer is
// frontmost. The picture routes events to buffers, resolves cross-buffer
// operations (merges, blame, session lookups) and composites the final
// frame.
//
// A Picture is not safe for concurrent use; the host serializes calls
// into it.
type Picture struct {
	width  int
	height int

	backend Backend
	rast    Rasterizer

	buffers []*Buffer

	checkpointBudget int

	// Active authoring session: events pushed through Stamp carry this
	// author id and a monotonically increasing sequence number.
	authorID int
	nextSeq  int

	// touch orders buffers by recency for tie-breaking session lookups.
	touch   map[int]int64
	touches int64

	// In-progress stroke composited on top of its buffer without ever
	// entering the log.
	previewBufferID int
	preview         Drawable

	composite Bitmap
}

// NewPicture creates an empty picture of the given size.
func NewPicture(width, height int, opts ...PictureOption) (*Picture, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrPictureDimension
	}
	o := defaultPictureOptions()
	for _, opt := range opts {
		opt(&o)
	}
	rast, err := o.backend.NewRasterizer(width, height)
	if err != nil {
		return nil, fmt.Errorf("easel: creating rasterizer: %w", err)
	}
	return &Picture{
		width:            width,
		height:           height,
		backend:          o.backend,
		rast:             rast,
		checkpointBudget: o.checkpointBudget,
		authorID:         o.authorID,
		nextSeq:          1,
		touch:            make(map[int]int64),
	}, nil
}

// Width returns the picture width in pixels.
func (p *Picture) Width() int { return p.width }

// Height returns the picture height in pixels.
func (p *Picture) Height() int { return p.height }

// AuthorID returns the active session's author id.
func (p *Picture) AuthorID() int { return p.authorID }

// SetAuthor switches the active session, seeding the next sequence
// number from the highest one that author already has in any buffer.
func (p *Picture) SetAuthor(id int) {
	p.authorID = id
	p.nextSeq = p.FindLatestBySession(id) + 1
}

// Stamp tags an event with the active session and advances the sequence
// number. Returns the event for chaining:
//
//	pic.PushEvent(id, pic.Stamp(easel.NewBrushEvent(...)))
func (p *Picture) Stamp(e Event) Event {
	base := e.Base()
	base.AuthorID = p.authorID
	base.AuthorSeq = p.nextSeq
	p.nextSeq++
	return e
}

// BufferCount returns the stack depth.
func (p *Picture) BufferCount() int { return len(p.buffers) }

// BufferAt returns the buffer at a stack position, bottom first, or nil
// if out of range.
func (p *Picture) BufferAt(i int) *Buffer {
	if i < 0 || i >= len(p.buffers) {
		return nil
	}
	return p.buffers[i]
}

// BufferByID returns the buffer with the given id, or nil.
func (p *Picture) BufferByID(id int) *Buffer {
	for _, b := range p.buffers {
		if b.id == id {
			return b
		}
	}
	return nil
}

// bufferIndex returns the stack position of a buffer id, or -1.
func (p *Picture) bufferIndex(id int) int {
	for i, b := range p.buffers {
		if b.id == id {
			return i
		}
	}
	return -1
}

// AddBuffer pushes a new buffer on top of the stack from a stamped
// creation event.
func (p *Picture) AddBuffer(create *BufferCreateEvent) (*Buffer, error) {
	if p.BufferByID(create.BufferID) != nil {
		return nil, ErrDuplicateBuffer
	}
	b, err := NewBuffer(p.backend, p.rast, p.width, p.height, create, p.checkpointBudget)
	if err != nil {
		return nil, err
	}
	b.pic = p
	p.buffers = append(p.buffers, b)
	p.touched(b)
	return b, nil
}

// DropBuffer destroys the buffer at a stack position, freeing its bitmap
// and snapshots. Unlike a BufferRemove event this is not undoable; the
// log is gone.
func (p *Picture) DropBuffer(i int) error {
	if i < 0 || i >= len(p.buffers) {
		return ErrBufferIndex
	}
	b := p.buffers[i]
	b.Free()
	delete(p.touch, b.id)
	p.buffers = append(p.buffers[:i], p.buffers[i+1:]...)
	return nil
}

// MoveBuffer records a stack reorder as an event in the moved buffer's
// log, so it participates in undo like any other edit. The move itself
// happens as the event's side effect.
func (p *Picture) MoveBuffer(from, to int) error {
	if from < 0 || from >= len(p.buffers) || to < 0 || to >= len(p.buffers) {
		return ErrBufferIndex
	}
	b := p.buffers[from]
	ev := p.Stamp(NewBufferMoveEvent(b.id, from, to))
	return p.PushEvent(b.id, ev)
}

// moveBufferToIndex performs the stack reorder for a move event's side
// effect.
func (p *Picture) moveBufferToIndex(bufferID, to int) {
	from := p.bufferIndex(bufferID)
	if from < 0 || to < 0 || to >= len(p.buffers) || from == to {
		return
	}
	b := p.buffers[from]
	p.buffers = append(p.buffers[:from], p.buffers[from+1:]...)
	p.buffers = append(p.buffers[:to], append([]*Buffer{b}, p.buffers[to:]...)...)
}

// RemoveBuffer pushes a stamped removal event to the buffer, making it
// absent but keeping its history for undo.
func (p *Picture) RemoveBuffer(id int) error {
	return p.PushEvent(id, p.Stamp(NewBufferRemoveEvent(id)))
}

// MergeBuffer composites the buffer with id mergedID into the target
// buffer at the given opacity and logically retires the source. The
// merge is an event in the target's log; undoing it brings the source
// back unmodified.
func (p *Picture) MergeBuffer(targetID, mergedID int, opacity float64) error {
	return p.PushEvent(targetID, p.Stamp(NewBufferMergeEvent(mergedID, opacity)))
}

// PushEvent routes an event to the buffer with the given id and appends
// it to that buffer's log.
func (p *Picture) PushEvent(bufferID int, e Event) error {
	b := p.BufferByID(bufferID)
	if b == nil {
		return ErrBufferNotFound
	}
	if err := p.resolveMerge(b, e); err != nil {
		return err
	}
	if err := b.PushEvent(e); err != nil {
		return err
	}
	p.touched(b)
	return nil
}

// InsertEvent places a remote event into a buffer's log at the position
// that keeps every author's own events in non-decreasing sequence order:
// immediately before the first event of the same author with a higher
// sequence number, or at the end.
func (p *Picture) InsertEvent(bufferID int, e Event) error {
	b := p.BufferByID(bufferID)
	if b == nil {
		return ErrBufferNotFound
	}
	if err := p.resolveMerge(b, e); err != nil {
		return err
	}
	base := e.Base()
	at := len(b.events)
	for i, old := range b.events {
		ob := old.Base()
		if ob.AuthorID == base.AuthorID && ob.AuthorSeq > base.AuthorSeq {
			at = i
			break
		}
	}
	if err := b.SetInsertionPoint(at); err != nil {
		return err
	}
	if err := b.InsertEvent(e); err != nil {
		return err
	}
	p.touched(b)
	return nil
}

// resolveMerge binds a merge event's source buffer before it enters a
// log. Self-merges are contract violations.
func (p *Picture) resolveMerge(target *Buffer, e Event) error {
	m, ok := e.(*BufferMergeEvent)
	if !ok {
		return nil
	}
	src := p.BufferByID(m.MergedID)
	if src == nil {
		return ErrBufferNotFound
	}
	if src == target {
		return ErrSelfMerge
	}
	m.merged = src
	return nil
}

// touched marks a buffer as most recently used for session tie-breaks.
func (p *Picture) touched(b *Buffer) {
	p.touches++
	p.touch[b.id] = p.touches
}

// buffersByRecency returns the buffers ordered most recently touched
// first. Session lookups resolve ties toward the buffer the author
// worked in last.
func (p *Picture) buffersByRecency() []*Buffer {
	out := make([]*Buffer, len(p.buffers))
	copy(out, p.buffers)
	sort.SliceStable(out, func(i, j int) bool {
		return p.touch[out[i].id] > p.touch[out[j].id]
	})
	return out
}

// UndoLatest undoes the active session's most recent non-undone event
// across all buffers. Returns the buffer and log position that were
// undone.
func (p *Picture) UndoLatest() (*Buffer, int, error) {
	var best *Buffer
	bestIdx := -1
	bestSeq := -1
	for _, b := range p.buffersByRecency() {
		for i := len(b.events) - 1; i >= 0; i-- {
			base := b.events[i].Base()
			if base.AuthorID != p.authorID || base.Undone() {
				continue
			}
			if base.AuthorSeq > bestSeq {
				best = b
				bestIdx = i
				bestSeq = base.AuthorSeq
			}
			break
		}
	}
	if best == nil {
		return nil, -1, ErrEventNotFound
	}
	if err := best.UndoEventIndex(bestIdx); err != nil {
		return nil, -1, err
	}
	p.touched(best)
	return best, bestIdx, nil
}

// findBySession locates an event across all buffers, most recently
// touched buffer first.
func (p *Picture) findBySession(authorID, authorSeq int) (*Buffer, int) {
	for _, b := range p.buffersByRecency() {
		if i := b.EventIndexBySession(authorID, authorSeq); i >= 0 {
			return b, i
		}
	}
	return nil, -1
}

// UndoBySessionEvent undoes the event created by the given author with
// the given sequence number, wherever it lives.
func (p *Picture) UndoBySessionEvent(authorID, authorSeq int) error {
	b, i := p.findBySession(authorID, authorSeq)
	if b == nil {
		return ErrEventNotFound
	}
	if err := b.UndoEventIndex(i); err != nil {
		return err
	}
	p.touched(b)
	return nil
}

// RedoBySessionEvent redoes the event created by the given author with
// the given sequence number.
func (p *Picture) RedoBySessionEvent(authorID, authorSeq int) error {
	b, i := p.findBySession(authorID, authorSeq)
	if b == nil {
		return ErrEventNotFound
	}
	if err := b.RedoEventIndex(i); err != nil {
		return err
	}
	p.touched(b)
	return nil
}

// RemoveBySessionEvent splices the event created by the given author
// with the given sequence number out of its log.
func (p *Picture) RemoveBySessionEvent(authorID, authorSeq int) error {
	b, i := p.findBySession(authorID, authorSeq)
	if b == nil {
		return ErrEventNotFound
	}
	if err := b.RemoveEventIndex(i); err != nil {
		return err
	}
	p.touched(b)
	return nil
}

// FindLatestBySession returns the highest sequence number the author has
// anywhere in the picture, or 0. Used to seed the next sequence number
// when a session reconnects.
func (p *Picture) FindLatestBySession(authorID int) int {
	latest := 0
	for _, b := range p.buffers {
		if seq, ok := b.LatestBySession(authorID); ok && seq > latest {
			latest = seq
		}
	}
	return latest
}

// SetPreviewEvent attaches an in-progress drawable to a buffer. The
// preview is composited on top of that buffer's bitmap every frame but
// never enters the log, so the actively drawn stroke needs no commit
// just to be seen. Committing is the caller pushing the finished event
// and clearing the preview.
func (p *Picture) SetPreviewEvent(bufferID int, e Drawable) error {
	if p.BufferByID(bufferID) == nil {
		return ErrBufferNotFound
	}
	p.previewBufferID = bufferID
	p.preview = e
	return nil
}

// ClearPreview detaches the in-progress drawable.
func (p *Picture) ClearPreview() {
	p.preview = nil
	p.previewBufferID = 0
}

// Composite renders the final frame: bottom to top over the stack,
// skipping buffers that are invisible, removed, merged away or have an
// undone creation event. Freed buffers are regenerated on demand.
func (p *Picture) Composite() (*image.RGBA, error) {
	if p.composite == nil {
		bm, err := p.backend.NewBitmap(p.width, p.height, BitmapOptions{HasAlpha: true})
		if err != nil {
			return nil, fmt.Errorf("easel: creating composite target: %w", err)
		}
		p.composite = bm
	}
	full := NewRect(0, 0, float64(p.width), float64(p.height))
	p.composite.Clear(full, Transparent)
	for _, b := range p.buffers {
		if b.Absent() || !b.visible || b.opacity <= 0 {
			continue
		}
		if b.Freed() {
			if err := b.Regenerate(); err != nil {
				return nil, err
			}
		}
		p.composite.DrawBitmap(full, b.bitmap, b.opacity)
		if p.preview != nil && p.previewBufferID == b.id {
			p.drawPreview(b)
		}
	}
	return p.composite.Image(), nil
}

// drawPreview rasterizes the in-progress event straight onto the
// composite, scaled by its buffer's opacity.
func (p *Picture) drawPreview(b *Buffer) {
	box := p.preview.BoundingBox(p.width, p.height)
	if box.IsEmpty() {
		return
	}
	p.rast.SetClip(box)
	p.rast.Clear()
	p.preview.Draw(p.rast)
	st := p.preview.Style()
	p.composite.DrawMask(box, p.rast, st.Color, st.Opacity*b.opacity, st.Mode)
}

// MemBytes estimates the pixel memory held by the picture: live bitmaps
// plus checkpoint snapshots.
func (p *Picture) MemBytes() int {
	total := 0
	for _, b := range p.buffers {
		if !b.Freed() {
			total += b.width * b.height * 4
		}
		_, _, mem := b.CheckpointStats()
		total += mem
	}
	if p.composite != nil {
		total += p.width * p.height * 4
	}
	return total
}

// Free releases every buffer's bitmap and snapshots. Logs stay; the next
// Composite regenerates what it needs.
func (p *Picture) Free() {
	for _, b := range p.buffers {
		b.Free()
	}
	if p.composite != nil {
		p.composite.Free()
		p.composite = nil
	}
}
