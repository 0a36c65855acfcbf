package easel

import (
	"bytes"
	"image"
	"testing"
)

func newTestPicture(t *testing.T, opts ...PictureOption) *Picture {
	t.Helper()
	p, err := NewPicture(testSize, testSize, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func addTestBuffer(t *testing.T, p *Picture, id int) *Buffer {
	t.Helper()
	create := p.Stamp(NewBufferCreateEvent(id, Transparent, true, 1)).(*BufferCreateEvent)
	b, err := p.AddBuffer(create)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// paint pushes an opaque single-point stroke to the given buffer.
func paint(t *testing.T, p *Picture, bufferID int, x, y float64, c RGBA) {
	t.Helper()
	e := NewBrushEvent(c, 1, 1, 6, BlendNormal)
	e.AddPoint(x, y, 1)
	if err := p.PushEvent(bufferID, p.Stamp(e)); err != nil {
		t.Fatal(err)
	}
}

func compositeImage(t *testing.T, p *Picture) *image.RGBA {
	t.Helper()
	img, err := p.Composite()
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func pixelAt(img *image.RGBA, x, y int) (r, g, b, a uint8) {
	i := img.PixOffset(x, y)
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]
}

func TestPictureDimensionValidation(t *testing.T) {
	if _, err := NewPicture(0, 10); err != ErrPictureDimension {
		t.Errorf("NewPicture(0,10) = %v, want ErrPictureDimension", err)
	}
}

func TestAddBufferDuplicate(t *testing.T) {
	p := newTestPicture(t)
	addTestBuffer(t, p, 1)
	if _, err := p.AddBuffer(NewBufferCreateEvent(1, Transparent, true, 1)); err != ErrDuplicateBuffer {
		t.Errorf("duplicate AddBuffer = %v, want ErrDuplicateBuffer", err)
	}
}

func TestStampSequencing(t *testing.T) {
	p := newTestPicture(t, WithAuthor(7))
	a := p.Stamp(NewBufferRemoveEvent(1)).Base()
	b := p.Stamp(NewBufferRemoveEvent(1)).Base()
	if a.AuthorID != 7 || b.AuthorID != 7 {
		t.Errorf("author ids = %d,%d, want 7", a.AuthorID, b.AuthorID)
	}
	if a.AuthorSeq != 1 || b.AuthorSeq != 2 {
		t.Errorf("sequence = %d,%d, want 1,2", a.AuthorSeq, b.AuthorSeq)
	}
}

func TestSetAuthorSeedsSequence(t *testing.T) {
	p := newTestPicture(t)
	addTestBuffer(t, p, 1)
	paint(t, p, 1, 20, 20, Red)
	p.SetAuthor(2)
	paint(t, p, 1, 40, 40, Green)
	p.SetAuthor(1)
	e := p.Stamp(NewBufferRemoveEvent(1))
	// Author 1 already used sequences 1 and 2.
	if e.Base().AuthorSeq != 3 {
		t.Errorf("reseeded sequence = %d, want 3", e.Base().AuthorSeq)
	}
}

func TestMergeUndoRedo(t *testing.T) {
	p := newTestPicture(t)
	addTestBuffer(t, p, 1)
	addTestBuffer(t, p, 2)
	paint(t, p, 1, 16, 16, Red)
	paint(t, p, 2, 48, 48, Green)
	before := compositeImage(t, p)

	if err := p.MergeBuffer(1, 2, 1); err != nil {
		t.Fatal(err)
	}
	src := p.BufferByID(2)
	if !src.Absent() || src.MergedTo() != p.BufferByID(1) {
		t.Fatal("merged buffer should be absent and linked to its target")
	}
	merged := compositeImage(t, p)
	if _, g, _, a := pixelAt(merged, 48, 48); g != 255 || a != 255 {
		t.Error("merged pixels should appear through the target buffer")
	}

	mergeSeq := p.FindLatestBySession(p.AuthorID())
	if err := p.UndoBySessionEvent(p.AuthorID(), mergeSeq); err != nil {
		t.Fatal(err)
	}
	if src.Absent() {
		t.Error("undoing the merge should bring the source back")
	}
	if !bytes.Equal(compositeImage(t, p).Pix, before.Pix) {
		t.Error("composite after undo should match the pre-merge frame")
	}

	if err := p.RedoBySessionEvent(p.AuthorID(), mergeSeq); err != nil {
		t.Fatal(err)
	}
	if !src.Absent() {
		t.Error("redo should retire the source again")
	}
	if !bytes.Equal(compositeImage(t, p).Pix, merged.Pix) {
		t.Error("composite after redo should match the merged frame")
	}
}

func TestMergeValidation(t *testing.T) {
	p := newTestPicture(t)
	addTestBuffer(t, p, 1)
	if err := p.MergeBuffer(1, 1, 1); err != ErrSelfMerge {
		t.Errorf("self merge = %v, want ErrSelfMerge", err)
	}
	if err := p.MergeBuffer(1, 99, 1); err != ErrBufferNotFound {
		t.Errorf("missing source = %v, want ErrBufferNotFound", err)
	}
}

func TestRemoveBufferUndo(t *testing.T) {
	p := newTestPicture(t)
	addTestBuffer(t, p, 1)
	paint(t, p, 1, 20, 20, Red)
	before := compositeImage(t, p)

	if err := p.RemoveBuffer(1); err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := pixelAt(compositeImage(t, p), 20, 20); a != 0 {
		t.Error("removed buffer should not composite")
	}

	seq := p.FindLatestBySession(p.AuthorID())
	if err := p.UndoBySessionEvent(p.AuthorID(), seq); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(compositeImage(t, p).Pix, before.Pix) {
		t.Error("undoing the removal should restore the frame")
	}
}

func TestMoveBufferUndo(t *testing.T) {
	p := newTestPicture(t)
	addTestBuffer(t, p, 1)
	addTestBuffer(t, p, 2)
	// Both paint the same spot; stack order decides the winner.
	paint(t, p, 1, 30, 30, Red)
	paint(t, p, 2, 30, 30, Green)

	if _, g, _, _ := pixelAt(compositeImage(t, p), 30, 30); g != 255 {
		t.Fatal("top buffer should win before the move")
	}

	if err := p.MoveBuffer(1, 0); err != nil { // demote buffer 2
		t.Fatal(err)
	}
	if p.BufferAt(1).ID() != 1 {
		t.Fatalf("stack order after move = %d on top", p.BufferAt(1).ID())
	}
	if r, _, _, _ := pixelAt(compositeImage(t, p), 30, 30); r != 255 {
		t.Error("buffer 1 should win after the move")
	}

	seq := p.FindLatestBySession(p.AuthorID())
	if err := p.UndoBySessionEvent(p.AuthorID(), seq); err != nil {
		t.Fatal(err)
	}
	if p.BufferAt(1).ID() != 2 {
		t.Error("undoing the move should restore the stack order")
	}
	if _, g, _, _ := pixelAt(compositeImage(t, p), 30, 30); g != 255 {
		t.Error("composite should reflect the restored order")
	}
}

func TestUndoLatestAcrossBuffers(t *testing.T) {
	p := newTestPicture(t)
	addTestBuffer(t, p, 1)
	addTestBuffer(t, p, 2)
	paint(t, p, 1, 16, 16, Red)   // seq 3
	paint(t, p, 2, 48, 48, Green) // seq 4

	b, i, err := p.UndoLatest()
	if err != nil {
		t.Fatal(err)
	}
	if b.ID() != 2 {
		t.Errorf("UndoLatest() buffer = %d, want 2", b.ID())
	}
	if !b.EventAt(i).Base().Undone() {
		t.Error("returned event should be undone")
	}

	// The next UndoLatest walks back to the earlier event in buffer 1.
	b, _, err = p.UndoLatest()
	if err != nil {
		t.Fatal(err)
	}
	if b.ID() != 1 {
		t.Errorf("second UndoLatest() buffer = %d, want 1", b.ID())
	}
}

func TestUndoLatestEmpty(t *testing.T) {
	p := newTestPicture(t)
	if _, _, err := p.UndoLatest(); err != ErrEventNotFound {
		t.Errorf("UndoLatest() on empty picture = %v, want ErrEventNotFound", err)
	}
}

func TestInsertEventAuthorOrder(t *testing.T) {
	p := newTestPicture(t)
	addTestBuffer(t, p, 1)
	b := p.BufferByID(1)

	// A remote author's events 1 and 3 arrive first, then 2 out of order.
	mk := func(seq int, x float64) Event {
		e := NewBrushEvent(Red, 1, 1, 4, BlendNormal)
		e.AddPoint(x, 20, 1)
		e.AuthorID = 9
		e.AuthorSeq = seq
		return e
	}
	if err := p.InsertEvent(1, mk(1, 10)); err != nil {
		t.Fatal(err)
	}
	if err := p.InsertEvent(1, mk(3, 30)); err != nil {
		t.Fatal(err)
	}
	if err := p.InsertEvent(1, mk(2, 20)); err != nil {
		t.Fatal(err)
	}

	// Log order must keep the author's sequences non-decreasing.
	prev := 0
	for i := 1; i < b.EventCount(); i++ {
		base := b.EventAt(i).Base()
		if base.AuthorID != 9 {
			continue
		}
		if base.AuthorSeq < prev {
			t.Fatalf("sequence %d after %d at log %d", base.AuthorSeq, prev, i)
		}
		prev = base.AuthorSeq
	}
	if i := b.EventIndexBySession(9, 2); i != 2 {
		t.Errorf("seq 2 landed at log %d, want 2", i)
	}
}

func TestPreviewDoesNotEnterLog(t *testing.T) {
	p := newTestPicture(t)
	addTestBuffer(t, p, 1)
	b := p.BufferByID(1)

	e := NewBrushEvent(Blue, 1, 1, 6, BlendNormal)
	e.AddPoint(32, 32, 1)
	if err := p.SetPreviewEvent(1, e); err != nil {
		t.Fatal(err)
	}
	if _, _, bl, a := pixelAt(compositeImage(t, p), 32, 32); bl != 255 || a != 255 {
		t.Error("preview should composite over its buffer")
	}
	if b.EventCount() != 1 {
		t.Errorf("preview must not enter the log, EventCount() = %d", b.EventCount())
	}
	p.ClearPreview()
	if _, _, _, a := pixelAt(compositeImage(t, p), 32, 32); a != 0 {
		t.Error("cleared preview should disappear")
	}
}

func TestCompositeSkipsInvisible(t *testing.T) {
	p := newTestPicture(t)
	addTestBuffer(t, p, 1)
	paint(t, p, 1, 20, 20, Red)
	p.BufferByID(1).SetVisible(false)
	if _, _, _, a := pixelAt(compositeImage(t, p), 20, 20); a != 0 {
		t.Error("invisible buffer should not composite")
	}
	p.BufferByID(1).SetVisible(true)
	if _, _, _, a := pixelAt(compositeImage(t, p), 20, 20); a == 0 {
		t.Error("visible buffer should composite")
	}
}

func TestCompositeRegeneratesFreed(t *testing.T) {
	p := newTestPicture(t)
	addTestBuffer(t, p, 1)
	paint(t, p, 1, 20, 20, Red)
	before := compositeImage(t, p)
	p.BufferByID(1).Free()
	if !bytes.Equal(compositeImage(t, p).Pix, before.Pix) {
		t.Error("composite should regenerate freed buffers")
	}
}

func TestDropBuffer(t *testing.T) {
	p := newTestPicture(t)
	addTestBuffer(t, p, 1)
	addTestBuffer(t, p, 2)
	if err := p.DropBuffer(0); err != nil {
		t.Fatal(err)
	}
	if p.BufferCount() != 1 || p.BufferByID(1) != nil {
		t.Error("dropped buffer should be gone")
	}
	if err := p.DropBuffer(5); err != ErrBufferIndex {
		t.Errorf("DropBuffer(5) = %v, want ErrBufferIndex", err)
	}
}

func TestBlamePixel(t *testing.T) {
	p := newTestPicture(t)
	addTestBuffer(t, p, 1)
	addTestBuffer(t, p, 2)
	paint(t, p, 1, 30, 30, Red)   // seq 3
	paint(t, p, 2, 30, 30, Green) // seq 4

	entries := p.BlamePixel(30, 30)
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	// Frontmost contributor first.
	if entries[0].Buffer.ID() != 2 || entries[1].Buffer.ID() != 1 {
		t.Errorf("blame order = %d,%d, want 2,1", entries[0].Buffer.ID(), entries[1].Buffer.ID())
	}
	if entries[0].Alpha < 0.9 {
		t.Errorf("top entry alpha = %v, want near 1", entries[0].Alpha)
	}

	// Undone events no longer claim the pixel.
	if err := p.UndoBySessionEvent(p.AuthorID(), 4); err != nil {
		t.Fatal(err)
	}
	entries = p.BlamePixel(30, 30)
	if len(entries) != 1 || entries[0].Buffer.ID() != 1 {
		t.Fatalf("after undo entries = %v", entries)
	}

	if got := p.BlamePixel(1, 1); len(got) != 0 {
		t.Errorf("untouched pixel should have no blame, got %d entries", len(got))
	}
	if got := p.BlamePixel(-1, 5); got != nil {
		t.Error("out-of-bounds blame should be nil")
	}
}
