package easel

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"
)

var (
	ErrBadHeader          = errors.New("easel: malformed serialization header")
	ErrUnsupportedVersion = errors.New("easel: unsupported serialization version")
	ErrBadRecord          = errors.New("easel: malformed serialized record")
)

// Parse reads a serialized picture. Geometry is rescaled by scale (1 for
// native size): event coordinates and radii go through each event's
// Scale, and the picture dimensions are scaled to match.
//
// Unknown or malformed event records are recoverable: the record is
// skipped with a diagnostic and loading continues, so logs written by
// newer versions still open. A malformed header or buffer line is not
// recoverable.
//
// After loading, every buffer is fully replayed, sources before merge
// targets, so the bitmaps match the logs.
func Parse(r io.Reader, scale float64, opts ...PictureOption) (*Picture, error) {
	if scale <= 0 {
		scale = 1
	}
	sc := bufio.NewScanner(r)
	// Image records carry base64 PNG payloads on one line.
	sc.Buffer(make([]byte, 0, 64*1024), 64<<20)

	fields, err := scanLine(sc)
	if err != nil {
		return nil, ErrBadHeader
	}
	if len(fields) != 5 || fields[0] != "easel" {
		return nil, ErrBadHeader
	}
	version, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, ErrBadHeader
	}
	if version < 1 || version > SerializationVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	width, err1 := strconv.Atoi(fields[2])
	height, err2 := strconv.Atoi(fields[3])
	bufferCount, err3 := strconv.Atoi(fields[4])
	if err1 != nil || err2 != nil || err3 != nil || bufferCount < 0 {
		return nil, ErrBadHeader
	}

	p, err := NewPicture(scaleDim(width, scale), scaleDim(height, scale), opts...)
	if err != nil {
		return nil, err
	}
	for k := 0; k < bufferCount; k++ {
		if err := p.parseBuffer(sc, scale, version); err != nil {
			return nil, err
		}
	}
	p.linkAndReplay()
	return p, nil
}

// ParseString reads a serialized picture from a string.
func ParseString(s string, scale float64, opts ...PictureOption) (*Picture, error) {
	return Parse(strings.NewReader(s), scale, opts...)
}

func scaleDim(d int, scale float64) int {
	return int(math.Round(float64(d) * scale))
}

func scanLine(sc *bufio.Scanner) ([]string, error) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		return strings.Fields(line), nil
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.ErrUnexpectedEOF
}

// parseBuffer reads one buffer header and its event records, appending
// the loaded buffer to the stack. The bitmap stays cleared; replay
// happens once all buffers exist so merge sources resolve.
func (p *Picture) parseBuffer(sc *bufio.Scanner, scale float64, version int) error {
	fields, err := scanLine(sc)
	if err != nil {
		return fmt.Errorf("%w: missing buffer line", ErrBadRecord)
	}
	fs := newFieldScanner(fields)
	if fs.nextStr() != "buffer" {
		return fmt.Errorf("%w: expected buffer line", ErrBadRecord)
	}
	id := fs.nextInt()
	// Clear color and alpha flag also live in the creation event, which
	// is authoritative; the header copies are consumed and discarded.
	_ = fs.nextColor()
	_ = fs.nextBool()
	opacity := fs.nextFloat()
	// Version 1 predates the visibility flag; those buffers load visible.
	visible := true
	if version >= 2 {
		visible = fs.nextBool()
	}
	retain := fs.nextBool()
	insertionPoint := fs.nextInt()
	eventCount := fs.nextInt()
	if fs.err != nil || eventCount < 1 {
		return fmt.Errorf("%w: buffer %d header", ErrBadRecord, id)
	}

	var events []Event
	for k := 0; k < eventCount; k++ {
		line, err := scanLine(sc)
		if err != nil {
			return fmt.Errorf("%w: buffer %d truncated", ErrBadRecord, id)
		}
		e, err := parseEvent(line)
		if err != nil {
			// Recoverable: one bad or unknown record never sinks the
			// rest of the log.
			Logger().Warn("skipping serialized event", "buffer", id, "record", k, "err", err)
			continue
		}
		e.Scale(scale)
		events = append(events, e)
	}
	create, ok := firstEvent(events).(*BufferCreateEvent)
	if !ok {
		Logger().Warn("skipping buffer without creation event", "buffer", id)
		return nil
	}
	budget := 0
	if retain {
		budget = p.checkpointBudget
	}
	b, err := NewBuffer(p.backend, p.rast, p.width, p.height, create, budget)
	if err != nil {
		return err
	}
	b.pic = p
	b.events = events
	b.opacity = clamp01(opacity)
	b.visible = visible
	if insertionPoint < 1 || insertionPoint > len(events) {
		insertionPoint = len(events)
	}
	b.insertionPoint = insertionPoint
	p.buffers = append(p.buffers, b)
	p.touched(b)
	return nil
}

func firstEvent(events []Event) Event {
	if len(events) == 0 {
		return nil
	}
	return events[0]
}

// linkAndReplay resolves merge references, rebuilds the side-effect
// counters from the logs, then replays every buffer with merge sources
// replayed before their targets.
func (p *Picture) linkAndReplay() {
	for _, b := range p.buffers {
		for _, e := range b.events[1:] {
			m, isMerge := e.(*BufferMergeEvent)
			if isMerge {
				m.merged = p.BufferByID(m.MergedID)
				if m.merged == nil {
					Logger().Warn("merge source missing", "buffer", b.id, "merged", m.MergedID)
				}
			}
			if e.Base().Undone() {
				continue
			}
			switch ev := e.(type) {
			case *BufferRemoveEvent:
				b.removeCount++
			case *BufferMergeEvent:
				if ev.merged != nil && ev.merged != b {
					ev.merged.mergedTo = b
				}
			case *HideEvent:
				if t := b.EventIndexBySession(ev.HiddenAuthorID, ev.HiddenSeq); t >= 0 {
					b.events[t].Base().adjustHide(1)
				}
			}
		}
	}

	done := make(map[*Buffer]bool, len(p.buffers))
	var replay func(b *Buffer)
	replay = func(b *Buffer) {
		if done[b] {
			return
		}
		done[b] = true
		for _, e := range b.events {
			if m, ok := e.(*BufferMergeEvent); ok && !m.Base().Undone() && m.merged != nil && m.merged != b {
				replay(m.merged)
			}
		}
		b.bitmap.Clear(b.fullRect(), b.opts.ClearColor)
		b.playbackStartingFrom(0)
	}
	for _, b := range p.buffers {
		replay(b)
	}
}

// parseEvent decodes one serialized event record.
func parseEvent(fields []string) (Event, error) {
	fs := newFieldScanner(fields)
	tag := fs.nextStr()
	authorID := fs.nextInt()
	authorSeq := fs.nextInt()
	undone := fs.nextBool()
	if fs.err != nil {
		return nil, fmt.Errorf("%w: event prefix", ErrBadRecord)
	}

	var e Event
	switch tag {
	case "brush":
		ev := NewBrushEvent(Transparent, 0, 0, 0, BlendNormal)
		fs.brushInto(ev)
		e = ev
	case "scatter":
		ev := NewScatterEvent(Transparent, 0, 0, 0, BlendNormal)
		fs.brushInto(&ev.BrushEvent)
		e = ev
	case "gradient":
		ev := &GradientEvent{}
		ev.Color = fs.nextColor()
		ev.Opacity = fs.nextFloat()
		ev.Mode = fs.nextMode()
		ev.P0 = Pt(fs.nextFloat(), fs.nextFloat())
		ev.P1 = Pt(fs.nextFloat(), fs.nextFloat())
		e = ev
	case "image":
		at := Pt(fs.nextFloat(), fs.nextFloat())
		img, err := decodeImage(fs.nextStr())
		if err != nil {
			return nil, err
		}
		e = NewImageImportEvent(img, at)
	case "create":
		bufferID := fs.nextInt()
		clearColor := fs.nextColor()
		hasAlpha := fs.nextBool()
		opacity := fs.nextFloat()
		e = NewBufferCreateEvent(bufferID, clearColor, hasAlpha, opacity)
	case "remove":
		e = NewBufferRemoveEvent(fs.nextInt())
	case "merge":
		e = NewBufferMergeEvent(fs.nextInt(), fs.nextFloat())
	case "move":
		e = NewBufferMoveEvent(fs.nextInt(), fs.nextInt(), fs.nextInt())
	case "hide":
		e = NewHideEvent(fs.nextInt(), fs.nextInt())
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", ErrBadRecord, tag)
	}
	if fs.err != nil {
		return nil, fmt.Errorf("%w: %s event fields", ErrBadRecord, tag)
	}
	base := e.Base()
	base.AuthorID = authorID
	base.AuthorSeq = authorSeq
	base.setUndone(undone)
	return e, nil
}

// decodeImage reverses encodeImage. "-" stands for a nil payload.
func decodeImage(data string) (*image.RGBA, error) {
	if data == "-" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: image payload: %v", ErrBadRecord, err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: image payload: %v", ErrBadRecord, err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// fieldScanner pulls typed tokens off a record, latching the first
// error so call sites stay flat.
type fieldScanner struct {
	tok []string
	i   int
	err error
}

func newFieldScanner(tok []string) *fieldScanner {
	return &fieldScanner{tok: tok}
}

func (f *fieldScanner) nextStr() string {
	if f.err != nil {
		return ""
	}
	if f.i >= len(f.tok) {
		f.err = io.ErrUnexpectedEOF
		return ""
	}
	s := f.tok[f.i]
	f.i++
	return s
}

func (f *fieldScanner) nextInt() int {
	s := f.nextStr()
	if f.err != nil {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f.err = err
	}
	return v
}

func (f *fieldScanner) nextFloat() float64 {
	s := f.nextStr()
	if f.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.err = err
	}
	return v
}

func (f *fieldScanner) nextBool() bool {
	return f.nextInt() != 0
}

// nextColor reads four 0-255 channel values.
func (f *fieldScanner) nextColor() RGBA {
	r := f.nextInt()
	g := f.nextInt()
	b := f.nextInt()
	a := f.nextInt()
	return RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

func (f *fieldScanner) nextMode() BlendMode {
	s := f.nextStr()
	if f.err != nil {
		return BlendNormal
	}
	m, err := ParseBlendMode(s)
	if err != nil {
		f.err = err
	}
	return m
}

// brushInto fills the brush fields shared by stroke and scatter records.
func (f *fieldScanner) brushInto(ev *BrushEvent) {
	ev.Color = f.nextColor()
	ev.Opacity = f.nextFloat()
	ev.Flow = f.nextFloat()
	ev.Radius = f.nextFloat()
	ev.Mode = f.nextMode()
	ev.Rotation = f.nextFloat()
	n := f.nextInt()
	for k := 0; k < n && f.err == nil; k++ {
		ev.AddPoint(f.nextFloat(), f.nextFloat(), f.nextFloat())
	}
}
