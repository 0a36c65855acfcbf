package easel

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"io"
	"strconv"
	"strings"
)

// SerializationVersion is the current log format version. The version
// number gates backward-compatible field layouts at parse time: version
// 2 added the buffer visibility flag.
const SerializationVersion = 2

// Serialize writes the picture as a line-oriented text log:
//
//	easel <version> <width> <height> <bufferCount>
//	buffer <id> <r> <g> <b> <a> <hasAlpha> <opacity> <visible> <retainUndo> <insertionPoint> <eventCount>
//	<one line per event>
//	...
//
// Colors are 0-255 channel values; geometry is written at the picture's
// native scale and rescaled by the factor given to Parse. Serializing
// the same picture twice yields byte-identical output.
func (p *Picture) Serialize(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "easel %d %d %d %d\n",
		SerializationVersion, p.width, p.height, len(p.buffers)); err != nil {
		return err
	}
	for _, b := range p.buffers {
		if err := b.serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// SerializeString returns the serialized picture as a string.
func (p *Picture) SerializeString() (string, error) {
	var sb strings.Builder
	if err := p.Serialize(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (b *Buffer) serialize(w io.Writer) error {
	cr, cg, cb, ca := b.opts.ClearColor.Bytes()
	retain := 0
	if b.checkpoints.budget > 0 {
		retain = 1
	}
	_, err := fmt.Fprintf(w, "buffer %d %d %d %d %d %d %s %d %d %d %d\n",
		b.id, cr, cg, cb, ca, boolTok(b.opts.HasAlpha), fnum(b.opacity),
		boolTok(b.visible), retain, b.insertionPoint, len(b.events))
	if err != nil {
		return err
	}
	for _, e := range b.events {
		line, err := serializeEvent(e)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// serializeEvent renders one event as a space-separated record. Every
// record starts with (type tag, authorId, authorSeq, undone flag).
func serializeEvent(e Event) (string, error) {
	base := e.Base()
	tok := []string{
		e.Type().String(),
		strconv.Itoa(base.AuthorID),
		strconv.Itoa(base.AuthorSeq),
		strconv.Itoa(boolTok(base.Undone())),
	}
	switch ev := e.(type) {
	case *ScatterEvent:
		tok = append(tok, brushFields(&ev.BrushEvent)...)
	case *BrushEvent:
		tok = append(tok, brushFields(ev)...)
	case *GradientEvent:
		cr, cg, cb, ca := ev.Color.Bytes()
		tok = append(tok,
			strconv.Itoa(int(cr)), strconv.Itoa(int(cg)),
			strconv.Itoa(int(cb)), strconv.Itoa(int(ca)),
			fnum(ev.Opacity), ev.Mode.String(),
			fnum(ev.P0.X), fnum(ev.P0.Y), fnum(ev.P1.X), fnum(ev.P1.Y))
	case *ImageImportEvent:
		data, err := encodeImage(ev)
		if err != nil {
			return "", err
		}
		tok = append(tok, fnum(ev.TopLeft.X), fnum(ev.TopLeft.Y), data)
	case *BufferCreateEvent:
		cr, cg, cb, ca := ev.ClearColor.Bytes()
		tok = append(tok, strconv.Itoa(ev.BufferID),
			strconv.Itoa(int(cr)), strconv.Itoa(int(cg)),
			strconv.Itoa(int(cb)), strconv.Itoa(int(ca)),
			strconv.Itoa(boolTok(ev.HasAlpha)), fnum(ev.Opacity))
	case *BufferRemoveEvent:
		tok = append(tok, strconv.Itoa(ev.BufferID))
	case *BufferMergeEvent:
		tok = append(tok, strconv.Itoa(ev.MergedID), fnum(ev.Opacity))
	case *BufferMoveEvent:
		tok = append(tok, strconv.Itoa(ev.BufferID),
			strconv.Itoa(ev.FromIndex), strconv.Itoa(ev.ToIndex))
	case *HideEvent:
		tok = append(tok, strconv.Itoa(ev.HiddenAuthorID), strconv.Itoa(ev.HiddenSeq))
	default:
		return "", fmt.Errorf("easel: cannot serialize event type %s", e.Type())
	}
	return strings.Join(tok, " "), nil
}

func brushFields(ev *BrushEvent) []string {
	cr, cg, cb, ca := ev.Color.Bytes()
	tok := []string{
		strconv.Itoa(int(cr)), strconv.Itoa(int(cg)),
		strconv.Itoa(int(cb)), strconv.Itoa(int(ca)),
		fnum(ev.Opacity), fnum(ev.Flow), fnum(ev.Radius),
		ev.Mode.String(), fnum(ev.Rotation),
		strconv.Itoa(len(ev.points)),
	}
	for _, pt := range ev.points {
		tok = append(tok, fnum(pt.X), fnum(pt.Y), fnum(pt.Pressure))
	}
	return tok
}

// encodeImage renders an image-import payload as base64 PNG, which keeps
// the log line-oriented.
func encodeImage(ev *ImageImportEvent) (string, error) {
	if ev.Image == nil {
		return "-", nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, ev.Image); err != nil {
		return "", fmt.Errorf("easel: encoding image event: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// fnum formats a float with the shortest round-tripping representation,
// so serializing twice is byte-identical.
func fnum(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func boolTok(b bool) int {
	if b {
		return 1
	}
	return 0
}
