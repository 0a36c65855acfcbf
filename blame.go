package easel

// BlameEntry names one drawable event contributing to a pixel, with the
// alpha it would apply in isolation.
type BlameEntry struct {
	Buffer     *Buffer
	EventIndex int
	Event      Event
	Alpha      float64
}

// blameThreshold is the minimum isolated alpha for an event to count as
// touching a pixel. Antialiased edges graze many pixels they barely
// color.
const blameThreshold = 1.0 / 255

// BlamePixel reports which events touch the pixel at (x, y): top to
// bottom over the buffer stack, front to back within each buffer's log,
// rasterizing each active drawable in isolation and sampling its
// coverage at the pixel. Absent and invisible buffers are excluded. The
// result is ordered front to back.
func (p *Picture) BlamePixel(x, y int) []BlameEntry {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return nil
	}
	var out []BlameEntry
	pixel := NewRect(float64(x), float64(y), 1, 1)
	for bi := len(p.buffers) - 1; bi >= 0; bi-- {
		b := p.buffers[bi]
		if b.Absent() || !b.visible {
			continue
		}
		for i := len(b.events) - 1; i >= 0; i-- {
			e := b.events[i]
			if !e.Base().active() {
				continue
			}
			d, ok := e.(Drawable)
			if !ok {
				continue
			}
			if !d.BoundingBox(p.width, p.height).Intersects(pixel) {
				continue
			}
			p.rast.SetClip(pixel)
			p.rast.Clear()
			d.Draw(p.rast)
			st := d.Style()
			alpha := p.rast.Pixel(x, y) * st.Opacity * st.Color.A
			if alpha < blameThreshold {
				continue
			}
			out = append(out, BlameEntry{
				Buffer:     b,
				EventIndex: i,
				Event:      e,
				Alpha:      alpha,
			})
		}
	}
	return out
}
