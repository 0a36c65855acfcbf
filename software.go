package easel

import (
	"image"
	"math"
)

// SoftwareBackend creates CPU-backed bitmaps and rasterizers. It is the
// default backend and the reference for pixel-exactness tests.
type SoftwareBackend struct{}

// Name returns the backend identifier.
func (SoftwareBackend) Name() string { return "software" }

// NewBitmap creates a CPU bitmap cleared to opts.ClearColor.
func (SoftwareBackend) NewBitmap(width, height int, opts BitmapOptions) (Bitmap, error) {
	return NewSoftwareBitmap(width, height, opts)
}

// NewRasterizer creates a CPU coverage mask.
func (SoftwareBackend) NewRasterizer(width, height int) (Rasterizer, error) {
	return NewSoftwareRasterizer(width, height), nil
}

// SoftwareRasterizer rasterizes drawable events into a CPU coverage
// buffer. The brush tip is round, so the rotation argument of FillCircle
// is ignored.
type SoftwareRasterizer struct {
	width  int
	height int
	data   []float32
	clip   Rect
}

// NewSoftwareRasterizer creates a rasterizer with the given dimensions.
func NewSoftwareRasterizer(width, height int) *SoftwareRasterizer {
	return &SoftwareRasterizer{
		width:  width,
		height: height,
		data:   make([]float32, width*height),
		clip:   NewRect(0, 0, float64(width), float64(height)),
	}
}

// Width returns the mask width in pixels.
func (r *SoftwareRasterizer) Width() int { return r.width }

// Height returns the mask height in pixels.
func (r *SoftwareRasterizer) Height() int { return r.height }

// SetClip restricts following draws to the given rectangle.
func (r *SoftwareRasterizer) SetClip(clip Rect) {
	full := NewRect(0, 0, float64(r.width), float64(r.height))
	r.clip = full.Intersect(clip)
}

// Clear zeroes the coverage inside the current clip rectangle.
func (r *SoftwareRasterizer) Clear() {
	if r.data == nil {
		return
	}
	x0, y0, x1, y1, ok := r.clip.IntBounds(r.width, r.height)
	if !ok {
		return
	}
	for y := y0; y < y1; y++ {
		row := r.data[y*r.width : (y+1)*r.width]
		for x := x0; x < x1; x++ {
			row[x] = 0
		}
	}
}

// FillCircle composites a filled circle with flow accumulation and an
// antialiased edge.
func (r *SoftwareRasterizer) FillCircle(cx, cy, radius, alpha, _ float64) {
	if r.data == nil || alpha <= 0 || radius <= 0 {
		return
	}
	box := NewRect(cx-radius-1, cy-radius-1, 2*radius+2, 2*radius+2).Intersect(r.clip)
	x0, y0, x1, y1, ok := box.IntBounds(r.width, r.height)
	if !ok {
		return
	}
	for y := y0; y < y1; y++ {
		fy := float64(y) + 0.5
		for x := x0; x < x1; x++ {
			fx := float64(x) + 0.5
			dist := math.Hypot(fx-cx, fy-cy)
			coverage := clamp01(radius - dist + 0.5)
			if coverage <= 0 {
				continue
			}
			i := y*r.width + x
			v := float64(r.data[i])
			add := alpha * coverage
			r.data[i] = float32(v + add*(1-v))
		}
	}
}

// LinearGradient fills the clip rectangle with coverage ramping from 0 at
// p0 to 1 at p1.
func (r *SoftwareRasterizer) LinearGradient(p0, p1 Point) {
	if r.data == nil {
		return
	}
	x0, y0, x1, y1, ok := r.clip.IntBounds(r.width, r.height)
	if !ok {
		return
	}
	d := p1.Sub(p0)
	lenSq := d.X*d.X + d.Y*d.Y
	for y := y0; y < y1; y++ {
		fy := float64(y) + 0.5
		for x := x0; x < x1; x++ {
			var t float64
			if lenSq > 0 {
				fx := float64(x) + 0.5
				t = clamp01(((fx-p0.X)*d.X + (fy-p0.Y)*d.Y) / lenSq)
			} else {
				t = 1
			}
			r.data[y*r.width+x] = float32(t)
		}
	}
}

// Pixel returns the coverage at a pixel center.
func (r *SoftwareRasterizer) Pixel(x, y int) float64 {
	if r.data == nil || x < 0 || x >= r.width || y < 0 || y >= r.height {
		return 0
	}
	return float64(r.data[y*r.width+x])
}

// Free releases the mask storage.
func (r *SoftwareRasterizer) Free() {
	r.data = nil
}

// SoftwareBitmap is the CPU implementation of Bitmap. Pixels are stored
// unmultiplied in RGBA byte order.
type SoftwareBitmap struct {
	width  int
	height int
	opts   BitmapOptions
	data   []uint8
}

// NewSoftwareBitmap creates a CPU bitmap cleared to opts.ClearColor.
func NewSoftwareBitmap(width, height int, opts BitmapOptions) (*SoftwareBitmap, error) {
	b := &SoftwareBitmap{
		width:  width,
		height: height,
		opts:   opts,
		data:   make([]uint8, width*height*4),
	}
	b.Clear(b.fullRect(), opts.ClearColor)
	return b, nil
}

func (b *SoftwareBitmap) fullRect() Rect {
	return NewRect(0, 0, float64(b.width), float64(b.height))
}

// Data returns the backing pixel slice in RGBA byte order, shared rather
// than copied, or nil after Free. GPU backends upload changed regions
// straight from it.
func (b *SoftwareBitmap) Data() []uint8 { return b.data }

// Width returns the bitmap width in pixels.
func (b *SoftwareBitmap) Width() int { return b.width }

// Height returns the bitmap height in pixels.
func (b *SoftwareBitmap) Height() int { return b.height }

// Opts returns the creation options.
func (b *SoftwareBitmap) Opts() BitmapOptions { return b.opts }

// Clear resets the clipped region to the given color.
func (b *SoftwareBitmap) Clear(clip Rect, c RGBA) {
	if b.data == nil {
		return
	}
	if !b.opts.HasAlpha {
		c.A = 1
	}
	cr, cg, cb, ca := c.Bytes()
	x0, y0, x1, y1, ok := clip.IntBounds(b.width, b.height)
	if !ok {
		return
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := (y*b.width + x) * 4
			b.data[i+0] = cr
			b.data[i+1] = cg
			b.data[i+2] = cb
			b.data[i+3] = ca
		}
	}
}

// setPixel stores one unmultiplied pixel.
func (b *SoftwareBitmap) setPixel(x, y int, c RGBA) {
	i := (y*b.width + x) * 4
	b.data[i+0] = uint8(clamp255(c.R * 255))
	b.data[i+1] = uint8(clamp255(c.G * 255))
	b.data[i+2] = uint8(clamp255(c.B * 255))
	if b.opts.HasAlpha {
		b.data[i+3] = uint8(clamp255(c.A * 255))
	} else {
		b.data[i+3] = 255
	}
}

// PixelRGBA returns one unmultiplied pixel.
func (b *SoftwareBitmap) PixelRGBA(x, y int) RGBA {
	if b.data == nil || x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Transparent
	}
	i := (y*b.width + x) * 4
	return RGBA{
		R: float64(b.data[i+0]) / 255,
		G: float64(b.data[i+1]) / 255,
		B: float64(b.data[i+2]) / 255,
		A: float64(b.data[i+3]) / 255,
	}
}

// DrawMask composites a coverage mask into the clipped region.
func (b *SoftwareBitmap) DrawMask(clip Rect, mask Rasterizer, c RGBA, opacity float64, mode BlendMode) {
	if b.data == nil || opacity <= 0 {
		return
	}
	// Erase against an alpha-less bitmap repaints the clear color.
	if mode == BlendErase && !b.opts.HasAlpha {
		mode = BlendNormal
		c = b.opts.ClearColor
	}
	x0, y0, x1, y1, ok := clip.IntBounds(b.width, b.height)
	if !ok {
		return
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			a := mask.Pixel(x, y) * opacity * c.A
			if a <= 0 {
				continue
			}
			base := b.PixelRGBA(x, y)
			b.setPixel(x, y, mode.compose(base, c.WithAlpha(a)))
		}
	}
}

// DrawBitmap composites another bitmap into the clipped region.
func (b *SoftwareBitmap) DrawBitmap(clip Rect, src Bitmap, opacity float64) {
	if b.data == nil || src == nil || opacity <= 0 {
		return
	}
	x0, y0, x1, y1, ok := clip.IntBounds(b.width, b.height)
	if !ok {
		return
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			top := src.PixelRGBA(x, y)
			a := top.A * opacity
			if a <= 0 {
				continue
			}
			base := b.PixelRGBA(x, y)
			b.setPixel(x, y, BlendNormal.compose(base, top.WithAlpha(a)))
		}
	}
}

// DrawImage composites a decoded image with its top-left corner at the
// given point.
func (b *SoftwareBitmap) DrawImage(clip Rect, img *image.RGBA, at Point) {
	if b.data == nil || img == nil {
		return
	}
	bounds := img.Bounds()
	area := NewRect(at.X, at.Y, float64(bounds.Dx()), float64(bounds.Dy())).Intersect(clip)
	x0, y0, x1, y1, ok := area.IntBounds(b.width, b.height)
	if !ok {
		return
	}
	offX := int(math.Floor(at.X))
	offY := int(math.Floor(at.Y))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			top := FromColor(img.At(bounds.Min.X+x-offX, bounds.Min.Y+y-offY))
			if top.A <= 0 {
				continue
			}
			base := b.PixelRGBA(x, y)
			b.setPixel(x, y, BlendNormal.compose(base, top))
		}
	}
}

// softwareSnapshot is a whole-bitmap byte copy.
type softwareSnapshot struct {
	data []uint8
}

// MemBytes returns the snapshot size.
func (s *softwareSnapshot) MemBytes() int { return len(s.data) }

// Free releases the snapshot storage.
func (s *softwareSnapshot) Free() { s.data = nil }

// Snapshot captures the whole bitmap.
func (b *SoftwareBitmap) Snapshot() (Snapshot, error) {
	if b.data == nil {
		return nil, ErrBitmapFreed
	}
	data := make([]uint8, len(b.data))
	copy(data, b.data)
	return &softwareSnapshot{data: data}, nil
}

// Restore resets the clipped region from a snapshot.
func (b *SoftwareBitmap) Restore(s Snapshot, clip Rect) error {
	snap, ok := s.(*softwareSnapshot)
	if !ok || snap.data == nil {
		return ErrSnapshotUnavailable
	}
	if b.data == nil {
		return ErrBitmapFreed
	}
	x0, y0, x1, y1, ok := clip.IntBounds(b.width, b.height)
	if !ok {
		return nil
	}
	for y := y0; y < y1; y++ {
		i := (y*b.width + x0) * 4
		j := (y*b.width + x1) * 4
		copy(b.data[i:j], snap.data[i:j])
	}
	return nil
}

// UpdateSnapshot copies the clipped region of the current contents into
// an existing snapshot.
func (b *SoftwareBitmap) UpdateSnapshot(s Snapshot, clip Rect) error {
	snap, ok := s.(*softwareSnapshot)
	if !ok || snap.data == nil {
		return ErrSnapshotUnavailable
	}
	if b.data == nil {
		return ErrBitmapFreed
	}
	x0, y0, x1, y1, ok := clip.IntBounds(b.width, b.height)
	if !ok {
		return nil
	}
	for y := y0; y < y1; y++ {
		i := (y*b.width + x0) * 4
		j := (y*b.width + x1) * 4
		copy(snap.data[i:j], b.data[i:j])
	}
	return nil
}

// Image returns a copy of the current contents.
func (b *SoftwareBitmap) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			img.Set(x, y, b.PixelRGBA(x, y).Color())
		}
	}
	return img
}

// Free releases the pixel storage.
func (b *SoftwareBitmap) Free() {
	b.data = nil
}
