//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/easel"
)

// Backend creates GPU-resident bitmaps sharing one device.
type Backend struct {
	dev *Device
}

// New opens a device and returns a backend bound to it.
func New() (*Backend, error) {
	dev, err := Open()
	if err != nil {
		return nil, err
	}
	return &Backend{dev: dev}, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "gpu" }

// Close releases the shared device. All bitmaps must be freed first.
func (b *Backend) Close() {
	if b.dev != nil {
		b.dev.Close()
		b.dev = nil
	}
}

// NewBitmap creates a GPU-resident bitmap cleared to opts.ClearColor.
func (b *Backend) NewBitmap(width, height int, opts easel.BitmapOptions) (easel.Bitmap, error) {
	return newBitmap(b.dev, width, height, opts)
}

// NewRasterizer creates a CPU coverage mask. Masks are sampled per pixel
// by the blend loop, which runs on the shadow, so keeping them in host
// memory avoids a readback per event.
func (b *Backend) NewRasterizer(width, height int) (easel.Rasterizer, error) {
	return easel.NewSoftwareRasterizer(width, height), nil
}

// Bitmap keeps the authoritative pixels in a GPU storage buffer with a
// CPU shadow for per-pixel blend math. Draws mutate the shadow and
// upload the touched region; snapshots and restores are buffer-to-buffer
// copies on the device.
type Bitmap struct {
	dev     *Device
	shadow  *easel.SoftwareBitmap
	storage hal.Buffer
	staging hal.Buffer
	width   int
	height  int
	size    uint64
}

func newBitmap(dev *Device, width, height int, opts easel.BitmapOptions) (*Bitmap, error) {
	shadow, err := easel.NewSoftwareBitmap(width, height, opts)
	if err != nil {
		return nil, err
	}
	size := uint64(width * height * 4)
	storage, err := dev.createBuffer("easel_pixels", size,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	staging, err := dev.createBuffer("easel_staging", size,
		gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
	if err != nil {
		dev.device.DestroyBuffer(storage)
		return nil, err
	}
	bm := &Bitmap{
		dev:     dev,
		shadow:  shadow,
		storage: storage,
		staging: staging,
		width:   width,
		height:  height,
		size:    size,
	}
	dev.queue.WriteBuffer(storage, 0, shadow.Data())
	return bm, nil
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int { return b.width }

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int { return b.height }

// Opts returns the creation options.
func (b *Bitmap) Opts() easel.BitmapOptions { return b.shadow.Opts() }

// regions lists the per-row buffer spans covering a clip rectangle, with
// identical source and destination offsets.
func (b *Bitmap) regions(clip easel.Rect) []hal.BufferCopy {
	x0, y0, x1, y1, ok := clip.IntBounds(b.width, b.height)
	if !ok {
		return nil
	}
	out := make([]hal.BufferCopy, 0, y1-y0)
	for y := y0; y < y1; y++ {
		off := uint64((y*b.width + x0) * 4)
		out = append(out, hal.BufferCopy{SrcOffset: off, DstOffset: off, Size: uint64((x1 - x0) * 4)})
	}
	return out
}

// upload pushes the clipped region of the shadow into the storage
// buffer.
func (b *Bitmap) upload(clip easel.Rect) {
	if b.storage == nil {
		return
	}
	data := b.shadow.Data()
	for _, r := range b.regions(clip) {
		b.dev.queue.WriteBuffer(b.storage, r.DstOffset, data[r.SrcOffset:r.SrcOffset+r.Size])
	}
}

// Clear resets the clipped region to the given color.
func (b *Bitmap) Clear(clip easel.Rect, c easel.RGBA) {
	b.shadow.Clear(clip, c)
	b.upload(clip)
}

// DrawMask composites a coverage mask into the clipped region.
func (b *Bitmap) DrawMask(clip easel.Rect, mask easel.Rasterizer, c easel.RGBA, opacity float64, mode easel.BlendMode) {
	b.shadow.DrawMask(clip, mask, c, opacity, mode)
	b.upload(clip)
}

// DrawBitmap composites another bitmap into the clipped region.
func (b *Bitmap) DrawBitmap(clip easel.Rect, src easel.Bitmap, opacity float64) {
	b.shadow.DrawBitmap(clip, src, opacity)
	b.upload(clip)
}

// DrawImage composites a decoded image with its top-left corner at the
// given point.
func (b *Bitmap) DrawImage(clip easel.Rect, img *image.RGBA, at easel.Point) {
	b.shadow.DrawImage(clip, img, at)
	b.upload(clip)
}

// PixelRGBA returns one unmultiplied pixel from the shadow.
func (b *Bitmap) PixelRGBA(x, y int) easel.RGBA {
	return b.shadow.PixelRGBA(x, y)
}

// Snapshot captures the storage buffer into a fresh device buffer. The
// pixels never leave the GPU.
func (b *Bitmap) Snapshot() (easel.Snapshot, error) {
	if b.storage == nil {
		return nil, easel.ErrBitmapFreed
	}
	buf, err := b.dev.createBuffer("easel_snapshot", b.size,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	full := easel.NewRect(0, 0, float64(b.width), float64(b.height))
	if err := b.dev.copyBuffer(b.storage, buf, b.regions(full)); err != nil {
		b.dev.device.DestroyBuffer(buf)
		return nil, err
	}
	return &snapshot{dev: b.dev, buf: buf, size: b.size}, nil
}

// Restore copies the clipped region of a snapshot back into the storage
// buffer on the device, then reads the region back into the shadow.
func (b *Bitmap) Restore(s easel.Snapshot, clip easel.Rect) error {
	snap, ok := s.(*snapshot)
	if !ok || snap.buf == nil {
		return easel.ErrSnapshotUnavailable
	}
	if b.storage == nil {
		return easel.ErrBitmapFreed
	}
	regions := b.regions(clip)
	if err := b.dev.copyBuffer(snap.buf, b.storage, regions); err != nil {
		return err
	}
	return b.readback(regions)
}

// UpdateSnapshot copies the clipped region of the storage buffer into an
// existing snapshot.
func (b *Bitmap) UpdateSnapshot(s easel.Snapshot, clip easel.Rect) error {
	snap, ok := s.(*snapshot)
	if !ok || snap.buf == nil {
		return easel.ErrSnapshotUnavailable
	}
	if b.storage == nil {
		return easel.ErrBitmapFreed
	}
	return b.dev.copyBuffer(b.storage, snap.buf, b.regions(clip))
}

// readback refreshes the shadow from the storage buffer through the
// staging buffer.
func (b *Bitmap) readback(regions []hal.BufferCopy) error {
	if err := b.dev.copyBuffer(b.storage, b.staging, regions); err != nil {
		return err
	}
	data := b.shadow.Data()
	for _, r := range regions {
		if err := b.dev.queue.ReadBuffer(b.staging, r.DstOffset, data[r.DstOffset:r.DstOffset+r.Size]); err != nil {
			return fmt.Errorf("gpu: readback: %w", err)
		}
	}
	return nil
}

// Image returns a copy of the current contents from the shadow.
func (b *Bitmap) Image() *image.RGBA {
	return b.shadow.Image()
}

// Free releases the device buffers and the shadow.
func (b *Bitmap) Free() {
	if b.storage != nil {
		b.dev.device.DestroyBuffer(b.storage)
		b.storage = nil
	}
	if b.staging != nil {
		b.dev.device.DestroyBuffer(b.staging)
		b.staging = nil
	}
	b.shadow.Free()
}

// snapshot is a whole-bitmap capture held in a device buffer.
type snapshot struct {
	dev  *Device
	buf  hal.Buffer
	size uint64
}

// MemBytes returns the snapshot size. The memory is GPU-resident but
// still counted against the checkpoint budget.
func (s *snapshot) MemBytes() int { return int(s.size) }

// Free destroys the device buffer.
func (s *snapshot) Free() {
	if s.buf != nil {
		s.dev.device.DestroyBuffer(s.buf)
		s.buf = nil
	}
}
