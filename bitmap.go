package easel

import (
	"errors"
	"image"
)

// ErrBitmapFreed is returned when operating on a bitmap whose pixel
// storage has been released.
var ErrBitmapFreed = errors.New("easel: bitmap has been freed")

// ErrSnapshotUnavailable is returned when a snapshot cannot be allocated
// or has been invalidated and holds no pixel data.
var ErrSnapshotUnavailable = errors.New("easel: snapshot data unavailable")

// BitmapOptions configures a bitmap at creation time.
type BitmapOptions struct {
	// ClearColor is the color the bitmap resets to. For an alpha-less
	// bitmap it is also what "erase" paints.
	ClearColor RGBA

	// HasAlpha selects whether the bitmap stores an alpha channel.
	// Without one, the bitmap is always fully opaque and erasing is
	// redefined as painting the clear color.
	HasAlpha bool
}

// Bitmap is the pixel-storage contract for a buffer's live state and its
// checkpoints. Two interchangeable implementations exist: a CPU surface
// (SoftwareBitmap) and a GPU-resident surface (backend/gpu).
//
// All drawing is scoped to a clip rectangle; pixels outside it are never
// touched.
type Bitmap interface {
	// Width returns the bitmap width in pixels.
	Width() int

	// Height returns the bitmap height in pixels.
	Height() int

	// Opts returns the creation options.
	Opts() BitmapOptions

	// Clear resets the clipped region to the given color. An alpha-less
	// bitmap stores it fully opaque.
	Clear(clip Rect, c RGBA)

	// DrawMask composites a rasterized coverage mask into the clipped
	// region using the given color, opacity and blend mode.
	DrawMask(clip Rect, mask Rasterizer, c RGBA, opacity float64, mode BlendMode)

	// DrawBitmap composites another bitmap into the clipped region at
	// the given opacity with normal blending.
	DrawBitmap(clip Rect, src Bitmap, opacity float64)

	// DrawImage composites a decoded image with its top-left corner at
	// the given point, restricted to the clip rectangle.
	DrawImage(clip Rect, img *image.RGBA, at Point)

	// PixelRGBA returns one unmultiplied pixel. Out-of-bounds reads
	// return Transparent.
	PixelRGBA(x, y int) RGBA

	// Snapshot captures the whole bitmap. Returns a capacity failure if
	// the snapshot cannot be allocated.
	Snapshot() (Snapshot, error)

	// Restore resets the clipped region from a snapshot taken from the
	// same bitmap. Pixels outside the clip keep their current contents.
	Restore(s Snapshot, clip Rect) error

	// UpdateSnapshot copies the clipped region of the current contents
	// into an existing snapshot, repairing stale checkpoint data without
	// a fresh whole-bitmap capture.
	UpdateSnapshot(s Snapshot, clip Rect) error

	// Image returns a copy of the current contents. GPU implementations
	// may need a readback.
	Image() *image.RGBA

	// Free releases the pixel storage. A freed bitmap ignores draws and
	// reads as Transparent until the owning buffer regenerates it.
	Free()
}

// Snapshot is an opaque whole-bitmap capture held by the checkpoint
// cache.
type Snapshot interface {
	// MemBytes returns the approximate memory held by the snapshot.
	MemBytes() int

	// Free releases the snapshot storage.
	Free()
}

// Backend creates the pixel resources a Picture draws with. The software
// implementation lives in this package; backend/ adds a registry and a
// GPU-resident implementation.
type Backend interface {
	// Name returns the backend identifier (e.g. "software", "gpu").
	Name() string

	// NewBitmap creates a bitmap cleared to opts.ClearColor.
	NewBitmap(width, height int, opts BitmapOptions) (Bitmap, error)

	// NewRasterizer creates a coverage mask sized for the picture.
	NewRasterizer(width, height int) (Rasterizer, error)
}
