package easel

// Rasterizer converts one drawable event into a scalar coverage mask.
// The engine is indifferent to where the mask lives (CPU memory, GPU
// texture); the contract is only that calls made after SetClip affect
// exactly the clipped region.
//
// A single rasterizer instance is shared by all buffers of a picture and
// reused between events, so implementations should make Clear cheap
// inside a small clip rectangle.
type Rasterizer interface {
	// Width returns the mask width in pixels.
	Width() int

	// Height returns the mask height in pixels.
	Height() int

	// SetClip restricts all following draws to the given rectangle.
	SetClip(r Rect)

	// Clear zeroes the coverage inside the current clip rectangle.
	Clear()

	// FillCircle composites a filled circle of the given radius into the
	// mask with flow-style accumulation: each stamp contributes
	// alpha*(1-existing). Rotation orients non-round brush tips;
	// implementations with round tips may ignore it.
	FillCircle(x, y, radius, alpha, rotation float64)

	// LinearGradient fills the clip rectangle with coverage ramping from
	// 0 at p0 to 1 at p1, clamped outside the segment.
	LinearGradient(p0, p1 Point)

	// Pixel returns the coverage at a pixel center in [0, 1].
	Pixel(x, y int) float64

	// Free releases the mask storage. The rasterizer must not be used
	// afterwards.
	Free()
}
