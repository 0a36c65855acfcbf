package easel

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// ImageImportEvent composites a decoded image into the buffer with its
// top-left corner at TopLeft.
type ImageImportEvent struct {
	EventBase

	Image   *image.RGBA
	TopLeft Point
}

// NewImageImportEvent creates an image import event.
func NewImageImportEvent(img *image.RGBA, topLeft Point) *ImageImportEvent {
	return &ImageImportEvent{Image: img, TopLeft: topLeft}
}

// Type returns TypeImageImport.
func (e *ImageImportEvent) Type() EventType { return TypeImageImport }

// BoundingBox returns the imported image's placement rectangle.
func (e *ImageImportEvent) BoundingBox(width, height int) Rect {
	if e.Image == nil {
		return Rect{}
	}
	b := e.Image.Bounds()
	box := NewRect(e.TopLeft.X, e.TopLeft.Y, float64(b.Dx()), float64(b.Dy()))
	return box.Intersect(NewRect(0, 0, float64(width), float64(height)))
}

// Scale resamples the imported image and moves its placement. This is
// what the load-time bitmap-scale factor applies; bilinear filtering
// matches how the original content was meant to land on the rescaled
// picture.
func (e *ImageImportEvent) Scale(factor float64) {
	if factor == 1 || e.Image == nil {
		return
	}
	e.TopLeft = e.TopLeft.Mul(factor)
	b := e.Image.Bounds()
	w := int(float64(b.Dx())*factor + 0.5)
	h := int(float64(b.Dy())*factor + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), e.Image, b, xdraw.Over, nil)
	e.Image = dst
	e.bumpGeneration()
}

// Translate moves the placement rectangle by d. The pixel data is left
// alone.
func (e *ImageImportEvent) Translate(d Point) {
	e.TopLeft = e.TopLeft.Add(d)
	e.bumpGeneration()
}
