package easel

// GradientEvent fills the whole buffer with a linear gradient ramping
// from zero coverage at P0 to full coverage at P1.
type GradientEvent struct {
	EventBase

	P0, P1  Point
	Color   RGBA
	Opacity float64
	Mode    BlendMode
}

// NewGradientEvent creates a gradient event.
func NewGradientEvent(p0, p1 Point, c RGBA, opacity float64, mode BlendMode) *GradientEvent {
	return &GradientEvent{P0: p0, P1: p1, Color: c, Opacity: opacity, Mode: mode}
}

// Type returns TypeGradient.
func (e *GradientEvent) Type() EventType { return TypeGradient }

// BoundingBox covers the whole bitmap: a gradient has unbounded support.
func (e *GradientEvent) BoundingBox(width, height int) Rect {
	return NewRect(0, 0, float64(width), float64(height))
}

// Scale multiplies the gradient geometry by factor.
func (e *GradientEvent) Scale(factor float64) {
	e.P0 = e.P0.Mul(factor)
	e.P1 = e.P1.Mul(factor)
	e.bumpGeneration()
}

// Translate moves the gradient ramp by d.
func (e *GradientEvent) Translate(d Point) {
	e.P0 = e.P0.Add(d)
	e.P1 = e.P1.Add(d)
	e.bumpGeneration()
}

// Style returns the compositing style of the gradient.
func (e *GradientEvent) Style() DrawStyle {
	return DrawStyle{Color: e.Color, Opacity: e.Opacity, Mode: e.Mode}
}

// Draw rasterizes the coverage ramp.
func (e *GradientEvent) Draw(r Rasterizer) {
	r.LinearGradient(e.P0, e.P1)
}
