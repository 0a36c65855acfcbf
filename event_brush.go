package easel

// StrokePoint is one sampled input point of a brush stroke. Pressure
// scales the stamp radius and, for scatter stamps, the stamp alpha.
type StrokePoint struct {
	X, Y     float64
	Pressure float64
}

// brushStampSpacing is the distance between stamped tips along a stroke,
// as a fraction of the stamp radius.
const brushStampSpacing = 0.25

// BrushEvent is a connected stroke of stamped brush tips interpolated
// along the sampled input points.
type BrushEvent struct {
	EventBase

	Color    RGBA
	Opacity  float64
	Flow     float64
	Radius   float64
	Mode     BlendMode
	Rotation float64

	points []StrokePoint
}

// NewBrushEvent creates an empty brush stroke. Points are added with
// AddPoint as input arrives.
func NewBrushEvent(c RGBA, opacity, flow, radius float64, mode BlendMode) *BrushEvent {
	return &BrushEvent{
		Color:   c,
		Opacity: opacity,
		Flow:    flow,
		Radius:  radius,
		Mode:    mode,
	}
}

// Type returns TypeBrush.
func (e *BrushEvent) Type() EventType { return TypeBrush }

// Points returns the sampled stroke points.
func (e *BrushEvent) Points() []StrokePoint { return e.points }

// AddPoint appends one sampled input point and bumps the generation so
// cached rasterizations of the in-progress stroke are refreshed.
func (e *BrushEvent) AddPoint(x, y, pressure float64) {
	e.points = append(e.points, StrokePoint{X: x, Y: y, Pressure: pressure})
	e.bumpGeneration()
}

// BoundingBox returns the region the stroke can touch, padded by the
// maximum stamp radius.
func (e *BrushEvent) BoundingBox(width, height int) Rect {
	if len(e.points) == 0 {
		return Rect{}
	}
	box := NewRect(e.points[0].X, e.points[0].Y, 0, 0)
	for _, p := range e.points[1:] {
		box = box.Union(NewRect(p.X, p.Y, 0, 0))
	}
	return box.Outset(e.Radius + 1).Intersect(NewRect(0, 0, float64(width), float64(height)))
}

// Scale multiplies the stroke geometry by factor.
func (e *BrushEvent) Scale(factor float64) {
	for i := range e.points {
		e.points[i].X *= factor
		e.points[i].Y *= factor
	}
	e.Radius *= factor
	e.bumpGeneration()
}

// Translate moves the stroke geometry by d.
func (e *BrushEvent) Translate(d Point) {
	for i := range e.points {
		e.points[i].X += d.X
		e.points[i].Y += d.Y
	}
	e.bumpGeneration()
}

// Style returns the compositing style of the stroke.
func (e *BrushEvent) Style() DrawStyle {
	return DrawStyle{Color: e.Color, Opacity: e.Opacity, Mode: e.Mode}
}

// Draw stamps the stroke into the mask, interpolating tips between the
// sampled points so the stroke is continuous regardless of input rate.
func (e *BrushEvent) Draw(r Rasterizer) {
	if len(e.points) == 0 {
		return
	}
	prev := e.points[0]
	r.FillCircle(prev.X, prev.Y, e.stampRadius(prev), e.Flow, e.Rotation)
	for _, p := range e.points[1:] {
		dist := Pt(prev.X, prev.Y).Dist(Pt(p.X, p.Y))
		step := e.stampRadius(prev) * brushStampSpacing
		if step <= 0 {
			step = brushStampSpacing
		}
		n := int(dist / step)
		for i := 1; i <= n; i++ {
			t := float64(i) / float64(n+1)
			q := Pt(prev.X, prev.Y).Lerp(Pt(p.X, p.Y), t)
			pressure := prev.Pressure + (p.Pressure-prev.Pressure)*t
			r.FillCircle(q.X, q.Y, e.Radius*pressure, e.Flow, e.Rotation)
		}
		r.FillCircle(p.X, p.Y, e.stampRadius(p), e.Flow, e.Rotation)
		prev = p
	}
}

// stampRadius returns the tip radius at a point, scaled by pressure.
func (e *BrushEvent) stampRadius(p StrokePoint) float64 {
	return e.Radius * p.Pressure
}

// ScatterEvent stamps unconnected brush tips: one stamp per point, with
// no interpolation between them. It shares the brush stroke's fields and
// bounding logic.
type ScatterEvent struct {
	BrushEvent
}

// NewScatterEvent creates an empty scatter event.
func NewScatterEvent(c RGBA, opacity, flow, radius float64, mode BlendMode) *ScatterEvent {
	return &ScatterEvent{BrushEvent: *NewBrushEvent(c, opacity, flow, radius, mode)}
}

// Type returns TypeScatter.
func (e *ScatterEvent) Type() EventType { return TypeScatter }

// Draw stamps one tip per point.
func (e *ScatterEvent) Draw(r Rasterizer) {
	for _, p := range e.points {
		r.FillCircle(p.X, p.Y, e.stampRadius(p), e.Flow*p.Pressure, e.Rotation)
	}
}
