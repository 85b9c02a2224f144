package layout

import "math"

// Viewport is the screen rectangle positions are projected into.
type Viewport struct {
	Width   float64
	Height  float64
	Padding float64
}

// Projection maps world coordinates to screen coordinates for one frame.
type Projection struct {
	vp     Viewport
	lo     Vec
	scale  float64
	offset Vec
}

// Project fits the current bodies into vp, keeping the aspect ratio.
func (l *Layout) Project(vp Viewport) Projection {
	p := Projection{vp: vp, scale: 1}
	lo, hi, ok := l.Bounds()
	if !ok {
		return p
	}
	innerW := math.Max(vp.Width-2*vp.Padding, 1)
	innerH := math.Max(vp.Height-2*vp.Padding, 1)
	spanW, spanH := hi.X-lo.X, hi.Y-lo.Y

	switch {
	case spanW == 0 && spanH == 0:
		p.scale = 1
	case spanW == 0:
		p.scale = innerH / spanH
	case spanH == 0:
		p.scale = innerW / spanW
	default:
		p.scale = math.Min(innerW/spanW, innerH/spanH)
	}
	p.lo = lo
	// center the scaled box inside the padded area
	p.offset = Vec{
		X: vp.Padding + (innerW-spanW*p.scale)/2,
		Y: vp.Padding + (innerH-spanH*p.scale)/2,
	}
	return p
}

func (p Projection) ToScreen(v Vec) Vec {
	return v.Sub(p.lo).Scale(p.scale).Add(p.offset)
}

// Nearest returns the body closest to the screen point pt, if it lies within
// maxDist screen pixels. maxDist <= 0 means no limit.
func (l *Layout) Nearest(pt Vec, p Projection, maxDist float64) (string, float64, bool) {
	best, bestDist := "", math.Inf(1)
	for _, name := range l.sortedNames() {
		d := p.ToScreen(l.bodies[name].pos).Dist(pt)
		if d < bestDist {
			best, bestDist = name, d
		}
	}
	if best == "" || (maxDist > 0 && bestDist > maxDist) {
		return "", 0, false
	}
	return best, bestDist, true
}
