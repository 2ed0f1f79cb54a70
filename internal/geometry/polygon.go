package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Polygon is a closed polygon given by its ordered vertices.
// The last vertex connects back to the first.
type Polygon struct {
	Points []r2.Vec
	bounds r2.Box
}

// NewPolygon creates a polygon from its vertices.
func NewPolygon(points []r2.Vec) Polygon {
	p := Polygon{Points: points}
	p.bounds = boundsOf(points)
	return p
}

// Bounds returns the axis-aligned bounding box of the polygon.
func (p Polygon) Bounds() r2.Box {
	return p.bounds
}

// Contains reports whether pt lies inside the polygon using the even-odd
// ray casting rule: a horizontal ray from pt to +Inf crosses the boundary
// an odd number of times.
func (p Polygon) Contains(pt r2.Vec) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}
	if pt.X < p.bounds.Min.X || pt.X > p.bounds.Max.X ||
		pt.Y < p.bounds.Min.Y || pt.Y > p.bounds.Max.Y {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p.Points[i], p.Points[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

func boundsOf(points []r2.Vec) r2.Box {
	if len(points) == 0 {
		return r2.Box{}
	}
	box := r2.Box{
		Min: r2.Vec{X: math.Inf(1), Y: math.Inf(1)},
		Max: r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for _, pt := range points {
		box.Min.X = math.Min(box.Min.X, pt.X)
		box.Min.Y = math.Min(box.Min.Y, pt.Y)
		box.Max.X = math.Max(box.Max.X, pt.X)
		box.Max.Y = math.Max(box.Max.Y, pt.Y)
	}
	return box
}
