// Package geometry computes the annulus sectors of a Simon circle and
// answers point-containment queries against them.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// outerDivisor and innerDivisor size the radii from the smaller bound.
	outerDivisor = 2.2
	innerDivisor = 10
)

// Circles holds the two concentric circles bounding the annulus.
type Circles struct {
	Center r2.Vec
	Outer  float64
	Inner  float64
}

// NewCircles derives the circle geometry from view bounds.
// Negative bounds are treated as zero.
func NewCircles(width, height float64) Circles {
	width = math.Max(width, 0)
	height = math.Max(height, 0)
	diameter := math.Min(width, height)
	return Circles{
		Center: r2.Vec{X: width / 2, Y: height / 2},
		Outer:  diameter / outerDivisor,
		Inner:  diameter / innerDivisor,
	}
}

// OuterPoint returns the point on the outer circle at the given angle in degrees.
func (c Circles) OuterPoint(deg float64) r2.Vec {
	return c.pointAt(deg, c.Outer)
}

// InnerPoint returns the point on the inner circle at the given angle in degrees.
func (c Circles) InnerPoint(deg float64) r2.Vec {
	return c.pointAt(deg, c.Inner)
}

func (c Circles) pointAt(deg, radius float64) r2.Vec {
	rad := deg * math.Pi / 180
	return r2.Add(c.Center, r2.Scale(radius, r2.Vec{X: math.Cos(rad), Y: math.Sin(rad)}))
}
