package geometry

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// NoSection is returned by SectionAt when no sector contains the point.
const NoSection = -1

// FullTurn is the angle, in degrees, covered by all sectors together.
const FullTurn = 360

// ErrInvalidSections indicates a section count below one.
var ErrInvalidSections = errors.New("geometry: section count must be at least 1")

// Sector is one angular slice of the annulus.
type Sector struct {
	Index int
	// Start and End are angles in whole degrees. The last sector always
	// ends at FullTurn.
	Start int
	End   int

	Inner   float64
	Outer   float64
	Polygon Polygon
}

// Span returns the angular width of the sector in degrees.
func (s Sector) Span() int {
	return s.End - s.Start
}

// Mid returns the angle halfway between Start and End.
func (s Sector) Mid() float64 {
	return float64(s.Start+s.End) / 2
}

// Boundaries returns the start angle of each of n sections. The step is
// 360/n with integer division, so the last section absorbs the remainder.
func Boundaries(n int) ([]int, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSections, n)
	}
	step := FullTurn / n
	degrees := make([]int, n)
	for i := 1; i < n; i++ {
		degrees[i] = degrees[i-1] + step
	}
	return degrees, nil
}

// Build computes the n sectors of the annulus fitted into width x height.
func Build(n int, width, height float64) ([]Sector, error) {
	degrees, err := Boundaries(n)
	if err != nil {
		return nil, err
	}
	circles := NewCircles(width, height)

	sectors := make([]Sector, n)
	for i, start := range degrees {
		end := FullTurn
		if i+1 < n {
			end = degrees[i+1]
		}
		sectors[i] = Sector{
			Index:   i,
			Start:   start,
			End:     end,
			Inner:   circles.Inner,
			Outer:   circles.Outer,
			Polygon: NewPolygon(sectorPoints(circles, start, end)),
		}
	}
	return sectors, nil
}

// sectorPoints traces the sector boundary: first radial line outward, the
// outer arc ascending, the second radial line inward, the inner arc
// descending. Arcs are sampled at whole degrees strictly between start and end.
func sectorPoints(c Circles, start, end int) []r2.Vec {
	arc := end - start - 1
	if arc < 0 {
		arc = 0
	}
	points := make([]r2.Vec, 0, 4+2*arc)

	points = append(points, c.InnerPoint(float64(start)), c.OuterPoint(float64(start)))
	for deg := start + 1; deg < end; deg++ {
		points = append(points, c.OuterPoint(float64(deg)))
	}
	points = append(points, c.OuterPoint(float64(end)), c.InnerPoint(float64(end)))
	for deg := end - 1; deg > start; deg-- {
		points = append(points, c.InnerPoint(float64(deg)))
	}
	return points
}

// SectionAt returns the index of the first sector containing (x, y),
// or NoSection.
func SectionAt(sectors []Sector, x, y float64) int {
	pt := r2.Vec{X: x, Y: y}
	for i := range sectors {
		if sectors[i].Polygon.Contains(pt) {
			return sectors[i].Index
		}
	}
	return NoSection
}
