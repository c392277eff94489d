package mask

import (
	"math"

	"github.com/piwi3910/plannest/internal/model"
)

// Simplify reduces the number of vertices in a closed outline using the
// Douglas-Peucker algorithm. The outline is split at its two mutually most
// distant points so each half can be simplified as an open path, then the
// halves are rejoined. Outlines with fewer than 3 points are returned as-is.
func Simplify(outline model.Outline, epsilon float64) model.Outline {
	if len(outline) < 3 {
		return outline
	}

	// Split the ring at the point farthest from the start so neither half
	// degenerates to a straight chord.
	far := 0
	maxDist := 0.0
	for i, p := range outline {
		dx := p.X - outline[0].X
		dy := p.Y - outline[0].Y
		if d := dx*dx + dy*dy; d > maxDist {
			maxDist = d
			far = i
		}
	}
	if far == 0 {
		return outline
	}

	first := simplifyPath(outline[:far+1], epsilon)
	second := simplifyPath(outline[far:], epsilon)

	result := make(model.Outline, 0, len(first)+len(second)-2)
	result = append(result, first...)
	if len(second) > 2 {
		result = append(result, second[1:len(second)-1]...)
	}
	return result
}

// simplifyPath reduces the number of vertices of an open path using
// Douglas-Peucker recursion.
func simplifyPath(path model.Outline, epsilon float64) model.Outline {
	if len(path) <= 2 {
		return path
	}

	// Find the point with maximum distance from the line between the first
	// and last points.
	dmax := 0.0
	index := 0
	end := len(path) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(path[i], path[0], path[end])
		if d > dmax {
			dmax = d
			index = i
		}
	}

	if dmax > epsilon {
		left := simplifyPath(path[:index+1], epsilon)
		right := simplifyPath(path[index:], epsilon)

		// Avoid duplicating the middle point.
		result := make(model.Outline, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	// All points between first and last are within epsilon.
	return model.Outline{path[0], path[end]}
}

// perpendicularDistance calculates the perpendicular distance from point p to
// the line through a and b.
func perpendicularDistance(p, a, b model.Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	length := math.Sqrt(dx*dx + dy*dy)
	if length < 1e-9 {
		dx = p.X - a.X
		dy = p.Y - a.Y
		return math.Sqrt(dx*dx + dy*dy)
	}

	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / length
}
