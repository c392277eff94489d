package mask

import (
	"image"

	"github.com/piwi3910/plannest/internal/model"
)

// Moore neighborhood in clockwise order starting from west.
var mooreDirs = [8]image.Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

// TraceOutlines extracts the outer boundary of every 8-connected component
// as a closed contour of pixel coordinates, scanning top-to-bottom and
// left-to-right so the output order is deterministic. Holes inside a
// component are ignored.
func TraceOutlines(m *image.Gray) []model.Outline {
	if m == nil {
		return nil
	}
	w, h := m.Bounds().Dx(), m.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil
	}

	seen := make([]bool, w*h)
	set := func(x, y int) bool {
		return x >= 0 && x < w && y >= 0 && y < h && m.Pix[y*m.Stride+x] != 0
	}

	var outlines []model.Outline
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !set(x, y) || seen[y*w+x] {
				continue
			}
			start := image.Point{X: x, Y: y}
			contour := traceBoundary(set, start)
			outline := make(model.Outline, len(contour))
			for i, p := range contour {
				outline[i] = model.Point2D{X: float64(p.X), Y: float64(p.Y)}
			}
			outlines = append(outlines, outline)
			markComponent(set, seen, w, h, start)
		}
	}
	return outlines
}

// traceBoundary walks the outer border clockwise from the component's
// topmost-leftmost pixel using Moore-neighbor tracing. The walk ends when it
// re-enters the start pixel the same way it first left it.
func traceBoundary(set func(x, y int) bool, start image.Point) []image.Point {
	contour := []image.Point{start}

	// The scan reached start from the west, so backtrack direction is west.
	cur := start
	dir := 0
	var firstMove image.Point
	const maxSteps = 1 << 22
	for step := 0; step < maxSteps; step++ {
		found := false
		// Probe the eight neighbors clockwise, starting one past the
		// backtrack direction.
		for i := 1; i <= 8; i++ {
			d := (dir + i) % 8
			next := image.Point{X: cur.X + mooreDirs[d].X, Y: cur.Y + mooreDirs[d].Y}
			if set(next.X, next.Y) {
				if step == 0 {
					firstMove = next
				} else if cur == start && next == firstMove {
					// Closed the loop.
					return contour
				}
				contour = append(contour, next)
				// New backtrack: the direction pointing back at cur,
				// advanced so the probe resumes just past it.
				dir = (d + 5) % 8
				cur = next
				found = true
				break
			}
		}
		if !found {
			// Isolated pixel.
			return contour
		}
	}
	return contour
}

// markComponent flood-fills the 8-connected component containing start into
// seen, so later scan rows do not re-trace it.
func markComponent(set func(x, y int) bool, seen []bool, w, h int, start image.Point) {
	stack := []image.Point{start}
	seen[start.Y*w+start.X] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range mooreDirs {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			if seen[ny*w+nx] || !set(nx, ny) {
				continue
			}
			seen[ny*w+nx] = true
			stack = append(stack, image.Point{X: nx, Y: ny})
		}
	}
}
