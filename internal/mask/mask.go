// Package mask provides the raster operations the nesting pipeline performs
// on selection masks: union, content bounds, cropping, quarter rotation and
// outline tracing. All masks are *image.Gray anchored at the origin; any
// non-zero pixel counts as selected.
package mask

import (
	"fmt"
	"image"
)

// New returns an empty origin-anchored mask of the given size.
func New(w, h int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, w, h))
}

// FromStrings builds a mask from a row-per-string picture where any character
// other than space and '.' is a set pixel. Intended for fixtures and tests.
func FromStrings(rows ...string) *image.Gray {
	h := len(rows)
	w := 0
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	m := New(w, h)
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			if row[x] != ' ' && row[x] != '.' {
				m.Pix[y*m.Stride+x] = 255
			}
		}
	}
	return m
}

// Union combines same-size masks with a per-pixel maximum. Returns nil for an
// empty input and an error when the masks disagree on size.
func Union(masks []*image.Gray) (*image.Gray, error) {
	var out *image.Gray
	for _, m := range masks {
		if m == nil {
			continue
		}
		if out == nil {
			out = New(m.Bounds().Dx(), m.Bounds().Dy())
		} else if m.Bounds().Dx() != out.Bounds().Dx() || m.Bounds().Dy() != out.Bounds().Dy() {
			return nil, fmt.Errorf("mask size mismatch: %dx%d vs %dx%d",
				m.Bounds().Dx(), m.Bounds().Dy(), out.Bounds().Dx(), out.Bounds().Dy())
		}
		w, h := out.Bounds().Dx(), out.Bounds().Dy()
		for y := 0; y < h; y++ {
			src := m.Pix[y*m.Stride : y*m.Stride+w]
			dst := out.Pix[y*out.Stride : y*out.Stride+w]
			for x, v := range src {
				if v > dst[x] {
					dst[x] = v
				}
			}
		}
	}
	return out, nil
}

// ContentRect returns the minimal rectangle enclosing all non-zero pixels.
// ok is false when the mask is nil or entirely zero.
func ContentRect(m *image.Gray) (r image.Rectangle, ok bool) {
	if m == nil {
		return image.Rectangle{}, false
	}
	w, h := m.Bounds().Dx(), m.Bounds().Dy()
	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+w]
		for x, v := range row {
			if v == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// Crop copies the given region into a fresh origin-anchored mask. The region
// is clipped to the mask bounds.
func Crop(m *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(m.Bounds())
	out := New(r.Dx(), r.Dy())
	for y := 0; y < r.Dy(); y++ {
		srcOff := (r.Min.Y + y) * m.Stride
		copy(out.Pix[y*out.Stride:y*out.Stride+r.Dx()], m.Pix[srcOff+r.Min.X:srcOff+r.Min.X+r.Dx()])
	}
	return out
}

// Rotate90 returns the mask rotated 90 degrees clockwise.
func Rotate90(m *image.Gray) *image.Gray {
	w, h := m.Bounds().Dx(), m.Bounds().Dy()
	out := New(h, w)
	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+w]
		dstX := h - 1 - y
		for x, v := range row {
			out.Pix[x*out.Stride+dstX] = v
		}
	}
	return out
}

// RotateRect90 maps a rectangle in a mask of height srcH into the coordinate
// frame of the same mask after Rotate90.
func RotateRect90(r image.Rectangle, srcH int) image.Rectangle {
	return image.Rect(srcH-r.Max.Y, r.Min.X, srcH-r.Min.Y, r.Max.X)
}

// CountNonZero returns the number of set pixels.
func CountNonZero(m *image.Gray) int {
	if m == nil {
		return 0
	}
	w, h := m.Bounds().Dx(), m.Bounds().Dy()
	var n int
	for y := 0; y < h; y++ {
		for _, v := range m.Pix[y*m.Stride : y*m.Stride+w] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}
