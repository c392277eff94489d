package model

import (
	"image"

	"github.com/google/uuid"
)

// Point2D represents a 2D coordinate in source-canvas pixels.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Box is an axis-aligned rectangle in pixel coordinates.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the box area in square pixels.
func (b Box) Area() int {
	return b.Width * b.Height
}

// Empty reports whether the box has no area.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// BoxFromRect converts an image.Rectangle to a Box.
func BoxFromRect(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Part represents one shape extracted from a source canvas, eligible for
// placement. The bounding box is the non-zero extent of the instance's
// combined element masks; Mask is cropped to that box while FullMask keeps
// the whole canvas so a placement can re-crop after rotation.
type Part struct {
	ID         string      `json:"id"`
	ObjectID   string      `json:"object_id"`
	InstanceID string      `json:"instance_id"`
	Name       string      `json:"name"`
	BBox       Box         `json:"bbox"`
	Quantity   int         `json:"quantity"`
	Mask       *image.Gray `json:"-"`
	FullMask   *image.Gray `json:"-"`
	Contours   []Outline   `json:"contours,omitempty"`
}

func NewPart(objectID, instanceID, name string, qty int) Part {
	if qty < 1 {
		qty = 1
	}
	return Part{
		ID:         uuid.New().String()[:8],
		ObjectID:   objectID,
		InstanceID: instanceID,
		Name:       name,
		Quantity:   qty,
	}
}

// PlacedPart represents a single part copy placed on a sheet. X, Y, Width and
// Height are sheet-relative pixels after rotation, with the inter-part spacing
// margin already subtracted back out. Source is the part's original bounding
// box on the source canvas, used together with FullMask to reconstruct the
// raster content at render time.
type PlacedPart struct {
	PartID     string      `json:"part_id"`
	ObjectID   string      `json:"object_id"`
	InstanceID string      `json:"instance_id"`
	Name       string      `json:"name"`
	X          int         `json:"x"`
	Y          int         `json:"y"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Rotated    bool        `json:"rotated"`
	Source     Box         `json:"source"`
	FullMask   *image.Gray `json:"-"`
	Contours   []Outline   `json:"-"`
}

// Area returns the placed bounding-box area in square pixels.
func (p PlacedPart) Area() int {
	return p.Width * p.Height
}

// Sheet represents one instance of stock material with zero or more placed
// parts. Sheets are immutable value objects once produced by the nesting run;
// rendering and export consume but never mutate them.
type Sheet struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Material  string       `json:"material"`
	Thickness float64      `json:"thickness"`
	Parts     []PlacedPart `json:"parts"`
}

func NewSheet(name string, w, h int, material string, thickness float64) Sheet {
	return Sheet{
		ID:        uuid.New().String()[:8],
		Name:      name,
		Width:     w,
		Height:    h,
		Material:  material,
		Thickness: thickness,
	}
}

// UsedArea returns the total bounding-box area of all placed parts.
func (s Sheet) UsedArea() int {
	var total int
	for _, p := range s.Parts {
		total += p.Area()
	}
	return total
}

// Utilization returns the percentage of the sheet area covered by placed-part
// bounding boxes. Because it sums bounding boxes rather than mask pixels it
// overstates usage for irregular shapes.
func (s Sheet) Utilization() float64 {
	area := s.Width * s.Height
	if area == 0 {
		return 0
	}
	return float64(s.UsedArea()) / float64(area) * 100.0
}

// NestResult holds the packed sheets for one material group. Candidates is
// the number of quantity-expanded placement candidates submitted to the
// packer and Placed the number that ended up on a sheet; callers diff the two
// to detect parts that fit on no configured sheet size.
type NestResult struct {
	Sheets     []Sheet `json:"sheets"`
	Candidates int     `json:"candidates"`
	Placed     int     `json:"placed"`
}

// Unplaced returns the number of candidates that could not be placed.
func (r NestResult) Unplaced() int {
	return r.Candidates - r.Placed
}

// SheetCount returns the number of non-empty sheets in the result.
func (r NestResult) SheetCount() int {
	return len(r.Sheets)
}

// TotalUtilization returns the overall used percentage across all sheets.
func (r NestResult) TotalUtilization() float64 {
	var used, total int
	for _, s := range r.Sheets {
		used += s.UsedArea()
		total += s.Width * s.Height
	}
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100.0
}
