package model

import (
	"fmt"
	"image"
)

// Measurement units for sheet sizes.
const (
	UnitInch       = "in"
	UnitMillimeter = "mm"
)

// MillimetersPerInch converts between the two supported units.
const MillimetersPerInch = 25.4

// SheetSize represents a named physical sheet size in inches or millimeters.
type SheetSize struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// ToPixels converts the physical size to pixel dimensions at the given DPI.
// Fractional pixels are truncated.
func (s SheetSize) ToPixels(dpi float64) PixelSize {
	w, h := s.Width, s.Height
	if s.Unit == UnitMillimeter {
		w /= MillimetersPerInch
		h /= MillimetersPerInch
	}
	return PixelSize{Width: int(w * dpi), Height: int(h * dpi)}
}

func (s SheetSize) String() string {
	return fmt.Sprintf("%s: %g x %g %s", s.Name, s.Width, s.Height, s.Unit)
}

// PixelSize is a sheet size resolved to pixel dimensions.
type PixelSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the size area in square pixels.
func (p PixelSize) Area() int {
	return p.Width * p.Height
}

// Object represents a segmented source object as delivered by the upstream
// annotation system. Only the fields the nesting pipeline consumes are
// modeled here.
type Object struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Instance represents one drawn instance of an Object. Elements hold the
// instance's selection masks, all sized to the source canvas; their union is
// the instance's shape. Quantity is how many physical copies to fabricate.
type Instance struct {
	ID       string        `json:"id"`
	Quantity int           `json:"quantity"`
	Elements []*image.Gray `json:"-"`
}

// GroupItem pairs an object with one of its instances inside a material group.
type GroupItem struct {
	Object   Object   `json:"object"`
	Instance Instance `json:"instance"`
}

// MaterialGroup represents all object instances sharing a material and
// thickness. IsSheet distinguishes sheet goods (2D nesting) from linear
// stock such as strip and dowel (1D nesting).
type MaterialGroup struct {
	Material  string      `json:"material"`
	Thickness float64     `json:"thickness"`
	IsSheet   bool        `json:"is_sheet"`
	Items     []GroupItem `json:"items"`
}

// Key returns the group key used to look up sheet configuration and to key
// nesting results.
func (g MaterialGroup) Key() string {
	return GroupKey(g.Material, g.Thickness)
}

// ItemCount returns the number of object instances in the group.
func (g MaterialGroup) ItemCount() int {
	return len(g.Items)
}

// GroupKey builds the canonical material+thickness key.
func GroupKey(material string, thickness float64) string {
	return fmt.Sprintf("%s_%v", material, thickness)
}
