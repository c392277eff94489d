// Package render rasterizes packed sheets into preview bitmaps. Rendering is
// read-only over Sheet state and never feeds back into packing decisions.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/piwi3910/plannest/internal/mask"
	"github.com/piwi3910/plannest/internal/model"
)

// DefaultPalette is the cyclic part tint palette.
var DefaultPalette = []color.RGBA{
	{66, 133, 244, 255},  // blue
	{52, 168, 83, 255},   // green
	{251, 188, 5, 255},   // yellow
	{234, 67, 53, 255},   // red
	{156, 39, 176, 255},  // purple
	{0, 188, 212, 255},   // cyan
	{255, 152, 0, 255},   // orange
	{121, 85, 72, 255},   // brown
}

// Renderer draws packed sheets. Palette colors are purely cosmetic and cycle
// across parts in placement order.
type Renderer struct {
	Palette    []color.RGBA
	DrawLabels bool
}

// New returns a renderer with the default palette and labels enabled.
func New() *Renderer {
	return &Renderer{Palette: DefaultPalette, DrawLabels: true}
}

// Render rasterizes the sheet: white background, every placed part's mask
// content tinted at its position, optional name labels, and a black border
// drawn last.
func (r *Renderer) Render(sheet model.Sheet) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, sheet.Width, sheet.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	palette := r.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}

	for i, part := range sheet.Parts {
		tint := palette[i%len(palette)]
		r.drawPart(img, sheet, part, tint)
		if r.DrawLabels && part.Name != "" {
			r.drawLabel(img, part)
		}
	}

	drawBorder(img, sheet.Width, sheet.Height, 2)
	return img
}

// drawPart blits the part's mask content, re-cropped and re-oriented for its
// placement, tinted with the given color. Parts carrying no mask fall back to
// a filled bounding box.
func (r *Renderer) drawPart(img *image.RGBA, sheet model.Sheet, part model.PlacedPart, tint color.RGBA) {
	if part.FullMask == nil {
		fillRect(img, part.X, part.Y, part.Width, part.Height, tint)
		return
	}

	m := part.FullMask
	crop := part.Source.Rect()
	if part.Rotated {
		// Rotate the full mask, then re-map the source box into the
		// rotated frame so the crop stays aligned with the content.
		srcH := m.Bounds().Dy()
		m = mask.Rotate90(m)
		crop = mask.RotateRect90(crop, srcH)
	}
	region := mask.Crop(m, crop)

	w, h := region.Bounds().Dx(), region.Bounds().Dy()
	for y := 0; y < h; y++ {
		dy := part.Y + y
		if dy < 0 || dy >= sheet.Height {
			continue
		}
		row := region.Pix[y*region.Stride : y*region.Stride+w]
		for x, v := range row {
			if v == 0 {
				continue
			}
			dx := part.X + x
			if dx < 0 || dx >= sheet.Width {
				continue
			}
			img.SetRGBA(dx, dy, tint)
		}
	}
}

// drawLabel draws the part name centered in its bounding box, with a one
// pixel shadow for contrast against the tint.
func (r *Renderer) drawLabel(img *image.RGBA, part model.PlacedPart) {
	face := basicfont.Face7x13
	label := part.Name

	width := font.MeasureString(face, label).Ceil()
	x := part.X + (part.Width-width)/2
	y := part.Y + (part.Height+face.Ascent)/2

	shadow := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x+1, y+1),
	}
	shadow.DrawString(label)

	text := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	text.DrawString(label)
}

// fillRect fills an axis-aligned rectangle clipped to the image bounds.
func fillRect(img *image.RGBA, x, y, w, h int, c color.RGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(img.Bounds())
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawBorder draws a border of the given thickness just inside the edges.
func drawBorder(img *image.RGBA, w, h, thickness int) {
	black := color.RGBA{0, 0, 0, 255}
	fillRect(img, 0, 0, w, thickness, black)
	fillRect(img, 0, h-thickness, w, thickness, black)
	fillRect(img, 0, 0, thickness, h, black)
	fillRect(img, w-thickness, 0, thickness, h, black)
}
