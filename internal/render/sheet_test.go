package render

import (
	"image/color"
	"testing"

	"github.com/piwi3910/plannest/internal/mask"
	"github.com/piwi3910/plannest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_EmptySheet(t *testing.T) {
	r := New()
	sheet := model.NewSheet("Balsa Sheet 1", 60, 40, "Balsa", 0.125)

	img := r.Render(sheet)
	require.NotNil(t, img)
	assert.Equal(t, 60, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	// White interior, black border.
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(30, 20))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(59, 39))
}

func TestRender_MasklessPartFillsBBox(t *testing.T) {
	r := New()
	r.DrawLabels = false
	sheet := model.NewSheet("s", 100, 100, "Balsa", 0.125)
	sheet.Parts = []model.PlacedPart{
		{Name: "a", X: 10, Y: 10, Width: 20, Height: 20},
	}

	img := r.Render(sheet)
	assert.Equal(t, DefaultPalette[0], img.RGBAAt(15, 15))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(50, 50))
}

func TestRender_MaskContentTinted(t *testing.T) {
	// A triangle-ish mask: only set pixels are tinted, the rest of the
	// bounding box stays white.
	full := mask.FromStrings(
		"........",
		".X......",
		".XX.....",
		".XXX....",
		"........",
	)
	r := New()
	r.DrawLabels = false
	sheet := model.NewSheet("s", 50, 50, "Balsa", 0.125)
	sheet.Parts = []model.PlacedPart{{
		Name:     "wedge",
		X:        5,
		Y:        5,
		Width:    3,
		Height:   3,
		Source:   model.Box{X: 1, Y: 1, Width: 3, Height: 3},
		FullMask: full,
	}}

	img := r.Render(sheet)
	assert.Equal(t, DefaultPalette[0], img.RGBAAt(5, 5), "set pixel tinted")
	assert.Equal(t, DefaultPalette[0], img.RGBAAt(6, 7))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(7, 5), "unset pixel stays white")
}

func TestRender_RotatedMaskRemapped(t *testing.T) {
	// A 3-wide, 1-high bar placed rotated must paint a 1-wide, 3-high bar.
	full := mask.FromStrings(
		".....",
		".XXX.",
		".....",
	)
	r := New()
	r.DrawLabels = false
	sheet := model.NewSheet("s", 30, 30, "Balsa", 0.125)
	sheet.Parts = []model.PlacedPart{{
		Name:     "bar",
		X:        4,
		Y:        4,
		Width:    1,
		Height:   3,
		Rotated:  true,
		Source:   model.Box{X: 1, Y: 1, Width: 3, Height: 1},
		FullMask: full,
	}}

	img := r.Render(sheet)
	assert.Equal(t, DefaultPalette[0], img.RGBAAt(4, 4))
	assert.Equal(t, DefaultPalette[0], img.RGBAAt(4, 5))
	assert.Equal(t, DefaultPalette[0], img.RGBAAt(4, 6))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(5, 5))
}

func TestRender_PaletteCycles(t *testing.T) {
	r := &Renderer{Palette: []color.RGBA{{1, 1, 1, 255}, {2, 2, 2, 255}}}
	sheet := model.NewSheet("s", 100, 40, "Balsa", 0.125)
	for i := 0; i < 3; i++ {
		sheet.Parts = append(sheet.Parts, model.PlacedPart{
			X: 10 + i*25, Y: 10, Width: 10, Height: 10,
		})
	}

	img := r.Render(sheet)
	assert.Equal(t, color.RGBA{1, 1, 1, 255}, img.RGBAAt(12, 12))
	assert.Equal(t, color.RGBA{2, 2, 2, 255}, img.RGBAAt(37, 12))
	assert.Equal(t, color.RGBA{1, 1, 1, 255}, img.RGBAAt(62, 12), "palette wraps around")
}

func TestRender_ClipsOutOfBoundsParts(t *testing.T) {
	r := New()
	r.DrawLabels = false
	sheet := model.NewSheet("s", 20, 20, "Balsa", 0.125)
	sheet.Parts = []model.PlacedPart{
		{Name: "big", X: 10, Y: 10, Width: 50, Height: 50},
	}

	img := r.Render(sheet)
	assert.Equal(t, 20, img.Bounds().Dx(), "image stays sheet sized")
}
