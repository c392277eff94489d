package engine

import (
	"testing"

	"github.com/piwi3910/plannest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(spacing int) model.NestingConfig {
	cfg := model.DefaultNestingConfig()
	cfg.Spacing = spacing
	return cfg
}

func testPart(name string, w, h, qty int) model.Part {
	p := model.NewPart("obj-"+name, "inst-"+name, name, qty)
	p.BBox = model.Box{Width: w, Height: h}
	return p
}

func sizes(dims ...int) []model.PixelSize {
	var out []model.PixelSize
	for i := 0; i+1 < len(dims); i += 2 {
		out = append(out, model.PixelSize{Width: dims[i], Height: dims[i+1]})
	}
	return out
}

func TestNestParts_EmptyInputs(t *testing.T) {
	n := NewNester(testConfig(5))

	result, err := n.NestParts(nil, sizes(300, 300), "Balsa", 0.125)
	require.NoError(t, err)
	assert.Zero(t, result.Candidates)
	assert.Empty(t, result.Sheets)

	result, err = n.NestParts([]model.Part{testPart("A", 50, 50, 1)}, nil, "Balsa", 0.125)
	require.NoError(t, err)
	assert.Empty(t, result.Sheets)
}

func TestNestParts_UnknownStrategy(t *testing.T) {
	cfg := testConfig(5)
	cfg.Strategy = "nope"
	n := NewNester(cfg)

	_, err := n.NestParts([]model.Part{testPart("A", 50, 50, 1)}, sizes(300, 300), "Balsa", 0.125)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPackerUnavailable)
}

func TestNestParts_AllFitOnOneSheet(t *testing.T) {
	// Two 100x50 parts and a 200x200 part fit one 300x300 sheet with
	// rotation allowed and a 5px spacing margin.
	n := NewNester(testConfig(5))
	parts := []model.Part{
		testPart("A", 100, 50, 1),
		testPart("B", 100, 50, 1),
		testPart("C", 200, 200, 1),
	}

	result, err := n.NestParts(parts, sizes(300, 300), "Balsa", 0.125)
	require.NoError(t, err)

	require.Len(t, result.Sheets, 1)
	assert.Equal(t, 3, result.Candidates)
	assert.Equal(t, 3, result.Placed)
	assert.Zero(t, result.Unplaced())

	sheet := result.Sheets[0]
	assert.Equal(t, 300, sheet.Width)
	assert.Equal(t, 300, sheet.Height)
	assert.Equal(t, "Balsa Sheet 1", sheet.Name)
	// Bounding-box utilization: (2*100*50 + 200*200) / (300*300).
	assert.InDelta(t, 55.6, sheet.Utilization(), 0.1)
}

func TestNestParts_OversizedPartStalls(t *testing.T) {
	// The 200x200 part fits no 150x150 sheet in either orientation, so the
	// loop stalls after the small parts land and the shortfall shows up in
	// the candidate counts.
	n := NewNester(testConfig(5))
	parts := []model.Part{
		testPart("A", 100, 50, 1),
		testPart("B", 100, 50, 1),
		testPart("C", 200, 200, 1),
	}

	result, err := n.NestParts(parts, sizes(150, 150), "Balsa", 0.125)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Candidates)
	assert.Equal(t, 2, result.Placed)
	assert.Equal(t, 1, result.Unplaced())
	require.Len(t, result.Sheets, 1)

	for _, p := range result.Sheets[0].Parts {
		assert.NotEqual(t, "C", p.Name, "oversized part must never be placed")
	}
}

func TestNestParts_QuantityExpansion(t *testing.T) {
	// One 50x50 part with quantity 4 on a 200x100 sheet: all four copies on
	// a single sheet.
	n := NewNester(testConfig(0))
	parts := []model.Part{testPart("A", 50, 50, 4)}

	result, err := n.NestParts(parts, sizes(200, 100), "Plywood", 0.25)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Candidates)
	assert.Equal(t, 4, result.Placed)
	require.Len(t, result.Sheets, 1)
	assert.Len(t, result.Sheets[0].Parts, 4)

	for _, p := range result.Sheets[0].Parts {
		assert.Equal(t, "A", p.Name)
		assert.Equal(t, p.PartID, parts[0].ID)
	}
}

func TestNestParts_SpillsOntoSecondSheet(t *testing.T) {
	n := NewNester(testConfig(0))
	parts := []model.Part{testPart("A", 90, 90, 3)}

	result, err := n.NestParts(parts, sizes(100, 100), "Balsa", 0.0625)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Placed)
	assert.Len(t, result.Sheets, 3)
	assert.Equal(t, "Balsa Sheet 2", result.Sheets[1].Name)
}

func TestNestParts_SheetSizesUsedCyclically(t *testing.T) {
	// Sizes are sorted by descending area and cycled as sheets are added:
	// the big part forces the large size, the rest spill onto the next.
	n := NewNester(testConfig(0))
	parts := []model.Part{
		testPart("Big", 280, 280, 1),
		testPart("Small", 120, 120, 1),
	}

	result, err := n.NestParts(parts, sizes(150, 150, 300, 300), "Ply", 0.125)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Placed)
	require.Len(t, result.Sheets, 2)
	assert.Equal(t, 300, result.Sheets[0].Width, "largest size first")
	assert.Equal(t, 150, result.Sheets[1].Width, "second sheet cycles to the next size")
	assert.Equal(t, "Big", result.Sheets[0].Parts[0].Name)
	assert.Equal(t, "Small", result.Sheets[1].Parts[0].Name)
}

func TestNestParts_NoOverlapAndInBounds(t *testing.T) {
	n := NewNester(testConfig(3))
	var parts []model.Part
	dims := [][2]int{{80, 40}, {60, 60}, {120, 30}, {50, 90}, {40, 40}, {70, 25}}
	for i, d := range dims {
		parts = append(parts, testPart(string(rune('A'+i)), d[0], d[1], 2))
	}

	result, err := n.NestParts(parts, sizes(250, 200), "Balsa", 0.0625)
	require.NoError(t, err)
	assert.Equal(t, 12, result.Placed)

	for _, sheet := range result.Sheets {
		for i, a := range sheet.Parts {
			assert.GreaterOrEqual(t, a.X, 0)
			assert.GreaterOrEqual(t, a.Y, 0)
			assert.LessOrEqual(t, a.X+a.Width, sheet.Width)
			assert.LessOrEqual(t, a.Y+a.Height, sheet.Height)

			for j, b := range sheet.Parts {
				if i == j {
					continue
				}
				overlap := a.X < b.X+b.Width && a.X+a.Width > b.X &&
					a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
				assert.False(t, overlap, "parts %s and %s overlap", a.Name, b.Name)
			}
		}
	}
}

func TestNestParts_RotationSwapsDimensions(t *testing.T) {
	// A 200x50 part on a 100x250 sheet only fits rotated.
	n := NewNester(testConfig(0))
	parts := []model.Part{testPart("A", 200, 50, 1)}

	result, err := n.NestParts(parts, sizes(100, 250), "Balsa", 0.0625)
	require.NoError(t, err)

	require.Len(t, result.Sheets, 1)
	p := result.Sheets[0].Parts[0]
	assert.True(t, p.Rotated)
	assert.Equal(t, 50, p.Width)
	assert.Equal(t, 200, p.Height)
	assert.Equal(t, model.Box{Width: 200, Height: 50}, p.Source)
}

func TestNestParts_RotationDisabled(t *testing.T) {
	cfg := testConfig(0)
	cfg.AllowRotation = false
	n := NewNester(cfg)
	parts := []model.Part{testPart("A", 200, 50, 1)}

	result, err := n.NestParts(parts, sizes(100, 250), "Balsa", 0.0625)
	require.NoError(t, err)
	assert.Zero(t, result.Placed)
	assert.Empty(t, result.Sheets)
}

func TestNestParts_SpacingSubtractedFromPlacement(t *testing.T) {
	n := NewNester(testConfig(5))
	parts := []model.Part{testPart("A", 100, 50, 1)}

	result, err := n.NestParts(parts, sizes(300, 300), "Balsa", 0.0625)
	require.NoError(t, err)

	p := result.Sheets[0].Parts[0]
	assert.Equal(t, 5, p.X, "position offset by spacing margin")
	assert.Equal(t, 5, p.Y)
	assert.Equal(t, 100, p.Width, "spacing subtracted back out")
	assert.Equal(t, 50, p.Height)
}

func TestNestParts_SheetCeiling(t *testing.T) {
	cfg := testConfig(0)
	cfg.MaxSheets = 3
	n := NewNester(cfg)
	parts := []model.Part{testPart("A", 90, 90, 10)}

	result, err := n.NestParts(parts, sizes(100, 100), "Balsa", 0.0625)
	require.NoError(t, err)

	assert.Len(t, result.Sheets, 3, "ceiling bounds the sheet count")
	assert.Equal(t, 3, result.Placed)
	assert.Equal(t, 7, result.Unplaced())
}

func TestNestParts_Deterministic(t *testing.T) {
	n := NewNester(testConfig(4))
	build := func() []model.Part {
		return []model.Part{
			testPart("A", 80, 40, 2),
			testPart("B", 55, 70, 1),
			testPart("C", 30, 30, 3),
		}
	}

	first, err := n.NestParts(build(), sizes(200, 150, 120, 120), "Balsa", 0.0625)
	require.NoError(t, err)
	second, err := n.NestParts(build(), sizes(200, 150, 120, 120), "Balsa", 0.0625)
	require.NoError(t, err)

	require.Equal(t, len(first.Sheets), len(second.Sheets))
	for i := range first.Sheets {
		a, b := first.Sheets[i], second.Sheets[i]
		require.Equal(t, len(a.Parts), len(b.Parts))
		for j := range a.Parts {
			assert.Equal(t, a.Parts[j].Name, b.Parts[j].Name)
			assert.Equal(t, a.Parts[j].X, b.Parts[j].X)
			assert.Equal(t, a.Parts[j].Y, b.Parts[j].Y)
			assert.Equal(t, a.Parts[j].Rotated, b.Parts[j].Rotated)
		}
	}
}

func TestNestParts_QuantityConservation(t *testing.T) {
	n := NewNester(testConfig(2))
	parts := []model.Part{
		testPart("A", 60, 60, 3),
		testPart("B", 500, 500, 2), // fits nowhere
	}

	result, err := n.NestParts(parts, sizes(200, 200), "Balsa", 0.0625)
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, sheet := range result.Sheets {
		for _, p := range sheet.Parts {
			counts[p.Name]++
		}
	}
	assert.Equal(t, 3, counts["A"], "placeable part keeps its full quantity")
	assert.Zero(t, counts["B"])
	assert.Equal(t, 5, result.Candidates)
	assert.Equal(t, 3, result.Placed)
}
