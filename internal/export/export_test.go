package export

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/plannest/internal/engine"
	"github.com/piwi3910/plannest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResults() map[string]model.NestResult {
	sheet := model.NewSheet("Balsa Sheet 1", 450, 5400, "Balsa", 0.125)
	sheet.Parts = []model.PlacedPart{
		{Name: "Rib R1", X: 5, Y: 5, Width: 100, Height: 50,
			Source: model.Box{Width: 100, Height: 50}},
		{Name: "Rib R2", X: 5, Y: 60, Width: 50, Height: 100, Rotated: true,
			Source: model.Box{Width: 100, Height: 50}},
	}
	return map[string]model.NestResult{
		"Balsa_0.125": {Sheets: []model.Sheet{sheet}, Candidates: 3, Placed: 2},
	}
}

func TestWriteLayoutPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.pdf")

	require.NoError(t, WriteLayoutPDF(path, sampleResults(), 150))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(1000), "document has content")
}

func TestWriteLayoutPDF_NoResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.pdf")

	err := WriteLayoutPDF(path, nil, 150)
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestWriteLabelsPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	require.NoError(t, WriteLabelsPDF(path, sampleResults()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(1000))
}

func TestWriteLabelsPDF_NoPlacements(t *testing.T) {
	err := WriteLabelsPDF(filepath.Join(t.TempDir(), "labels.pdf"), map[string]model.NestResult{})
	assert.Error(t, err)
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(sampleResults())
	require.Len(t, labels, 2)

	assert.Equal(t, "Rib R1", labels[0].PartName)
	assert.Equal(t, "Balsa_0.125", labels[0].GroupKey)
	assert.Equal(t, "Balsa Sheet 1", labels[0].SheetName)
	assert.False(t, labels[0].Rotated)
	assert.True(t, labels[1].Rotated)
	assert.Equal(t, 50, labels[1].Width)
}

func TestWriteCutListXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.xlsx")
	linear := map[float64]engine.LinearResult{
		0.125: {Stocks: []model.NestedStock{{
			Length:   36,
			Material: "balsa",
			Parts: []model.NestedLinearPart{
				{Part: model.LinearPart{Name: "LE", Length: 20}, Position: 0, CopyNum: 1},
			},
		}}},
	}

	require.NoError(t, WriteCutListXLSX(path, sampleResults(), linear, 6))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{"Parts", "Summary", "Linear Cuts", "Shopping List", "Remnants"},
		f.GetSheetList())

	v, err := f.GetCellValue("Parts", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Rib R1", v)

	v, err = f.GetCellValue("Parts", "H3")
	require.NoError(t, err)
	assert.Equal(t, "TRUE", v, "rotated flag recorded")

	v, err = f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Balsa Sheet 1", v)

	v, err = f.GetCellValue("Linear Cuts", "D2")
	require.NoError(t, err)
	assert.Equal(t, "LE", v)
}

func TestWriteCutListXLSX_ShoppingList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.xlsx")
	linear := map[float64]engine.LinearResult{
		0.125: {Stocks: []model.NestedStock{{
			Length:   36,
			Material: "balsa",
			Parts: []model.NestedLinearPart{
				{Part: model.LinearPart{Name: "LE", Length: 20}, Position: 0, CopyNum: 1},
			},
		}}},
	}

	require.NoError(t, WriteCutListXLSX(path, sampleResults(), linear, 6))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// One sheet of Balsa 0.125 consumed.
	v, err := f.GetCellValue("Shopping List", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Balsa", v)
	v, err = f.GetCellValue("Shopping List", "E2")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	// Linear stock block follows after a separator row.
	v, err = f.GetCellValue("Shopping List", "A4")
	require.NoError(t, err)
	assert.Equal(t, "Linear Stock", v)
	v, err = f.GetCellValue("Shopping List", "C6")
	require.NoError(t, err)
	assert.Equal(t, "36", v)
}

func TestWriteCutListXLSX_Remnants(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.xlsx")
	linear := map[float64]engine.LinearResult{
		0.125: {Stocks: []model.NestedStock{{
			Length:   36,
			Material: "balsa",
			Parts: []model.NestedLinearPart{
				{Part: model.LinearPart{Name: "LE", Length: 20}, Position: 0, CopyNum: 1},
			},
		}}},
	}

	require.NoError(t, WriteCutListXLSX(path, sampleResults(), linear, 6))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Largest sheet remnant first: the strip right of the parts.
	v, err := f.GetCellValue("Remnants", "C2")
	require.NoError(t, err)
	assert.Equal(t, "105", v)
	v, err = f.GetCellValue("Remnants", "E2")
	require.NoError(t, err)
	assert.Equal(t, "345", v)

	// 16 inches of trailing stock clears the 6 inch minimum.
	v, err = f.GetCellValue("Remnants", "A5")
	require.NoError(t, err)
	assert.Equal(t, "Linear Stock", v)
	v, err = f.GetCellValue("Remnants", "C7")
	require.NoError(t, err)
	assert.Equal(t, "16", v)
}

func TestWriteCutListXLSX_NoLinear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.xlsx")

	require.NoError(t, WriteCutListXLSX(path, sampleResults(), nil, 6))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.NotContains(t, f.GetSheetList(), "Linear Cuts")
}

func TestWriteCutListXLSX_NoRemnantsSheetWhenFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.xlsx")
	full := model.NewSheet("Balsa Sheet 1", 100, 100, "Balsa", 0.125)
	full.Parts = []model.PlacedPart{
		{Name: "Panel", X: 0, Y: 0, Width: 100, Height: 100},
	}
	results := map[string]model.NestResult{
		"Balsa_0.125": {Sheets: []model.Sheet{full}, Candidates: 1, Placed: 1},
	}

	require.NoError(t, WriteCutListXLSX(path, results, nil, 6))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.NotContains(t, f.GetSheetList(), "Remnants")
}

func TestWriteLayoutDXF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.dxf")

	require.NoError(t, WriteLayoutDXF(path, sampleResults()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := strings.ToUpper(string(data))
	assert.Contains(t, content, "BALSA_0.125", "group layer present")
	assert.Contains(t, content, "LWPOLYLINE")
}

func TestWriteLayoutDXF_NoResults(t *testing.T) {
	assert.Error(t, WriteLayoutDXF(filepath.Join(t.TempDir(), "layout.dxf"), nil))
}

func TestWriteSheetPNGs(t *testing.T) {
	dir := t.TempDir()

	paths, err := WriteSheetPNGs(dir, sampleResults())
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "Balsa_0.125_sheet1.png"), paths[0])

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 450, img.Bounds().Dx())
	assert.Equal(t, 5400, img.Bounds().Dy())
}

func TestPlacedOutlines_BBoxFallback(t *testing.T) {
	p := model.PlacedPart{X: 10, Y: 20, Width: 30, Height: 40}

	outlines := placedOutlines(p)
	require.Len(t, outlines, 1)
	assert.Equal(t, model.Outline{
		{X: 10, Y: 20}, {X: 40, Y: 20}, {X: 40, Y: 60}, {X: 10, Y: 60},
	}, outlines[0])
}

func TestPlacedOutlines_ContoursTranslated(t *testing.T) {
	p := model.PlacedPart{
		X: 100, Y: 200, Width: 10, Height: 5,
		Source:   model.Box{X: 50, Y: 60, Width: 10, Height: 5},
		Contours: []model.Outline{{{X: 50, Y: 60}, {X: 59, Y: 60}, {X: 59, Y: 64}}},
	}

	outlines := placedOutlines(p)
	require.Len(t, outlines, 1)
	assert.Equal(t, model.Point2D{X: 100, Y: 200}, outlines[0][0])
	assert.Equal(t, model.Point2D{X: 109, Y: 200}, outlines[0][1])
	assert.Equal(t, model.Point2D{X: 109, Y: 204}, outlines[0][2])
}

func TestPlacedOutlines_RotatedContours(t *testing.T) {
	p := model.PlacedPart{
		X: 0, Y: 0, Width: 5, Height: 10, Rotated: true,
		Source:   model.Box{X: 0, Y: 0, Width: 10, Height: 5},
		Contours: []model.Outline{{{X: 0, Y: 0}, {X: 9, Y: 0}, {X: 9, Y: 4}}},
	}

	outlines := placedOutlines(p)
	require.Len(t, outlines, 1)
	// Clockwise rotation maps (x, y) to (srcH - y, x).
	assert.Equal(t, model.Point2D{X: 5, Y: 0}, outlines[0][0])
	assert.Equal(t, model.Point2D{X: 5, Y: 9}, outlines[0][1])
	assert.Equal(t, model.Point2D{X: 1, Y: 9}, outlines[0][2])
}

func TestSanitizeLayerName(t *testing.T) {
	assert.Equal(t, "Balsa_0.125", sanitizeLayerName("Balsa_0.125"))
	assert.Equal(t, "Lite_Ply_1_8", sanitizeLayerName("Lite Ply 1/8"))
}
