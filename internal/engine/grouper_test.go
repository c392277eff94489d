package engine

import (
	"image"
	"testing"

	"github.com/piwi3910/plannest/internal/mask"
	"github.com/piwi3910/plannest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectMask(canvasW, canvasH, w, h int) *image.Gray {
	m := mask.New(canvasW, canvasH)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Pix[y*m.Stride+x] = 255
		}
	}
	return m
}

func sheetGroup(material string, thickness float64, items ...model.GroupItem) model.MaterialGroup {
	return model.MaterialGroup{
		Material:  material,
		Thickness: thickness,
		IsSheet:   true,
		Items:     items,
	}
}

func TestNestByMaterial_SingleGroup(t *testing.T) {
	n := NewNester(testConfig(0))
	group := sheetGroup("balsa", 0.125,
		groupItem("rib", 2, rectMask(200, 200, 40, 20)),
		groupItem("former", 1, rectMask(200, 200, 30, 30)),
	)
	configs := map[string][]model.SheetSize{
		group.Key(): {{Name: "4x4", Width: 4, Height: 4, Unit: model.UnitInch}},
	}

	results, report, err := n.NestByMaterial([]model.MaterialGroup{group}, configs)
	require.NoError(t, err)

	require.Contains(t, results, "balsa_0.125")
	result := results["balsa_0.125"]
	assert.Equal(t, 3, result.Candidates, "quantity respected")
	assert.Equal(t, 3, result.Placed)

	require.Len(t, report.Groups, 1)
	gr := report.Groups[0]
	assert.False(t, gr.Skipped)
	assert.Equal(t, 2, gr.Parts)
	assert.Equal(t, 3, gr.Candidates)
	assert.Equal(t, 1, report.Processed())
}

func TestNestByMaterial_OrderSearch(t *testing.T) {
	n := NewNester(testConfig(0))
	search := DefaultOrderSearchConfig()
	search.PopulationSize = 6
	search.Generations = 3
	n.Search = &search

	group := sheetGroup("balsa", 0.125,
		groupItem("rib", 2, rectMask(200, 200, 40, 20)),
		groupItem("former", 1, rectMask(200, 200, 30, 30)),
	)
	configs := map[string][]model.SheetSize{
		group.Key(): {{Name: "4x4", Width: 4, Height: 4, Unit: model.UnitInch}},
	}

	results, report, err := n.NestByMaterial([]model.MaterialGroup{group}, configs)
	require.NoError(t, err)

	require.Contains(t, results, "balsa_0.125")
	assert.Equal(t, 3, results["balsa_0.125"].Placed, "never below the plain pack")
	assert.Equal(t, 1, report.Processed())
}

func TestNestByMaterial_SheetSizeResolvedAtDPI(t *testing.T) {
	cfg := testConfig(0)
	cfg.DPI = 100
	n := NewNester(cfg)
	group := sheetGroup("balsa", 0.125, groupItem("rib", 1, rectMask(400, 400, 350, 350)))
	configs := map[string][]model.SheetSize{
		group.Key(): {{Name: "4x4", Width: 4, Height: 4, Unit: model.UnitInch}},
	}

	results, _, err := n.NestByMaterial([]model.MaterialGroup{group}, configs)
	require.NoError(t, err)
	require.Contains(t, results, group.Key())
	sheet := results[group.Key()].Sheets[0]
	assert.Equal(t, 400, sheet.Width, "4in at 100 DPI")
	assert.Equal(t, 400, sheet.Height)
}

func TestNestByMaterial_SkipsLinearGroup(t *testing.T) {
	n := NewNester(testConfig(0))
	groups := []model.MaterialGroup{
		{Material: "balsa strip", Thickness: 0.125, IsSheet: false},
	}

	results, report, err := n.NestByMaterial(groups, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	require.Len(t, report.Groups, 1)
	assert.True(t, report.Groups[0].Skipped)
	assert.Equal(t, "linear stock group", report.Groups[0].Reason)
}

func TestNestByMaterial_SkipsUnconfiguredGroup(t *testing.T) {
	n := NewNester(testConfig(0))
	group := sheetGroup("plywood", 0.25, groupItem("doubler", 1, rectMask(100, 100, 20, 20)))

	results, report, err := n.NestByMaterial([]model.MaterialGroup{group}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "no sheet sizes configured", report.Groups[0].Reason)
	assert.Contains(t, report.String(), "plywood_0.25 skipped")
}

func TestNestByMaterial_SkipsEmptyGroup(t *testing.T) {
	n := NewNester(testConfig(0))
	group := sheetGroup("balsa", 0.125, groupItem("ghost", 1, mask.New(50, 50)))
	configs := map[string][]model.SheetSize{
		group.Key(): {{Name: "4x4", Width: 4, Height: 4, Unit: model.UnitInch}},
	}

	results, report, err := n.NestByMaterial([]model.MaterialGroup{group}, configs)
	require.NoError(t, err)
	assert.Empty(t, results)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "no parts extracted", report.Groups[0].Reason)
}

func TestNestByMaterial_PartialRun(t *testing.T) {
	// One configured group nests; the unconfigured one is skipped without
	// failing the run.
	n := NewNester(testConfig(0))
	good := sheetGroup("balsa", 0.125, groupItem("rib", 1, rectMask(100, 100, 20, 20)))
	bad := sheetGroup("plywood", 0.25, groupItem("doubler", 1, rectMask(100, 100, 20, 20)))
	configs := map[string][]model.SheetSize{
		good.Key(): {{Name: "4x4", Width: 4, Height: 4, Unit: model.UnitInch}},
	}

	results, report, err := n.NestByMaterial([]model.MaterialGroup{good, bad}, configs)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, report.Processed())
	assert.Contains(t, report.String(), "processed 1 of 2 groups")
}

func TestNestByMaterial_UnknownStrategyFatal(t *testing.T) {
	cfg := testConfig(0)
	cfg.Strategy = "bogus"
	n := NewNester(cfg)

	_, _, err := n.NestByMaterial(nil, nil)
	assert.ErrorIs(t, err, ErrPackerUnavailable)
}

func TestNestByMaterial_QuantityIgnoredWhenDisabled(t *testing.T) {
	cfg := testConfig(0)
	cfg.RespectQuantity = false
	n := NewNester(cfg)
	group := sheetGroup("balsa", 0.125, groupItem("rib", 5, rectMask(100, 100, 20, 20)))
	configs := map[string][]model.SheetSize{
		group.Key(): {{Name: "4x4", Width: 4, Height: 4, Unit: model.UnitInch}},
	}

	results, _, err := n.NestByMaterial([]model.MaterialGroup{group}, configs)
	require.NoError(t, err)
	assert.Equal(t, 1, results[group.Key()].Candidates, "single copy per part")
}
