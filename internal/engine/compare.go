package engine

import (
	"github.com/piwi3910/plannest/internal/model"
)

// ComparisonScenario defines a named configuration to compare.
type ComparisonScenario struct {
	Name   string
	Config model.NestingConfig
}

// ComparisonResult holds the nesting result and computed statistics for a
// single scenario.
type ComparisonResult struct {
	Scenario    ComparisonScenario
	Result      model.NestResult
	SheetsUsed  int
	Placed      int
	Unplaced    int
	Utilization float64
	Err         error
}

// CompareScenarios nests the same parts under each scenario and returns the
// results in scenario order, enabling side-by-side comparison of strategies
// and spacing settings. A scenario that fails records its error and does not
// abort the others.
func CompareScenarios(scenarios []ComparisonScenario, parts []model.Part, sizes []model.PixelSize, material string, thickness float64) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		nester := NewNester(scenario.Config)
		result, err := nester.NestParts(parts, sizes, material, thickness)

		results = append(results, ComparisonResult{
			Scenario:    scenario,
			Result:      result,
			SheetsUsed:  result.SheetCount(),
			Placed:      result.Placed,
			Unplaced:    result.Unplaced(),
			Utilization: result.TotalUtilization(),
			Err:         err,
		})
	}

	return results
}

// CompareByMaterial runs every scenario over each sheet-goods material group,
// resolving sheet sizes and extracting parts the same way NestByMaterial
// does. Groups that are linear, unconfigured, or empty are omitted.
func (n *Nester) CompareByMaterial(groups []model.MaterialGroup, sheetConfigs map[string][]model.SheetSize, scenarios []ComparisonScenario) map[string][]ComparisonResult {
	out := make(map[string][]ComparisonResult)
	for _, group := range groups {
		if !group.IsSheet {
			continue
		}
		sizes := sheetConfigs[group.Key()]
		if len(sizes) == 0 {
			continue
		}
		pixelSizes := make([]model.PixelSize, 0, len(sizes))
		for _, s := range sizes {
			pixelSizes = append(pixelSizes, s.ToPixels(n.Config.DPI))
		}
		parts := n.extractGroupParts(group)
		if len(parts) == 0 {
			continue
		}
		out[group.Key()] = CompareScenarios(scenarios, parts, pixelSizes, group.Material, group.Thickness)
	}
	return out
}

// BuildDefaultScenarios generates comparison scenarios from the current
// configuration, varying the packing strategy and part spacing.
func BuildDefaultScenarios(base model.NestingConfig) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Config: base},
	}

	for _, strategy := range []string{
		model.StrategyMaxRectsBSSF,
		model.StrategyMaxRectsBAF,
		model.StrategyMaxRectsBLSF,
	} {
		if strategy == base.Strategy {
			continue
		}
		alt := base
		alt.Strategy = strategy
		scenarios = append(scenarios, ComparisonScenario{Name: strategy, Config: alt})
	}

	if base.Spacing > 1 {
		tight := base
		tight.Spacing = base.Spacing / 2
		scenarios = append(scenarios, ComparisonScenario{Name: "Half Spacing", Config: tight})
	}

	if !base.AllowRotation {
		rot := base
		rot.AllowRotation = true
		scenarios = append(scenarios, ComparisonScenario{Name: "With Rotation", Config: rot})
	}

	return scenarios
}
