package engine

import (
	"fmt"

	"github.com/piwi3910/plannest/internal/model"
)

// GroupReport records what happened to one material group during a
// multi-group run.
type GroupReport struct {
	Key        string `json:"key"`
	Skipped    bool   `json:"skipped"`
	Reason     string `json:"reason,omitempty"`
	Parts      int    `json:"parts"`
	Candidates int    `json:"candidates"`
	Placed     int    `json:"placed"`
	Sheets     int    `json:"sheets"`
}

// RunReport summarizes a multi-group nesting run. A failed or unconfigured
// group skips only that group; the rest of the run proceeds.
type RunReport struct {
	Groups []GroupReport `json:"groups"`
}

// Processed returns how many groups produced a nesting result.
func (r RunReport) Processed() int {
	n := 0
	for _, g := range r.Groups {
		if !g.Skipped {
			n++
		}
	}
	return n
}

// String renders the partial-results summary shown to the user.
func (r RunReport) String() string {
	s := fmt.Sprintf("processed %d of %d groups", r.Processed(), len(r.Groups))
	for _, g := range r.Groups {
		if g.Skipped {
			s += fmt.Sprintf("; group %s skipped (%s)", g.Key, g.Reason)
		}
	}
	return s
}

// NestByMaterial runs one nesting pass per sheet-goods material group.
// sheetConfigs maps a group key to the physical sheet sizes configured for
// it; sizes are resolved to pixels at the configured DPI. Groups with no
// configured sizes, no extractable parts, or a failed pack are skipped with
// a reason in the report. Results hold only groups that produced at least
// one non-empty sheet.
//
// When RespectQuantity is off, every part is forced to a single copy.
//
// An unavailable packing strategy is fatal for the whole run and is reported
// before any sheet is produced.
func (n *Nester) NestByMaterial(groups []model.MaterialGroup, sheetConfigs map[string][]model.SheetSize) (map[string]model.NestResult, RunReport, error) {
	if _, err := NewPacker(n.Config.Strategy, n.Config.AllowRotation); err != nil {
		return nil, RunReport{}, err
	}

	results := make(map[string]model.NestResult)
	var report RunReport

	for _, group := range groups {
		key := group.Key()
		gr := GroupReport{Key: key}

		if !group.IsSheet {
			gr.Skipped = true
			gr.Reason = "linear stock group"
			report.Groups = append(report.Groups, gr)
			continue
		}

		sizes := sheetConfigs[key]
		if len(sizes) == 0 {
			gr.Skipped = true
			gr.Reason = "no sheet sizes configured"
			report.Groups = append(report.Groups, gr)
			continue
		}

		pixelSizes := make([]model.PixelSize, 0, len(sizes))
		for _, s := range sizes {
			pixelSizes = append(pixelSizes, s.ToPixels(n.Config.DPI))
		}

		parts := n.extractGroupParts(group)
		gr.Parts = len(parts)
		if len(parts) == 0 {
			gr.Skipped = true
			gr.Reason = "no parts extracted"
			report.Groups = append(report.Groups, gr)
			continue
		}

		result, err := n.nestGroup(parts, pixelSizes, group.Material, group.Thickness)
		if err != nil {
			gr.Skipped = true
			gr.Reason = err.Error()
			report.Groups = append(report.Groups, gr)
			continue
		}

		gr.Candidates = result.Candidates
		gr.Placed = result.Placed
		gr.Sheets = result.SheetCount()
		report.Groups = append(report.Groups, gr)

		if result.SheetCount() > 0 {
			results[key] = result
		}
	}

	return results, report, nil
}

// extractGroupParts extracts one Part per group item. Extraction failures
// (empty masks, mismatched canvases) skip the instance, not the group.
func (n *Nester) extractGroupParts(group model.MaterialGroup) []model.Part {
	var parts []model.Part
	for _, item := range group.Items {
		part, err := ExtractPart(item, n.Config.ExtractContours)
		if err != nil {
			continue
		}
		if !n.Config.RespectQuantity {
			part.Quantity = 1
		}
		parts = append(parts, part)
	}
	return parts
}

// nestGroup packs one group's parts, through the order search when one is
// configured.
func (n *Nester) nestGroup(parts []model.Part, sizes []model.PixelSize, material string, thickness float64) (model.NestResult, error) {
	if n.Search != nil {
		return n.OptimizeOrder(parts, sizes, material, thickness, *n.Search)
	}
	return n.NestParts(parts, sizes, material, thickness)
}
