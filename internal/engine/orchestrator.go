// Package engine implements the nesting pipeline: part extraction from
// raster masks, rectangle bin packing across a growing set of sheets,
// material grouping, and 1D nesting of linear stock.
package engine

import (
	"fmt"
	"sort"

	"github.com/piwi3910/plannest/internal/model"
)

// Nester drives the 2D nesting run for one or more material groups. When
// Search is set, every group goes through the part-order search instead of a
// single area-descending pack.
type Nester struct {
	Config model.NestingConfig
	Search *OrderSearchConfig
}

// NewNester returns a nester with the given run configuration. Zero or
// negative MaxSheets falls back to the default ceiling.
func NewNester(cfg model.NestingConfig) *Nester {
	if cfg.MaxSheets <= 0 {
		cfg.MaxSheets = model.DefaultNestingConfig().MaxSheets
	}
	return &Nester{Config: cfg}
}

// candidateInfo ties an expanded placement candidate back to its part.
type candidateInfo struct {
	part     *model.Part
	inflated model.PixelSize
}

// NestParts packs the given parts onto sheets of the given pixel sizes.
// Sheets are allocated one at a time, cycling through the sizes sorted by
// descending area, until every candidate is placed, an iteration makes no
// progress, or the sheet ceiling is reached. The accepted layout is the
// iteration that placed the most candidates.
//
// An empty part or size list yields an empty result and no error.
func (n *Nester) NestParts(parts []model.Part, sizes []model.PixelSize, material string, thickness float64) (model.NestResult, error) {
	packer, err := NewPacker(n.Config.Strategy, n.Config.AllowRotation)
	if err != nil {
		return model.NestResult{}, err
	}
	if len(parts) == 0 || len(sizes) == 0 {
		return model.NestResult{}, nil
	}

	spacing := n.Config.Spacing

	// Quantity expansion: every copy becomes an independent candidate,
	// inflated by the spacing margin on all sides.
	var cands []Candidate
	lookup := make(map[string]candidateInfo)
	for idx := range parts {
		part := &parts[idx]
		qty := part.Quantity
		if qty < 1 {
			qty = 1
		}
		inflated := model.PixelSize{
			Width:  part.BBox.Width + 2*spacing,
			Height: part.BBox.Height + 2*spacing,
		}
		for q := 0; q < qty; q++ {
			id := fmt.Sprintf("%d_%d", idx, q)
			cands = append(cands, Candidate{ID: id, Width: inflated.Width, Height: inflated.Height})
			lookup[id] = candidateInfo{part: part, inflated: inflated}
		}
	}

	sorted := make([]model.PixelSize, len(sizes))
	copy(sorted, sizes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Area() > sorted[j].Area()
	})

	// Progressive bin allocation: add one sheet per iteration and re-pack
	// everything. Keep the best layout seen so a later iteration can never
	// regress the accepted result.
	var bins []model.PixelSize
	var best []Placement
	for len(bins) < n.Config.MaxSheets {
		bins = append(bins, sorted[(len(bins))%len(sorted)])
		placements := packer.Pack(cands, bins)
		if len(placements) > len(best) {
			best = placements
		} else {
			// No progress: remaining candidates fit on no sheet size.
			break
		}
		if len(best) == len(cands) {
			break
		}
	}

	result := model.NestResult{
		Candidates: len(cands),
		Placed:     len(best),
	}

	// Reconstruct sheets from the best layout, dropping empty bins.
	byBin := make(map[int][]Placement)
	for _, pl := range best {
		byBin[pl.Bin] = append(byBin[pl.Bin], pl)
	}
	for bin := 0; bin < len(bins); bin++ {
		placed := byBin[bin]
		if len(placed) == 0 {
			continue
		}
		sort.Slice(placed, func(i, j int) bool {
			if placed[i].Y != placed[j].Y {
				return placed[i].Y < placed[j].Y
			}
			return placed[i].X < placed[j].X
		})

		name := fmt.Sprintf("%s Sheet %d", material, result.SheetCount()+1)
		sheet := model.NewSheet(name, bins[bin].Width, bins[bin].Height, material, thickness)
		for _, pl := range placed {
			info := lookup[pl.ID]
			rotated := pl.Width != info.inflated.Width || pl.Height != info.inflated.Height

			w, h := info.part.BBox.Width, info.part.BBox.Height
			if rotated {
				w, h = h, w
			}
			sheet.Parts = append(sheet.Parts, model.PlacedPart{
				PartID:     info.part.ID,
				ObjectID:   info.part.ObjectID,
				InstanceID: info.part.InstanceID,
				Name:       info.part.Name,
				X:          pl.X + spacing,
				Y:          pl.Y + spacing,
				Width:      w,
				Height:     h,
				Rotated:    rotated,
				Source:     info.part.BBox,
				FullMask:   info.part.FullMask,
				Contours:   info.part.Contours,
			})
		}
		result.Sheets = append(result.Sheets, sheet)
	}

	return result, nil
}
