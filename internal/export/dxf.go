package export

import (
	"fmt"

	"github.com/piwi3910/plannest/internal/model"
	"github.com/yofu/dxf"
	dxfcolor "github.com/yofu/dxf/color"
	"github.com/yofu/dxf/table"
)

// layerColors cycles ACI colors across material-group layers.
var layerColors = []dxfcolor.ColorNumber{
	dxfcolor.Red,
	dxfcolor.Yellow,
	dxfcolor.Green,
	dxfcolor.Cyan,
	dxfcolor.Blue,
	dxfcolor.Magenta,
}

// WriteLayoutDXF writes every packed sheet's placed outlines into one DXF
// drawing, one layer per material group. Parts carrying traced contours emit
// them as closed LWPOLYLINEs translated to the placement; parts without
// contours fall back to their bounding rectangle. Sheets are laid out side by
// side along X with a gap between them, and Y is flipped so the drawing uses
// the bottom-left origin CAD tools expect.
func WriteLayoutDXF(path string, results map[string]model.NestResult) error {
	keys := sortedKeys(results)
	if len(keys) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	drawing := dxf.NewDrawing()

	const gap = 50.0
	offsetX := 0.0
	for i, key := range keys {
		layer := sanitizeLayerName(key)
		if _, err := drawing.AddLayer(layer, layerColors[i%len(layerColors)], table.LT_CONTINUOUS, true); err != nil {
			return fmt.Errorf("add layer %s: %w", layer, err)
		}

		for _, sheet := range results[key].Sheets {
			if err := writeSheetDXF(drawing, sheet, offsetX); err != nil {
				return err
			}
			offsetX += float64(sheet.Width) + gap
		}
	}

	return drawing.SaveAs(path)
}

// writeSheetDXF emits one sheet's border and part outlines at the given X
// offset, Y-flipped to the sheet height.
func writeSheetDXF(drawing *dxf.Drawing, sheet model.Sheet, offsetX float64) error {
	h := float64(sheet.Height)
	w := float64(sheet.Width)

	// Sheet border.
	if _, err := drawing.LwPolyline(true,
		[]float64{offsetX, 0},
		[]float64{offsetX + w, 0},
		[]float64{offsetX + w, h},
		[]float64{offsetX, h},
	); err != nil {
		return fmt.Errorf("sheet border: %w", err)
	}

	for _, p := range sheet.Parts {
		outlines := placedOutlines(p)
		for _, outline := range outlines {
			if len(outline) < 3 {
				continue
			}
			vertices := make([][]float64, len(outline))
			for i, pt := range outline {
				vertices[i] = []float64{offsetX + pt.X, h - pt.Y}
			}
			if _, err := drawing.LwPolyline(true, vertices...); err != nil {
				return fmt.Errorf("part %s: %w", p.Name, err)
			}
		}
	}
	return nil
}

// placedOutlines returns the part's outlines in sheet coordinates: traced
// contours rotated and translated to the placement, or the bounding
// rectangle when no contours were extracted.
func placedOutlines(p model.PlacedPart) []model.Outline {
	if len(p.Contours) == 0 {
		x, y := float64(p.X), float64(p.Y)
		w, h := float64(p.Width), float64(p.Height)
		return []model.Outline{{
			{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h},
		}}
	}

	var outlines []model.Outline
	srcX, srcY := float64(p.Source.X), float64(p.Source.Y)
	for _, contour := range p.Contours {
		placed := make(model.Outline, len(contour))
		for i, pt := range contour {
			// Contour points are in full-mask coordinates; bring them into
			// the bounding box frame, rotate if needed, then translate to
			// the placement.
			lx := pt.X - srcX
			ly := pt.Y - srcY
			if p.Rotated {
				lx, ly = float64(p.Source.Height)-ly, lx
			}
			placed[i] = model.Point2D{X: float64(p.X) + lx, Y: float64(p.Y) + ly}
		}
		outlines = append(outlines, placed)
	}
	return outlines
}

// sanitizeLayerName replaces characters DXF layer names disallow.
func sanitizeLayerName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ' ', '/', '\\', ':', ';', '?', '*', '|', '=', '<', '>', '"', '\'':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
