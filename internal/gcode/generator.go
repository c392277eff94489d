// Package gcode generates laser cutter toolpaths from packed sheets.
package gcode

import (
	"fmt"
	"strings"

	"github.com/piwi3910/plannest/internal/model"
)

// Generator produces G-code from packed sheet layouts. Coordinates are
// converted from sheet pixels to millimeters at the configured DPI, with the
// Y axis flipped so the origin sits at the sheet's bottom-left corner.
type Generator struct {
	Profile model.CutProfile
	DPI     float64
}

// New returns a generator for the given cutting profile.
func New(profile model.CutProfile, dpi float64) *Generator {
	if dpi <= 0 {
		dpi = model.DefaultNestingConfig().DPI
	}
	return &Generator{Profile: profile, DPI: dpi}
}

// GenerateSheet produces the G-code for a single sheet. Each part is cut
// along its traced contours; parts without contours are cut as bounding
// rectangles. The laser is switched on per path (M4, dynamic power) and off
// between paths.
func (g *Generator) GenerateSheet(sheet model.Sheet, sheetIndex int) string {
	var b strings.Builder

	g.writeHeader(&b, sheet, sheetIndex)

	for i, part := range sheet.Parts {
		g.writePart(&b, sheet, part, i+1)
	}

	g.writeFooter(&b)
	return b.String()
}

// GenerateAll produces one G-code string per sheet, in sheet order.
func (g *Generator) GenerateAll(result model.NestResult) []string {
	var codes []string
	for i, sheet := range result.Sheets {
		codes = append(codes, g.GenerateSheet(sheet, i+1))
	}
	return codes
}

// pxToMM converts sheet pixels to millimeters.
func (g *Generator) pxToMM(px float64) float64 {
	return px / g.DPI * model.MillimetersPerInch
}

func (g *Generator) format(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func (g *Generator) writeHeader(b *strings.Builder, sheet model.Sheet, idx int) {
	fmt.Fprintf(b, "; plannest - Sheet %d (%s)\n", idx, sheet.Name)
	fmt.Fprintf(b, "; Material: %s %gin, %d x %d px at %g DPI\n",
		sheet.Material, sheet.Thickness, sheet.Width, sheet.Height, g.DPI)
	fmt.Fprintf(b, "; Parts: %d, Utilization: %.1f%%\n", len(sheet.Parts), sheet.Utilization())
	fmt.Fprintf(b, "; Profile: %s (feed %g, power %d, passes %d)\n",
		g.Profile.Name, g.Profile.FeedRate, g.Profile.Power, g.Profile.Passes)
	b.WriteString("\n")
	b.WriteString("G21 ; millimeters\n")
	b.WriteString("G90 ; absolute positioning\n")
	b.WriteString("M5 ; laser off\n")
	b.WriteString("G0 X0 Y0\n")
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	b.WriteString("\n")
	b.WriteString("; === Job complete ===\n")
	b.WriteString("M5\n")
	b.WriteString("G0 X0 Y0\n")
	b.WriteString("M2\n")
}

func (g *Generator) writePart(b *strings.Builder, sheet model.Sheet, p model.PlacedPart, partNum int) {
	paths := partPaths(p)

	kind := "outline"
	if len(p.Contours) == 0 {
		kind = "bbox"
	}
	fmt.Fprintf(b, "; --- Part %d: %s (%dx%d px, %s)%s ---\n",
		partNum, p.Name, p.Width, p.Height, kind, rotatedStr(p.Rotated))

	passes := g.Profile.Passes
	if passes < 1 {
		passes = 1
	}

	for _, path := range paths {
		if len(path) < 3 {
			continue
		}
		for pass := 1; pass <= passes; pass++ {
			if passes > 1 {
				fmt.Fprintf(b, "; pass %d/%d\n", pass, passes)
			}

			first := g.toMachine(sheet, path[0])
			fmt.Fprintf(b, "G0 X%s Y%s F%s\n",
				g.format(first.X), g.format(first.Y), g.format(g.Profile.TravelRate))
			fmt.Fprintf(b, "M4 S%d\n", g.Profile.Power)

			for _, pt := range path[1:] {
				m := g.toMachine(sheet, pt)
				fmt.Fprintf(b, "G1 X%s Y%s F%s\n",
					g.format(m.X), g.format(m.Y), g.format(g.Profile.FeedRate))
			}
			// Close the loop.
			fmt.Fprintf(b, "G1 X%s Y%s F%s\n",
				g.format(first.X), g.format(first.Y), g.format(g.Profile.FeedRate))
			b.WriteString("M5\n")
		}
	}
	b.WriteString("\n")
}

// toMachine converts a sheet-pixel point to machine millimeters with the Y
// axis flipped to bottom-left origin.
func (g *Generator) toMachine(sheet model.Sheet, pt model.Point2D) model.Point2D {
	return model.Point2D{
		X: g.pxToMM(pt.X),
		Y: g.pxToMM(float64(sheet.Height) - pt.Y),
	}
}

// partPaths returns the closed paths to cut for a placement, in sheet-pixel
// coordinates.
func partPaths(p model.PlacedPart) []model.Outline {
	if len(p.Contours) == 0 {
		x, y := float64(p.X), float64(p.Y)
		w, h := float64(p.Width), float64(p.Height)
		return []model.Outline{{
			{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h},
		}}
	}

	srcX, srcY := float64(p.Source.X), float64(p.Source.Y)
	var paths []model.Outline
	for _, contour := range p.Contours {
		path := make(model.Outline, len(contour))
		for i, pt := range contour {
			lx := pt.X - srcX
			ly := pt.Y - srcY
			if p.Rotated {
				lx, ly = float64(p.Source.Height)-ly, lx
			}
			path[i] = model.Point2D{X: float64(p.X) + lx, Y: float64(p.Y) + ly}
		}
		paths = append(paths, path)
	}
	return paths
}

func rotatedStr(rotated bool) string {
	if rotated {
		return " [rotated]"
	}
	return ""
}
