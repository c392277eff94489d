// Package export writes nesting results to the formats consumed downstream:
// PDF layout reports, QR part labels, XLSX cut lists, DXF outlines and PNG
// sheet bitmaps.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/plannest/internal/model"
)

// partColor represents an RGB color for a placed part.
type partColor struct {
	R, G, B int
}

// partColors mirrors the renderer's cyclic tint palette.
var partColors = []partColor{
	{R: 66, G: 133, B: 244},  // blue
	{R: 52, G: 168, B: 83},   // green
	{R: 251, G: 188, B: 5},   // yellow
	{R: 234, G: 67, B: 53},   // red
	{R: 156, G: 39, B: 176},  // purple
	{R: 0, G: 188, B: 212},   // cyan
	{R: 255, G: 152, B: 0},   // orange
	{R: 121, G: 85, B: 72},   // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// WriteLayoutPDF generates a PDF document for one or more material groups'
// nesting results. Each sheet is rendered on its own page with a scaled
// layout diagram, followed by a summary page. Group keys are emitted in
// sorted order so the document is deterministic.
func WriteLayoutPDF(path string, results map[string]model.NestResult, dpi float64) error {
	keys := sortedKeys(results)
	if len(keys) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, key := range keys {
		result := results[key]
		for i, sheet := range result.Sheets {
			pdf.AddPage()
			renderSheetPage(pdf, sheet, dpi, i+1)
		}
	}

	pdf.AddPage()
	renderSummaryPage(pdf, keys, results)

	return pdf.OutputFileAndClose(path)
}

// pxToIn converts source pixels to inches at the given DPI.
func pxToIn(px int, dpi float64) float64 {
	if dpi <= 0 {
		return float64(px)
	}
	return float64(px) / dpi
}

// renderSheetPage draws a single packed sheet on the current PDF page.
func renderSheetPage(pdf *fpdf.Fpdf, sheet model.Sheet, dpi float64, sheetNum int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s (%.1f x %.1f in, %gin thick)", sheet.Name,
		pxToIn(sheet.Width, dpi), pxToIn(sheet.Height, dpi), sheet.Thickness)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Parts: %d | Utilization: %.1f%%", len(sheet.Parts), sheet.Utilization())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	scaleX := drawWidth / float64(sheet.Width)
	scaleY := drawHeight / float64(sheet.Height)
	scale := math.Min(scaleX, scaleY)

	canvasW := float64(sheet.Width) * scale
	canvasH := float64(sheet.Height) * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Sheet background.
	pdf.SetFillColor(250, 245, 230)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for i, p := range sheet.Parts {
		col := partColors[i%len(partColors)]
		px := offsetX + float64(p.X)*scale
		py := offsetY + float64(p.Y)*scale
		pw := float64(p.Width) * scale
		ph := float64(p.Height) * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 12 && ph > 6 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := p.Name
			if p.Rotated {
				label += " (R)"
			}
			labelW := pdf.GetStringWidth(label)
			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-2)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}

	drawPartsLegend(pdf, sheet, offsetY+canvasH+5)
}

// drawPartsLegend renders a compact legend of placed parts below the layout.
func drawPartsLegend(pdf *fpdf.Fpdf, sheet model.Sheet, startY float64) {
	if len(sheet.Parts) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Parts placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, p := range sheet.Parts {
		col := partColors[i%len(partColors)]
		label := fmt.Sprintf("%s (%dx%d px)", p.Name, p.Width, p.Height)
		if p.Rotated {
			label += " R"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the final page with per-group statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, keys []string, results map[string]model.NestResult) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Nesting Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	colWidths := []float64{70, 25, 30, 30, 30, 35}
	headers := []string{"Material Group", "Sheets", "Candidates", "Placed", "Unplaced", "Utilization"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	var anyUnplaced bool
	for i, key := range keys {
		result := results[key]
		if result.Unplaced() > 0 {
			anyUnplaced = true
		}

		xPos = marginLeft
		rowData := []string{
			key,
			fmt.Sprintf("%d", result.SheetCount()),
			fmt.Sprintf("%d", result.Candidates),
			fmt.Sprintf("%d", result.Placed),
			fmt.Sprintf("%d", result.Unplaced()),
			fmt.Sprintf("%.1f%%", result.TotalUtilization()),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if anyUnplaced {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: some parts fit on no configured sheet size", "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}

// labelFontSize returns an appropriate font size for the rectangle size.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}

// sortedKeys returns the result map's keys in sorted order.
func sortedKeys(results map[string]model.NestResult) []string {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
