package export

import (
	"fmt"
	"sort"

	"github.com/piwi3910/plannest/internal/engine"
	"github.com/piwi3910/plannest/internal/model"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/stat"
)

// WriteCutListXLSX writes a workbook with one sheet listing every placement,
// one summarizing sheet consumption, a shopping list of stock to buy, and
// optionally the linear cut list and detected remnants. minRemnant is the
// shortest trailing stock length worth keeping. Utilization statistics in the
// summary use the mean and standard deviation across all packed sheets.
func WriteCutListXLSX(path string, results map[string]model.NestResult, linear map[float64]engine.LinearResult, minRemnant float64) error {
	f := excelize.NewFile()
	defer f.Close()

	const partsSheet = "Parts"
	f.SetSheetName("Sheet1", partsSheet)

	headers := []string{"Group", "Sheet", "Part", "X (px)", "Y (px)", "Width (px)", "Height (px)", "Rotated"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(partsSheet, cell, h)
	}

	row := 2
	for _, key := range sortedKeys(results) {
		for _, sheet := range results[key].Sheets {
			for _, p := range sheet.Parts {
				values := []interface{}{key, sheet.Name, p.Name, p.X, p.Y, p.Width, p.Height, p.Rotated}
				for i, v := range values {
					cell, _ := excelize.CoordinatesToCellName(i+1, row)
					f.SetCellValue(partsSheet, cell, v)
				}
				row++
			}
		}
	}

	if err := writeSheetSummary(f, results); err != nil {
		return err
	}
	if len(linear) > 0 {
		if err := writeLinearCutList(f, linear); err != nil {
			return err
		}
	}
	if err := writeShoppingList(f, results, linear); err != nil {
		return err
	}
	if err := writeRemnants(f, results, linear, minRemnant); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// writeSheetSummary adds the per-sheet consumption summary with utilization
// statistics.
func writeSheetSummary(f *excelize.File, results map[string]model.NestResult) error {
	const name = "Summary"
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	headers := []string{"Group", "Sheet", "Width (px)", "Height (px)", "Parts", "Utilization (%)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(name, cell, h)
	}

	var utils []float64
	row := 2
	for _, key := range sortedKeys(results) {
		for _, sheet := range results[key].Sheets {
			util := sheet.Utilization()
			utils = append(utils, util)
			values := []interface{}{key, sheet.Name, sheet.Width, sheet.Height, len(sheet.Parts), util}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(name, cell, v)
			}
			row++
		}
	}

	if len(utils) > 0 {
		row++
		f.SetCellValue(name, fmt.Sprintf("A%d", row), "Sheets used")
		f.SetCellValue(name, fmt.Sprintf("B%d", row), len(utils))
		row++
		f.SetCellValue(name, fmt.Sprintf("A%d", row), "Mean utilization (%)")
		f.SetCellValue(name, fmt.Sprintf("B%d", row), stat.Mean(utils, nil))
		if len(utils) > 1 {
			row++
			f.SetCellValue(name, fmt.Sprintf("A%d", row), "Std dev (%)")
			f.SetCellValue(name, fmt.Sprintf("B%d", row), stat.StdDev(utils, nil))
		}
	}
	return nil
}

// writeShoppingList adds the purchase quantities: one block for sheet goods,
// one for linear stock.
func writeShoppingList(f *excelize.File, results map[string]model.NestResult, linear map[float64]engine.LinearResult) error {
	const name = "Shopping List"
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create shopping sheet: %w", err)
	}

	stocks := make(map[float64][]model.NestedStock, len(linear))
	for w, res := range linear {
		stocks[w] = res.Stocks
	}
	list := model.BuildShoppingList(results, stocks)

	headers := []string{"Material", "Thickness", "Width (px)", "Height (px)", "Quantity"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(name, cell, h)
	}
	row := 2
	for _, item := range list.Sheets {
		values := []interface{}{item.Material, item.Thickness, item.Width, item.Height, item.Quantity}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(name, cell, v)
		}
		row++
	}

	if len(list.Stock) > 0 {
		row++
		f.SetCellValue(name, fmt.Sprintf("A%d", row), "Linear Stock")
		row++
		for i, h := range []string{"Material", "Width", "Length", "Quantity"} {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(name, cell, h)
		}
		row++
		for _, item := range list.Stock {
			values := []interface{}{item.Material, item.Width, item.Length, item.Quantity}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(name, cell, v)
			}
			row++
		}
	}
	return nil
}

// writeRemnants adds the usable leftovers detected on packed sheets and
// linear stock, for return to inventory. The worksheet is omitted when
// nothing qualifies.
func writeRemnants(f *excelize.File, results map[string]model.NestResult, linear map[float64]engine.LinearResult, minRemnant float64) error {
	type groupRemnants struct {
		key      string
		remnants []model.Remnant
	}
	var sheetRems []groupRemnants
	for _, key := range sortedKeys(results) {
		if rems := model.DetectAllRemnants(results[key]); len(rems) > 0 {
			sheetRems = append(sheetRems, groupRemnants{key: key, remnants: rems})
		}
	}

	widths := make([]float64, 0, len(linear))
	for w := range linear {
		widths = append(widths, w)
	}
	sort.Float64s(widths)
	stockRems := make(map[float64][]model.StockRemnant)
	total := 0
	for _, w := range widths {
		rems := model.DetectStockRemnants(linear[w].Stocks, minRemnant)
		stockRems[w] = rems
		total += len(rems)
	}

	if len(sheetRems) == 0 && total == 0 {
		return nil
	}

	const name = "Remnants"
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create remnants sheet: %w", err)
	}

	headers := []string{"Group", "Sheet", "X (px)", "Y (px)", "Width (px)", "Height (px)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(name, cell, h)
	}
	row := 2
	for _, g := range sheetRems {
		for _, r := range g.remnants {
			values := []interface{}{g.key, r.SheetName, r.X, r.Y, r.Width, r.Height}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(name, cell, v)
			}
			row++
		}
	}

	if total > 0 {
		row++
		f.SetCellValue(name, fmt.Sprintf("A%d", row), "Linear Stock")
		row++
		for i, h := range []string{"Material", "Width", "Length"} {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(name, cell, h)
		}
		row++
		for _, w := range widths {
			for _, r := range stockRems[w] {
				values := []interface{}{r.Material, r.Width, r.Length}
				for i, v := range values {
					cell, _ := excelize.CoordinatesToCellName(i+1, row)
					f.SetCellValue(name, cell, v)
				}
				row++
			}
		}
	}
	return nil
}

// writeLinearCutList adds the 1D cut list for linear stock, one row per cut.
func writeLinearCutList(f *excelize.File, linear map[float64]engine.LinearResult) error {
	const name = "Linear Cuts"
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create linear sheet: %w", err)
	}

	headers := []string{"Width", "Stock #", "Stock Length", "Part", "Copy", "Position", "Length"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(name, cell, h)
	}

	widths := make([]float64, 0, len(linear))
	for w := range linear {
		widths = append(widths, w)
	}
	sort.Float64s(widths)

	row := 2
	for _, w := range widths {
		for _, item := range engine.CutList(linear[w].Stocks) {
			values := []interface{}{w, item.StockNum, item.StockLen, item.PartName, item.CopyNum, item.Position, item.Length}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(name, cell, v)
			}
			row++
		}
	}
	return nil
}
