package model

import (
	"math"
	"sort"
)

// ShoppingItem is one sheet line on a shopping list: how many sheets of a
// given material, thickness and pixel size a nesting run consumed.
type ShoppingItem struct {
	Material  string  `json:"material"`
	Thickness float64 `json:"thickness"`
	Width     int     `json:"width_px"`
	Height    int     `json:"height_px"`
	Quantity  int     `json:"quantity"`
}

// StockShoppingItem is one linear-stock line on a shopping list.
type StockShoppingItem struct {
	Material string  `json:"material"`
	Width    float64 `json:"width"`
	Length   float64 `json:"length"`
	Quantity int     `json:"quantity"`
}

// ShoppingList aggregates sheet and linear stock needs without placement
// detail.
type ShoppingList struct {
	Sheets []ShoppingItem      `json:"sheets"`
	Stock  []StockShoppingItem `json:"linear_stock"`
}

// BuildShoppingList aggregates nesting results into purchase quantities,
// grouping sheets by (material, thickness, size) and stock by
// (material, width, length). Output order is deterministic.
func BuildShoppingList(sheetResults map[string]NestResult, linearResults map[float64][]NestedStock) ShoppingList {
	var list ShoppingList

	counts := make(map[ShoppingItem]int)
	for _, result := range sheetResults {
		for _, sheet := range result.Sheets {
			key := ShoppingItem{
				Material:  sheet.Material,
				Thickness: sheet.Thickness,
				Width:     sheet.Width,
				Height:    sheet.Height,
			}
			counts[key]++
		}
	}
	for key, n := range counts {
		key.Quantity = n
		list.Sheets = append(list.Sheets, key)
	}
	sort.Slice(list.Sheets, func(i, j int) bool {
		a, b := list.Sheets[i], list.Sheets[j]
		if a.Material != b.Material {
			return a.Material < b.Material
		}
		if a.Thickness != b.Thickness {
			return a.Thickness < b.Thickness
		}
		if a.Width != b.Width {
			return a.Width < b.Width
		}
		return a.Height < b.Height
	})

	stockCounts := make(map[StockShoppingItem]int)
	for width, stocks := range linearResults {
		for _, st := range stocks {
			key := StockShoppingItem{
				Material: st.Material,
				Width:    width,
				Length:   st.Length,
			}
			stockCounts[key]++
		}
	}
	for key, n := range stockCounts {
		key.Quantity = n
		list.Stock = append(list.Stock, key)
	}
	sort.Slice(list.Stock, func(i, j int) bool {
		a, b := list.Stock[i], list.Stock[j]
		if a.Material != b.Material {
			return a.Material < b.Material
		}
		if a.Width != b.Width {
			return a.Width < b.Width
		}
		return a.Length < b.Length
	})

	return list
}

// PurchaseEstimate summarizes the material consumption of one group's result
// in physical units.
type PurchaseEstimate struct {
	SheetsUsed     int     `json:"sheets_used"`
	TotalSheetArea float64 `json:"total_sheet_area"` // square inches
	UsedArea       float64 `json:"used_area"`        // square inches, bounding boxes
	BoardFeet      float64 `json:"board_feet"`
	WastePercent   float64 `json:"waste_percent"`
	SheetsToBuy    int     `json:"sheets_to_buy"`
}

// squareInchesPerBoardFoot: 1 board foot = 12" x 12" x 1" = 144 sq in of sheet.
const squareInchesPerBoardFoot = 144.0

// EstimateMaterial converts a group's nesting result into purchase numbers.
// wastePercent adds a buying margin on top of the sheets actually used.
func EstimateMaterial(result NestResult, dpi, wastePercent float64) PurchaseEstimate {
	if dpi <= 0 {
		return PurchaseEstimate{WastePercent: wastePercent}
	}
	pxPerSqIn := dpi * dpi

	var sheetArea, usedArea float64
	for _, s := range result.Sheets {
		sheetArea += float64(s.Width*s.Height) / pxPerSqIn
		usedArea += float64(s.UsedArea()) / pxPerSqIn
	}

	used := result.SheetCount()
	toBuy := int(math.Ceil(float64(used) * (1 + wastePercent/100.0)))
	if used > 0 && toBuy < used {
		toBuy = used
	}

	return PurchaseEstimate{
		SheetsUsed:     used,
		TotalSheetArea: sheetArea,
		UsedArea:       usedArea,
		BoardFeet:      sheetArea / squareInchesPerBoardFoot,
		WastePercent:   wastePercent,
		SheetsToBuy:    toBuy,
	}
}
