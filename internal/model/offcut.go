package model

import (
	"sort"

	"github.com/google/uuid"
)

// Remnant represents a usable rectangular leftover area on a packed sheet,
// recorded so it can be returned to inventory.
type Remnant struct {
	ID        string  `json:"id"`
	SheetID   string  `json:"sheet_id"`
	SheetName string  `json:"sheet_name"`
	Material  string  `json:"material"`
	Thickness float64 `json:"thickness"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

// Area returns the remnant area in square pixels.
func (r Remnant) Area() int {
	return r.Width * r.Height
}

// MinRemnantDimension is the minimum width or height (in pixels) for a
// leftover area to be considered a usable remnant.
const MinRemnantDimension = 50

// MinRemnantArea is the minimum area (in square pixels) for a leftover area
// to be considered usable.
const MinRemnantArea = 10000

// DetectRemnants identifies rectangular leftover areas on a packed sheet that
// are large enough to reuse: the strip right of all parts and the strip below
// them, each yielding one remnant when it clears the minimum thresholds.
func DetectRemnants(s Sheet) []Remnant {
	if len(s.Parts) == 0 {
		return []Remnant{{
			ID:        uuid.New().String()[:8],
			SheetID:   s.ID,
			SheetName: s.Name,
			Material:  s.Material,
			Thickness: s.Thickness,
			Width:     s.Width,
			Height:    s.Height,
		}}
	}

	var maxRight, maxBottom int
	for _, p := range s.Parts {
		if right := p.X + p.Width; right > maxRight {
			maxRight = right
		}
		if bottom := p.Y + p.Height; bottom > maxBottom {
			maxBottom = bottom
		}
	}

	var remnants []Remnant

	rightW := s.Width - maxRight
	if rightW >= MinRemnantDimension && s.Height >= MinRemnantDimension && rightW*s.Height >= MinRemnantArea {
		remnants = append(remnants, Remnant{
			ID:        uuid.New().String()[:8],
			SheetID:   s.ID,
			SheetName: s.Name,
			Material:  s.Material,
			Thickness: s.Thickness,
			X:         maxRight,
			Y:         0,
			Width:     rightW,
			Height:    s.Height,
		})
	}

	// Bottom strip only spans up to the parts' right edge so it cannot
	// overlap the right strip.
	bottomH := s.Height - maxBottom
	bottomW := maxRight
	if bottomW > s.Width {
		bottomW = s.Width
	}
	if bottomH >= MinRemnantDimension && bottomW >= MinRemnantDimension && bottomH*bottomW >= MinRemnantArea {
		remnants = append(remnants, Remnant{
			ID:        uuid.New().String()[:8],
			SheetID:   s.ID,
			SheetName: s.Name,
			Material:  s.Material,
			Thickness: s.Thickness,
			X:         0,
			Y:         maxBottom,
			Width:     bottomW,
			Height:    bottomH,
		})
	}

	sort.Slice(remnants, func(i, j int) bool {
		return remnants[i].Area() > remnants[j].Area()
	})
	return remnants
}

// DetectAllRemnants finds remnants across every sheet of a nesting result.
func DetectAllRemnants(result NestResult) []Remnant {
	var all []Remnant
	for _, s := range result.Sheets {
		all = append(all, DetectRemnants(s)...)
	}
	return all
}

// StockRemnant represents the usable trailing length of a linear stock piece.
type StockRemnant struct {
	ID       string  `json:"id"`
	StockID  string  `json:"stock_id"`
	Material string  `json:"material"`
	Width    float64 `json:"width"`
	Length   float64 `json:"length"`
}

// DetectStockRemnants records trailing stock lengths at or above minLength.
func DetectStockRemnants(stocks []NestedStock, minLength float64) []StockRemnant {
	var remnants []StockRemnant
	for _, st := range stocks {
		rem := st.RemainingLength()
		if rem >= minLength && rem > 0 {
			remnants = append(remnants, StockRemnant{
				ID:       uuid.New().String()[:8],
				StockID:  st.ID,
				Material: st.Material,
				Width:    st.Width,
				Length:   rem,
			})
		}
	}
	return remnants
}
