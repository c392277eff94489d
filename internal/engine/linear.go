package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/piwi3910/plannest/internal/model"
)

// LinearNester nests strip and stick parts onto linear stock lengths using
// First Fit Decreasing. Kerf is the cut width consumed between parts.
type LinearNester struct {
	Kerf       float64
	MinRemnant float64
}

// NewLinearNester returns a linear nester with the given kerf and minimum
// usable remnant length.
func NewLinearNester(kerf, minRemnant float64) *LinearNester {
	return &LinearNester{Kerf: kerf, MinRemnant: minRemnant}
}

// LinearResult holds the nested stocks for one cross-section width plus any
// warnings raised during placement.
type LinearResult struct {
	Stocks   []model.NestedStock `json:"stocks"`
	Warnings []string            `json:"warnings,omitempty"`
}

// NestLinear places parts onto stock pieces of the given lengths, longest
// part first. New stock is cut from the smallest configured length that
// fits; a part longer than every configured length is still placed, alone,
// on the longest stock with a warning so the cut list stays complete.
func (ln *LinearNester) NestLinear(parts []model.LinearPart, stockLengths []float64, material string) LinearResult {
	var result LinearResult
	if len(parts) == 0 || len(stockLengths) == 0 {
		return result
	}

	type item struct {
		part model.LinearPart
		copy int
	}
	var items []item
	for _, part := range parts {
		qty := part.Quantity
		if qty < 1 {
			qty = 1
		}
		for c := 1; c <= qty; c++ {
			items = append(items, item{part: part, copy: c})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].part.Length > items[j].part.Length
	})

	sorted := make([]float64, len(stockLengths))
	copy(sorted, stockLengths)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	var stocks []*model.NestedStock
	for _, it := range items {
		need := it.part.Length + ln.Kerf

		placed := false
		for _, stock := range stocks {
			if stock.RemainingLength() >= need {
				position := 0.0
				for _, p := range stock.Parts {
					if end := p.EndPosition() + ln.Kerf; end > position {
						position = end
					}
				}
				stock.Parts = append(stock.Parts, model.NestedLinearPart{
					Part:     it.part,
					Position: position,
					CopyNum:  it.copy,
				})
				placed = true
				break
			}
		}
		if placed {
			continue
		}

		// Smallest stock the part fits on; fall back to the longest when
		// nothing is long enough.
		length := 0.0
		for i := len(sorted) - 1; i >= 0; i-- {
			if sorted[i] >= need {
				length = sorted[i]
				break
			}
		}
		if length == 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("part %s (%.2f) exceeds available stock", it.part.Name, it.part.Length))
			length = sorted[0]
		}

		stocks = append(stocks, &model.NestedStock{
			ID:       uuid.New().String()[:8],
			Length:   length,
			Width:    it.part.Width,
			Material: material,
			Parts: []model.NestedLinearPart{
				{Part: it.part, Position: 0, CopyNum: it.copy},
			},
		})
	}

	result.Stocks = make([]model.NestedStock, len(stocks))
	for i, s := range stocks {
		result.Stocks[i] = *s
	}
	return result
}

// NestByWidth nests parts grouped by cross-section width. stockConfigs maps
// a width to the stock lengths available for it; widths with no entry use
// the default lengths. Widths are processed in ascending order so the output
// is deterministic.
func (ln *LinearNester) NestByWidth(parts []model.LinearPart, stockConfigs map[float64][]float64, defaultLengths []float64) map[float64]LinearResult {
	byWidth := make(map[float64][]model.LinearPart)
	for _, part := range parts {
		byWidth[part.Width] = append(byWidth[part.Width], part)
	}

	widths := make([]float64, 0, len(byWidth))
	for w := range byWidth {
		widths = append(widths, w)
	}
	sort.Float64s(widths)

	results := make(map[float64]LinearResult)
	for _, w := range widths {
		group := byWidth[w]
		lengths := stockConfigs[w]
		if len(lengths) == 0 {
			lengths = defaultLengths
		}
		material := group[0].Material
		nested := ln.NestLinear(group, lengths, material)
		if len(nested.Stocks) > 0 {
			results[w] = nested
		}
	}
	return results
}

// CutItem is one row of the linear cut list.
type CutItem struct {
	StockNum int     `json:"stock_num"`
	StockLen float64 `json:"stock_len"`
	PartName string  `json:"part_name"`
	CopyNum  int     `json:"copy_num"`
	Position float64 `json:"position"`
	Length   float64 `json:"length"`
}

// CutList flattens nested stocks into cut rows ordered by stock number and
// position along the stock.
func CutList(stocks []model.NestedStock) []CutItem {
	var items []CutItem
	for i, stock := range stocks {
		for _, p := range stock.Parts {
			items = append(items, CutItem{
				StockNum: i + 1,
				StockLen: stock.Length,
				PartName: p.Part.Name,
				CopyNum:  p.CopyNum,
				Position: p.Position,
				Length:   p.Part.Length,
			})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].StockNum != items[j].StockNum {
			return items[i].StockNum < items[j].StockNum
		}
		return items[i].Position < items[j].Position
	})
	return items
}

// LinearSummary aggregates a set of nested stocks for reporting.
type LinearSummary struct {
	StockCount  int     `json:"stock_count"`
	TotalLength float64 `json:"total_length"`
	UsedLength  float64 `json:"used_length"`
	Utilization float64 `json:"utilization"`
	PartsCount  int     `json:"parts_count"`
}

// Summarize computes totals across nested stocks.
func Summarize(stocks []model.NestedStock) LinearSummary {
	var s LinearSummary
	s.StockCount = len(stocks)
	for _, stock := range stocks {
		s.TotalLength += stock.Length
		s.UsedLength += stock.UsedLength()
		s.PartsCount += len(stock.Parts)
	}
	if s.TotalLength > 0 {
		s.Utilization = s.UsedLength / s.TotalLength * 100.0
	}
	return s
}
