package model

// LinearPart represents a strip or stick part cut from linear stock rather
// than sheet goods: longerons, spars, leading edges. Length and Width are in
// physical stock units (inches).
type LinearPart struct {
	ObjectID   string  `json:"object_id"`
	InstanceID string  `json:"instance_id"`
	Name       string  `json:"name"`
	Length     float64 `json:"length"`
	Width      float64 `json:"width"`
	Material   string  `json:"material"`
	Quantity   int     `json:"quantity"`
}

// TotalLength returns the length needed for all copies of the part.
func (p LinearPart) TotalLength() float64 {
	return p.Length * float64(p.Quantity)
}

// NestedLinearPart is one copy of a LinearPart placed on a stock length.
type NestedLinearPart struct {
	Part     LinearPart `json:"part"`
	Position float64    `json:"position"`
	CopyNum  int        `json:"copy_num"`
}

// EndPosition returns where the cut ends along the stock.
func (n NestedLinearPart) EndPosition() float64 {
	return n.Position + n.Part.Length
}

// NestedStock represents one piece of linear stock with parts placed along it.
type NestedStock struct {
	ID       string             `json:"id"`
	Length   float64            `json:"length"`
	Width    float64            `json:"width"`
	Material string             `json:"material"`
	Parts    []NestedLinearPart `json:"parts"`
}

// UsedLength returns the summed part lengths, excluding kerf.
func (s NestedStock) UsedLength() float64 {
	var used float64
	for _, p := range s.Parts {
		used += p.Part.Length
	}
	return used
}

// Utilization returns the percentage of the stock length consumed by parts.
// Can exceed 100 when an oversized part overhangs the stock.
func (s NestedStock) Utilization() float64 {
	if s.Length == 0 {
		return 0
	}
	return s.UsedLength() / s.Length * 100.0
}

// Waste returns the stock length not consumed by parts. An oversized part
// overhanging the stock wastes nothing, so the result never goes negative.
func (s NestedStock) Waste() float64 {
	w := s.Length - s.UsedLength()
	if w < 0 {
		return 0
	}
	return w
}

// RemainingLength returns the unobstructed length after the last placed part.
func (s NestedStock) RemainingLength() float64 {
	var maxEnd float64
	for _, p := range s.Parts {
		if end := p.EndPosition(); end > maxEnd {
			maxEnd = end
		}
	}
	return s.Length - maxEnd
}
