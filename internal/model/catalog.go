package model

// Catalog holds the user's saved sheet sizes and stock lengths, keyed for
// assignment to material groups.
type Catalog struct {
	Sizes        []SheetSize `json:"sizes"`
	StockLengths []float64   `json:"stock_lengths"` // linear stock, in inches
}

// DefaultCatalog returns a catalog populated with common hobby sheet sizes.
func DefaultCatalog() Catalog {
	return Catalog{
		Sizes: []SheetSize{
			{Name: "1/16 x 3 x 36 Balsa", Width: 3, Height: 36, Unit: UnitInch},
			{Name: "1/8 x 3 x 36 Balsa", Width: 3, Height: 36, Unit: UnitInch},
			{Name: "1/8 x 4 x 36 Balsa", Width: 4, Height: 36, Unit: UnitInch},
			{Name: "3/16 x 3 x 36 Balsa", Width: 3, Height: 36, Unit: UnitInch},
			{Name: "1/4 x 3 x 36 Balsa", Width: 3, Height: 36, Unit: UnitInch},
			{Name: "3/32 x 4 x 12 Plywood", Width: 4, Height: 12, Unit: UnitInch},
			{Name: "1/8 x 6 x 12 Plywood", Width: 6, Height: 12, Unit: UnitInch},
			{Name: "1/8 x 12 x 12 Plywood", Width: 12, Height: 12, Unit: UnitInch},
			{Name: "1/4 x 12 x 12 Plywood", Width: 12, Height: 12, Unit: UnitInch},
			{Name: "A4 Paper", Width: 210, Height: 297, Unit: UnitMillimeter},
			{Name: "Letter Paper", Width: 8.5, Height: 11, Unit: UnitInch},
		},
		StockLengths: []float64{24, 36, 48},
	}
}

// MaterialTypes lists the common materials offered for grouping.
var MaterialTypes = []string{
	"Balsa",
	"Lite-Ply",
	"Plywood",
	"Basswood",
	"Spruce",
	"Hardwood",
	"Carbon Fiber",
	"Foam",
	"Other",
}

// ThicknessOptions lists the common sheet thicknesses in inches.
var ThicknessOptions = []float64{
	1.0 / 32, 1.0 / 16, 3.0 / 32, 1.0 / 8, 5.0 / 32,
	3.0 / 16, 1.0 / 4, 5.0 / 16, 3.0 / 8, 1.0 / 2,
}

// FindSize returns a pointer to the sheet size with the given name, or nil.
func (c *Catalog) FindSize(name string) *SheetSize {
	for i := range c.Sizes {
		if c.Sizes[i].Name == name {
			return &c.Sizes[i]
		}
	}
	return nil
}

// SizeNames returns the catalog's sheet size names in order.
func (c *Catalog) SizeNames() []string {
	names := make([]string, len(c.Sizes))
	for i, s := range c.Sizes {
		names[i] = s.Name
	}
	return names
}

// ResolveSizes maps a list of size names to SheetSize values, skipping names
// not present in the catalog.
func (c *Catalog) ResolveSizes(names []string) []SheetSize {
	var sizes []SheetSize
	for _, n := range names {
		if s := c.FindSize(n); s != nil {
			sizes = append(sizes, *s)
		}
	}
	return sizes
}
