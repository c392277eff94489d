package model

import "github.com/google/uuid"

// Packing strategy names accepted by the nesting engine.
const (
	StrategyMaxRectsBSSF = "maxrects-bssf" // Best short side fit (default)
	StrategyMaxRectsBAF  = "maxrects-baf"  // Best area fit
	StrategyMaxRectsBLSF = "maxrects-blsf" // Best long side fit
)

// NestingConfig holds the run configuration for a nesting pass.
type NestingConfig struct {
	DPI             float64 `json:"dpi"`              // Pixels per inch of the source canvases
	Spacing         int     `json:"spacing"`          // Margin reserved around every part, in pixels
	AllowRotation   bool    `json:"allow_rotation"`   // Permit 90 degree part rotation
	RespectQuantity bool    `json:"respect_quantity"` // false = one copy per instance regardless of quantity
	Strategy        string  `json:"strategy"`         // Packing strategy name
	MaxSheets       int     `json:"max_sheets"`       // Safety ceiling on sheets per group
	ExtractContours bool    `json:"extract_contours"` // Trace part outlines during extraction

	// Linear stock settings
	Kerf       float64 `json:"kerf"`        // Saw cut width between linear parts, in stock units
	MinRemnant float64 `json:"min_remnant"` // Smallest leftover length worth keeping
}

// DefaultNestingConfig returns the configuration used when nothing is saved.
func DefaultNestingConfig() NestingConfig {
	return NestingConfig{
		DPI:             150.0,
		Spacing:         5,
		AllowRotation:   true,
		RespectQuantity: true,
		Strategy:        StrategyMaxRectsBSSF,
		MaxSheets:       100,
		ExtractContours: true,
		Kerf:            0.125,
		MinRemnant:      6.0,
	}
}

// AppConfig holds user-level application settings persisted between runs.
type AppConfig struct {
	OutputDir      string        `json:"output_dir"`
	RecentProjects []string      `json:"recent_projects"`
	Nesting        NestingConfig `json:"nesting"`
}

// DefaultAppConfig returns the configuration used on first run.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		OutputDir:      "nesting-output",
		RecentProjects: []string{},
		Nesting:        DefaultNestingConfig(),
	}
}

// CutProfile defines feed and power parameters for toolpath generation on a
// specific cutter. Power is the laser S value; feed rates are mm/min.
type CutProfile struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	FeedRate    float64 `json:"feed_rate"`
	TravelRate  float64 `json:"travel_rate"`
	Power       int     `json:"power"`
	Passes      int     `json:"passes"`
}

// NewCutProfile creates a new CutProfile with a generated ID.
func NewCutProfile(name string, feedRate, travelRate float64, power, passes int) CutProfile {
	return CutProfile{
		ID:         uuid.New().String()[:8],
		Name:       name,
		FeedRate:   feedRate,
		TravelRate: travelRate,
		Power:      power,
		Passes:     passes,
	}
}

// DefaultCutProfiles returns built-in profiles for common hobby materials.
func DefaultCutProfiles() []CutProfile {
	return []CutProfile{
		NewCutProfile("Balsa 1/16", 900, 3000, 450, 1),
		NewCutProfile("Balsa 1/8", 600, 3000, 600, 1),
		NewCutProfile("Plywood 1/8", 240, 3000, 850, 2),
		NewCutProfile("Paper / Card", 1500, 3000, 200, 1),
	}
}
