package model

import (
	"time"

	"github.com/google/uuid"
)

// NestingTemplate captures a reusable nesting setup: which sheet sizes and
// stock lengths each material group uses, plus the run configuration.
// Results are intentionally excluded.
type NestingTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`

	// SheetAssignments maps a material group key to catalog sheet size names.
	SheetAssignments map[string][]string `json:"sheet_assignments"`
	// StockAssignments maps a material group key to linear stock lengths.
	StockAssignments map[string][]float64 `json:"stock_assignments"`

	Config NestingConfig `json:"config"`
}

// NewNestingTemplate creates a new template from the given assignments.
func NewNestingTemplate(name, description string, sheets map[string][]string, stocks map[string][]float64, cfg NestingConfig) NestingTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return NestingTemplate{
		ID:               uuid.New().String()[:8],
		Name:             name,
		Description:      description,
		CreatedAt:        now,
		UpdatedAt:        now,
		SheetAssignments: copyAssignments(sheets),
		StockAssignments: copyStockAssignments(stocks),
		Config:           cfg,
	}
}

// ResolveSheets maps the template's sheet assignments to concrete sizes using
// the catalog. Names missing from the catalog are silently dropped; group
// keys that resolve to no sizes are omitted.
func (t NestingTemplate) ResolveSheets(catalog *Catalog) map[string][]SheetSize {
	resolved := make(map[string][]SheetSize)
	for key, names := range t.SheetAssignments {
		sizes := catalog.ResolveSizes(names)
		if len(sizes) > 0 {
			resolved[key] = sizes
		}
	}
	return resolved
}

// ResolveStocks maps the template's stock assignments onto cross-section
// widths for the given linear parts. Assignments are keyed by
// GroupKey(material, width); widths with no assignment are omitted so the
// caller falls back to its default lengths.
func (t NestingTemplate) ResolveStocks(parts []LinearPart) map[float64][]float64 {
	resolved := make(map[float64][]float64)
	for _, p := range parts {
		key := GroupKey(p.Material, p.Width)
		if lengths, ok := t.StockAssignments[key]; ok && len(lengths) > 0 {
			resolved[p.Width] = lengths
		}
	}
	return resolved
}

// TemplateStore holds a collection of nesting templates.
type TemplateStore struct {
	Templates []NestingTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []NestingTemplate{},
	}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t NestingTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *NestingTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Names returns the template names in order.
func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *NestingTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

func copyAssignments(m map[string][]string) map[string][]string {
	cp := make(map[string][]string, len(m))
	for k, v := range m {
		names := make([]string, len(v))
		copy(names, v)
		cp[k] = names
	}
	return cp
}

func copyStockAssignments(m map[string][]float64) map[string][]float64 {
	cp := make(map[string][]float64, len(m))
	for k, v := range m {
		lengths := make([]float64, len(v))
		copy(lengths, v)
		cp[k] = lengths
	}
	return cp
}
