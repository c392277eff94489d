package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/plannest/internal/model"
)

// DefaultCatalogPath returns the default file path for the sheet-size
// catalog, located at ~/.plannest/catalog.json.
func DefaultCatalogPath() string {
	return filepath.Join(DefaultConfigDir(), "catalog.json")
}

// SaveCatalog writes the catalog to the specified JSON file.
func SaveCatalog(path string, catalog model.Catalog) error {
	return writeJSON(path, catalog)
}

// LoadCatalog reads the catalog from the specified JSON file. If the file
// does not exist, it returns the default catalog and saves it so the presets
// are editable.
func LoadCatalog(path string) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			catalog := model.DefaultCatalog()
			if saveErr := SaveCatalog(path, catalog); saveErr != nil {
				return catalog, saveErr
			}
			return catalog, nil
		}
		return model.Catalog{}, err
	}
	var catalog model.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return model.Catalog{}, err
	}
	return catalog, nil
}

// LoadOrCreateCatalog loads the catalog from the default path, creating it
// with the preset sizes when missing.
func LoadOrCreateCatalog() (model.Catalog, string, error) {
	path := DefaultCatalogPath()
	catalog, err := LoadCatalog(path)
	return catalog, path, err
}

// ImportCatalog merges sizes from another catalog file into the existing
// one. Sizes with duplicate names are skipped.
func ImportCatalog(path string, existing model.Catalog) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Catalog
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	names := make(map[string]bool, len(existing.Sizes))
	for _, s := range existing.Sizes {
		names[s.Name] = true
	}
	for _, s := range imported.Sizes {
		if !names[s.Name] {
			existing.Sizes = append(existing.Sizes, s)
			names[s.Name] = true
		}
	}

	lengths := make(map[float64]bool, len(existing.StockLengths))
	for _, l := range existing.StockLengths {
		lengths[l] = true
	}
	for _, l := range imported.StockLengths {
		if !lengths[l] {
			existing.StockLengths = append(existing.StockLengths, l)
			lengths[l] = true
		}
	}

	return existing, nil
}
