// Package importer reads the part intake for a nesting run: an XLSX part
// table naming each part's mask bitmap, material and quantity, plus the mask
// files themselves. It supports case-insensitive header recognition and
// collects row-scoped problems as warnings rather than failing the import.
package importer

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/piwi3910/plannest/internal/model"
	"github.com/xuri/excelize/v2"

	// Mask bitmap decoders.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// ImportResult holds the outcome of reading a part table.
type ImportResult struct {
	Groups      []model.MaterialGroup
	LinearParts []model.LinearPart
	Errors      []string
	Warnings    []string
}

// ColumnMapping maps semantic column roles to their indices in the table.
// Absent optional columns are -1.
type ColumnMapping struct {
	Name      int
	Mask      int
	Material  int
	Thickness int
	Quantity  int
	Type      int
	Length    int
	Width     int
}

// headerAliases maps canonical column names to accepted aliases (lowercase).
var headerAliases = map[string][]string{
	"name":      {"name", "part", "part name", "label", "description"},
	"mask":      {"mask", "mask file", "file", "bitmap", "image"},
	"material":  {"material", "mat", "stock"},
	"thickness": {"thickness", "thick", "t"},
	"quantity":  {"quantity", "qty", "count", "copies"},
	"type":      {"type", "obj type", "kind"},
	"length":    {"length", "len"},
	"width":     {"width", "w", "cross section", "section"},
}

// linearTypes lists the part types cut from linear stock rather than sheets.
var linearTypes = map[string]bool{
	"stick": true,
	"strip": true,
	"tube":  true,
	"dowel": true,
	"wire":  true,
}

// DetectColumns examines a header row and returns a ColumnMapping with
// case-insensitive alias matching. ok is false when no recognizable header
// was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Name: -1, Mask: -1, Material: -1, Thickness: -1,
		Quantity: -1, Type: -1, Length: -1, Width: -1,
	}

	found := false
	for i, cell := range row {
		norm := strings.ToLower(strings.TrimSpace(cell))
		for canonical, aliases := range headerAliases {
			for _, alias := range aliases {
				if norm != alias {
					continue
				}
				found = true
				switch canonical {
				case "name":
					mapping.Name = i
				case "mask":
					mapping.Mask = i
				case "material":
					mapping.Material = i
				case "thickness":
					mapping.Thickness = i
				case "quantity":
					mapping.Quantity = i
				case "type":
					mapping.Type = i
				case "length":
					mapping.Length = i
				case "width":
					mapping.Width = i
				}
			}
		}
	}
	return mapping, found
}

// ReadPartTable reads the XLSX part table at tablePath, loads each row's mask
// bitmap from maskDir, and assembles material groups keyed by material and
// thickness. Rows with a linear type become LinearParts instead. Malformed
// rows are reported as warnings and skipped.
func ReadPartTable(tablePath, maskDir string) ImportResult {
	var result ImportResult

	f, err := excelize.OpenFile(tablePath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open part table: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "part table has no worksheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read part table: %v", err))
		return result
	}
	if len(rows) < 2 {
		result.Errors = append(result.Errors, "part table has no data rows")
		return result
	}

	mapping, ok := DetectColumns(rows[0])
	if !ok || mapping.Name < 0 {
		result.Errors = append(result.Errors, "part table has no recognizable header row")
		return result
	}

	groups := make(map[string]*model.MaterialGroup)
	var groupOrder []string

	for rowNum, row := range rows[1:] {
		line := rowNum + 2

		name := cellAt(row, mapping.Name)
		if name == "" {
			continue
		}
		material := cellAt(row, mapping.Material)
		if material == "" {
			material = "Other"
		}
		thickness := parseFloat(cellAt(row, mapping.Thickness), 0)
		quantity := int(parseFloat(cellAt(row, mapping.Quantity), 1))
		if quantity < 1 {
			quantity = 1
		}

		partType := strings.ToLower(cellAt(row, mapping.Type))
		if linearTypes[partType] {
			length := parseFloat(cellAt(row, mapping.Length), 0)
			width := parseFloat(cellAt(row, mapping.Width), 0)
			if length <= 0 {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("row %d: linear part %q has no length, skipped", line, name))
				continue
			}
			result.LinearParts = append(result.LinearParts, model.LinearPart{
				ObjectID:   uuid.New().String()[:8],
				InstanceID: uuid.New().String()[:8],
				Name:       name,
				Length:     length,
				Width:      width,
				Material:   material,
				Quantity:   quantity,
			})
			continue
		}

		maskFile := cellAt(row, mapping.Mask)
		if maskFile == "" {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("row %d: part %q has no mask file, skipped", line, name))
			continue
		}
		m, err := LoadMask(filepath.Join(maskDir, maskFile))
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("row %d: part %q: %v", line, name, err))
			continue
		}

		key := model.GroupKey(material, thickness)
		group, exists := groups[key]
		if !exists {
			group = &model.MaterialGroup{
				Material:  material,
				Thickness: thickness,
				IsSheet:   true,
			}
			groups[key] = group
			groupOrder = append(groupOrder, key)
		}
		group.Items = append(group.Items, model.GroupItem{
			Object: model.Object{ID: uuid.New().String()[:8], Name: name},
			Instance: model.Instance{
				ID:       uuid.New().String()[:8],
				Quantity: quantity,
				Elements: []*image.Gray{m},
			},
		})
	}

	for _, key := range groupOrder {
		result.Groups = append(result.Groups, *groups[key])
	}
	return result
}

// LoadMask decodes a bitmap file into a binary mask: any pixel with non-zero
// luminance is set.
func LoadMask(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open mask: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode mask %s: %w", filepath.Base(path), err)
	}

	bounds := img.Bounds()
	m := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r|g|b != 0 {
				m.Pix[(y-bounds.Min.Y)*m.Stride+(x-bounds.Min.X)] = 255
			}
		}
	}
	return m, nil
}

// cellAt returns the trimmed cell value or "" when the column is absent.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseFloat parses a numeric cell, tolerating simple fractions like "1/8".
func parseFloat(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, err2 := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err1 == nil && err2 == nil && d != 0 {
			return n / d
		}
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}
