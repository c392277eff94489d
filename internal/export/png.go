package export

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/piwi3910/plannest/internal/model"
	"github.com/piwi3910/plannest/internal/render"
)

// WriteSheetPNGs renders every packed sheet to a PNG file in dir, named
// "<group>_sheet<N>.png". It returns the written paths in sorted group
// order.
func WriteSheetPNGs(dir string, results map[string]model.NestResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	renderer := render.New()
	var paths []string
	for _, key := range sortedKeys(results) {
		for i, sheet := range results[key].Sheets {
			img := renderer.Render(sheet)
			path := filepath.Join(dir, fmt.Sprintf("%s_sheet%d.png", sanitizeLayerName(key), i+1))

			f, err := os.Create(path)
			if err != nil {
				return paths, err
			}
			if err := png.Encode(f, img); err != nil {
				f.Close()
				return paths, fmt.Errorf("encode %s: %w", path, err)
			}
			if err := f.Close(); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}
