// plannest — raster-mask nesting for laser/CNC fabrication.
//
// Reads an XLSX part table plus a directory of mask bitmaps, groups parts by
// material and thickness, packs each group onto stock sheets, and writes the
// packed layouts as PNG previews, a PDF report, DXF outlines, an XLSX cut
// list, QR part labels and G-code.
//
// Build:
//
//	go build -o plannest ./cmd/plannest
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/piwi3910/plannest/internal/engine"
	"github.com/piwi3910/plannest/internal/export"
	"github.com/piwi3910/plannest/internal/gcode"
	"github.com/piwi3910/plannest/internal/importer"
	"github.com/piwi3910/plannest/internal/model"
	"github.com/piwi3910/plannest/internal/project"
)

func main() {
	var (
		partsPath  = flag.String("parts", "", "XLSX part table (required)")
		masksDir   = flag.String("masks", ".", "directory containing mask bitmaps")
		outDir     = flag.String("out", "", "output directory (default from config)")
		configPath = flag.String("config", "", "optional viper config file (yaml/json/toml)")
		dpi        = flag.Float64("dpi", 0, "source canvas DPI (overrides config)")
		spacing    = flag.Int("spacing", -1, "spacing margin between parts, px (overrides config)")
		strategy   = flag.String("strategy", "", "packing strategy (overrides config)")
		noRotate   = flag.Bool("no-rotate", false, "disable 90 degree part rotation")
		singles    = flag.Bool("singles", false, "ignore part quantities, one copy each")
		profile    = flag.String("profile", "", "cutting profile name for G-code output")
		template   = flag.String("template", "", "saved nesting template to apply")
		optimize   = flag.Bool("optimize", false, "search part orderings for a tighter layout")
		compare    = flag.Bool("compare", false, "log alternative strategy results before nesting")
	)
	flag.Parse()

	if *partsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	appCfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg := appCfg.Nesting

	// A template replaces the saved config and narrows sheet and stock
	// choices in run(); the config file and flags still override it.
	var tpl *model.NestingTemplate
	if *template != "" {
		store, err := project.LoadDefaultTemplates()
		if err != nil {
			log.Fatalf("load templates: %v", err)
		}
		tpl = store.FindByName(*template)
		if tpl == nil {
			log.Fatalf("template %q not found (have: %v)", *template, store.Names())
		}
		cfg = tpl.Config
	}

	// Optional config file; flags override it below.
	if *configPath != "" {
		v := viper.New()
		v.SetConfigFile(*configPath)
		if err := v.ReadInConfig(); err != nil {
			log.Fatalf("read config file: %v", err)
		}
		if v.IsSet("dpi") {
			cfg.DPI = v.GetFloat64("dpi")
		}
		if v.IsSet("spacing") {
			cfg.Spacing = v.GetInt("spacing")
		}
		if v.IsSet("strategy") {
			cfg.Strategy = v.GetString("strategy")
		}
		if v.IsSet("allow_rotation") {
			cfg.AllowRotation = v.GetBool("allow_rotation")
		}
		if v.IsSet("respect_quantity") {
			cfg.RespectQuantity = v.GetBool("respect_quantity")
		}
		if v.IsSet("kerf") {
			cfg.Kerf = v.GetFloat64("kerf")
		}
		if v.IsSet("output_dir") {
			appCfg.OutputDir = v.GetString("output_dir")
		}
	}

	if *dpi > 0 {
		cfg.DPI = *dpi
	}
	if *spacing >= 0 {
		cfg.Spacing = *spacing
	}
	if *strategy != "" {
		cfg.Strategy = *strategy
	}
	if *noRotate {
		cfg.AllowRotation = false
	}
	if *singles {
		cfg.RespectQuantity = false
	}

	out := appCfg.OutputDir
	if *outDir != "" {
		out = *outDir
	}

	if err := run(*partsPath, *masksDir, out, *profile, cfg, tpl, *optimize, *compare); err != nil {
		log.Fatalf("%v", err)
	}
}

// estimateWastePercent is the buying margin added on top of sheets used.
const estimateWastePercent = 20.0

func run(partsPath, masksDir, outDir, profileName string, cfg model.NestingConfig, tpl *model.NestingTemplate, optimize, compare bool) error {
	imported := importer.ReadPartTable(partsPath, masksDir)
	for _, w := range imported.Warnings {
		log.Printf("warning: %s", w)
	}
	if len(imported.Errors) > 0 {
		for _, e := range imported.Errors {
			log.Printf("error: %s", e)
		}
		return fmt.Errorf("part import failed")
	}
	if len(imported.Groups) == 0 && len(imported.LinearParts) == 0 {
		return fmt.Errorf("no parts imported")
	}

	catalog, _, err := project.LoadOrCreateCatalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	// Every group gets the full catalog; template assignments narrow the
	// groups they name.
	sheetConfigs := make(map[string][]model.SheetSize)
	for _, g := range imported.Groups {
		sheetConfigs[g.Key()] = catalog.Sizes
	}
	if tpl != nil {
		for key, sizes := range tpl.ResolveSheets(&catalog) {
			sheetConfigs[key] = sizes
		}
	}

	nester := engine.NewNester(cfg)
	if optimize {
		search := engine.DefaultOrderSearchConfig()
		nester.Search = &search
	}

	if compare {
		scenarios := engine.BuildDefaultScenarios(cfg)
		for key, comparisons := range nester.CompareByMaterial(imported.Groups, sheetConfigs, scenarios) {
			for _, c := range comparisons {
				if c.Err != nil {
					log.Printf("compare %s / %s: %v", key, c.Scenario.Name, c.Err)
					continue
				}
				log.Printf("compare %s / %s: %d sheets, %d placed, %.1f%% utilization",
					key, c.Scenario.Name, c.SheetsUsed, c.Placed, c.Utilization)
			}
		}
	}

	results, report, err := nester.NestByMaterial(imported.Groups, sheetConfigs)
	if err != nil {
		return fmt.Errorf("nesting: %w", err)
	}
	log.Printf("%s", report.String())

	for _, g := range report.Groups {
		if !g.Skipped && g.Placed < g.Candidates {
			log.Printf("warning: group %s placed %d of %d candidates", g.Key, g.Placed, g.Candidates)
		}
	}

	var linear map[float64]engine.LinearResult
	if len(imported.LinearParts) > 0 {
		var stockConfigs map[float64][]float64
		if tpl != nil {
			stockConfigs = tpl.ResolveStocks(imported.LinearParts)
		}
		ln := engine.NewLinearNester(cfg.Kerf, cfg.MinRemnant)
		linear = ln.NestByWidth(imported.LinearParts, stockConfigs, catalog.StockLengths)
		for _, res := range linear {
			for _, w := range res.Warnings {
				log.Printf("warning: %s", w)
			}
		}
	}

	if len(results) == 0 && len(linear) == 0 {
		return fmt.Errorf("nothing nested")
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	if len(results) > 0 {
		paths, err := export.WriteSheetPNGs(outDir, results)
		if err != nil {
			return fmt.Errorf("write PNGs: %w", err)
		}
		log.Printf("wrote %d sheet previews", len(paths))

		if err := export.WriteLayoutPDF(filepath.Join(outDir, "layout.pdf"), results, cfg.DPI); err != nil {
			return fmt.Errorf("write PDF: %w", err)
		}
		if err := export.WriteLayoutDXF(filepath.Join(outDir, "layout.dxf"), results); err != nil {
			return fmt.Errorf("write DXF: %w", err)
		}
		if err := export.WriteLabelsPDF(filepath.Join(outDir, "labels.pdf"), results); err != nil {
			return fmt.Errorf("write labels: %w", err)
		}

		if profileName != "" {
			prof, err := project.FindProfile(project.DefaultProfilesPath(), profileName)
			if err != nil {
				return err
			}
			gen := gcode.New(prof, cfg.DPI)
			for key, result := range results {
				for i, code := range gen.GenerateAll(result) {
					name := fmt.Sprintf("%s_sheet%d.nc", key, i+1)
					if err := os.WriteFile(filepath.Join(outDir, name), []byte(code), 0644); err != nil {
						return fmt.Errorf("write gcode: %w", err)
					}
				}
			}
		}
	}

	if err := export.WriteCutListXLSX(filepath.Join(outDir, "cutlist.xlsx"), results, linear, cfg.MinRemnant); err != nil {
		return fmt.Errorf("write cut list: %w", err)
	}

	for key, result := range results {
		est := model.EstimateMaterial(result, cfg.DPI, estimateWastePercent)
		log.Printf("group %s: %d sheets, %.1f%% utilization, buy %d (%.1f board ft)",
			key, result.SheetCount(), result.TotalUtilization(), est.SheetsToBuy, est.BoardFeet)
	}
	return nil
}
