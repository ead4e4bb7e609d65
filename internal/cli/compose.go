package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/piwi3910/nanofiche/internal/engine"
	"github.com/piwi3910/nanofiche/internal/export"
	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/piwi3910/nanofiche/internal/project"
	"github.com/spf13/cobra"
)

// outputFlags name the files written after a run.
type outputFlags struct {
	proof    string
	manifest string
	geojson  string
	layout   string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.proof, "proof", "", "write a proof PDF")
	fs.StringVar(&f.manifest, "manifest", "", "write a placement manifest (.csv or .xlsx)")
	fs.StringVar(&f.geojson, "geojson", "", "write placements as GeoJSON")
	fs.StringVar(&f.layout, "layout", "", "save the layout job file")
}

func (c *CLI) composeCommand() *cobra.Command {
	var (
		pack    packFlags
		region  regionFlags
		items   itemFlags
		outputs outputFlags
		binW    int
		binH    int
		binGap  int
	)

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Pack pages into a boundary region",
		Long: `Pack page items into a boundary region.

The boundary comes from a DXF or GeoJSON file (--outer) or a generated
shape (--shape with --width and --height). Exclusion files cut holes in it.
Items come from a CSV or Excel manifest (--items) or a run of identical
pages (--pages).

With --algorithm pixelgrid the items become fixed pixel bins (--bin-width,
--bin-height and --bin-gap at --dpi). The region is scaled until the grid
fits its bounds, and the grid is laid from the top-left corner.`,
		Example: `  nanofiche compose --shape circle --width 120 --pages 400 --proof disc.pdf
  nanofiche compose --outer plate.dxf --exclude logo.geojson --exclude-position center \
      --items pages.csv --algorithm optimized --manifest placements.xlsx
  nanofiche compose --outer plate.dxf --pages 64 --algorithm pixelgrid --bin-width 2000 --dpi 1200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			settings, err := c.baseSettings()
			if err != nil {
				return err
			}
			if err := pack.apply(cmd, &settings); err != nil {
				return err
			}

			changed := cmd.Flags().Changed
			if changed("bin-width") {
				settings.BinWidth = binW
			}
			if changed("bin-height") {
				settings.BinHeight = binH
			}
			if changed("bin-gap") {
				settings.BinGap = binGap
			}

			list, err := items.load(logger)
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			packer := engine.New(settings)
			packer.Logger = logger

			var (
				result model.PackingResult
				r      *geometry.Region
			)
			if settings.Algorithm == model.AlgorithmPixelGrid {
				outer, exclusions, err := region.shapes(logger)
				if err != nil {
					return err
				}
				result, r, err = packer.PackPixelGridRegion(list, outer, exclusions)
				if err != nil {
					return err
				}
			} else {
				if r, err = region.loadRegion(logger); err != nil {
					return err
				}
				if result, err = packer.Pack(list, r); err != nil {
					return err
				}
			}
			prog.done(fmt.Sprintf("Packed %d of %d items", result.Placed(), result.Requested))

			for _, w := range engine.FormatOverlapWarnings(engine.CheckOverlaps(result, settings.Gap)) {
				logger.Debug(w)
			}

			c.printResult(result)
			switch sc := engine.ClampCanvas(result.CanvasWidth, result.CanvasHeight, settings.DPI); {
			case sc.Exceeds:
				printWarning(c.out, "canvas is %dx%d px even at %d dpi, too large to rasterize", sc.WidthPx, sc.HeightPx, sc.DPI)
			case sc.Clamped:
				printWarning(c.out, "raster clamped to %d dpi (%dx%d px)", sc.DPI, sc.WidthPx, sc.HeightPx)
			}

			return c.writeOutputs(outputs, result, r, settings, logger)
		},
	}

	pack.register(cmd)
	region.register(cmd)
	items.register(cmd)
	outputs.register(cmd)
	d := model.DefaultSettings()
	fs := cmd.Flags()
	fs.IntVar(&binW, "bin-width", d.BinWidth, "pixelgrid bin width in pixels")
	fs.IntVar(&binH, "bin-height", d.BinHeight, "pixelgrid bin height in pixels")
	fs.IntVar(&binGap, "bin-gap", d.BinGap, "pixelgrid gap between bins in pixels")
	return cmd
}

// printResult prints the headline numbers of a run.
func (c *CLI) printResult(result model.PackingResult) {
	fmt.Fprintln(c.out, styleTitle.Render("Run "+result.RunID))
	printField(c.out, "Algorithm", "%s", result.Algorithm)
	printField(c.out, "Placed", "%d / %d", result.Placed(), result.Requested)
	printField(c.out, "Utilization", "%.1f%%", result.Utilization*100)
	if result.NominalHeight > 0 {
		printField(c.out, "Item height", "%.3f mm", result.NominalHeight)
	}
	if result.Rows > 0 {
		printField(c.out, "Grid", "%d x %d", result.Rows, result.Cols)
	}
	printField(c.out, "Canvas", "%.2f x %.2f", result.CanvasWidth, result.CanvasHeight)
	if result.Complete() {
		printSuccess(c.out, "all items placed")
	} else {
		printWarning(c.out, "%d items not placed", result.Shortfall())
	}
}

// writeOutputs writes each requested output file. region is nil for bin
// layouts.
func (c *CLI) writeOutputs(f outputFlags, result model.PackingResult, region *geometry.Region, settings model.PackSettings, logger *log.Logger) error {
	if f.proof != "" {
		if err := export.ExportProof(c.outputPath(f.proof), result, region, settings); err != nil {
			return fmt.Errorf("proof: %w", err)
		}
		printSuccess(c.out, "wrote %s", c.outputPath(f.proof))
	}

	if f.manifest != "" {
		path := c.outputPath(f.manifest)
		var err error
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx":
			err = export.WriteManifestXLSX(path, result)
		default:
			err = export.WriteManifestCSV(path, result)
		}
		if err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
		printSuccess(c.out, "wrote %s", path)
	}

	if f.geojson != "" {
		path := c.outputPath(f.geojson)
		if err := export.WritePlacementsGeoJSON(path, result, region); err != nil {
			return fmt.Errorf("geojson: %w", err)
		}
		printSuccess(c.out, "wrote %s", path)
	}

	if f.layout != "" {
		path := c.outputPath(f.layout)
		if err := project.SaveLayout(path, settings, result); err != nil {
			return fmt.Errorf("layout: %w", err)
		}
		printSuccess(c.out, "wrote %s", path)

		project.RememberJob(&c.Config, path)
		if err := project.SaveAppConfig(c.configPath, c.Config); err != nil {
			logger.Warn("could not record recent job", "err", err)
		}
	}
	return nil
}

// outputPath resolves relative output names against the configured output
// directory.
func (c *CLI) outputPath(name string) string {
	if filepath.IsAbs(name) || c.Config.OutputDir == "" || c.Config.OutputDir == "." {
		return name
	}
	return filepath.Join(c.Config.OutputDir, name)
}
