package cli

import (
	"errors"
	"fmt"

	"github.com/piwi3910/nanofiche/internal/engine"
	"github.com/spf13/cobra"
)

func (c *CLI) canvasCommand() *cobra.Command {
	var (
		widthMM  float64
		heightMM float64
		dpi      int
		targetMB float64
		bpp      int
	)

	cmd := &cobra.Command{
		Use:   "canvas",
		Short: "Show the raster size of a physical canvas",
		Long: `Convert a canvas size in millimetres to pixels at a resolution, lowering
the resolution when the raster would be too large to allocate. With
--target-mb the resolution is chosen to fit an uncompressed file size.`,
		Example: `  nanofiche canvas --width-mm 120 --height-mm 120 --dpi 12000
  nanofiche canvas --width-mm 120 --height-mm 120 --target-mb 500 --bpp 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if widthMM <= 0 || heightMM <= 0 {
				return errors.New("--width-mm and --height-mm must be positive")
			}

			settings, err := c.baseSettings()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dpi") {
				settings.DPI = dpi
			}
			if targetMB > 0 {
				if bpp <= 0 {
					return fmt.Errorf("--bpp must be positive, got %d", bpp)
				}
				settings.DPI = engine.DPIForTargetSize(widthMM, heightMM, targetMB, bpp)
				printField(c.out, "Target", "%.1f MiB at %d bpp", targetMB, bpp)
			}
			if settings.DPI <= 0 {
				return fmt.Errorf("dpi must be positive, got %d", settings.DPI)
			}

			sc := engine.ClampCanvas(widthMM, heightMM, settings.DPI)
			printField(c.out, "Canvas", "%.2f x %.2f mm", widthMM, heightMM)
			printField(c.out, "DPI", "%d", sc.DPI)
			printField(c.out, "Pixels", "%d x %d", sc.WidthPx, sc.HeightPx)
			switch {
			case sc.Exceeds:
				printWarning(c.out, "still over %d px per side at %d dpi, too large to rasterize", engine.MaxPixelsPerSide, sc.DPI)
			case sc.Clamped:
				printWarning(c.out, "requested %d dpi exceeds the raster limit", sc.RequestedDPI)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.Float64Var(&widthMM, "width-mm", 0, "canvas width in mm")
	fs.Float64Var(&heightMM, "height-mm", 0, "canvas height in mm")
	fs.IntVar(&dpi, "dpi", 0, "resolution (default from config)")
	fs.Float64Var(&targetMB, "target-mb", 0, "choose the dpi for this uncompressed size in MiB")
	fs.IntVar(&bpp, "bpp", 8, "bits per pixel for --target-mb")
	return cmd
}
