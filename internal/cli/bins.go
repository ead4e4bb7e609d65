package cli

import (
	"errors"
	"fmt"

	"github.com/piwi3910/nanofiche/internal/engine"
	"github.com/piwi3910/nanofiche/internal/importer"
	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/spf13/cobra"
)

func (c *CLI) binsCommand() *cobra.Command {
	var (
		dir       string
		binW      int
		binH      int
		envelope  string
		aspect    float64
		pixelGrid bool
		gap       int
		outputs   outputFlags
	)

	cmd := &cobra.Command{
		Use:   "bins",
		Short: "Lay out a folder of fixed-size image tiles",
		Long: `Lay out every image in a folder as a fixed-size bin inside a square,
rectangular, circular or elliptical envelope. Images larger than the bin are
skipped; smaller ones are padded.`,
		Example: `  nanofiche bins --dir tiles --bin-width 2000 --bin-height 2000 --envelope circle --proof tiles.pdf
  nanofiche bins --dir tiles --pixel-grid --gap 50 --aspect 1.5 --manifest tiles.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			if dir == "" {
				return errors.New("--dir is required")
			}

			settings, err := c.baseSettings()
			if err != nil {
				return err
			}
			changed := cmd.Flags().Changed
			if changed("bin-width") {
				settings.BinWidth = binW
			}
			if changed("bin-height") {
				settings.BinHeight = binH
			}
			if changed("gap") {
				settings.BinGap = gap
			}
			if changed("envelope") {
				shape, err := model.ParseEnvelopeShape(envelope)
				if err != nil {
					return err
				}
				settings.Envelope.Shape = shape
			}
			if changed("aspect") {
				if aspect <= 0 {
					return fmt.Errorf("aspect must be positive, got %.4f", aspect)
				}
				settings.Envelope.AspectRatio = aspect
			}
			if pixelGrid {
				settings.Algorithm = model.AlgorithmPixelGrid
			}

			res := importer.ValidateImageFolder(dir, settings.BinWidth, settings.BinHeight)
			for _, w := range res.Warnings {
				logger.Debug(w)
			}
			for _, e := range res.Errors {
				logger.Warn(e)
			}
			if len(res.Items) == 0 {
				return fmt.Errorf("%s: no usable images", dir)
			}

			prog := newProgress(logger)
			packer := engine.New(settings)
			packer.Logger = logger
			result, err := packer.PackBins(res.Items, settings.Envelope)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Laid out %d of %d bins", result.Placed(), result.Requested))

			c.printResult(result)
			return c.writeOutputs(outputs, result, nil, settings, logger)
		},
	}

	d := model.DefaultSettings()
	fs := cmd.Flags()
	fs.StringVar(&dir, "dir", "", "folder of image tiles")
	fs.IntVar(&binW, "bin-width", d.BinWidth, "bin width in pixels")
	fs.IntVar(&binH, "bin-height", d.BinHeight, "bin height in pixels")
	fs.StringVar(&envelope, "envelope", string(d.Envelope.Shape), "envelope: square, rectangle, circle or ellipse")
	fs.Float64Var(&aspect, "aspect", d.Envelope.AspectRatio, "envelope width / height")
	fs.BoolVar(&pixelGrid, "pixel-grid", false, "grid the bins with a pixel gap instead of using the envelope")
	fs.IntVar(&gap, "gap", d.BinGap, "pixel gap between bins for --pixel-grid")
	outputs.register(cmd)
	return cmd
}
