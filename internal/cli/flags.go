package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/importer"
	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/spf13/cobra"
)

// defaultPageAspect is US Letter portrait (612 / 792 pt).
const defaultPageAspect = 0.7727

// packFlags are the planner settings shared by compose and compare.
type packFlags struct {
	algorithm   string
	height      float64
	gap         float64
	optimize    bool
	orientation string
	step        float64
	contours    int
	attempts    int
	flexibility float64
	targetFill  float64
	seed        int64
	dpi         int
	margin      float64
	canvasBin   float64
	recenter    bool
}

func (f *packFlags) register(cmd *cobra.Command) {
	d := model.DefaultSettings()
	fs := cmd.Flags()
	fs.StringVarP(&f.algorithm, "algorithm", "a", string(d.Algorithm), "placement algorithm: streamline, optimized, adaptive or pixelgrid")
	fs.Float64Var(&f.height, "item-height", d.NominalHeight, "nominal item height in mm")
	fs.Float64Var(&f.gap, "gap", d.Gap, "minimum gap between items in mm")
	fs.BoolVar(&f.optimize, "optimize-dpi", d.OptimizeDPI, "solve the item height from the region area")
	fs.StringVar(&f.orientation, "orientation", string(d.Orientation), "item orientation: tangent or upright")
	fs.Float64Var(&f.step, "step", d.StreamlineStep, "inward offset between contours in mm")
	fs.IntVar(&f.contours, "max-contours", d.MaxContours, "upper bound on offset contours")
	fs.IntVar(&f.attempts, "max-attempts", d.MaxAttempts, "candidate positions tried per item size")
	fs.Float64Var(&f.flexibility, "flexibility", d.Flexibility, "allowed item size variation (0.1 = 10%)")
	fs.Float64Var(&f.targetFill, "target-fill", d.TargetFill, "adaptive target utilization")
	fs.Int64Var(&f.seed, "seed", d.Seed, "random seed")
	fs.IntVar(&f.dpi, "dpi", d.DPI, "raster resolution")
	fs.Float64Var(&f.margin, "margin", d.CanvasMargin, "canvas margin around the region in mm")
	fs.Float64Var(&f.canvasBin, "canvas-bin", d.CanvasBin, "round the canvas up to this multiple in mm (0 = off)")
	fs.BoolVar(&f.recenter, "recenter", d.Recenter, "move the region centre to the origin")
}

// apply copies the flags the user actually set onto s.
func (f *packFlags) apply(cmd *cobra.Command, s *model.PackSettings) error {
	changed := cmd.Flags().Changed
	if changed("algorithm") {
		algo, err := model.ParseAlgorithm(f.algorithm)
		if err != nil {
			return err
		}
		s.Algorithm = algo
	}
	if changed("orientation") {
		o, err := model.ParseOrientation(f.orientation)
		if err != nil {
			return err
		}
		s.Orientation = o
	}
	if changed("item-height") {
		s.NominalHeight = f.height
	}
	if changed("gap") {
		s.Gap = f.gap
	}
	if changed("optimize-dpi") {
		s.OptimizeDPI = f.optimize
	}
	if changed("step") {
		s.StreamlineStep = f.step
	}
	if changed("max-contours") {
		s.MaxContours = f.contours
	}
	if changed("max-attempts") {
		s.MaxAttempts = f.attempts
	}
	if changed("flexibility") {
		s.Flexibility = f.flexibility
	}
	if changed("target-fill") {
		s.TargetFill = f.targetFill
	}
	if changed("seed") {
		s.Seed = f.seed
	}
	if changed("dpi") {
		s.DPI = f.dpi
	}
	if changed("margin") {
		s.CanvasMargin = f.margin
	}
	if changed("canvas-bin") {
		s.CanvasBin = f.canvasBin
	}
	if changed("recenter") {
		s.Recenter = f.recenter
	}
	return nil
}

// regionFlags describe the boundary: a file or a generated shape, plus
// exclusion files.
type regionFlags struct {
	outer        string
	shape        string
	width        float64
	height       float64
	exclude      []string
	excludeScale float64
	excludePos   string
}

func (f *regionFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.outer, "outer", "", "boundary file (.dxf, .geojson or .json)")
	fs.StringVar(&f.shape, "shape", "", "generated boundary: rectangle, circle or ellipse")
	fs.Float64Var(&f.width, "width", 100, "generated boundary width in mm (diameter for circles)")
	fs.Float64Var(&f.height, "height", 100, "generated boundary height in mm")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "exclusion file, may be repeated")
	fs.Float64Var(&f.excludeScale, "exclude-scale", 1, "scale factor applied to exclusion files")
	fs.StringVar(&f.excludePos, "exclude-position", "", "place exclusion files at a named slot of the boundary (center, top-left, ...)")
}

// outerShape returns the outline from --outer or --shape along with any
// exclusions the boundary file itself tagged.
func (f *regionFlags) outerShape(logger *log.Logger) (orb.MultiPolygon, []orb.MultiPolygon, error) {
	if f.outer != "" && f.shape != "" {
		return nil, nil, errors.New("use either --outer or --shape, not both")
	}
	if f.outer != "" {
		res := importer.LoadBoundary(f.outer)
		if err := boundaryErr(f.outer, res, logger); err != nil {
			return nil, nil, err
		}
		return res.Polygons, res.Exclusions, nil
	}

	if f.width <= 0 || f.height <= 0 {
		return nil, nil, fmt.Errorf("boundary size %.2fx%.2f must be positive", f.width, f.height)
	}
	switch strings.ToLower(f.shape) {
	case "rectangle", "rect":
		return geometry.Rectangle(f.width, f.height), nil, nil
	case "circle":
		return geometry.Circle(f.width/2, geometry.DefaultSegments), nil, nil
	case "ellipse":
		return geometry.Ellipse(f.width/2, f.height/2, geometry.DefaultSegments), nil, nil
	case "":
		return nil, nil, errors.New("a boundary is required: pass --outer FILE or --shape")
	default:
		return nil, nil, fmt.Errorf("unknown shape %q (want rectangle, circle or ellipse)", f.shape)
	}
}

// loadRegion builds the packing region from the flags.
func (f *regionFlags) loadRegion(logger *log.Logger) (*geometry.Region, error) {
	outer, exclusions, err := f.shapes(logger)
	if err != nil {
		return nil, err
	}
	region, err := geometry.Build(outer, exclusions)
	if err != nil {
		return nil, err
	}
	logger.Debug("region ready",
		"area", fmt.Sprintf("%.2f", region.Area()),
		"exclusions", len(exclusions))
	return region, nil
}

// shapes returns the outline and every exclusion, scaled and positioned,
// before they are combined into a region.
func (f *regionFlags) shapes(logger *log.Logger) (orb.MultiPolygon, []orb.MultiPolygon, error) {
	outer, exclusions, err := f.outerShape(logger)
	if err != nil {
		return nil, nil, err
	}

	var pos geometry.Position
	if f.excludePos != "" {
		if pos, err = geometry.ParsePosition(f.excludePos); err != nil {
			return nil, nil, err
		}
	}

	for _, path := range f.exclude {
		res := importer.LoadBoundary(path)
		if err := boundaryErr(path, res, logger); err != nil {
			return nil, nil, err
		}
		mp := res.Polygons
		if f.excludeScale > 0 && f.excludeScale != 1 {
			mp = geometry.Scale(mp, f.excludeScale)
		}
		if pos != "" {
			if mp, err = geometry.PositionRelative(mp, outer, pos); err != nil {
				return nil, nil, fmt.Errorf("%s: %w", path, err)
			}
		}
		exclusions = append(exclusions, mp)
	}
	return outer, exclusions, nil
}

// boundaryErr logs import warnings and folds import errors into one error.
func boundaryErr(path string, res importer.BoundaryResult, logger *log.Logger) error {
	for _, w := range res.Warnings {
		logger.Warn(w, "file", path)
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("%s: %s", path, strings.Join(res.Errors, "; "))
	}
	if len(res.Polygons) == 0 {
		return fmt.Errorf("%s: no polygons", path)
	}
	return nil
}

// itemFlags select the items to pack: a manifest or a synthetic page run.
type itemFlags struct {
	manifest string
	pages    int
	aspect   float64
}

func (f *itemFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.manifest, "items", "", "page manifest (.csv or .xlsx)")
	fs.IntVar(&f.pages, "pages", 0, "pack this many identical pages instead of a manifest")
	fs.Float64Var(&f.aspect, "aspect", defaultPageAspect, "page width / height for --pages")
}

func (f *itemFlags) load(logger *log.Logger) ([]model.Item, error) {
	switch {
	case f.manifest != "" && f.pages > 0:
		return nil, errors.New("use either --items or --pages, not both")
	case f.manifest != "":
		res := importer.ImportItems(f.manifest)
		for _, w := range res.Warnings {
			logger.Debug(w, "file", f.manifest)
		}
		if len(res.Errors) > 0 {
			return nil, fmt.Errorf("%s: %s", f.manifest, strings.Join(res.Errors, "; "))
		}
		return res.Items, nil
	case f.pages > 0:
		if f.aspect <= 0 {
			return nil, fmt.Errorf("aspect must be positive, got %.4f", f.aspect)
		}
		items := make([]model.Item, f.pages)
		for i := range items {
			items[i] = model.NewPageItem(i, 0, i, f.aspect, 1)
		}
		return items, nil
	default:
		return nil, errors.New("no items: pass --items FILE or --pages N")
	}
}
