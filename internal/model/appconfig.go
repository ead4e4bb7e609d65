package model

// AppConfig holds user preferences and the defaults applied to new runs.
type AppConfig struct {
	// Default packing settings applied to every run
	DefaultAlgorithm      Algorithm   `toml:"default_algorithm"`
	DefaultNominalHeight  float64     `toml:"default_nominal_height"`
	DefaultGap            float64     `toml:"default_gap"`
	DefaultOrientation    Orientation `toml:"default_orientation"`
	DefaultStreamlineStep float64     `toml:"default_streamline_step"`
	DefaultMaxContours    int         `toml:"default_max_contours"`
	DefaultFlexibility    float64     `toml:"default_flexibility"`
	DefaultTargetFill     float64     `toml:"default_target_fill"`
	DefaultDPI            int         `toml:"default_dpi"`
	DefaultSeed           int64       `toml:"default_seed"`
	DefaultCanvasMargin   float64     `toml:"default_canvas_margin"`
	DefaultBinWidth       int         `toml:"default_bin_width"`
	DefaultBinHeight      int         `toml:"default_bin_height"`

	// Application preferences
	OutputDir  string   `toml:"output_dir"` // Where generated files go when no path is given
	RecentJobs []string `toml:"recent_jobs"`
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultAlgorithm:      defaults.Algorithm,
		DefaultNominalHeight:  defaults.NominalHeight,
		DefaultGap:            defaults.Gap,
		DefaultOrientation:    defaults.Orientation,
		DefaultStreamlineStep: defaults.StreamlineStep,
		DefaultMaxContours:    defaults.MaxContours,
		DefaultFlexibility:    defaults.Flexibility,
		DefaultTargetFill:     defaults.TargetFill,
		DefaultDPI:            defaults.DPI,
		DefaultSeed:           defaults.Seed,
		DefaultCanvasMargin:   defaults.CanvasMargin,
		DefaultBinWidth:       defaults.BinWidth,
		DefaultBinHeight:      defaults.BinHeight,
		OutputDir:             ".",
		RecentJobs:            []string{},
	}
}

// ApplyToSettings copies the defaults from AppConfig into a PackSettings struct.
// Zero values in the config leave the corresponding setting alone so that a
// partially written config file does not wipe out built-in defaults.
func (c AppConfig) ApplyToSettings(s *PackSettings) {
	if c.DefaultAlgorithm != "" {
		s.Algorithm = c.DefaultAlgorithm
	}
	if c.DefaultNominalHeight > 0 {
		s.NominalHeight = c.DefaultNominalHeight
	}
	if c.DefaultGap >= 0 {
		s.Gap = c.DefaultGap
	}
	if c.DefaultOrientation != "" {
		s.Orientation = c.DefaultOrientation
	}
	if c.DefaultStreamlineStep > 0 {
		s.StreamlineStep = c.DefaultStreamlineStep
	}
	if c.DefaultMaxContours > 0 {
		s.MaxContours = c.DefaultMaxContours
	}
	if c.DefaultFlexibility > 0 {
		s.Flexibility = c.DefaultFlexibility
	}
	if c.DefaultTargetFill > 0 {
		s.TargetFill = c.DefaultTargetFill
	}
	if c.DefaultDPI > 0 {
		s.DPI = c.DefaultDPI
	}
	if c.DefaultSeed != 0 {
		s.Seed = c.DefaultSeed
	}
	if c.DefaultCanvasMargin > 0 {
		s.CanvasMargin = c.DefaultCanvasMargin
	}
	if c.DefaultBinWidth > 0 {
		s.BinWidth = c.DefaultBinWidth
	}
	if c.DefaultBinHeight > 0 {
		s.BinHeight = c.DefaultBinHeight
	}
}
