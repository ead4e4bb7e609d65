// Package cli implements the nanofiche command-line interface.
//
// The main commands are:
//   - compose: pack page items into a boundary region and write proofs
//   - bins: lay out a folder of image tiles in a fixed envelope
//   - compare: run what-if scenarios over one region
//   - canvas: check the raster size a canvas and DPI would produce
//   - config: create and inspect the configuration file
//
// Settings are resolved in order: built-in defaults, the config file, an
// optional preset, NANOFICHE_* environment variables, then command flags.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/piwi3910/nanofiche/internal/project"
	"github.com/spf13/cobra"
)

// Environment variables read by the CLI.
const (
	EnvDPI    = "NANOFICHE_DPI"
	EnvSeed   = "NANOFICHE_SEED"
	EnvConfig = "NANOFICHE_CONFIG"
)

var version = "dev"

// SetVersion sets the version shown by --version.
func SetVersion(v string) {
	version = v
}

// CLI holds state shared by all commands.
type CLI struct {
	Logger *log.Logger
	Config model.AppConfig

	out    io.Writer
	errOut io.Writer

	verbose    bool
	configPath string
	envFile    string
	preset     string
}

// New creates a CLI that prints results to out and logs to errOut.
func New(out, errOut io.Writer) *CLI {
	return &CLI{
		Logger: newLogger(errOut, log.InfoLevel),
		Config: model.DefaultAppConfig(),
		out:    out,
		errOut: errOut,
	}
}

// Execute runs the nanofiche CLI with os.Args.
func Execute(ctx context.Context) error {
	return New(os.Stdout, os.Stderr).RootCommand().ExecuteContext(ctx)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "nanofiche",
		Short: "Pack archival page rasters into a boundary for high-density output",
		Long: `nanofiche lays out document pages inside an arbitrary boundary (a disc,
a plate, any closed outline with holes) or tiles fixed-size images into a
square, rectangular, circular or elliptical envelope, and writes proofs,
manifests and layout files for the result.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $NANOFICHE_CONFIG or ~/.nanofiche/config.toml)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "load environment overrides from this .env file")
	root.PersistentFlags().StringVar(&c.preset, "preset", "", "start from a named settings preset")

	root.AddCommand(c.composeCommand())
	root.AddCommand(c.binsCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.canvasCommand())
	root.AddCommand(c.configCommand())

	return root
}

// setup loads the environment and config file and attaches the logger to
// the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	level := log.InfoLevel
	if c.verbose {
		level = log.DebugLevel
	}
	c.Logger = newLogger(c.errOut, level)

	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", c.envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.Logger.Warn("ignoring unreadable .env", "err", err)
	}

	if c.configPath == "" {
		c.configPath = os.Getenv(EnvConfig)
	}
	if c.configPath == "" {
		c.configPath = project.DefaultConfigPath()
	}
	cfg, err := project.LoadAppConfig(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// presetsPath keeps custom presets next to the config file.
func (c *CLI) presetsPath() string {
	if c.configPath == "" {
		return project.DefaultPresetsPath()
	}
	return filepath.Join(filepath.Dir(c.configPath), "presets.toml")
}

// baseSettings resolves everything below command flags: defaults, config,
// preset and environment.
func (c *CLI) baseSettings() (model.PackSettings, error) {
	s := model.DefaultSettings()
	c.Config.ApplyToSettings(&s)

	if c.preset != "" {
		custom, err := project.LoadPresets(c.presetsPath())
		if err != nil {
			return s, err
		}
		p, ok := project.FindPreset(c.preset, custom)
		if !ok {
			return s, fmt.Errorf("unknown preset %q", c.preset)
		}
		s = p.Settings
		c.Logger.Debug("applied preset", "name", p.Name)
	}

	if err := applyEnv(&s, os.LookupEnv); err != nil {
		return s, err
	}
	return s, nil
}

// applyEnv copies NANOFICHE_DPI and NANOFICHE_SEED into s.
func applyEnv(s *model.PackSettings, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDPI); ok && v != "" {
		dpi, err := strconv.Atoi(v)
		if err != nil || dpi <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", EnvDPI, v)
		}
		s.DPI = dpi
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", EnvSeed, v)
		}
		s.Seed = seed
	}
	return nil
}
