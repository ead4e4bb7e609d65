package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/piwi3910/nanofiche/internal/project"
	"github.com/spf13/cobra"
)

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file and presets",
	}
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPresetsCommand())
	return cmd
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(c.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", c.configPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := project.SaveAppConfig(c.configPath, model.DefaultAppConfig()); err != nil {
				return err
			}
			printSuccess(c.out, "wrote %s", c.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(c.out, "# %s\n", c.configPath)
			return toml.NewEncoder(c.out).Encode(c.Config)
		},
	}
}

func (c *CLI) configPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List built-in and custom presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			custom, err := project.LoadPresets(c.presetsPath())
			if err != nil {
				return err
			}
			var rows [][]string
			for _, p := range project.BuiltInPresets() {
				rows = append(rows, presetRow(p, "built-in"))
			}
			for _, p := range custom {
				rows = append(rows, presetRow(p, "custom"))
			}
			fmt.Fprintln(c.out, renderTable([]string{"Name", "Kind", "Algorithm", "Description"}, rows))
			return nil
		},
	}
}

func presetRow(p project.Preset, kind string) []string {
	return []string{p.Name, kind, string(p.Settings.Algorithm), p.Description}
}
