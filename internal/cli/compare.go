package cli

import (
	"fmt"
	"strconv"

	"github.com/piwi3910/nanofiche/internal/engine"
	"github.com/spf13/cobra"
)

func (c *CLI) compareCommand() *cobra.Command {
	var (
		pack   packFlags
		region regionFlags
		items  itemFlags
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare packing strategies on one region",
		Long: `Run the current settings and a set of what-if variations (other
algorithms, half the gap, solved item height) over the same region and items,
and print the results side by side.`,
		Example: `  nanofiche compare --shape circle --width 120 --pages 300`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			settings, err := c.baseSettings()
			if err != nil {
				return err
			}
			if err := pack.apply(cmd, &settings); err != nil {
				return err
			}
			r, err := region.loadRegion(logger)
			if err != nil {
				return err
			}
			list, err := items.load(logger)
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			scenarios := engine.BuildDefaultScenarios(settings)
			results := engine.CompareStrategies(scenarios, list, r)
			prog.done(fmt.Sprintf("Compared %d scenarios", len(results)))

			fmt.Fprintln(c.out, renderTable(comparisonHeaders, comparisonRows(results)))
			return nil
		},
	}

	pack.register(cmd)
	region.register(cmd)
	items.register(cmd)
	return cmd
}

var comparisonHeaders = []string{"Scenario", "Placed", "Failed", "Utilization", "Overlaps"}

func comparisonRows(results []engine.ComparisonResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			rows = append(rows, []string{r.Scenario.Name, "-", "-", "error: " + r.Err.Error(), "-"})
			continue
		}
		rows = append(rows, []string{
			r.Scenario.Name,
			strconv.Itoa(r.Placed),
			strconv.Itoa(r.FailedCount),
			fmt.Sprintf("%.1f%%", r.Utilization*100),
			strconv.Itoa(r.Overlaps),
		})
	}
	return rows
}
