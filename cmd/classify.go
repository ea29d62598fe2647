package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/acris-unit-report/internal/classifier"
	"github.com/ginjaninja78/acris-unit-report/internal/validation"
)

// classifyCmd prints the floor, line, and layout of unit identifiers. It
// reads no records.
var classifyCmd = &cobra.Command{
	Use:   "classify UNIT...",
	Short: "Show the floor, line, and layout of units",
	Args:  cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "UNIT\tFLOOR\tLINE\tLAYOUT")

		for _, unit := range args {
			floor, line, err := validation.SplitUnit(unit)
			if err != nil {
				fmt.Fprintf(w, "%s\t-\t-\tmalformed\n", unit)
				continue
			}

			layout := "unclassified"
			if unitType, ok := classifier.ClassifyUnit(floor, line); ok {
				layout = unitType.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", unit, floor, line, layout)
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
