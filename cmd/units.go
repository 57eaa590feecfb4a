package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jake-scott/netilion-client/pkg/netilion"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "Look up units of measure",

	PersistentPreRunE: clientPreRunE,
}

var unitsFindCmd = &cobra.Command{
	Use:   "find CODE",
	Short: "Find the unit with a code, eg. degree_celsius",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c netilion.NetilionAPI) error {
			unit, err := c.FindUnit(args[0])
			if err != nil {
				return err
			}
			if unit == nil {
				_, err = fmt.Fprintf(output, "no unit with code %s\n", args[0])
				return err
			}
			return printLines([]netilion.Unit{*unit})
		})
	},
}

var unitsGetCmd = &cobra.Command{
	Use:   "get UNIT-ID",
	Short: "Show one unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("unit", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			unit, err := c.GetUnit(id)
			if err != nil {
				return err
			}
			return printLines([]netilion.Unit{unit})
		})
	},
}

func init() {
	unitsCmd.AddCommand(unitsFindCmd, unitsGetCmd)
	rootCmd.AddCommand(unitsCmd)
}
