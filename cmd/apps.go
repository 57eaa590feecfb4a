package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jake-scott/netilion-client/pkg/netilion"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Inspect client applications",

	PersistentPreRunE: clientPreRunE,
}

var appsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the client applications visible to the user",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c netilion.NetilionAPI) error {
			apps, err := c.GetApplications()
			if err != nil {
				return err
			}
			return printLines(apps)
		})
	},
}

var appsGetCmd = &cobra.Command{
	Use:     "get APPLICATION-ID",
	Short:   "Show one client application",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("application", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			app, err := c.GetApplication(id)
			if err != nil {
				return err
			}
			return printLines([]netilion.ClientApplication{app})
		})
	},
}

var appsCurrentCmd = &cobra.Command{
	Use:     "current",
	Short:   "Show the client application used by this client",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c netilion.NetilionAPI) error {
			app, err := c.GetMyApplication()
			if err != nil {
				return err
			}
			return printLines([]netilion.ClientApplication{app})
		})
	},
}

func init() {
	appsCmd.AddCommand(appsListCmd, appsGetCmd, appsCurrentCmd)
	rootCmd.AddCommand(appsCmd)
}
