package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jake-scott/netilion-client/pkg/netilion"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Manage nodes and their specifications",

	PersistentPreRunE: clientPreRunE,
}

var nodesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List nodes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c netilion.NetilionAPI) error {
			nodes, err := c.GetNodes()
			if err != nil {
				return err
			}
			return printJSON(nodes)
		})
	},
}

var nodesFindCmd = &cobra.Command{
	Use:   "find NAME",
	Short: "Show the nodes with a name, hidden ones included, with their specifications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c netilion.NetilionAPI) error {
			nodes, err := c.GetNodeSpecifications(args[0])
			if err != nil {
				return err
			}
			return printJSON(nodes)
		})
	},
}

var nodesCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a hidden node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c netilion.NetilionAPI) error {
			node, err := c.PostNode(args[0])
			if err != nil {
				return err
			}
			return printJSON(node)
		})
	},
}

var nodesSetSpecCmd = &cobra.Command{
	Use:   "set-spec NODE-ID KEY VALUE",
	Short: "Set one specification of a node, VALUE is parsed as JSON when it can be",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("node", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			return c.PatchNodeSpecification(id, args[1], parseValue(args[2]))
		})
	},
}

var nodesAssetsCmd = &cobra.Command{
	Use:   "assets NODE-ID",
	Short: "List the assets of a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("node", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			assets, err := c.GetNodeAssets(id)
			if err != nil {
				return err
			}
			return printLines(assets)
		})
	},
}

func init() {
	nodesCmd.AddCommand(nodesListCmd, nodesFindCmd, nodesCreateCmd, nodesSetSpecCmd, nodesAssetsCmd)
	rootCmd.AddCommand(nodesCmd)
}
