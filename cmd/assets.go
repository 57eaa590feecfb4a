package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jake-scott/netilion-client/pkg/netilion"
)

var _assetsCmdOpts struct {
	page      int
	perPage   int
	productID int64
	unit      string
	visible   bool
}

var assetsCmd = &cobra.Command{
	Use:               "assets",
	Short:             "Manage assets",
	PersistentPreRunE: clientPreRunE,
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assets, all of them or one page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c netilion.NetilionAPI) error {
			if _assetsCmdOpts.page == 0 {
				assets, err := c.GetAssets()
				if err != nil {
					return err
				}
				return printLines(assets)
			}

			assets, pg, err := c.GetAssetsPage(_assetsCmdOpts.page, _assetsCmdOpts.perPage)
			if err != nil {
				return err
			}
			if err := printLines(assets); err != nil {
				return err
			}
			_, err = fmt.Fprintf(output, "page %d of %d\n", pg.Page, pg.PageCount)
			return err
		})
	},
}

var assetsGetCmd = &cobra.Command{
	Use:   "get ASSET-ID",
	Short: "Show one asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("asset", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			asset, err := c.GetAsset(id)
			if err != nil {
				return err
			}
			return printLines([]netilion.Asset{asset})
		})
	},
}

var assetsFindCmd = &cobra.Command{
	Use:   "find SERIAL-NUMBER",
	Short: "Find the asset with a serial number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c netilion.NetilionAPI) error {
			asset, err := c.FindAsset(args[0])
			if err != nil {
				return err
			}
			if asset == nil {
				_, err = fmt.Fprintf(output, "no asset with serial number %s\n", args[0])
				return err
			}
			return printLines([]netilion.Asset{*asset})
		})
	},
}

var assetsCreateCmd = &cobra.Command{
	Use:   "create SERIAL-NUMBER",
	Short: "Create an asset of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _assetsCmdOpts.productID <= 0 {
			return fmt.Errorf("--product is required")
		}

		return withClient(func(c netilion.NetilionAPI) error {
			asset, err := c.CreateAsset(args[0], _assetsCmdOpts.productID)
			if err != nil {
				return err
			}
			return printLines([]netilion.Asset{asset})
		})
	},
}

var assetsDeleteCmd = &cobra.Command{
	Use:   "delete ASSET-ID",
	Short: "Delete an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("asset", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			return c.DeleteAsset(id)
		})
	},
}

var assetsGrantCmd = &cobra.Command{
	Use:   "grant ASSET-ID USER-ID",
	Short: "Give a user read and write permission on an asset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs("asset or user", args)
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			return c.SetRWPermissions(ids[0], ids[1])
		})
	},
}

var assetsSystemsCmd = &cobra.Command{
	Use:   "systems ASSET-ID",
	Short: "List the systems an asset belongs to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("asset", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			systems, err := c.GetAssetSystems(id)
			if err != nil {
				return err
			}
			return printJSON(systems)
		})
	},
}

var assetsHealthCmd = &cobra.Command{
	Use:   "health ASSET-ID",
	Short: "List the health conditions of an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("asset", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			conditions, err := c.GetAssetHealthConditions(id)
			if err != nil {
				return err
			}
			return printJSON(conditions)
		})
	},
}

var assetsHealthConditionCmd = &cobra.Command{
	Use:   "health-condition CONDITION-ID",
	Short: "Show one health condition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("health condition", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			condition, err := c.GetAssetHealthCondition(id)
			if err != nil {
				return err
			}
			return printJSON(condition)
		})
	},
}

var assetsHealthAddCmd = &cobra.Command{
	Use:   "health-add ASSET-ID CONDITION-ID...",
	Short: "Attach health conditions to an asset",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeHealthConditions(args, func(c netilion.NetilionAPI, asset int64, conditions []int64) error {
			return c.PostAssetHealthConditions(asset, conditions)
		})
	},
}

var assetsHealthRemoveCmd = &cobra.Command{
	Use:   "health-remove ASSET-ID CONDITION-ID...",
	Short: "Detach health conditions from an asset",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeHealthConditions(args, func(c netilion.NetilionAPI, asset int64, conditions []int64) error {
			return c.DeleteAssetHealthConditions(asset, conditions)
		})
	},
}

func changeHealthConditions(args []string, change func(netilion.NetilionAPI, int64, []int64) error) error {
	asset, err := parseID("asset", args[0])
	if err != nil {
		return err
	}

	conditions, err := parseIDs("health condition", args[1:])
	if err != nil {
		return err
	}

	return withClient(func(c netilion.NetilionAPI) error {
		return change(c, asset, conditions)
	})
}

var assetsSpecsCmd = &cobra.Command{
	Use:   "specs ASSET-ID",
	Short: "Show the specifications of an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("asset", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			specs, err := c.GetAssetSpecifications(id)
			if err != nil {
				return err
			}
			return printJSON(specs)
		})
	},
}

var assetsSetSpecCmd = &cobra.Command{
	Use:   "set-spec ASSET-ID KEY VALUE",
	Short: "Set one specification of an asset, VALUE is parsed as JSON when it can be",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("asset", args[0])
		if err != nil {
			return err
		}

		spec := netilion.Specification{
			Key:       args[1],
			Value:     parseValue(args[2]),
			UIVisible: _assetsCmdOpts.visible,
		}
		if _assetsCmdOpts.unit != "" {
			spec.Unit = &netilion.Unit{Code: _assetsCmdOpts.unit}
		}

		return withClient(func(c netilion.NetilionAPI) error {
			return c.PatchAssetSpecifications(id, netilion.Specifications{spec})
		})
	},
}

var assetsDocumentsCmd = &cobra.Command{
	Use:   "documents ASSET-ID",
	Short: "List the documents attached to an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("asset", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			docs, err := c.GetAssetDocuments(id)
			if err != nil {
				return err
			}
			return printJSON(docs)
		})
	},
}

func init() {
	assetsListCmd.Flags().IntVar(&_assetsCmdOpts.page, "page", 0, "fetch only this page, starting at 1")
	assetsListCmd.Flags().IntVar(&_assetsCmdOpts.perPage, "per-page", 50, "page size when --page is given")
	assetsCreateCmd.Flags().Int64Var(&_assetsCmdOpts.productID, "product", 0, "ID of the product of the new asset")
	assetsSetSpecCmd.Flags().StringVar(&_assetsCmdOpts.unit, "unit", "", "unit code of the value, eg. degree_celsius")
	assetsSetSpecCmd.Flags().BoolVar(&_assetsCmdOpts.visible, "visible", false, "show the specification in the Netilion UI")

	assetsCmd.AddCommand(assetsListCmd, assetsGetCmd, assetsFindCmd, assetsCreateCmd, assetsDeleteCmd,
		assetsGrantCmd, assetsSystemsCmd, assetsHealthCmd, assetsHealthConditionCmd, assetsHealthAddCmd,
		assetsHealthRemoveCmd, assetsSpecsCmd, assetsSetSpecCmd, assetsDocumentsCmd)
	rootCmd.AddCommand(assetsCmd)
}
