package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jake-scott/netilion-client/pkg/netilion"
)

var _valuesCmdOpts struct {
	unit      string
	timestamp string
	from      string
	to        string
	page      int
	perPage   int
}

var valuesCmd = &cobra.Command{
	Use:   "values",
	Short: "Read and push asset values",

	PersistentPreRunE: clientPreRunE,
}

var valuesListCmd = &cobra.Command{
	Use:   "list ASSET-ID",
	Short: "Show the current values of an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("asset", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			values, err := c.GetAssetValues(id)
			if err != nil {
				return err
			}
			return printLines(values)
		})
	},
}

var valuesPushCmd = &cobra.Command{
	Use:   "push ASSET-ID KEY VALUE",
	Short: "Push one value of an asset",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := valuesFromArgs(args)
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			return c.PushAssetValues(values)
		})
	},
}

func valuesFromArgs(args []string) (netilion.AssetValues, error) {
	var values netilion.AssetValues

	id, err := parseID("asset", args[0])
	if err != nil {
		return values, err
	}

	if _valuesCmdOpts.unit == "" {
		return values, fmt.Errorf("--unit is required")
	}

	v, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return values, fmt.Errorf("bad value %s: not a number", args[2])
	}

	value := netilion.AssetValue{Key: args[1], Unit: netilion.Unit{Code: _valuesCmdOpts.unit}, Value: v}
	if _valuesCmdOpts.timestamp != "" {
		ts, err := parseTime("value", _valuesCmdOpts.timestamp)
		if err != nil {
			return values, err
		}
		value.Timestamp = &ts
	}

	values.Asset = netilion.Asset{ID: id}
	values.Values = []netilion.AssetValue{value}
	return values, nil
}

// timeRange reads --from and --to, --to defaulting to now
func timeRange() (from *time.Time, to time.Time, err error) {
	to = time.Now()
	if _valuesCmdOpts.to != "" {
		if to, err = parseTime("to", _valuesCmdOpts.to); err != nil {
			return nil, to, err
		}
	}

	if _valuesCmdOpts.from != "" {
		t, err := parseTime("from", _valuesCmdOpts.from)
		if err != nil {
			return nil, to, err
		}
		from = &t
	}

	return from, to, nil
}

var valuesHistoryCmd = &cobra.Command{
	Use:   "history ASSET-ID KEY",
	Short: "Show one page of the history of a value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("asset", args[0])
		if err != nil {
			return err
		}

		from, to, err := timeRange()
		if err != nil {
			return err
		}
		if from == nil {
			return fmt.Errorf("--from is required")
		}

		return withClient(func(c netilion.NetilionAPI) error {
			history, pg, err := c.GetAssetValuesHistory(id, args[1], *from, to, _valuesCmdOpts.page, _valuesCmdOpts.perPage)
			if err != nil {
				return err
			}
			if err := printJSON(history); err != nil {
				return err
			}
			_, err = fmt.Fprintf(output, "page %d of %d\n", pg.Page, pg.PageCount)
			return err
		})
	},
}

var valuesLastCmd = &cobra.Command{
	Use:   "last ASSET-ID KEY",
	Short: "Show the latest value of a key up to --to",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("asset", args[0])
		if err != nil {
			return err
		}

		from, to, err := timeRange()
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			last, err := c.GetLastAssetValues(id, args[1], to, from)
			if err != nil {
				return err
			}
			return printJSON(last)
		})
	},
}

func init() {
	valuesPushCmd.Flags().StringVar(&_valuesCmdOpts.unit, "unit", "", "unit code of the value, eg. degree_celsius")
	valuesPushCmd.Flags().StringVar(&_valuesCmdOpts.timestamp, "timestamp", "", "time of the measurement (RFC3339), default is the time of receipt")

	for _, c := range []*cobra.Command{valuesHistoryCmd, valuesLastCmd} {
		c.Flags().StringVar(&_valuesCmdOpts.from, "from", "", "start of the time range (RFC3339)")
		c.Flags().StringVar(&_valuesCmdOpts.to, "to", "", "end of the time range (RFC3339), default is now")
	}
	valuesHistoryCmd.Flags().IntVar(&_valuesCmdOpts.page, "page", 1, "page to fetch")
	valuesHistoryCmd.Flags().IntVar(&_valuesCmdOpts.perPage, "per-page", 100, "page size")

	valuesCmd.AddCommand(valuesListCmd, valuesPushCmd, valuesHistoryCmd, valuesLastCmd)
	rootCmd.AddCommand(valuesCmd)
}
