package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jake-scott/netilion-client/pkg/netilion"
)

var _webhooksCmdOpts struct {
	eventTypes []string
	secret     string
}

var webhooksCmd = &cobra.Command{
	Use:   "webhooks",
	Short: "Manage the webhooks of the client application",

	PersistentPreRunE: clientPreRunE,
}

var webhooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List webhooks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c netilion.NetilionAPI) error {
			hooks, err := c.GetWebhooks()
			if err != nil {
				return err
			}
			return printLines(hooks)
		})
	},
}

var webhooksGetCmd = &cobra.Command{
	Use:   "get WEBHOOK-ID",
	Short: "Show one webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("webhook", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			hook, err := c.GetWebhook(id)
			if err != nil {
				return err
			}
			return printLines([]netilion.WebHook{hook})
		})
	},
}

var webhooksAddCmd = &cobra.Command{
	Use:   "add URL",
	Short: "Subscribe a URL to events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hook := netilion.WebHook{
			URL:        args[0],
			EventTypes: _webhooksCmdOpts.eventTypes,
			Secret:     _webhooksCmdOpts.secret,
		}

		return withClient(func(c netilion.NetilionAPI) error {
			created, err := c.SetWebhook(hook)
			if err != nil {
				return err
			}
			return printLines([]netilion.WebHook{created})
		})
	},
}

var webhooksDeleteCmd = &cobra.Command{
	Use:   "delete WEBHOOK-ID",
	Short: "Delete a webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("webhook", args[0])
		if err != nil {
			return err
		}

		return withClient(func(c netilion.NetilionAPI) error {
			return c.DeleteWebhook(id)
		})
	},
}

func init() {
	webhooksAddCmd.Flags().StringSliceVar(&_webhooksCmdOpts.eventTypes, "event-type", []string{"asset_value_created"}, "event types to subscribe to")
	webhooksAddCmd.Flags().StringVar(&_webhooksCmdOpts.secret, "secret", "", "secret sent back with the events")

	webhooksCmd.AddCommand(webhooksListCmd, webhooksGetCmd, webhooksAddCmd, webhooksDeleteCmd)
	rootCmd.AddCommand(webhooksCmd)
}
