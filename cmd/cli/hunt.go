package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/repositories"
	"github.com/myrjola/huntdesk/internal/validation"
	"github.com/spf13/cobra"
)

var huntGroup = &cobra.Group{
	ID:    "hunt",
	Title: "Hunt operations",
}

func (c *cli) huntCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hunt",
		GroupID: huntGroup.ID,
		Short:   "Run a hunt",
		Long:    `Discovers candidate accounts in the given markets, scores them and stores the hunt.`,
		Example: `  huntdesk-cli hunt --sub-channel QSR --market US --market UK --brand Pepsi --max-accounts 5`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			markets, err := flags.GetStringArray("market")
			if err != nil {
				return errors.Wrap(err, "market flag")
			}
			var brands []string
			if brands, err = flags.GetStringArray("brand"); err != nil {
				return errors.Wrap(err, "brand flag")
			}

			var (
				subChannel  *string
				maxAccounts *int
			)
			if flags.Changed("sub-channel") {
				var v string
				if v, err = flags.GetString("sub-channel"); err != nil {
					return errors.Wrap(err, "sub-channel flag")
				}
				subChannel = &v
			}
			if flags.Changed("max-accounts") {
				var v int
				if v, err = flags.GetInt("max-accounts"); err != nil {
					return errors.Wrap(err, "max-accounts flag")
				}
				maxAccounts = &v
			}

			in := validation.NewHuntInput(subChannel, markets, brands, maxAccounts)
			hunt, err := c.services.CreateHunt(cmd.Context(), in)
			if err != nil {
				return errors.Wrap(err, "create hunt")
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return errors.Wrap(enc.Encode(hunt), "print hunt")
		},
	}
	cmd.Flags().String("sub-channel", "", "sub-channel to hunt in, e.g. QSR")
	cmd.Flags().StringArray("market", nil, "market to scan, repeatable")
	cmd.Flags().StringArray("brand", nil, "focus brand, repeatable")
	cmd.Flags().Int("max-accounts", 0, "number of accounts to identify (default 10)")
	return cmd
}

func (c *cli) huntsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hunts",
		GroupID: huntGroup.ID,
		Short:   "List stored hunts",
		Long:    `Lists stored hunts, newest first.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			subChannel, err := flags.GetString("sub-channel")
			if err != nil {
				return errors.Wrap(err, "sub-channel flag")
			}
			var limit int
			if limit, err = flags.GetInt("limit"); err != nil {
				return errors.Wrap(err, "limit flag")
			}
			if limit, _, err = validation.ParsePagination(strconv.Itoa(limit), ""); err != nil {
				return errors.Wrap(err, "validate limit")
			}

			hunts, err := c.services.Hunts.List(cmd.Context(), repositories.HuntFilter{
				SubChannel: subChannel,
				Limit:      limit,
				Offset:     0,
			})
			if err != nil {
				return errors.Wrap(err, "list hunts")
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // padding
			_, _ = fmt.Fprintln(w, "ID\tCREATED\tSUB-CHANNEL\tACCOUNTS\tSUMMARY")
			for _, h := range hunts {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					h.ID, h.CreatedAt.Format("2006-01-02 15:04"), h.SubChannel, len(h.Accounts), h.HuntResult.Summary)
			}
			return errors.Wrap(w.Flush(), "print hunts")
		},
	}
	cmd.Flags().String("sub-channel", "", "only list hunts of this sub-channel")
	cmd.Flags().Int("limit", validation.DefaultLimit, "maximum number of hunts to list")
	return cmd
}
