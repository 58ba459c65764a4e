package main

import (
	"fmt"

	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/models"
	"github.com/myrjola/huntdesk/internal/render"
	"github.com/spf13/cobra"
)

var playbookGroup = &cobra.Group{
	ID:    "playbook",
	Title: "Playbook operations",
}

func (c *cli) playbookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "playbook [sub-channel]",
		GroupID: playbookGroup.ID,
		Short:   "Generate a playbook",
		Long: `Synthesizes the playbook of a sub-channel from its most recent hunts and prints it as Markdown.
With --stored the last generated playbook is printed without generating a new version.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			asHTML, err := flags.GetBool("html")
			if err != nil {
				return errors.Wrap(err, "html flag")
			}
			var stored bool
			if stored, err = flags.GetBool("stored"); err != nil {
				return errors.Wrap(err, "stored flag")
			}

			var pb *models.Playbook
			if stored {
				pb, err = c.services.Playbooks.Get(cmd.Context(), args[0])
			} else {
				pb, err = c.services.GeneratePlaybook(cmd.Context(), args[0])
			}
			if err != nil {
				return errors.Wrap(err, "playbook")
			}

			content := pb.ContentMD
			if asHTML {
				if content, err = render.PlaybookHTML(pb.ContentMD); err != nil {
					return errors.Wrap(err, "render playbook")
				}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), content)
			return errors.Wrap(err, "print playbook")
		},
	}
	cmd.Flags().Bool("html", false, "print the playbook as HTML")
	cmd.Flags().Bool("stored", false, "print the stored playbook instead of generating a new version")
	return cmd
}
