package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the manifest without running anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manifest, _ := cmd.Flags().GetString("manifest")

			issues, err := c.app.Validate(manifest)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, issue := range issues {
				_, _ = fmt.Fprintln(out, issue.String())
			}
			if len(issues) > 0 {
				return zerr.With(zerr.New("manifest has lint findings"), "count", len(issues))
			}

			_, _ = fmt.Fprintf(out, "%s: OK\n", manifest)
			return nil
		},
	}
}
