package commands

import (
	"github.com/spf13/cobra"

	"github.com/conveyorci/conveyor/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the workflow for a simulated repository event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manifest, _ := cmd.Flags().GetString("manifest")
			event, _ := cmd.Flags().GetString("event")
			branch, _ := cmd.Flags().GetString("branch")
			parallelism, _ := cmd.Flags().GetInt("parallelism")
			workspace, _ := cmd.Flags().GetString("workspace")
			source, _ := cmd.Flags().GetString("source")

			return c.app.Run(cmd.Context(), app.RunOptions{
				ManifestPath: manifest,
				Event:        event,
				Branch:       branch,
				Parallelism:  parallelism,
				Workspace:    workspace,
				Source:       source,
			})
		},
	}
	cmd.Flags().String("event", "push", "Repository event to simulate (push or pull_request)")
	cmd.Flags().String("branch", "main", "Branch the event refers to")
	cmd.Flags().IntP("parallelism", "j", 0, "Maximum concurrent jobs (0 means the CPU count)")
	cmd.Flags().String("workspace", "", "Root directory for per-job workspaces (default: a temporary directory)")
	cmd.Flags().String("source", ".", "Project directory the checkout action copies from")
	return cmd
}
