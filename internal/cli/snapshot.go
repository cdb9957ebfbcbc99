package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/gitrepo"
	"github.com/matzehuels/gitlanes/pkg/history"
)

// snapshotCommand creates the snapshot command, which freezes a repository
// into a JSON file usable with --snapshot.
func (c *CLI) snapshotCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "snapshot [repo]",
		Short: "Write the refs and commits of a repository to a JSON file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := gitrepo.Open(repoArg(args))
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			spinner := newSpinnerWithContext(cmd.Context(), "Reading history...")
			spinner.Start()
			snap, err := history.Capture(repo)
			spinner.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Captured %d commits", len(snap.Commits)))

			var w io.Writer = c.Out
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := history.WriteSnapshot(snap, w); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Captured %d commits", len(snap.Commits))
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
