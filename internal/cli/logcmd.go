package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/pipeline"
	"github.com/matzehuels/gitlanes/pkg/render/text"
)

// logCommand creates the log command, a coloured lane view for terminals.
func (c *CLI) logCommand() *cobra.Command {
	var (
		flags     graphFlags
		noSummary bool
		noColor   bool
	)

	cmd := &cobra.Command{
		Use:   "log [repo]",
		Short: "Print the history with coloured branch lanes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(repoArg(args), []string{pipeline.FormatText})
			if err != nil {
				return err
			}
			return c.runLog(cmd.Context(), opts, flags.noCache, text.Options{NoSummary: noSummary}, !noColor)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&noSummary, "oneline-ids", false, "omit commit summaries")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable lane colours")

	return cmd
}

func (c *CLI) runLog(ctx context.Context, opts pipeline.Options, noCache bool, topts text.Options, color bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	src, err := pipeline.Open(opts)
	if err != nil {
		return err
	}
	result, err := runner.Layout(ctx, src, opts)
	if err != nil {
		return err
	}

	if color {
		topts.Style = laneStyle
	}
	return text.Render(c.Out, result.Graph, topts)
}
