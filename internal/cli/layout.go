package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/pipeline"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags     graphFlags
		formats   string
		output    string
		summaries bool
	)

	cmd := &cobra.Command{
		Use:   "layout [repo]",
		Short: "Compute the lane layout of a repository",
		Long: `Compute the lane layout of a repository and write it in one or more formats.

Formats: text, json, dot, svg, png, pdf. A single textual format without
--output is written to stdout; anything else is written to <output>.<format>
(default output: gitlanes).

PNG and PDF require rsvg-convert (librsvg).

Results are cached by the state of the repository refs, so unchanged
repositories are not walked again.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(repoArg(args), parseFormats(formats))
			if err != nil {
				return err
			}
			opts.Summaries = summaries
			return c.runLayout(cmd.Context(), opts, output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.DefaultFormat, "output formats, comma separated")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file base name")
	cmd.Flags().BoolVar(&summaries, "summaries", true, "include commit summaries in dot, svg, png and pdf output")

	return cmd
}

// runLayout executes the pipeline and writes every artifact.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Laying out history...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" && len(opts.Formats) == 1 && isTextual(opts.Formats[0]) {
		_, err := c.Out.Write(result.Artifacts[opts.Formats[0]])
		return err
	}

	base := output
	if base == "" {
		base = appName
	}
	base = strings.TrimSuffix(base, "."+opts.Formats[0])

	printSuccess("Layout complete")
	for _, format := range opts.Formats {
		path := base + "." + format
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats, result.CacheHit)
	return nil
}

func isTextual(format string) bool {
	switch format {
	case pipeline.FormatText, pipeline.FormatJSON, pipeline.FormatDOT:
		return true
	}
	return false
}
