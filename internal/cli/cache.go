package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local layout cache",
	}

	cmd.AddCommand(c.cacheListCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheListCommand creates the "cache list" subcommand.
func (c *CLI) cacheListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached layouts by repository fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := openFileCache()
			if err != nil || fc == nil {
				return err
			}
			entries, err := fc.Entries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("Cache is empty")
				return nil
			}

			now := time.Now()
			for i := 0; i < len(entries); {
				fp := entries[i].Fingerprint
				j, size := i, 0
				for ; j < len(entries) && entries[j].Fingerprint == fp; j++ {
					size += entries[j].Size
				}
				name := fp
				if name == "" {
					name = "(other)"
				} else if len(name) > 12 {
					name = name[:12]
				}
				newest := entries[i]
				state := "age " + now.Sub(newest.StoredAt).Round(time.Second).String()
				if newest.Expired(now) {
					state = "expired"
				}
				fmt.Fprintf(c.Out, "%s  %s\n", StyleValue.Render(fmt.Sprintf("%-12s", name)),
					StyleDim.Render(fmt.Sprintf("%d layouts  %d bytes  %s", j-i, size, state)))
				i = j
			}
			return nil
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [fingerprint]",
		Short: "Clear cached layouts, all of them or one repository state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := openFileCache()
			if err != nil || fc == nil {
				return err
			}

			var count int
			if len(args) == 1 {
				count, err = fc.Drop(cmd.Context(), args[0])
			} else {
				count, err = fc.Clear()
			}
			if err != nil {
				return err
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// openFileCache opens the local cache directory. It returns nil without an
// error when nothing was cached yet.
func openFileCache() (*cache.FileCache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil, nil
	}
	return cache.NewFileCache(dir)
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.Out, dir)
			return nil
		},
	}
}
