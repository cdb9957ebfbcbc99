package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/settings"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate settings",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPresetsCommand())
	cmd.AddCommand(c.configValidateCommand())

	return cmd
}

// configShowCommand prints the effective settings.
func (c *CLI) configShowCommand() *cobra.Command {
	var (
		flags  graphFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings with the branch model expanded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := flags.settings()
			if err != nil {
				return err
			}
			branches, err := def.ResolvedBranches()
			if err != nil {
				return err
			}
			def.Branches = &branches
			switch f := settings.Format(format); f {
			case settings.FormatTOML, settings.FormatYAML:
				return settings.Encode(c.Out, def, f)
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown settings format %q (want toml or yaml)", format)
			}
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "as", string(settings.FormatTOML), "output format: toml, yaml")
	return cmd
}

// configPresetsCommand lists the built-in branch models.
func (c *CLI) configPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in branch models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range settings.Models() {
				preset, err := settings.Preset(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.Out, "%-10s %d persistence rules, %d order groups\n",
					name, len(preset.Persistence), len(preset.Order)+1)
			}
			return nil
		},
	}
}

// configValidateCommand compiles a settings file.
func (c *CLI) configValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a settings file compiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := settings.Load(args[0])
			if err != nil {
				return err
			}
			if _, err := def.Compile(); err != nil {
				return err
			}
			printSuccess("%s is valid", args[0])
			printKeyValue("model", def.Model)
			printKeyValue("order", def.BranchOrder)
			return nil
		},
	}
}
