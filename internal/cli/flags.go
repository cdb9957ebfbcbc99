package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/pipeline"
	"github.com/matzehuels/gitlanes/pkg/settings"
)

// graphFlags are the flags shared by every command that lays out a
// repository. Flags override the config file, which overrides the defaults.
type graphFlags struct {
	config   string
	model    string
	remote   bool
	order    string
	forward  bool
	maxCount int
	snapshot string
	noCache  bool
	refresh  bool

	cmd *cobra.Command
}

func (f *graphFlags) register(cmd *cobra.Command) {
	d := settings.DefaultDef()
	fs := cmd.Flags()
	fs.StringVarP(&f.config, "config", "c", "", "settings file (.toml, .yaml)")
	fs.StringVarP(&f.model, "model", "m", d.Model, "branch model: "+joinModels())
	fs.BoolVar(&f.remote, "remote", d.IncludeRemote, "include remote branches")
	fs.StringVar(&f.order, "order", d.BranchOrder, "column packing order: shortest-first, longest-first")
	fs.BoolVar(&f.forward, "forward", d.Forward, "align branches to the left of their group")
	fs.IntVarP(&f.maxCount, "max-count", "n", d.MaxCount, "walk at most n commits (0 = all)")
	fs.StringVar(&f.snapshot, "snapshot", "", "read history from a snapshot file instead of a repository")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute even when a cached layout exists")
	f.cmd = cmd
}

// settings resolves the effective textual settings.
func (f *graphFlags) settings() (settings.Def, error) {
	def := settings.DefaultDef()
	if f.config != "" {
		loaded, err := settings.Load(f.config)
		if err != nil {
			return settings.Def{}, err
		}
		def = loaded
	}

	changed := func(name string) bool { return f.cmd != nil && f.cmd.Flags().Changed(name) }
	if changed("model") {
		def.Model = f.model
		def.Branches = nil
	}
	if changed("remote") {
		def.IncludeRemote = f.remote
	}
	if changed("order") {
		def.BranchOrder = f.order
	}
	if changed("forward") {
		def.Forward = f.forward
	}
	if changed("max-count") {
		def.MaxCount = f.maxCount
	}
	return def, nil
}

// options builds pipeline options for the repository at path.
func (f *graphFlags) options(path string, formats []string) (pipeline.Options, error) {
	def, err := f.settings()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		RepoPath: path,
		Snapshot: f.snapshot,
		Settings: def,
		Formats:  formats,
		Refresh:  f.refresh,
	}, nil
}

func joinModels() string {
	return strings.Join(settings.Models(), ", ")
}

func repoArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
