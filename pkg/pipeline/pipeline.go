// Package pipeline runs the open → layout → render sequence shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Open: resolve a repository path or a snapshot file into a
//     history.Repository
//  2. Layout: compile the settings, fingerprint the refs and either reuse a
//     cached graph or run gitgraph.Build
//  3. Render: produce text, JSON, DOT, SVG, PNG or PDF output
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    RepoPath: ".",
//	    Settings: settings.DefaultDef(),
//	    Formats:  []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/gitgraph"
	"github.com/matzehuels/gitlanes/pkg/settings"
)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatText

// ResultVersion is mixed into cache keys; bump it when the graph encoding
// changes.
const ResultVersion = 1

// DefaultPNGScale is the PNG scale factor.
const DefaultPNGScale = 2.0

// Options configures one pipeline run.
type Options struct {
	// RepoPath is a path inside a git working tree. Ignored when Snapshot is
	// set.
	RepoPath string

	// Snapshot is a JSON file written by history.WriteSnapshot.
	Snapshot string

	// Settings is the configuration in textual form.
	Settings settings.Def

	// Formats lists the outputs to render.
	Formats []string

	// Summaries adds commit summaries to DOT based output.
	Summaries bool

	// Refresh skips the cache lookup but still stores the result.
	Refresh bool

	Logger *log.Logger
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.RepoPath == "" && o.Snapshot == "" {
		o.RepoPath = "."
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.Formats = slices.Compact(o.Formats)
	return ValidateFormats(o.Formats)
}

// ValidateFormat reports whether format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "unsupported format %q", format)
	}
	return nil
}

// ValidateFormats validates every entry of formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Result is the output of [Runner.Execute].
type Result struct {
	Graph *gitgraph.Graph

	// Fingerprint identifies the repository state the graph was built from.
	Fingerprint string

	// Artifacts maps formats to rendered bytes.
	Artifacts map[string][]byte

	CacheHit bool
	Stats    Stats
}

// Stats records sizes and timings of a run.
type Stats struct {
	Commits    int
	Branches   int
	Columns    int
	LayoutTime time.Duration
	RenderTime time.Duration
}
