// Package settings holds the configuration consumed by the layout engine.
//
// Configuration has two forms. [Def] is the textual form, decoded from TOML or
// YAML files and safe to print back. [Settings] is the compiled form: every
// pattern is a compiled regular expression and every terminal colour is a
// palette index. [Def.Compile] converts one into the other and is the only
// place configuration errors surface, so a bad pattern or colour is reported
// before any commit is read.
//
// # Branch Models
//
// A branch model decides how durable a branch is (persistence), which
// horizontal group it is drawn in (order) and which colour it gets. Three
// models ship with the package:
//
//   - git-flow: main, develop, feature, release, hotfix and bugfix roles
//   - simple: only the trunk is special
//   - none: no roles at all, colours rotate through one palette
//
// # Merge Patterns
//
// Merge patterns recover the name of a deleted branch from the summary of the
// merge commit that absorbed it. Each pattern must have exactly one capture
// group; the first pattern that matches wins.
package settings

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/gitlanes/pkg/errors"
)

// BranchOrder controls the sort used when packing branches into columns.
type BranchOrder struct {
	// ShortestFirst places short branches before long ones. When false the
	// longest branches are placed first.
	ShortestFirst bool

	// Forward places branches that start earlier in the history first among
	// branches of equal length.
	Forward bool
}

// String returns "shortest-first" or "longest-first".
func (o BranchOrder) String() string {
	if o.ShortestFirst {
		return OrderShortestFirst
	}
	return OrderLongestFirst
}

// Branch order names accepted in configuration files and flags.
const (
	OrderShortestFirst = "shortest-first"
	OrderLongestFirst  = "longest-first"
)

// ParseBranchOrder converts a branch order name into a [BranchOrder].
// The empty string selects shortest-first.
func ParseBranchOrder(name string, forward bool) (BranchOrder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", OrderShortestFirst:
		return BranchOrder{ShortestFirst: true, Forward: forward}, nil
	case OrderLongestFirst:
		return BranchOrder{ShortestFirst: false, Forward: forward}, nil
	}
	return BranchOrder{}, errors.New(errors.ErrCodeInvalidConfig,
		"unknown branch order %q (want %s or %s)", name, OrderShortestFirst, OrderLongestFirst)
}

// ColorRule assigns a colour palette to branches whose name matches Pattern.
type ColorRule[T any] struct {
	Pattern *regexp.Regexp
	Colors  []T
}

// BranchSettings is a compiled branch model.
type BranchSettings struct {
	Persistence []*regexp.Regexp
	Order       []*regexp.Regexp

	TerminalColors        []ColorRule[uint8]
	TerminalColorsUnknown []uint8
	SVGColors             []ColorRule[string]
	SVGColorsUnknown      []string
}

// Settings is the compiled configuration for one layout run.
type Settings struct {
	IncludeRemote bool
	BranchOrder   BranchOrder
	Branches      BranchSettings
	MergePatterns []*regexp.Regexp

	// MaxCount caps the number of commits walked. Zero means no limit.
	MaxCount int
}

// Default returns the compiled default configuration: the git-flow model,
// remote branches included, shortest-first forward ordering and the default
// merge patterns.
func Default() *Settings {
	s, err := DefaultDef().Compile()
	if err != nil {
		panic(fmt.Sprintf("settings: default configuration does not compile: %v", err))
	}
	return s
}

// Def is the textual form of [Settings].
type Def struct {
	// Model names the branch model used when Branches is nil.
	Model         string     `toml:"model" yaml:"model" json:"model"`
	IncludeRemote bool       `toml:"include_remote" yaml:"include_remote" json:"include_remote"`
	BranchOrder   string     `toml:"branch_order" yaml:"branch_order" json:"branch_order"`
	Forward       bool       `toml:"forward" yaml:"forward" json:"forward"`
	MaxCount      int        `toml:"max_count" yaml:"max_count" json:"max_count"`
	Branches      *BranchDef `toml:"branches,omitempty" yaml:"branches,omitempty" json:"branches,omitempty"`
	MergePatterns []string   `toml:"merge_patterns,omitempty" yaml:"merge_patterns,omitempty" json:"merge_patterns,omitempty"`
}

// DefaultDef returns the textual default configuration.
func DefaultDef() Def {
	return Def{
		Model:         ModelGitFlow,
		IncludeRemote: true,
		BranchOrder:   OrderShortestFirst,
		Forward:       true,
		MergePatterns: DefaultMergePatterns(),
	}
}

// BranchDef is the textual form of a branch model.
type BranchDef struct {
	Persistence    []string  `toml:"persistence" yaml:"persistence" json:"persistence"`
	Order          []string  `toml:"order" yaml:"order" json:"order"`
	TerminalColors ColorsDef `toml:"terminal_colors" yaml:"terminal_colors" json:"terminal_colors"`
	SVGColors      ColorsDef `toml:"svg_colors" yaml:"svg_colors" json:"svg_colors"`
}

// ColorsDef lists colour rules in priority order plus the palette used for
// branches no rule matches.
type ColorsDef struct {
	Matches []ColorRuleDef `toml:"matches" yaml:"matches" json:"matches"`
	Unknown []string       `toml:"unknown" yaml:"unknown" json:"unknown"`
}

// ColorRuleDef is one pattern and its palette.
type ColorRuleDef struct {
	Pattern string   `toml:"pattern" yaml:"pattern" json:"pattern"`
	Colors  []string `toml:"colors" yaml:"colors" json:"colors"`
}

// ResolvedBranches returns Branches, or the preset named by Model when
// Branches is nil.
func (d Def) ResolvedBranches() (BranchDef, error) {
	if d.Branches != nil {
		return *d.Branches, nil
	}
	return Preset(d.Model)
}

// Compile validates d and compiles it into [Settings].
//
// Errors carry [errors.ErrCodeInvalidConfig] for bad patterns, unknown branch
// orders, merge patterns without exactly one capture group and empty
// palettes, and [errors.ErrCodeInvalidColor] for terminal colours that do not
// resolve to a palette index.
func (d Def) Compile() (*Settings, error) {
	order, err := ParseBranchOrder(d.BranchOrder, d.Forward)
	if err != nil {
		return nil, err
	}
	if d.MaxCount < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "max_count must not be negative, got %d", d.MaxCount)
	}

	bd, err := d.ResolvedBranches()
	if err != nil {
		return nil, err
	}
	branches, err := bd.Compile()
	if err != nil {
		return nil, err
	}

	patterns := d.MergePatterns
	if patterns == nil {
		patterns = DefaultMergePatterns()
	}
	merge, err := compileMergePatterns(patterns)
	if err != nil {
		return nil, err
	}

	return &Settings{
		IncludeRemote: d.IncludeRemote,
		BranchOrder:   order,
		Branches:      *branches,
		MergePatterns: merge,
		MaxCount:      d.MaxCount,
	}, nil
}

// Compile compiles a branch model.
func (b BranchDef) Compile() (*BranchSettings, error) {
	persistence, err := compileAll("persistence", b.Persistence)
	if err != nil {
		return nil, err
	}
	order, err := compileAll("order", b.Order)
	if err != nil {
		return nil, err
	}

	termRules, err := compileRules("terminal_colors", b.TerminalColors.Matches, TerminalColor)
	if err != nil {
		return nil, err
	}
	termUnknown, err := convertColors("terminal_colors.unknown", b.TerminalColors.Unknown, TerminalColor)
	if err != nil {
		return nil, err
	}
	svgRules, err := compileRules("svg_colors", b.SVGColors.Matches, svgColor)
	if err != nil {
		return nil, err
	}
	svgUnknown, err := convertColors("svg_colors.unknown", b.SVGColors.Unknown, svgColor)
	if err != nil {
		return nil, err
	}

	return &BranchSettings{
		Persistence:           persistence,
		Order:                 order,
		TerminalColors:        termRules,
		TerminalColorsUnknown: termUnknown,
		SVGColors:             svgRules,
		SVGColorsUnknown:      svgUnknown,
	}, nil
}

func compilePattern(field, pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s: invalid pattern %q", field, pattern)
	}
	return re, nil
}

func compileAll(field string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := compilePattern(field, p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func compileMergePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out, err := compileAll("merge_patterns", patterns)
	if err != nil {
		return nil, err
	}
	for i, re := range out {
		if n := re.NumSubexp(); n != 1 {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"merge_patterns: pattern %q has %d capture groups, want exactly 1", patterns[i], n)
		}
	}
	return out, nil
}

func compileRules[T any](field string, defs []ColorRuleDef, conv func(string) (T, error)) ([]ColorRule[T], error) {
	out := make([]ColorRule[T], 0, len(defs))
	for _, d := range defs {
		re, err := compilePattern(field, d.Pattern)
		if err != nil {
			return nil, err
		}
		colors, err := convertColors(fmt.Sprintf("%s[%s]", field, d.Pattern), d.Colors, conv)
		if err != nil {
			return nil, err
		}
		out = append(out, ColorRule[T]{Pattern: re, Colors: colors})
	}
	return out, nil
}

func convertColors[T any](field string, names []string, conv func(string) (T, error)) ([]T, error) {
	if len(names) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: colour list must not be empty", field)
	}
	out := make([]T, 0, len(names))
	for _, n := range names {
		c, err := conv(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func svgColor(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New(errors.ErrCodeInvalidColor, "empty svg colour")
	}
	return name, nil
}
