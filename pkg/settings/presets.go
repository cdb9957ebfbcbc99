package settings

import (
	"strings"

	"github.com/matzehuels/gitlanes/pkg/errors"
)

// Branch model names.
const (
	ModelGitFlow = "git-flow"
	ModelSimple  = "simple"
	ModelNone    = "none"
)

// Models lists the built-in branch models.
func Models() []string {
	return []string{ModelGitFlow, ModelSimple, ModelNone}
}

// Preset returns the built-in branch model with the given name. The empty
// name selects git-flow.
func Preset(name string) (BranchDef, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ModelGitFlow, "gitflow":
		return GitFlow(), nil
	case ModelSimple:
		return Simple(), nil
	case ModelNone:
		return None(), nil
	}
	return BranchDef{}, errors.New(errors.ErrCodeInvalidConfig,
		"unknown branch model %q (want one of %s)", name, strings.Join(Models(), ", "))
}

// GitFlow is the git-flow branch model.
func GitFlow() BranchDef {
	return BranchDef{
		Persistence: []string{
			`^(master|main|trunk)$`,
			`^(develop|dev)$`,
			`^feature.*$`,
			`^release.*$`,
			`^hotfix.*$`,
			`^bugfix.*$`,
		},
		Order: []string{
			`^(master|main|trunk)$`,
			`^(hotfix|release).*$`,
			`^(develop|dev)$`,
		},
		TerminalColors: ColorsDef{
			Matches: []ColorRuleDef{
				{Pattern: `^(master|main|trunk)$`, Colors: []string{"bright_blue"}},
				{Pattern: `^(develop|dev)$`, Colors: []string{"bright_yellow"}},
				{Pattern: `^(feature|fork/).*$`, Colors: []string{"bright_magenta", "bright_cyan"}},
				{Pattern: `^release.*$`, Colors: []string{"bright_green"}},
				{Pattern: `^(bugfix|hotfix).*$`, Colors: []string{"bright_red"}},
				{Pattern: `^tags/.*$`, Colors: []string{"bright_green"}},
			},
			Unknown: []string{"white"},
		},
		SVGColors: ColorsDef{
			Matches: []ColorRuleDef{
				{Pattern: `^(master|main|trunk)$`, Colors: []string{"blue"}},
				{Pattern: `^(develop|dev)$`, Colors: []string{"orange"}},
				{Pattern: `^(feature|fork/).*$`, Colors: []string{"purple", "turquoise"}},
				{Pattern: `^release.*$`, Colors: []string{"green"}},
				{Pattern: `^(bugfix|hotfix).*$`, Colors: []string{"red"}},
				{Pattern: `^tags/.*$`, Colors: []string{"green"}},
			},
			Unknown: []string{"gray"},
		},
	}
}

// Simple is a feature-branch model where only the trunk is special.
func Simple() BranchDef {
	return BranchDef{
		Persistence: []string{`^(master|main|trunk)$`},
		Order: []string{
			`^tags/.*$`,
			`^(master|main|trunk)$`,
		},
		TerminalColors: ColorsDef{
			Matches: []ColorRuleDef{
				{Pattern: `^(master|main|trunk)$`, Colors: []string{"bright_blue"}},
				{Pattern: `^tags/.*$`, Colors: []string{"bright_green"}},
			},
			Unknown: []string{"bright_yellow", "bright_green", "bright_red", "bright_magenta", "bright_cyan"},
		},
		SVGColors: ColorsDef{
			Matches: []ColorRuleDef{
				{Pattern: `^(master|main|trunk)$`, Colors: []string{"blue"}},
				{Pattern: `^tags/.*$`, Colors: []string{"green"}},
			},
			Unknown: []string{"orange", "green", "red", "purple", "turquoise"},
		},
	}
}

// None is a model without branch roles.
func None() BranchDef {
	return BranchDef{
		Persistence: []string{},
		Order:       []string{},
		TerminalColors: ColorsDef{
			Unknown: []string{"bright_blue", "bright_yellow", "bright_green", "bright_red", "bright_magenta", "bright_cyan"},
		},
		SVGColors: ColorsDef{
			Unknown: []string{"blue", "orange", "green", "red", "purple", "turquoise"},
		},
	}
}

// DefaultMergePatterns returns the merge summary patterns recognised by
// default, in priority order.
func DefaultMergePatterns() []string {
	return []string{
		// GitLab merge request
		`^Merge branch '(.+)' into '.+'$`,
		// git default
		`^Merge branch '(.+)' into .+$`,
		// git default into the main branch
		`^Merge branch '(.+)'$`,
		// GitHub pull request
		`^Merge pull request #[0-9]+ from .[^/]+/(.+)$`,
		// GitHub pull request from a fork
		`^Merge branch '(.+)' of .+$`,
		// Bitbucket pull request
		`^Merged in (.+) \(pull request #[0-9]+\)$`,
	}
}
