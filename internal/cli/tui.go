package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/gitgraph"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
	"github.com/matzehuels/gitlanes/pkg/render/text"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// browseCommand creates the interactive history browser.
func (c *CLI) browseCommand() *cobra.Command {
	var flags graphFlags

	cmd := &cobra.Command{
		Use:   "browse [repo]",
		Short: "Browse the lane layout interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(repoArg(args), []string{pipeline.FormatText})
			if err != nil {
				return err
			}
			return c.runBrowse(cmd.Context(), opts, flags.noCache)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, opts pipeline.Options, noCache bool) error {
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
	if len(result.Graph.Commits) == 0 {
		printInfo("No commits to show")
		return nil
	}

	_, err = tea.NewProgram(NewGraphModel(result.Graph), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// GraphModel - Interactive commit list
// =============================================================================

// GraphModel is the bubbletea model for browsing a laid out graph.
type GraphModel struct {
	Graph  *gitgraph.Graph
	Lines  []text.Line
	Cursor int
	Height int
	Offset int
}

// NewGraphModel creates a new graph model.
func NewGraphModel(g *gitgraph.Graph) GraphModel {
	return GraphModel{
		Graph:  g,
		Lines:  text.Lines(g),
		Height: 15,
	}
}

func (m GraphModel) Init() tea.Cmd {
	return nil
}

func (m GraphModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup", "ctrl+b":
			m.move(-m.Height)
		case "pgdown", "ctrl+f", " ":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Lines))
		case "end", "G":
			m.move(len(m.Lines))
		}
	case tea.WindowSizeMsg:
		// Leave room for the header and the detail box.
		m.Height = max(msg.Height-12, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta and keeps it inside the viewport.
func (m *GraphModel) move(delta int) {
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Lines)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m GraphModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("History"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  pgup/pgdn page  g/G ends  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Lines))
	for i := m.Offset; i < end; i++ {
		b.WriteString(m.renderLine(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(detailBoxStyle.Render(m.detail()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Lines))))

	return b.String()
}

func (m GraphModel) renderLine(i int) string {
	l := m.Lines[i]
	var sb strings.Builder
	for c, cell := range l.Cells {
		sb.WriteString(m.glyph(cell))
		if c < len(l.Gaps) {
			sb.WriteString(m.glyph(l.Gaps[c]))
		}
	}

	cursor := "  "
	style := listNormalStyle
	if i == m.Cursor {
		cursor = "▸ "
		style = listSelectedStyle
	}
	label := l.Commit.ShortID()
	if len(l.Refs) > 0 {
		label += " (" + strings.Join(l.Refs, ", ") + ")"
	}
	return cursor + sb.String() + "  " + style.Render(label) + " " + listDimStyle.Render(l.Commit.SummaryLine())
}

func (m GraphModel) glyph(cell text.Cell) string {
	if cell.Branch == gitgraph.Unset {
		return string(cell.Glyph)
	}
	return laneStyle(&m.Graph.AllBranches[cell.Branch], string(cell.Glyph))
}

// detail describes the commit under the cursor.
func (m GraphModel) detail() string {
	c := m.Lines[m.Cursor].Commit
	rows := []string{
		StyleHighlight.Render(c.OID),
		fmt.Sprintf("%s <%s>", c.Author.Name, c.Author.Email),
		c.Author.When.Format("Mon Jan 2 15:04:05 2006 -0700"),
	}
	if b := m.Graph.Owner(m.Cursor); b != nil {
		line := "branch " + laneStyle(b, b.Name)
		if b.SourceBranch != gitgraph.Unset {
			line += listDimStyle.Render(" from ") + m.Graph.AllBranches[b.SourceBranch].Name
		}
		if b.TargetBranch != gitgraph.Unset {
			line += listDimStyle.Render(" into ") + m.Graph.AllBranches[b.TargetBranch].Name
		}
		rows = append(rows, line)
	}
	rows = append(rows, "", c.SummaryLine())
	return strings.Join(rows, "\n")
}
