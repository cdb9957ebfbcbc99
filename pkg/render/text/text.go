// Package text draws a laid out commit graph as terminal lines.
//
// Each commit gets one line: a cell per lane followed by the short id, the
// refs pointing at the commit and its summary. Lanes are stretched to the
// merge commit that absorbed them and the parent they forked from, and those
// ends are joined to the commit's lane with horizontal rules.
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/gitlanes/pkg/gitgraph"
)

// Glyphs used for cells.
const (
	GlyphCommit  = '●'
	GlyphMerge   = '○'
	GlyphLane    = '│'
	GlyphMergeIn = '╮'
	GlyphForkOut = '╯'
	GlyphRule    = '─'
	GlyphEmpty   = ' '
)

// Cell is one lane position on a line.
type Cell struct {
	Glyph rune

	// Branch is the branch drawn in this cell, or gitgraph.Unset.
	Branch int
}

// Line is one rendered commit.
type Line struct {
	Commit *gitgraph.Commit
	Cells  []Cell

	// Gaps holds the glyph between cell i and i+1.
	Gaps []Cell

	Refs []string
}

// StyleFunc decorates a glyph run drawn for branch b (nil for filler).
type StyleFunc func(b *gitgraph.Branch, s string) string

// Options configures rendering.
type Options struct {
	// Style colours glyphs. Nil draws plain text.
	Style StyleFunc

	// NoSummary omits commit summaries.
	NoSummary bool
}

// Lines computes the cells of every commit line.
func Lines(g *gitgraph.Graph) []Line {
	cols := g.Columns()
	lines := make([]Line, len(g.Commits))
	for i := range lines {
		lines[i] = Line{
			Commit: &g.Commits[i],
			Cells:  blank(cols),
			Gaps:   blank(max(cols-1, 0)),
		}
	}

	for b := range g.AllBranches {
		lane := g.Lane(b)
		if lane.IsEmpty() {
			continue
		}
		col := g.AllBranches[b].Visual.Column
		span := g.AllBranches[b].Span
		for i := lane.Start; i <= lane.End; i++ {
			glyph := GlyphLane
			switch {
			case i < span.Start:
				if i != lane.Start {
					break
				}
				glyph = GlyphMergeIn
			case span.End != gitgraph.Unset && i > span.End:
				if i != lane.End {
					break
				}
				glyph = GlyphForkOut
			}
			cell := &lines[i].Cells[col]
			if cell.Branch == gitgraph.Unset || rank(glyph) > rank(cell.Glyph) {
				*cell = Cell{Glyph: glyph, Branch: b}
			}
		}
	}

	for i := range lines {
		l := &lines[i]
		owner := l.Commit.Trace
		if owner == gitgraph.Unset {
			continue
		}
		cc := g.AllBranches[owner].Visual.Column
		if cc == gitgraph.Unset {
			continue
		}
		glyph := GlyphCommit
		if l.Commit.IsMerge() {
			glyph = GlyphMerge
		}
		l.Cells[cc] = Cell{Glyph: glyph, Branch: owner}

		for c, cell := range l.Cells {
			if cell.Glyph == GlyphMergeIn || cell.Glyph == GlyphForkOut {
				rule(l, cc, c, cell.Branch)
			}
		}
	}

	refs := refNames(g)
	for i := range lines {
		lines[i].Refs = refs[i]
	}
	return lines
}

// rule joins column from to column to with horizontal glyphs.
func rule(l *Line, from, to, b int) {
	lo, hi := min(from, to), max(from, to)
	for c := lo; c < hi; c++ {
		if c > lo && l.Cells[c].Glyph == GlyphEmpty {
			l.Cells[c] = Cell{Glyph: GlyphRule, Branch: b}
		}
		l.Gaps[c] = Cell{Glyph: GlyphRule, Branch: b}
	}
}

func rank(r rune) int {
	switch r {
	case GlyphCommit, GlyphMerge:
		return 3
	case GlyphMergeIn, GlyphForkOut:
		return 2
	case GlyphLane:
		return 1
	}
	return 0
}

func blank(n int) []Cell {
	cells := make([]Cell, n)
	for i := range cells {
		cells[i] = Cell{Glyph: GlyphEmpty, Branch: gitgraph.Unset}
	}
	return cells
}

func refNames(g *gitgraph.Graph) map[int][]string {
	out := make(map[int][]string)
	for _, list := range [][]int{g.Branches, g.Tags} {
		for _, b := range list {
			br := &g.AllBranches[b]
			if i, ok := g.Indices[br.Target]; ok {
				out[i] = append(out[i], br.Name)
			}
		}
	}
	return out
}

// Render writes one line per commit to w.
func Render(w io.Writer, g *gitgraph.Graph, opts Options) error {
	style := opts.Style
	if style == nil {
		style = func(_ *gitgraph.Branch, s string) string { return s }
	}
	branch := func(c Cell) *gitgraph.Branch {
		if c.Branch == gitgraph.Unset {
			return nil
		}
		return &g.AllBranches[c.Branch]
	}

	for _, l := range Lines(g) {
		var sb strings.Builder
		for c, cell := range l.Cells {
			sb.WriteString(style(branch(cell), string(cell.Glyph)))
			if c < len(l.Gaps) {
				sb.WriteString(style(branch(l.Gaps[c]), string(l.Gaps[c].Glyph)))
			}
		}
		sb.WriteString("  ")
		sb.WriteString(l.Commit.ShortID())
		if len(l.Refs) > 0 {
			sb.WriteString(" (" + strings.Join(l.Refs, ", ") + ")")
		}
		if !opts.NoSummary {
			sb.WriteString(" " + l.Commit.SummaryLine())
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(sb.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
