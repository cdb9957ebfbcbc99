package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gitlanes/pkg/gitgraph"
)

// Default geometry, in inches.
const (
	DefaultLaneWidth = 0.35
	DefaultRowHeight = 0.3
)

const fallbackColor = "gray"

// Options configures DOT generation.
type Options struct {
	// Summaries adds each commit's summary line to the right of the lanes.
	Summaries bool

	// LaneWidth and RowHeight set the grid spacing in inches. Zero uses the
	// defaults.
	LaneWidth float64
	RowHeight float64
}

func (o Options) withDefaults() Options {
	if o.LaneWidth <= 0 {
		o.LaneWidth = DefaultLaneWidth
	}
	if o.RowHeight <= 0 {
		o.RowHeight = DefaultRowHeight
	}
	return o
}

// ToDOT converts a graph to Graphviz DOT source with pinned positions.
func ToDOT(g *gitgraph.Graph, opts Options) string {
	opts = opts.withDefaults()
	refs := refLabels(g)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, fixedsize=true, width=0.16, label=\"\", style=filled, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [arrowhead=none, penwidth=1.5];\n")
	buf.WriteString("\n")

	for i := range g.Commits {
		c := &g.Commits[i]
		color := commitColor(g, i)
		x := float64(column(g, i)) * opts.LaneWidth
		y := -float64(i) * opts.RowHeight

		attrs := []string{
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", x, y),
			fmt.Sprintf("color=%q", color),
			fmt.Sprintf("tooltip=%q", c.ShortID()+" "+c.SummaryLine()),
		}
		if c.IsMerge() {
			attrs = append(attrs, "fillcolor=white")
		} else {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", color))
		}
		if c.OID == g.Head.OID {
			attrs = append(attrs, "penwidth=3")
		}
		if r := refs[i]; r != "" {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", r))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", c.OID, strings.Join(attrs, ", "))
	}

	if opts.Summaries {
		buf.WriteString("\n")
		x := float64(g.Columns()) * opts.LaneWidth
		for i := range g.Commits {
			c := &g.Commits[i]
			fmt.Fprintf(&buf, "  %q [shape=plaintext, style=\"\", fixedsize=false, width=0, label=%s, pos=\"%.2f,%.2f!\"];\n",
				"summary-"+c.OID, leftLabel(c.ShortID()+"  "+c.SummaryLine()), x, -float64(i)*opts.RowHeight)
		}
	}

	buf.WriteString("\n")
	for i := range g.Commits {
		c := &g.Commits[i]
		for k, p := range c.Parents {
			j, ok := g.Indices[p]
			if !ok {
				continue
			}
			// A merged-in parent keeps the colour of its own branch.
			color := commitColor(g, i)
			if k > 0 {
				color = commitColor(g, j)
			}
			fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", c.OID, p, color)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// leftLabel quotes s as a left-justified Graphviz label.
func leftLabel(s string) string {
	return `"` + labelEscaper.Replace(s) + `\l"`
}

func column(g *gitgraph.Graph, i int) int {
	if b := g.Owner(i); b != nil && b.Visual.Column != gitgraph.Unset {
		return b.Visual.Column
	}
	return 0
}

func commitColor(g *gitgraph.Graph, i int) string {
	if b := g.Owner(i); b != nil && b.Visual.SVGColor != "" {
		return b.Visual.SVGColor
	}
	return fallbackColor
}

// refLabels joins the names of live branches and tags per commit row.
func refLabels(g *gitgraph.Graph) map[int]string {
	names := make(map[int][]string)
	for _, list := range [][]int{g.Branches, g.Tags} {
		for _, b := range list {
			br := &g.AllBranches[b]
			if i, ok := g.Indices[br.Target]; ok {
				names[i] = append(names[i], br.Name)
			}
		}
	}
	out := make(map[int]string, len(names))
	for i, n := range names {
		out[i] = strings.Join(n, ", ")
	}
	return out
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
