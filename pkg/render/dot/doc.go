// Package dot renders a laid out commit graph through Graphviz.
//
// [ToDOT] emits a neato graph in which every commit is pinned to its lane
// (x) and its row (y), so Graphviz only routes edges and never moves a
// commit. Commits are drawn in the SVG colour of the branch owning them;
// merge commits are hollow and the HEAD commit has a heavier outline.
//
//	src := dot.ToDOT(g, dot.Options{Summaries: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package dot
