// Package render turns a laid out commit graph into output formats.
//
// The [dot] subpackage emits Graphviz DOT with every commit pinned to its
// lane and renders it to SVG in-process. The [text] subpackage draws lanes as
// rows of box-drawing characters for terminals. [ToPDF] and [ToPNG] convert
// an SVG with the external rsvg-convert tool.
//
//	src := dot.ToDOT(g, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//	png, err := render.ToPNG(svg, 2.0)
//
// [dot]: github.com/matzehuels/gitlanes/pkg/render/dot
// [text]: github.com/matzehuels/gitlanes/pkg/render/text
package render
