package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/gitgraph"
	"github.com/matzehuels/gitlanes/pkg/observability"
	"github.com/matzehuels/gitlanes/pkg/render"
	"github.com/matzehuels/gitlanes/pkg/render/dot"
	"github.com/matzehuels/gitlanes/pkg/render/text"
)

// Render produces one output format for g.
func (r *Runner) Render(ctx context.Context, g *gitgraph.Graph, format string, opts Options) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, err := renderFormat(ctx, g, format, opts)
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return data, nil
}

func renderFormat(ctx context.Context, g *gitgraph.Graph, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatText:
		var buf bytes.Buffer
		if err := text.Render(&buf, g, text.Options{}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return gitgraph.MarshalGraph(g)
	case FormatDOT:
		return []byte(dot.ToDOT(g, dot.Options{Summaries: opts.Summaries})), nil
	}

	svg, err := dot.RenderSVG(ctx, dot.ToDOT(g, dot.Options{Summaries: opts.Summaries}))
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPNG:
		return render.ToPNG(svg, DefaultPNGScale)
	case FormatPDF:
		return render.ToPDF(svg)
	}
	return svg, nil
}
