package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/jengatower/pkg/dataset"
)

// Options configures diagram generation.
type Options struct {
	// Highlight is an ISO code whose links are emphasised.
	Highlight string
	// MinValue hides links whose aggregated value is below it.
	MinValue float64
	// Detailed adds company counts to node labels.
	Detailed bool
}

const (
	minPen = 1.0
	maxPen = 8.0
)

// ToDOT converts the dataset's aggregated links to Graphviz DOT.
// Countries without any visible link are omitted.
func ToDOT(ds *dataset.Dataset, opts Options) string {
	links := dataset.AggregateLinks(ds.Links())
	highlight := strings.ToUpper(strings.TrimSpace(opts.Highlight))

	var visible []dataset.LinkRecord
	maxValue := 0.0
	for _, l := range links {
		if l.Value < opts.MinValue {
			continue
		}
		visible = append(visible, l)
		maxValue = math.Max(maxValue, l.Value)
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontsize=14, fixedsize=false];\n")
	buf.WriteString("\n")

	used := make(map[string]bool)
	for _, l := range visible {
		used[l.Source] = true
		used[l.Target] = true
	}
	for _, r := range ds.Results() {
		if !used[r.Code] {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", r.Code, strings.Join(nodeAttrs(r, opts.Detailed, r.Code == highlight), ", "))
		delete(used, r.Code)
	}
	// Endpoints that are not in the country table still need a node.
	for _, l := range visible {
		for _, code := range []string{l.Source, l.Target} {
			if used[code] {
				fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n", code, code, dataset.RegionUnknown.Hex())
				delete(used, code)
			}
		}
	}

	buf.WriteString("\n")
	for _, l := range visible {
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", l.Source, l.Target, strings.Join(edgeAttrs(l, maxValue, highlight), ", "))
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(r dataset.CountryRecord, detailed, highlighted bool) []string {
	label := r.Code
	if detailed {
		label = fmt.Sprintf("%s\n%d", r.Code, r.Companies)
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("tooltip=%q", r.Name),
		fmt.Sprintf("fillcolor=%q", r.Region.Hex()),
	}
	if highlighted {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

func edgeAttrs(l dataset.LinkRecord, maxValue float64, highlight string) []string {
	pen := minPen
	if maxValue > 0 {
		pen = minPen + (maxPen-minPen)*l.Value/maxValue
	}
	color := "#555555"
	switch {
	case highlight == "":
	case l.Touches(highlight):
		color = "#000000"
	default:
		color = "#55555533"
	}
	return []string{
		fmt.Sprintf("penwidth=%.2f", pen),
		fmt.Sprintf("color=%q", color),
		fmt.Sprintf("tooltip=%q", fmt.Sprintf("%s-%s: %g", l.Source, l.Target, l.Value)),
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
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

// normalizeViewBox rewrites Graphviz's pt-sized root element so the SVG
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
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
