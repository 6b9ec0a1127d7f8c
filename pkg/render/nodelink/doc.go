// Package nodelink draws the trade-link network as a Graphviz diagram.
//
// Each country is a node filled with its region color; each aggregated link
// is an undirected edge whose pen width grows with the trade value. When a
// highlight country is set, its incident edges are drawn in black and every
// other edge is faded, mirroring the tower's hover highlighting.
//
//	dot := nodelink.ToDOT(ds, nodelink.Options{Highlight: "DE"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
package nodelink
