// Package dotexport renders diagram snapshots as Graphviz DOT documents.
package dotexport

import (
	"fmt"

	"github.com/awalterschulze/gographviz"
	"github.com/specialistvlad/flowsync/internal/graph"
)

// GraphName is the name given to every rendered digraph.
const GraphName = "flowsync"

var shapes = map[string]string{
	graph.ShapeRectangle: "box",
	graph.ShapeStart:     "ellipse",
	graph.ShapeInput:     "parallelogram",
	graph.ShapeProcess:   "box",
	graph.ShapeDecision:  "diamond",
}

// DotShape maps a palette shape tag to a Graphviz node shape. Unknown tags
// render as boxes.
func DotShape(tag string) string {
	if s, ok := shapes[tag]; ok {
		return s
	}
	return "box"
}

// Render turns a snapshot into a directed DOT graph. Nodes and links are
// emitted in snapshot order. Links whose endpoints are missing are skipped.
func Render(snap graph.Snapshot) (string, error) {
	g := gographviz.NewEscape()
	if err := g.SetName(GraphName); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}

	known := make(map[string]struct{}, len(snap.Nodes))
	for _, n := range snap.Nodes {
		attrs := map[string]string{string(gographviz.Shape): DotShape(n.Shape)}
		if n.Text != "" {
			attrs[string(gographviz.Label)] = n.Text
		}
		if err := g.AddNode(GraphName, n.ID, attrs); err != nil {
			return "", fmt.Errorf("failed to add node %s: %w", n.ID, err)
		}
		known[n.ID] = struct{}{}
	}

	for _, l := range snap.Links {
		_, okOrigin := known[l.OriginID]
		_, okDestination := known[l.DestinationID]
		if !okOrigin || !okDestination {
			continue
		}
		attrs := map[string]string{}
		if l.Text != "" {
			attrs[string(gographviz.Label)] = l.Text
		}
		if err := g.AddEdge(l.OriginID, l.DestinationID, true, attrs); err != nil {
			return "", fmt.Errorf("failed to add link %s: %w", l.ID, err)
		}
	}

	return g.String(), nil
}
