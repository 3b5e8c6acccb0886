package protocol

import (
	"fmt"

	"github.com/specialistvlad/flowsync/internal/graph"
)

// Apply performs the graph operation matching ev. It reports whether the graph
// changed; events addressing unknown ids are no-ops, not errors. An error is
// only returned for a payload that does not match the event name.
func Apply(g *graph.Graph, ev Event) (bool, error) {
	switch p := ev.Payload.(type) {
	case nil:
		if ev.Name != Clear {
			break
		}
		g.Clear()
		return true, nil

	case NodeCreatedPayload:
		g.CreateNode(p.ID, graph.Bounds{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}, p.Text, p.Shape)
		return true, nil

	case NodeModifiedPayload:
		return g.UpdateNodeBounds(p.ID, graph.Bounds{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}), nil

	case TextEditedPayload:
		switch ev.Name {
		case NodeTextEdited:
			return g.UpdateNodeText(p.ID, p.Text), nil
		case LinkTextEdited:
			return g.UpdateLinkText(p.ID, p.Text), nil
		}

	case DeletedPayload:
		switch ev.Name {
		case NodeDeleted:
			return g.DeleteNode(p.ID), nil
		case LinkDeleted:
			return g.DeleteLink(p.ID), nil
		}

	case LinkCreatedPayload:
		_, ok := g.CreateLink(p.ID, p.OriginID, p.DestinationID, p.Text)
		return ok, nil

	case LinkModifiedPayload:
		return g.UpdateLinkEndpoints(p.ID, p.OriginID, p.DestinationID), nil

	case LoadPayload:
		g.Restore(p.Snapshot)
		return true, nil
	}

	return false, fmt.Errorf("%w: %s carries %T", ErrMalformed, ev.Name, ev.Payload)
}
