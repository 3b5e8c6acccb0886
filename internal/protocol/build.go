package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/flowsync/internal/graph"
)

// NewNodeCreated announces n with its text, shape and bounds.
func NewNodeCreated(n graph.Node) Event {
	return Event{Name: NodeCreated, Payload: NodeCreatedPayload{
		ID:     n.ID,
		Text:   n.Text,
		Shape:  n.Shape,
		X:      n.X,
		Y:      n.Y,
		Width:  n.Width,
		Height: n.Height,
	}}
}

// NewNodeModified moves or resizes node id to b.
func NewNodeModified(id string, b graph.Bounds) Event {
	return Event{Name: NodeModified, Payload: NodeModifiedPayload{
		ID: id, X: b.X, Y: b.Y, Width: b.Width, Height: b.Height,
	}}
}

// NewNodeTextEdited replaces the text of node id.
func NewNodeTextEdited(id, text string) Event {
	return Event{Name: NodeTextEdited, Payload: TextEditedPayload{ID: id, Text: text}}
}

// NewNodeDeleted removes node id. Its links are not touched.
func NewNodeDeleted(id string) Event {
	return Event{Name: NodeDeleted, Payload: DeletedPayload{ID: id}}
}

// NewLinkCreated announces l between its origin and destination.
func NewLinkCreated(l graph.Link) Event {
	return Event{Name: LinkCreated, Payload: LinkCreatedPayload{
		ID:            l.ID,
		Text:          l.Text,
		OriginID:      l.OriginID,
		DestinationID: l.DestinationID,
	}}
}

// NewLinkModified reconnects link id to new endpoints.
func NewLinkModified(id, originID, destinationID string) Event {
	return Event{Name: LinkModified, Payload: LinkModifiedPayload{
		ID: id, OriginID: originID, DestinationID: destinationID,
	}}
}

// NewLinkTextEdited replaces the text of link id.
func NewLinkTextEdited(id, text string) Event {
	return Event{Name: LinkTextEdited, Payload: TextEditedPayload{ID: id, Text: text}}
}

// NewLinkDeleted removes link id.
func NewLinkDeleted(id string) Event {
	return Event{Name: LinkDeleted, Payload: DeletedPayload{ID: id}}
}

// NewClear empties the whole diagram.
func NewClear() Event {
	return Event{Name: Clear}
}

// NewLoad builds a load event carrying the JSON document of s.
func NewLoad(s graph.Snapshot) (Event, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return Event{Name: Load, Payload: LoadPayload{Document: string(doc), Snapshot: s}}, nil
}
