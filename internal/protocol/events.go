package protocol

import (
	"errors"

	"github.com/specialistvlad/flowsync/internal/graph"
)

// Name identifies a mutation event on the wire.
type Name string

const (
	NodeCreated    Name = "nodeCreated"
	NodeModified   Name = "nodeModified"
	NodeTextEdited Name = "nodeTextEdited"
	NodeDeleted    Name = "nodeDeleted"
	LinkCreated    Name = "linkCreated"
	LinkModified   Name = "linkModified"
	LinkTextEdited Name = "linkTextEdited"
	LinkDeleted    Name = "linkDeleted"
	Clear          Name = "clear"
	Load           Name = "load"
)

// Names lists every event of the protocol.
var Names = []Name{
	NodeCreated, NodeModified, NodeTextEdited, NodeDeleted,
	LinkCreated, LinkModified, LinkTextEdited, LinkDeleted,
	Clear, Load,
}

var (
	// ErrUnknownEvent is returned for event names outside the protocol.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrMalformed is returned for payloads that cannot be decoded.
	ErrMalformed = errors.New("malformed event")
)

// Known reports whether n is part of the protocol.
func (n Name) Known() bool {
	for _, known := range Names {
		if n == known {
			return true
		}
	}
	return false
}

// NodeCreatedPayload is the payload of nodeCreated.
type NodeCreatedPayload struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Shape  string  `json:"shape"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NodeModifiedPayload is the payload of nodeModified.
type NodeModifiedPayload struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextEditedPayload is the payload of nodeTextEdited and linkTextEdited.
type TextEditedPayload struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// DeletedPayload is the payload of nodeDeleted and linkDeleted.
type DeletedPayload struct {
	ID string `json:"id"`
}

// LinkCreatedPayload is the payload of linkCreated.
type LinkCreatedPayload struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	OriginID      string `json:"originId"`
	DestinationID string `json:"destinationId"`
}

// LinkModifiedPayload is the payload of linkModified.
type LinkModifiedPayload struct {
	ID            string `json:"id"`
	OriginID      string `json:"originId"`
	DestinationID string `json:"destinationId"`
}

// LoadPayload carries the snapshot document of a load event. Document is
// forwarded as received; Snapshot is its decoded form.
type LoadPayload struct {
	Document string
	Snapshot graph.Snapshot
}

// Event is one decoded mutation. Payload holds one of the *Payload types, or
// nil for clear.
type Event struct {
	Name    Name
	Payload any

	// raw is the payload argument as it arrived from the wire. It is what
	// gets relayed, so participants see exactly what the sender emitted.
	raw []any
}

// ObjectID returns the id of the node or link the event addresses. It is empty
// for clear and load.
func (e Event) ObjectID() string {
	switch p := e.Payload.(type) {
	case NodeCreatedPayload:
		return p.ID
	case NodeModifiedPayload:
		return p.ID
	case TextEditedPayload:
		return p.ID
	case DeletedPayload:
		return p.ID
	case LinkCreatedPayload:
		return p.ID
	case LinkModifiedPayload:
		return p.ID
	}
	return ""
}

// Args returns the socket.io arguments that carry the event. A decoded event
// returns its payload argument unchanged.
func (e Event) Args() []any {
	if e.raw != nil {
		return append([]any(nil), e.raw...)
	}
	switch p := e.Payload.(type) {
	case nil:
		return nil
	case LoadPayload:
		return []any{p.Document}
	default:
		return []any{p}
	}
}

// String is used in log lines.
func (e Event) String() string {
	if id := e.ObjectID(); id != "" {
		return string(e.Name) + "(" + id + ")"
	}
	return string(e.Name)
}
