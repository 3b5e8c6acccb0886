package peer

import (
	"context"
	"fmt"

	"github.com/specialistvlad/flowsync/internal/dag"
	"github.com/specialistvlad/flowsync/internal/graph"
	"github.com/specialistvlad/flowsync/internal/protocol"
)

// CreateNode adds a node with a fresh id and returns the id.
func (r *Replica) CreateNode(ctx context.Context, bounds graph.Bounds, text, shape string) (string, error) {
	if shape == "" {
		shape = graph.ShapeRectangle
	}
	id := r.graph.IDs().Next()
	ev := protocol.NewNodeCreated(graph.Node{ID: id, Bounds: bounds, Text: text, Shape: shape})
	if err := r.Apply(ctx, Local, ev); err != nil {
		return id, err
	}
	return id, nil
}

// MoveNode changes the position and size of a node.
func (r *Replica) MoveNode(ctx context.Context, id string, bounds graph.Bounds) error {
	_, err := r.applyChecked(ctx, r.nodeExists(id), protocol.NewNodeModified(id, bounds))
	return err
}

// EditNodeText changes the text of a node.
func (r *Replica) EditNodeText(ctx context.Context, id, text string) error {
	_, err := r.applyChecked(ctx, r.nodeExists(id), protocol.NewNodeTextEdited(id, text))
	return err
}

// DeleteNode removes a node. Links attached to it are left dangling.
func (r *Replica) DeleteNode(ctx context.Context, id string) error {
	_, err := r.applyChecked(ctx, r.nodeExists(id), protocol.NewNodeDeleted(id))
	return err
}

// CreateLink adds a link with a fresh id and returns the id. Links that would
// close a cycle are refused with ErrWouldCycle.
func (r *Replica) CreateLink(ctx context.Context, originID, destinationID, text string) (string, error) {
	check := func() error { return checkEndpoints(r.graph, originID, destinationID) }
	id := r.graph.IDs().Next()
	ev := protocol.NewLinkCreated(graph.Link{ID: id, OriginID: originID, DestinationID: destinationID, Text: text})
	changed, err := r.applyChecked(ctx, check, ev)
	if err != nil {
		if changed {
			return id, err
		}
		return "", err
	}
	if !changed {
		return "", fmt.Errorf("%w: link %s -> %s was not created", ErrUnknownObject, originID, destinationID)
	}
	return id, nil
}

// ReconnectLink moves both ends of a link. The cycle check ignores the link
// being moved.
func (r *Replica) ReconnectLink(ctx context.Context, id, originID, destinationID string) error {
	check := func() error {
		l, ok := r.graph.Link(id)
		if !ok {
			return fmt.Errorf("%w: link %q", ErrUnknownObject, id)
		}
		without := &withoutLink{Adjacency: r.graph, origin: l.OriginID, destination: l.DestinationID}
		return checkEndpoints(without, originID, destinationID)
	}
	_, err := r.applyChecked(ctx, check, protocol.NewLinkModified(id, originID, destinationID))
	return err
}

// EditLinkText changes the text of a link.
func (r *Replica) EditLinkText(ctx context.Context, id, text string) error {
	_, err := r.applyChecked(ctx, r.linkExists(id), protocol.NewLinkTextEdited(id, text))
	return err
}

// DeleteLink removes a link.
func (r *Replica) DeleteLink(ctx context.Context, id string) error {
	_, err := r.applyChecked(ctx, r.linkExists(id), protocol.NewLinkDeleted(id))
	return err
}

// Clear empties the diagram for everyone.
func (r *Replica) Clear(ctx context.Context) error {
	return r.Apply(ctx, Local, protocol.NewClear())
}

// Load replaces the diagram for everyone with s.
func (r *Replica) Load(ctx context.Context, s graph.Snapshot) error {
	ev, err := protocol.NewLoad(s)
	if err != nil {
		return err
	}
	return r.Apply(ctx, Local, ev)
}

func (r *Replica) nodeExists(id string) func() error {
	return func() error {
		if !r.graph.HasNode(id) {
			return fmt.Errorf("%w: node %q", ErrUnknownObject, id)
		}
		return nil
	}
}

func (r *Replica) linkExists(id string) func() error {
	return func() error {
		if _, ok := r.graph.Link(id); !ok {
			return fmt.Errorf("%w: link %q", ErrUnknownObject, id)
		}
		return nil
	}
}

func checkEndpoints(g dag.Adjacency, originID, destinationID string) error {
	if !g.HasNode(originID) {
		return fmt.Errorf("%w: node %q", ErrUnknownObject, originID)
	}
	switch dag.WouldCreateCycle(g, originID, destinationID) {
	case dag.Pending:
		return ErrNoDestination
	case dag.Cycle:
		return fmt.Errorf("%w: %s -> %s", ErrWouldCycle, originID, destinationID)
	}
	if !g.HasNode(destinationID) {
		return fmt.Errorf("%w: node %q", ErrUnknownObject, destinationID)
	}
	return nil
}

// withoutLink hides one origin -> destination edge from the cycle check.
type withoutLink struct {
	dag.Adjacency
	origin, destination string
}

func (w *withoutLink) Successors(id string) []string {
	next := w.Adjacency.Successors(id)
	if id != w.origin {
		return next
	}
	for i, d := range next {
		if d == w.destination {
			return append(next[:i:i], next[i+1:]...)
		}
	}
	return next
}
