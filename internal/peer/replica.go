package peer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/flowsync/internal/ctxlog"
	"github.com/specialistvlad/flowsync/internal/dag"
	"github.com/specialistvlad/flowsync/internal/graph"
	"github.com/specialistvlad/flowsync/internal/protocol"
)

// Origin tells Apply where a mutation comes from.
type Origin int

const (
	// Local mutations come from this participant and are emitted to the relay.
	Local Origin = iota
	// Remote mutations were relayed from someone else and are never emitted.
	Remote
)

func (o Origin) String() string {
	switch o {
	case Local:
		return "local"
	case Remote:
		return "remote"
	default:
		return "unknown"
	}
}

var (
	// ErrWouldCycle is returned for links that would close a cycle.
	ErrWouldCycle = errors.New("link would create a cycle")
	// ErrNoDestination is returned for links without a destination node.
	ErrNoDestination = errors.New("link has no destination")
	// ErrUnknownObject is returned by local actions on ids the replica lacks.
	ErrUnknownObject = errors.New("unknown node or link")
)

// Emitter sends one event to the relay.
type Emitter interface {
	Emit(event string, args ...any) error
}

// Observer is told about every mutation that changed the replica.
type Observer func(origin Origin, ev protocol.Event)

// Replica is a participant's copy of the diagram.
type Replica struct {
	mu        sync.Mutex
	graph     *graph.Graph
	emitter   Emitter
	observers []Observer
}

// NewReplica creates an empty replica. Ids of local objects start with
// connectionID; an empty one gets a random prefix until SetConnectionID.
func NewReplica(connectionID string, emitter Emitter) *Replica {
	return &Replica{
		graph:   graph.New(graph.NewIDGenerator(connectionID)),
		emitter: emitter,
	}
}

// Graph returns the replica's graph for reading. Mutate it only through the
// replica.
func (r *Replica) Graph() *graph.Graph {
	return r.graph
}

// SetConnectionID changes the prefix of ids created from now on.
func (r *Replica) SetConnectionID(id string) {
	r.graph.IDs().SetPrefix(id)
}

// SetEmitter replaces the emitter used for local mutations.
func (r *Replica) SetEmitter(e Emitter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emitter = e
}

// Observe registers fn to be called after every change to the replica.
// Observers run under the replica lock and must not call back into it.
func (r *Replica) Observe(fn Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Apply applies ev to the replica. Local events that changed the replica are
// then emitted; remote events never are. Applying and emitting happen under
// one lock, so events are emitted in the order they were applied.
func (r *Replica) Apply(ctx context.Context, origin Origin, ev protocol.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.applyLocked(ctx, origin, ev)
	return err
}

// applyChecked runs check and, when it passes, applies the local event ev,
// all under the replica lock. It reports whether ev changed the replica.
func (r *Replica) applyChecked(ctx context.Context, check func() error, ev protocol.Event) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := check(); err != nil {
		return false, err
	}
	return r.applyLocked(ctx, Local, ev)
}

// applyLocked must be called with r.mu held.
func (r *Replica) applyLocked(ctx context.Context, origin Origin, ev protocol.Event) (bool, error) {
	changed, err := protocol.Apply(r.graph, ev)
	if err != nil {
		return false, err
	}
	logger := ctxlog.FromContext(ctx)
	if !changed {
		logger.Debug("Event did not change the replica.", "origin", origin, "event", ev.String())
		return false, nil
	}
	for _, fn := range r.observers {
		fn(origin, ev)
	}

	if origin != Local || r.emitter == nil {
		return true, nil
	}
	if err := r.emitter.Emit(string(ev.Name), ev.Args()...); err != nil {
		return true, fmt.Errorf("failed to emit %s: %w", ev.Name, err)
	}
	logger.Debug("Event emitted.", "event", ev.String())
	return true, nil
}

// ApplyRemote applies an event relayed from another participant.
func (r *Replica) ApplyRemote(ctx context.Context, ev protocol.Event) error {
	return r.Apply(ctx, Remote, ev)
}

// CheckLink runs the cycle check for a link being drawn from originID to
// destinationID. An empty destination yields dag.Pending.
func (r *Replica) CheckLink(originID, destinationID string) dag.Verdict {
	return dag.WouldCreateCycle(r.graph, originID, destinationID)
}
