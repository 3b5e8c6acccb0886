package relay

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/specialistvlad/flowsync/internal/ctxlog"
	"github.com/specialistvlad/flowsync/internal/graph"
	"github.com/specialistvlad/flowsync/internal/inmemorystore"
	"github.com/specialistvlad/flowsync/internal/protocol"
)

var (
	// ErrStopped is returned by requests made after Run has returned.
	ErrStopped = errors.New("relay hub stopped")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("relay hub already running")
)

// Hub owns the authoritative graph and the set of connected participants.
type Hub struct {
	graph        *graph.Graph
	participants *inmemorystore.Store[Participant]
	metrics      *Metrics

	requests chan func()
	done     chan struct{}
	running  atomic.Bool
}

// NewHub creates a hub around g, which must not be mutated by anyone else
// from now on. A nil metrics value gets unregistered collectors.
func NewHub(g *graph.Graph, metrics *Metrics) *Hub {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Hub{
		graph:        g,
		participants: inmemorystore.New[Participant](),
		metrics:      metrics,
		requests:     make(chan func()),
		done:         make(chan struct{}),
	}
}

// Run processes requests one at a time until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	if !h.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(h.done)

	logger := ctxlog.FromContext(ctx)
	logger.Info("Relay hub started.", "nodes", h.graph.NodeCount(), "links", h.graph.LinkCount())

	for {
		select {
		case <-ctx.Done():
			logger.Info("Relay hub stopped.", "participants", h.participants.Len())
			return nil
		case req := <-h.requests:
			req()
		}
	}
}

// do hands fn to the Run loop and waits until it has been executed.
func (h *Hub) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	req := func() {
		defer close(finished)
		fn()
	}

	select {
	case h.requests <- req:
	case <-h.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

// Join registers p and sends it the current diagram as a load event. Nobody
// else is told about the new participant.
func (h *Hub) Join(ctx context.Context, p Participant) error {
	return h.do(ctx, func() {
		logger := ctxlog.FromContext(ctx)
		if h.participants.Put(p.ID(), p) {
			logger.Warn("Participant id reused, replacing the previous connection.", "participant", p.ID())
		}
		h.metrics.participants.Set(float64(h.participants.Len()))

		load, err := protocol.NewLoad(h.graph.Snapshot())
		if err != nil {
			logger.Error("Failed to encode snapshot for new participant.", "participant", p.ID(), "error", err)
			return
		}
		h.send(ctx, p, load)
		logger.Info("Participant joined.", "participant", p.ID(), "participants", h.participants.Len())
	})
}

// Leave unregisters the participant. The graph is left as it is.
func (h *Hub) Leave(ctx context.Context, id string) error {
	return h.do(ctx, func() {
		if _, ok := h.participants.Delete(id); !ok {
			return
		}
		h.metrics.participants.Set(float64(h.participants.Len()))
		ctxlog.FromContext(ctx).Info("Participant left.", "participant", id, "participants", h.participants.Len())
	})
}

// Submit applies ev to the authoritative graph and forwards it to every
// participant except from.
func (h *Hub) Submit(ctx context.Context, from string, ev protocol.Event) error {
	return h.do(ctx, func() {
		logger := ctxlog.FromContext(ctx)

		changed, err := protocol.Apply(h.graph, ev)
		if err != nil {
			h.metrics.eventsDropped.WithLabelValues(reasonRejected).Inc()
			logger.Warn("Dropping event that cannot be applied.", "participant", from, "event", ev.String(), "error", err)
			return
		}

		result := resultApplied
		if !changed {
			result = resultStale
		}
		h.metrics.eventsApplied.WithLabelValues(string(ev.Name), result).Inc()
		logger.Debug("Event applied.", "participant", from, "event", ev.String(), "result", result)

		for _, p := range h.participants.Except(from) {
			h.send(ctx, p, ev)
		}
	})
}

// Snapshot returns a copy of the authoritative graph taken between two
// events.
func (h *Hub) Snapshot(ctx context.Context) (graph.Snapshot, error) {
	var s graph.Snapshot
	err := h.do(ctx, func() {
		s = h.graph.Snapshot()
	})
	return s, err
}

// Participants returns the number of connected participants.
func (h *Hub) Participants() int {
	return h.participants.Len()
}

func (h *Hub) send(ctx context.Context, p Participant, ev protocol.Event) {
	if err := p.Send(string(ev.Name), ev.Args()...); err != nil {
		h.metrics.sendsFailed.Inc()
		ctxlog.FromContext(ctx).Warn("Failed to send event to participant.",
			"participant", p.ID(), "event", ev.String(), "error", err)
	}
}
