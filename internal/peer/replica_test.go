package peer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/specialistvlad/flowsync/internal/dag"
	"github.com/specialistvlad/flowsync/internal/graph"
	"github.com/specialistvlad/flowsync/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is an Emitter that remembers every event.
type recorder struct {
	mu     sync.Mutex
	events []protocol.Event
	fail   error
}

func (r *recorder) Emit(event string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	ev, err := protocol.Decode(event, args...)
	if err != nil {
		return err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) names() []protocol.Name {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []protocol.Name
	for _, ev := range r.events {
		out = append(out, ev.Name)
	}
	return out
}

func newTestReplica(t *testing.T) (*Replica, *recorder) {
	t.Helper()
	rec := &recorder{}
	return NewReplica("conn1", rec), rec
}

func TestReplica_LocalActionsEmitOnce(t *testing.T) {
	r, rec := newTestReplica(t)
	ctx := context.Background()

	a, err := r.CreateNode(ctx, graph.Bounds{X: 10, Y: 10, Width: 30, Height: 30}, "Hello", "")
	require.NoError(t, err)
	b, err := r.CreateNode(ctx, graph.Bounds{X: 60, Y: 25, Width: 30, Height: 30}, "World", graph.ShapeDecision)
	require.NoError(t, err)
	require.NoError(t, r.MoveNode(ctx, a, graph.Bounds{X: 1, Y: 2, Width: 3, Height: 4}))
	require.NoError(t, r.EditNodeText(ctx, a, "Hi"))
	l, err := r.CreateLink(ctx, a, b, "")
	require.NoError(t, err)
	require.NoError(t, r.EditLinkText(ctx, l, "yes"))
	require.NoError(t, r.ReconnectLink(ctx, l, b, a))
	require.NoError(t, r.DeleteLink(ctx, l))
	require.NoError(t, r.DeleteNode(ctx, b))
	require.NoError(t, r.Clear(ctx))

	assert.Equal(t, []protocol.Name{
		protocol.NodeCreated, protocol.NodeCreated,
		protocol.NodeModified, protocol.NodeTextEdited,
		protocol.LinkCreated, protocol.LinkTextEdited, protocol.LinkModified, protocol.LinkDeleted,
		protocol.NodeDeleted, protocol.Clear,
	}, rec.names())

	created := rec.events[0].Payload.(protocol.NodeCreatedPayload)
	assert.Equal(t, protocol.NodeCreatedPayload{ID: a, Text: "Hello", Shape: graph.ShapeRectangle, X: 10, Y: 10, Width: 30, Height: 30}, created)
}

func TestReplica_IDsUseConnectionID(t *testing.T) {
	r, _ := newTestReplica(t)
	ctx := context.Background()

	a, err := r.CreateNode(ctx, graph.Bounds{}, "", "")
	require.NoError(t, err)
	b, err := r.CreateNode(ctx, graph.Bounds{}, "", "")
	require.NoError(t, err)
	assert.Regexp(t, `^conn1\d+$`, a)
	assert.NotEqual(t, a, b)

	r.SetConnectionID("conn2")
	c, err := r.CreateNode(ctx, graph.Bounds{}, "", "")
	require.NoError(t, err)
	assert.Regexp(t, `^conn2\d+$`, c)
}

func TestReplica_RemoteEventsAreNeverEmitted(t *testing.T) {
	r, rec := newTestReplica(t)
	ctx := context.Background()

	remote := []protocol.Event{
		protocol.NewNodeCreated(graph.Node{ID: "other1", Text: "theirs"}),
		protocol.NewNodeCreated(graph.Node{ID: "other2"}),
		protocol.NewLinkCreated(graph.Link{ID: "otherL", OriginID: "other1", DestinationID: "other2"}),
		protocol.NewNodeModified("other1", graph.Bounds{X: 5}),
		protocol.NewNodeTextEdited("other1", "edited"),
		protocol.NewLinkTextEdited("otherL", "t"),
		protocol.NewLinkModified("otherL", "other2", "other1"),
		protocol.NewNodeDeleted("other2"),
		protocol.NewLinkDeleted("otherL"),
		protocol.NewClear(),
	}
	for _, ev := range remote {
		require.NoError(t, r.ApplyRemote(ctx, ev))
	}
	load, err := protocol.NewLoad(graph.Snapshot{Nodes: []graph.Node{{ID: "x"}}, Links: []graph.Link{}})
	require.NoError(t, err)
	require.NoError(t, r.ApplyRemote(ctx, load))

	assert.Empty(t, rec.names(), "no echo")
	assert.Equal(t, []string{"x"}, r.Graph().NodeIDs())
}

func TestReplica_StaleLocalEventsAreNotEmitted(t *testing.T) {
	r, rec := newTestReplica(t)
	ctx := context.Background()

	require.NoError(t, r.Apply(ctx, Local, protocol.NewNodeDeleted("dne")))
	assert.ErrorIs(t, r.DeleteNode(ctx, "dne"), ErrUnknownObject)
	assert.ErrorIs(t, r.MoveNode(ctx, "dne", graph.Bounds{}), ErrUnknownObject)
	assert.ErrorIs(t, r.EditNodeText(ctx, "dne", ""), ErrUnknownObject)
	assert.ErrorIs(t, r.EditLinkText(ctx, "dne", ""), ErrUnknownObject)
	assert.ErrorIs(t, r.DeleteLink(ctx, "dne"), ErrUnknownObject)
	assert.ErrorIs(t, r.ReconnectLink(ctx, "dne", "a", "b"), ErrUnknownObject)
	assert.Empty(t, rec.names())
}

func TestReplica_CreateLinkChecksCycles(t *testing.T) {
	r, rec := newTestReplica(t)
	ctx := context.Background()
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, r.ApplyRemote(ctx, protocol.NewNodeCreated(graph.Node{ID: id})))
	}
	require.NoError(t, r.ApplyRemote(ctx, protocol.NewLinkCreated(graph.Link{ID: "ab", OriginID: "A", DestinationID: "B"})))
	require.NoError(t, r.ApplyRemote(ctx, protocol.NewLinkCreated(graph.Link{ID: "bc", OriginID: "B", DestinationID: "C"})))

	assert.Equal(t, dag.Cycle, r.CheckLink("C", "A"))
	assert.Equal(t, dag.Acyclic, r.CheckLink("A", "C"))
	assert.Equal(t, dag.Pending, r.CheckLink("A", ""))

	_, err := r.CreateLink(ctx, "C", "A", "")
	assert.ErrorIs(t, err, ErrWouldCycle)
	_, err = r.CreateLink(ctx, "A", "A", "")
	assert.ErrorIs(t, err, ErrWouldCycle)
	_, err = r.CreateLink(ctx, "A", "", "")
	assert.ErrorIs(t, err, ErrNoDestination)
	_, err = r.CreateLink(ctx, "A", "dne", "")
	assert.ErrorIs(t, err, ErrUnknownObject)
	_, err = r.CreateLink(ctx, "dne", "A", "")
	assert.ErrorIs(t, err, ErrUnknownObject)
	assert.Equal(t, 2, r.Graph().LinkCount())
	assert.Empty(t, rec.names(), "refused links are not emitted")

	id, err := r.CreateLink(ctx, "A", "C", "shortcut")
	require.NoError(t, err)
	assert.Equal(t, []protocol.Name{protocol.LinkCreated}, rec.names())
	_, ok := r.Graph().Link(id)
	assert.True(t, ok)
}

// TestReplica_CreateLinkRacesRemoteDelete deletes the destination from the
// relay side while the link is being created. Either the link is stored and
// emitted, or no id is returned.
func TestReplica_CreateLinkRacesRemoteDelete(t *testing.T) {
	r, rec := newTestReplica(t)
	ctx := context.Background()

	const n = 200
	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		a, b := fmt.Sprintf("a%d", i), fmt.Sprintf("b%d", i)
		require.NoError(t, r.ApplyRemote(ctx, protocol.NewNodeCreated(graph.Node{ID: a})))
		require.NoError(t, r.ApplyRemote(ctx, protocol.NewNodeCreated(graph.Node{ID: b})))

		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = r.CreateLink(ctx, a, b, "")
		}(i)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.ApplyRemote(ctx, protocol.NewNodeDeleted(b)))
		}()
	}
	wg.Wait()

	created := 0
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			assert.ErrorIs(t, errs[i], ErrUnknownObject)
			assert.Empty(t, ids[i])
			continue
		}
		_, ok := r.Graph().Link(ids[i])
		assert.True(t, ok, "link %s was reported as created", ids[i])
		created++
	}
	assert.Equal(t, created, r.Graph().LinkCount())
	assert.Len(t, rec.names(), created, "only stored links are emitted")
}

func TestReplica_ReconnectLinkIgnoresItself(t *testing.T) {
	r, _ := newTestReplica(t)
	ctx := context.Background()
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, r.ApplyRemote(ctx, protocol.NewNodeCreated(graph.Node{ID: id})))
	}
	require.NoError(t, r.ApplyRemote(ctx, protocol.NewLinkCreated(graph.Link{ID: "ab", OriginID: "A", DestinationID: "B"})))
	require.NoError(t, r.ApplyRemote(ctx, protocol.NewLinkCreated(graph.Link{ID: "bc", OriginID: "B", DestinationID: "C"})))

	// Turning A->B around into B->A is fine: the old A->B edge goes away.
	require.NoError(t, r.ReconnectLink(ctx, "ab", "B", "A"))

	// C->B would close B->C->B.
	err := r.ReconnectLink(ctx, "ab", "C", "B")
	assert.ErrorIs(t, err, ErrWouldCycle)
	l, _ := r.Graph().Link("ab")
	assert.Equal(t, "B", l.OriginID)
	assert.Equal(t, "A", l.DestinationID)
}

func TestReplica_EmitFailureKeepsLocalChange(t *testing.T) {
	r, rec := newTestReplica(t)
	rec.fail = errors.New("offline")

	id, err := r.CreateNode(context.Background(), graph.Bounds{}, "kept", "")
	assert.ErrorContains(t, err, "failed to emit nodeCreated")
	assert.True(t, r.Graph().HasNode(id))
}

func TestReplica_Observe(t *testing.T) {
	r, _ := newTestReplica(t)
	ctx := context.Background()

	var seen []string
	r.Observe(func(origin Origin, ev protocol.Event) {
		seen = append(seen, origin.String()+":"+string(ev.Name))
	})

	_, err := r.CreateNode(ctx, graph.Bounds{}, "", "")
	require.NoError(t, err)
	require.NoError(t, r.ApplyRemote(ctx, protocol.NewNodeCreated(graph.Node{ID: "x"})))
	require.NoError(t, r.ApplyRemote(ctx, protocol.NewNodeDeleted("dne")))

	assert.Equal(t, []string{"local:nodeCreated", "remote:nodeCreated"}, seen)
}

func TestReplica_NilEmitter(t *testing.T) {
	r := NewReplica("", nil)
	id, err := r.CreateNode(context.Background(), graph.Bounds{}, "offline", "")
	require.NoError(t, err)
	assert.True(t, r.Graph().HasNode(id))
	assert.Len(t, r.Graph().IDs().Prefix(), 8)
}

func TestOrigin_String(t *testing.T) {
	assert.Equal(t, "local", Local.String())
	assert.Equal(t, "remote", Remote.String())
	assert.Equal(t, "unknown", Origin(7).String())
}
