package protocol

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/specialistvlad/flowsync/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wire simulates what a socket.io peer receives: the payload encoded to JSON
// and decoded back into generic values.
func wire(t *testing.T, ev Event) []any {
	t.Helper()
	buf, err := json.Marshal(ev.Args())
	require.NoError(t, err)
	var args []any
	require.NoError(t, json.Unmarshal(buf, &args))
	return args
}

func TestDecode_FromWire(t *testing.T) {
	t.Run("nodeCreated", func(t *testing.T) {
		args := []any{map[string]any{
			"id": "c1-1", "text": "Hello", "shape": "Start",
			"x": 10.0, "y": 10.0, "width": 30.0, "height": 30.0,
		}}
		ev, err := Decode("nodeCreated", args...)
		require.NoError(t, err)
		assert.Equal(t, NodeCreated, ev.Name)
		assert.Equal(t, NodeCreatedPayload{ID: "c1-1", Text: "Hello", Shape: "Start", X: 10, Y: 10, Width: 30, Height: 30}, ev.Payload)
	})

	t.Run("linkCreated uses camelCase endpoints", func(t *testing.T) {
		ev, err := Decode("linkCreated", map[string]any{
			"id": "l1", "text": "", "originId": "a", "destinationId": "b",
		})
		require.NoError(t, err)
		assert.Equal(t, LinkCreatedPayload{ID: "l1", OriginID: "a", DestinationID: "b"}, ev.Payload)
	})

	t.Run("payload sent as a JSON string", func(t *testing.T) {
		ev, err := Decode("nodeTextEdited", `{"id":"n1","text":"hi"}`)
		require.NoError(t, err)
		assert.Equal(t, TextEditedPayload{ID: "n1", Text: "hi"}, ev.Payload)
	})

	t.Run("numbers sent as strings are accepted", func(t *testing.T) {
		ev, err := Decode("nodeModified", map[string]any{"id": "n1", "x": "5", "y": 6, "width": 7.5, "height": 8})
		require.NoError(t, err)
		assert.Equal(t, NodeModifiedPayload{ID: "n1", X: 5, Y: 6, Width: 7.5, Height: 8}, ev.Payload)
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		ev, err := Decode("nodeDeleted", map[string]any{"id": "n1", "extra": true})
		require.NoError(t, err)
		assert.Equal(t, DeletedPayload{ID: "n1"}, ev.Payload)
	})

	t.Run("clear has no payload", func(t *testing.T) {
		ev, err := Decode("clear")
		require.NoError(t, err)
		assert.Equal(t, Event{Name: Clear}, ev)
		assert.Empty(t, ev.Args())
	})
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		event string
		args  []any
		want  error
	}{
		{"unknown event", "nodeExploded", []any{map[string]any{"id": "x"}}, ErrUnknownEvent},
		{"missing payload", "nodeCreated", nil, ErrMalformed},
		{"nil payload", "nodeDeleted", []any{nil}, ErrMalformed},
		{"missing id", "nodeDeleted", []any{map[string]any{"text": "x"}}, ErrMalformed},
		{"payload is a number", "linkDeleted", []any{42}, ErrMalformed},
		{"payload is broken JSON", "nodeTextEdited", []any{`{"id":`}, ErrMalformed},
		{"field of the wrong kind", "nodeModified", []any{map[string]any{"id": "n1", "x": map[string]any{}}}, ErrMalformed},
		{"load with broken document", "load", []any{`{"nodes": [`}, ErrMalformed},
		{"load without payload", "load", nil, ErrMalformed},
		{"NaN coordinate", "nodeCreated", []any{map[string]any{"id": "n1", "x": "NaN"}}, ErrMalformed},
		{"infinite coordinate", "nodeModified", []any{map[string]any{"id": "n1", "y": "Inf"}}, ErrMalformed},
		{"negative infinite size", "nodeModified", []any{map[string]any{"id": "n1", "width": "-Inf"}}, ErrMalformed},
		{"NaN in a typed load", "load", []any{LoadPayload{Snapshot: graph.Snapshot{Nodes: []graph.Node{{ID: "n1", Bounds: graph.Bounds{Height: math.NaN()}}}}}}, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.event, tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecode_KeepsWirePayload(t *testing.T) {
	in := map[string]any{"id": "n1", "text": "Hi", "x": "5", "style": "bold"}
	ev, err := Decode("nodeCreated", in, func() {})
	require.NoError(t, err)
	assert.Equal(t, NodeCreatedPayload{ID: "n1", Text: "Hi", X: 5}, ev.Payload)
	assert.Equal(t, []any{in}, ev.Args(), "the payload argument is relayed as received")

	ev, err = Decode("nodeTextEdited", `{"id":"n1","text":"hi"}`)
	require.NoError(t, err)
	assert.Equal(t, []any{`{"id":"n1","text":"hi"}`}, ev.Args())

	typed := NewNodeDeleted("n1")
	ev, err = Decode("nodeDeleted", typed.Payload)
	require.NoError(t, err)
	assert.Equal(t, typed, ev)
}

func TestDecode_Load(t *testing.T) {
	g := graph.New(nil)
	g.CreateNode("node1", graph.Bounds{X: 10, Y: 10, Width: 30, Height: 30}, "Hello", graph.ShapeRectangle)
	g.CreateNode("node2", graph.Bounds{X: 60, Y: 25, Width: 30, Height: 30}, "World", graph.ShapeRectangle)
	_, ok := g.CreateLink("link1", "node1", "node2", "")
	require.True(t, ok)
	doc, err := g.MarshalSnapshot()
	require.NoError(t, err)

	t.Run("JSON string is forwarded verbatim", func(t *testing.T) {
		ev, err := Decode("load", string(doc))
		require.NoError(t, err)
		p := ev.Payload.(LoadPayload)
		assert.Equal(t, string(doc), p.Document)
		assert.Equal(t, g.Snapshot(), p.Snapshot)
		assert.Equal(t, []any{string(doc)}, ev.Args())
	})

	t.Run("structured object", func(t *testing.T) {
		var obj map[string]any
		require.NoError(t, json.Unmarshal(doc, &obj))

		ev, err := Decode("load", obj)
		require.NoError(t, err)
		assert.Equal(t, g.Snapshot(), ev.Payload.(LoadPayload).Snapshot)
		assert.JSONEq(t, string(doc), ev.Payload.(LoadPayload).Document)
	})
}

func TestEvents_SurviveTheWire(t *testing.T) {
	snap := graph.Snapshot{
		Nodes: []graph.Node{{ID: "a", Text: "A"}},
		Links: []graph.Link{},
	}
	load, err := NewLoad(snap)
	require.NoError(t, err)

	events := []Event{
		NewNodeCreated(graph.Node{ID: "n1", Text: "Hello", Shape: graph.ShapeDecision, Bounds: graph.Bounds{X: 1, Y: 2, Width: 3, Height: 4}}),
		NewNodeModified("n1", graph.Bounds{X: 5, Y: 6, Width: 7, Height: 8}),
		NewNodeTextEdited("n1", "World"),
		NewNodeDeleted("n1"),
		NewLinkCreated(graph.Link{ID: "l1", OriginID: "a", DestinationID: "b", Text: "yes"}),
		NewLinkModified("l1", "b", "a"),
		NewLinkTextEdited("l1", "no"),
		NewLinkDeleted("l1"),
		NewClear(),
		load,
	}
	for _, ev := range events {
		t.Run(string(ev.Name), func(t *testing.T) {
			got, err := Decode(string(ev.Name), wire(t, ev)...)
			require.NoError(t, err)
			assert.Equal(t, ev.Name, got.Name)
			assert.Equal(t, ev.Payload, got.Payload)
		})
	}
}

func TestApply(t *testing.T) {
	g := graph.New(graph.NewIDGenerator("t"))

	mustApply := func(ev Event) bool {
		t.Helper()
		changed, err := Apply(g, ev)
		require.NoError(t, err)
		return changed
	}

	assert.True(t, mustApply(NewNodeCreated(graph.Node{ID: "a", Text: "A", Bounds: graph.Bounds{X: 1}})))
	assert.True(t, mustApply(NewNodeCreated(graph.Node{ID: "b", Text: "B"})))
	assert.True(t, mustApply(NewLinkCreated(graph.Link{ID: "ab", OriginID: "a", DestinationID: "b"})))
	assert.False(t, mustApply(NewLinkCreated(graph.Link{ID: "ax", OriginID: "a", DestinationID: "x"})), "missing endpoint")

	assert.True(t, mustApply(NewNodeModified("a", graph.Bounds{X: 9, Y: 9, Width: 9, Height: 9})))
	n, _ := g.Node("a")
	assert.Equal(t, graph.Bounds{X: 9, Y: 9, Width: 9, Height: 9}, n.Bounds)

	assert.True(t, mustApply(NewNodeTextEdited("a", "renamed")))
	assert.True(t, mustApply(NewLinkTextEdited("ab", "edge")))
	l, _ := g.Link("ab")
	assert.Equal(t, "edge", l.Text)

	assert.True(t, mustApply(NewLinkModified("ab", "b", "a")))
	assert.False(t, mustApply(NewLinkModified("ab", "b", "gone")))

	assert.True(t, mustApply(NewNodeDeleted("b")))
	assert.False(t, mustApply(NewNodeDeleted("b")), "second delete is a no-op")
	assert.Equal(t, 1, g.LinkCount(), "delete does not cascade")

	assert.True(t, mustApply(NewLinkDeleted("ab")))
	assert.False(t, mustApply(NewLinkDeleted("ab")))
	assert.False(t, mustApply(NewNodeTextEdited("gone", "x")))

	load, err := NewLoad(graph.Snapshot{Nodes: []graph.Node{{ID: "z"}}, Links: []graph.Link{}})
	require.NoError(t, err)
	assert.True(t, mustApply(load))
	assert.Equal(t, []string{"z"}, g.NodeIDs())

	assert.True(t, mustApply(NewClear()))
	assert.True(t, g.Snapshot().Empty())
}

func TestApply_MismatchedPayload(t *testing.T) {
	g := graph.New(nil)
	_, err := Apply(g, Event{Name: NodeTextEdited, Payload: DeletedPayload{ID: "x"}})
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = Apply(g, Event{Name: NodeCreated})
	assert.ErrorIs(t, err, ErrMalformed)
}

// TestApply_Convergence replays one event sequence on two replicas and
// checks that they end up identical.
func TestApply_Convergence(t *testing.T) {
	var log []Event
	for _, id := range []string{"p1-1", "p2-1", "p1-2"} {
		log = append(log, NewNodeCreated(graph.Node{ID: id, Text: id}))
	}
	log = append(log,
		NewLinkCreated(graph.Link{ID: "l1", OriginID: "p1-1", DestinationID: "p2-1"}),
		NewNodeModified("p2-1", graph.Bounds{X: 3, Y: 4, Width: 5, Height: 6}),
		NewNodeDeleted("p1-1"),
		NewLinkTextEdited("l1", "dangling"),
		NewNodeTextEdited("p1-1", "too late"),
	)

	relay, client := graph.New(nil), graph.New(nil)
	for _, ev := range log {
		_, err := Apply(relay, ev)
		require.NoError(t, err)
		decoded, err := Decode(string(ev.Name), wire(t, ev)...)
		require.NoError(t, err)
		_, err = Apply(client, decoded)
		require.NoError(t, err)
	}
	assert.Equal(t, relay.Snapshot(), client.Snapshot())
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "nodeDeleted(n1)", NewNodeDeleted("n1").String())
	assert.Equal(t, "clear", NewClear().String())
}
