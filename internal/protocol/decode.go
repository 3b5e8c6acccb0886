package protocol

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-viper/mapstructure/v2"
	"github.com/specialistvlad/flowsync/internal/graph"
)

// Decode builds an Event from an event name and its socket.io arguments.
// Object payloads may arrive as decoded JSON objects, as JSON strings, or as
// the payload struct itself. Extra arguments are ignored. Coordinates must be
// finite numbers.
func Decode(name string, args ...any) (Event, error) {
	n := Name(name)
	if !n.Known() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}

	var (
		payload any
		err     error
	)
	switch n {
	case Clear:
		return Event{Name: Clear}, nil
	case Load:
		payload, err = decodeLoad(args)
	case NodeCreated:
		var p NodeCreatedPayload
		if p, err = decodePayload[NodeCreatedPayload](n, args); err == nil {
			err = checkFinite(n, p.X, p.Y, p.Width, p.Height)
		}
		payload = p
	case NodeModified:
		var p NodeModifiedPayload
		if p, err = decodePayload[NodeModifiedPayload](n, args); err == nil {
			err = checkFinite(n, p.X, p.Y, p.Width, p.Height)
		}
		payload = p
	case NodeTextEdited, LinkTextEdited:
		payload, err = decodePayload[TextEditedPayload](n, args)
	case NodeDeleted, LinkDeleted:
		payload, err = decodePayload[DeletedPayload](n, args)
	case LinkCreated:
		payload, err = decodePayload[LinkCreatedPayload](n, args)
	case LinkModified:
		payload, err = decodePayload[LinkModifiedPayload](n, args)
	}
	if err != nil {
		return Event{}, err
	}

	ev := Event{Name: n, Payload: payload}
	switch wire := args[0].(type) {
	case map[string]any, string, []byte:
		ev.raw = []any{wire}
	}
	if n != Load && ev.ObjectID() == "" {
		return Event{}, fmt.Errorf("%w: %s: missing id", ErrMalformed, n)
	}
	return ev, nil
}

// checkFinite rejects NaN and infinite coordinates. They cannot be encoded
// as JSON, so one of them in the graph would break every later snapshot.
func checkFinite(n Name, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s: coordinate %v is not a finite number", ErrMalformed, n, v)
		}
	}
	return nil
}

func decodePayload[T any](n Name, args []any) (T, error) {
	var out T
	if len(args) == 0 || args[0] == nil {
		return out, fmt.Errorf("%w: %s: missing payload", ErrMalformed, n)
	}
	if v, ok := args[0].(T); ok {
		return v, nil
	}

	input := args[0]
	switch raw := input.(type) {
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return out, fmt.Errorf("%w: %s: %w", ErrMalformed, n, err)
		}
		input = m
	case []byte:
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return out, fmt.Errorf("%w: %s: %w", ErrMalformed, n, err)
		}
		input = m
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, fmt.Errorf("failed to create payload decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrMalformed, n, err)
	}
	return out, nil
}

// decodeLoad accepts the snapshot as a JSON string, raw bytes, or an already
// decoded object. The forwarded document is always a JSON string.
func decodeLoad(args []any) (LoadPayload, error) {
	if len(args) == 0 || args[0] == nil {
		return LoadPayload{}, fmt.Errorf("%w: %s: missing payload", ErrMalformed, Load)
	}

	var doc []byte
	switch raw := args[0].(type) {
	case LoadPayload:
		for _, node := range raw.Snapshot.Nodes {
			b := node.Bounds
			if err := checkFinite(Load, b.X, b.Y, b.Width, b.Height); err != nil {
				return LoadPayload{}, err
			}
		}
		return raw, nil
	case string:
		doc = []byte(raw)
	case []byte:
		doc = raw
	default:
		b, err := json.Marshal(raw)
		if err != nil {
			return LoadPayload{}, fmt.Errorf("%w: %s: %w", ErrMalformed, Load, err)
		}
		doc = b
	}

	s, err := graph.ParseSnapshot(doc)
	if err != nil {
		return LoadPayload{}, fmt.Errorf("%w: %s: %w", ErrMalformed, Load, err)
	}
	return LoadPayload{Document: string(doc), Snapshot: s}, nil
}
