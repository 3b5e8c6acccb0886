package graph

import (
	"encoding/json"
	"fmt"
)

// Snapshot is a full copy of a Graph. Nodes and links are sorted by id, so
// two equal graphs always produce equal snapshots and equal JSON documents.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Empty reports whether the snapshot holds no nodes and no links.
func (s Snapshot) Empty() bool {
	return len(s.Nodes) == 0 && len(s.Links) == 0
}

// Snapshot returns a copy of the whole graph.
func (g *Graph) Snapshot() Snapshot {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return Snapshot{
		Nodes: g.sortedNodes(),
		Links: g.sortedLinks(),
	}
}

// Restore replaces the whole graph with the snapshot's content. The new
// tables are built first and swapped in under the write lock. Dangling links
// are kept as they are, so restoring a snapshot always reproduces the graph
// it was taken from.
func (g *Graph) Restore(s Snapshot) {
	nodes := make(map[string]*Node, len(s.Nodes))
	for _, n := range s.Nodes {
		n := n
		nodes[n.ID] = &n
	}
	links := make(map[string]*Link, len(s.Links))
	out := make(map[string]map[string]struct{})
	for _, l := range s.Links {
		l := l
		if old, ok := links[l.ID]; ok {
			removeOutgoing(out, old)
		}
		links[l.ID] = &l
		addOutgoing(out, &l)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.nodes = nodes
	g.links = links
	g.out = out
}

// MarshalSnapshot encodes the current graph as a JSON document.
func (g *Graph) MarshalSnapshot() ([]byte, error) {
	buf, err := json.Marshal(g.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf, nil
}

// UnmarshalSnapshot decodes a JSON document and restores the graph from it.
// The graph is left untouched when the document cannot be decoded.
func (g *Graph) UnmarshalSnapshot(data []byte) error {
	s, err := ParseSnapshot(data)
	if err != nil {
		return err
	}
	g.Restore(s)
	return nil
}

// ParseSnapshot decodes a JSON snapshot document.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}
