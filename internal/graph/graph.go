package graph

import (
	"sort"
	"sync"
)

// Graph is the diagram model: a node table and a link table, each keyed by id.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*Node
	links map[string]*Link
	ids   *IDGenerator

	// out indexes link ids by origin node id.
	out map[string]map[string]struct{}
}

// New creates and returns an initialized, empty Graph. Objects created without
// an id get one from ids; a nil generator gets a process-unique prefix.
func New(ids *IDGenerator) *Graph {
	if ids == nil {
		ids = NewIDGenerator("")
	}
	return &Graph{
		nodes: make(map[string]*Node),
		links: make(map[string]*Link),
		ids:   ids,
		out:   make(map[string]map[string]struct{}),
	}
}

// IDs returns the generator used for objects created without an id.
func (g *Graph) IDs() *IDGenerator {
	return g.ids
}

// CreateNode inserts a node and returns its id. An empty id is replaced by a
// freshly generated one. A node with the same id is overwritten.
func (g *Graph) CreateNode(id string, bounds Bounds, text, shape string) string {
	if id == "" {
		id = g.ids.Next()
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.nodes[id] = &Node{ID: id, Bounds: bounds, Text: text, Shape: shape}
	return id
}

// UpdateNodeBounds replaces the bounds of a node. It reports whether the node
// exists; an unknown id is a no-op.
func (g *Graph) UpdateNodeBounds(id string, bounds Bounds) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	n.Bounds = bounds
	return true
}

// UpdateNodeText replaces the text of a node. An unknown id is a no-op.
func (g *Graph) UpdateNodeText(id, text string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	n.Text = text
	return true
}

// DeleteNode removes a node. Links that reference it are left in place.
func (g *Graph) DeleteNode(id string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return false
	}
	delete(g.nodes, id)
	return true
}

// CreateLink inserts a link between two existing nodes and returns its id.
// When either endpoint is missing nothing is stored and ok is false.
func (g *Graph) CreateLink(id, originID, destinationID, text string) (string, bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[originID]; !ok {
		return "", false
	}
	if _, ok := g.nodes[destinationID]; !ok {
		return "", false
	}

	if id == "" {
		id = g.ids.Next()
	}
	if old, ok := g.links[id]; ok {
		g.unindex(old)
	}
	l := &Link{ID: id, OriginID: originID, DestinationID: destinationID, Text: text}
	g.links[id] = l
	g.index(l)
	return id, true
}

// UpdateLinkEndpoints reconnects a link. It is a no-op when the link or either
// of the new endpoints is missing.
func (g *Graph) UpdateLinkEndpoints(id, originID, destinationID string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	l, ok := g.links[id]
	if !ok {
		return false
	}
	if _, ok := g.nodes[originID]; !ok {
		return false
	}
	if _, ok := g.nodes[destinationID]; !ok {
		return false
	}
	g.unindex(l)
	l.OriginID = originID
	l.DestinationID = destinationID
	g.index(l)
	return true
}

// UpdateLinkText replaces the text of a link. An unknown id is a no-op.
func (g *Graph) UpdateLinkText(id, text string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	l, ok := g.links[id]
	if !ok {
		return false
	}
	l.Text = text
	return true
}

// DeleteLink removes a link. An unknown id is a no-op.
func (g *Graph) DeleteLink(id string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	l, ok := g.links[id]
	if !ok {
		return false
	}
	g.unindex(l)
	delete(g.links, id)
	return true
}

// Clear empties both tables.
func (g *Graph) Clear() {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.nodes = make(map[string]*Node)
	g.links = make(map[string]*Link)
	g.out = make(map[string]map[string]struct{})
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Link returns a copy of the link with the given id.
func (g *Graph) Link(id string) (Link, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	l, ok := g.links[id]
	if !ok {
		return Link{}, false
	}
	return *l, true
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	_, ok := g.nodes[id]
	return ok
}

// Nodes returns copies of all nodes sorted by id.
func (g *Graph) Nodes() []Node {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.sortedNodes()
}

// Links returns copies of all links sorted by id.
func (g *Graph) Links() []Link {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.sortedLinks()
}

// NodeCount returns the size of the node table.
func (g *Graph) NodeCount() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// LinkCount returns the size of the link table.
func (g *Graph) LinkCount() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.links)
}

// Successors returns the destination ids of every link leaving the given
// node, sorted. Dangling links are ignored. The cost is proportional to the
// node's out-degree, not to the size of the link table.
func (g *Graph) Successors(id string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var out []string
	for linkID := range g.out[id] {
		l := g.links[linkID]
		if _, ok := g.nodes[l.DestinationID]; !ok {
			continue
		}
		out = append(out, l.DestinationID)
	}
	sort.Strings(out)
	return out
}

// NodeIDs returns the ids of all nodes, sorted.
func (g *Graph) NodeIDs() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// index and unindex keep out in step with the link table. Both must be
// called with the write lock held.
func (g *Graph) index(l *Link)   { addOutgoing(g.out, l) }
func (g *Graph) unindex(l *Link) { removeOutgoing(g.out, l) }

func addOutgoing(out map[string]map[string]struct{}, l *Link) {
	ids, ok := out[l.OriginID]
	if !ok {
		ids = make(map[string]struct{})
		out[l.OriginID] = ids
	}
	ids[l.ID] = struct{}{}
}

func removeOutgoing(out map[string]map[string]struct{}, l *Link) {
	ids := out[l.OriginID]
	delete(ids, l.ID)
	if len(ids) == 0 {
		delete(out, l.OriginID)
	}
}

// sortedNodes must be called with the lock held.
func (g *Graph) sortedNodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// sortedLinks must be called with the lock held.
func (g *Graph) sortedLinks() []Link {
	out := make([]Link, 0, len(g.links))
	for _, l := range g.links {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
