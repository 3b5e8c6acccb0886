package dag

import (
	"fmt"
)

// FindShortestPath returns the node ids of a shortest path from `fromID` to
// `toID`, both included, following link direction. It returns nil if either
// node is missing or `toID` is unreachable. A node always reaches itself.
func FindShortestPath(g Adjacency, fromID, toID string) []string {
	if !g.HasNode(fromID) || !g.HasNode(toID) {
		return nil
	}
	if fromID == toID {
		return []string{fromID}
	}

	// Plain breadth-first search; links carry no weight.
	parent := map[string]string{fromID: ""}
	queue := []string{fromID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range g.Successors(current) {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			if next == toID {
				return walkBack(parent, fromID, toID)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func walkBack(parent map[string]string, fromID, toID string) []string {
	var path []string
	for id := toID; ; id = parent[id] {
		path = append(path, id)
		if id == fromID {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// WouldCreateCycle decides whether adding the link originID -> destinationID
// closes a cycle. An empty destinationID means the link is still being
// dragged and yields Pending. A link from a node to itself is a cycle.
func WouldCreateCycle(g Adjacency, originID, destinationID string) Verdict {
	if destinationID == "" {
		return Pending
	}
	if FindShortestPath(g, destinationID, originID) != nil {
		return Cycle
	}
	return Acyclic
}

// DetectCycles checks the whole graph for cycles. It returns a non-nil error
// naming a node involved in the first cycle found.
func DetectCycles(g Adjacency) error {
	// Use classic depth-first search with three sets of nodes:
	// permanent: nodes that have been fully visited and are not part of a cycle.
	// temporary: nodes currently in the recursion stack for the current traversal.
	// unvisited: all other nodes.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(id string) error
	visit = func(id string) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return fmt.Errorf("cycle detected involving node '%s'", id)
		}

		temporary[id] = true
		for _, next := range g.Successors(id) {
			if err := visit(next); err != nil {
				return err
			}
		}
		delete(temporary, id)
		permanent[id] = true

		return nil
	}

	for _, id := range g.NodeIDs() {
		if !permanent[id] {
			if err := visit(id); err != nil {
				return err
			}
		}
	}

	return nil
}
