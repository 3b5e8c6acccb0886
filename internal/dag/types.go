package dag

// Adjacency is the read-only view of a directed graph needed by the searches
// in this package.
type Adjacency interface {
	// HasNode reports whether a node with the given id exists.
	HasNode(id string) bool
	// Successors returns the ids reachable from id over one link.
	Successors(id string) []string
	// NodeIDs returns every node id.
	NodeIDs() []string
}

// Verdict is the outcome of a link cycle check.
type Verdict int

const (
	// Pending means no decision was made yet because the link has no
	// destination (it is still being dragged).
	Pending Verdict = iota
	// Acyclic means the link can be added without closing a cycle.
	Acyclic
	// Cycle means the link would close a cycle and should be cancelled.
	Cycle
)

func (v Verdict) String() string {
	switch v {
	case Pending:
		return "pending"
	case Acyclic:
		return "acyclic"
	case Cycle:
		return "cycle"
	default:
		return "unknown"
	}
}
