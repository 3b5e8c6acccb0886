package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/specialistvlad/flowsync/internal/graph"
)

// Seed is the diagram content a relay is populated with at startup.
type Seed struct {
	Nodes []SeedNode `validate:"dive"`
	Links []SeedLink `validate:"dive"`
}

// SeedNode is the format-agnostic representation of a `node` block.
type SeedNode struct {
	ID     string  `validate:"required"`
	Text   string
	Shape  string
	X      float64
	Y      float64
	Width  float64 `validate:"gte=0"`
	Height float64 `validate:"gte=0"`
}

// SeedLink is the format-agnostic representation of a `link` block.
type SeedLink struct {
	ID          string `validate:"required"`
	Origin      string `validate:"required"`
	Destination string `validate:"required"`
	Text        string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints, id uniqueness and that every link
// names nodes defined in the seed.
func (s *Seed) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}

	var errs []error
	nodes := make(map[string]struct{}, len(s.Nodes))
	for _, n := range s.Nodes {
		if _, dup := nodes[n.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate node %q", n.ID))
		}
		nodes[n.ID] = struct{}{}
	}
	links := make(map[string]struct{}, len(s.Links))
	for _, l := range s.Links {
		if _, dup := links[l.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate link %q", l.ID))
		}
		links[l.ID] = struct{}{}
		for _, end := range []string{l.Origin, l.Destination} {
			if _, ok := nodes[end]; !ok {
				errs = append(errs, fmt.Errorf("link %q refers to unknown node %q", l.ID, end))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid seed: %w", errors.Join(errs...))
	}
	return nil
}

// Merge appends other's nodes and links to s.
func (s *Seed) Merge(other *Seed) {
	s.Nodes = append(s.Nodes, other.Nodes...)
	s.Links = append(s.Links, other.Links...)
}

// Apply creates the seed's nodes and then its links in g through the
// regular graph operations.
func (s *Seed) Apply(g *graph.Graph) {
	for _, n := range s.Nodes {
		shape := n.Shape
		if shape == "" {
			shape = graph.ShapeRectangle
		}
		g.CreateNode(n.ID, graph.Bounds{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}, n.Text, shape)
	}
	for _, l := range s.Links {
		g.CreateLink(l.ID, l.Origin, l.Destination, l.Text)
	}
}
