package hclseed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/flowsync/internal/config"
	"github.com/specialistvlad/flowsync/internal/ctxlog"
	"github.com/specialistvlad/flowsync/internal/fsutil"
	"github.com/specialistvlad/flowsync/internal/graph"
	"github.com/zclconf/go-cty/cty"
)

//go:embed default_seed.hcl
var defaultSeed []byte

// DefaultSeedName is the file name reported for the built-in seed.
const DefaultSeedName = "default_seed.hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL seed loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is a struct used to decode all top-level blocks of a seed file.
type fileRoot struct {
	Nodes []*nodeBlock `hcl:"node,block"`
	Links []*linkBlock `hcl:"link,block"`
}

type nodeBlock struct {
	ID     string  `hcl:"id,label"`
	Text   string  `hcl:"text,optional"`
	Shape  string  `hcl:"shape,optional"`
	X      float64 `hcl:"x,optional"`
	Y      float64 `hcl:"y,optional"`
	Width  float64 `hcl:"width,optional"`
	Height float64 `hcl:"height,optional"`
}

type linkBlock struct {
	ID          string `hcl:"id,label"`
	Origin      string `hcl:"origin"`
	Destination string `hcl:"destination"`
	Text        string `hcl:"text,optional"`
}

// evalContext exposes the palette shapes as `shape.<name>`.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"shape": cty.ObjectVal(map[string]cty.Value{
				"start":     cty.StringVal(graph.ShapeStart),
				"input":     cty.StringVal(graph.ShapeInput),
				"process":   cty.StringVal(graph.ShapeProcess),
				"decision":  cty.StringVal(graph.ShapeDecision),
				"rectangle": cty.StringVal(graph.ShapeRectangle),
			}),
		},
	}
}

// Load parses every .hcl file under the given paths (files or directories)
// into one seed. Without paths the built-in seed is returned. The result is
// validated before it is returned.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Seed, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL seed loader started.", "path_count", len(paths))

	parser := hclparse.NewParser()
	seed := &config.Seed{}

	if len(paths) == 0 {
		file, diags := parser.ParseHCL(defaultSeed, DefaultSeedName)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse built-in seed: %w", diags)
		}
		if err := decodeInto(seed, file, DefaultSeedName); err != nil {
			return nil, err
		}
		logger.Debug("Using built-in seed.", "nodes", len(seed.Nodes), "links", len(seed.Links))
		return seed, seed.Validate()
	}

	files, err := findSeedFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered seed files.", "count", len(files))

	for _, name := range files {
		file, diags := parser.ParseHCLFile(name)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", name, diags)
		}
		if err := decodeInto(seed, file, name); err != nil {
			return nil, err
		}
	}

	if err := seed.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("HCL seed loading complete.", "nodes", len(seed.Nodes), "links", len(seed.Links))
	return seed, nil
}

func decodeInto(seed *config.Seed, file *hcl.File, name string) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", name, diags)
	}

	for _, n := range root.Nodes {
		seed.Nodes = append(seed.Nodes, config.SeedNode{
			ID:     n.ID,
			Text:   n.Text,
			Shape:  n.Shape,
			X:      n.X,
			Y:      n.Y,
			Width:  n.Width,
			Height: n.Height,
		})
	}
	for _, l := range root.Links {
		seed.Links = append(seed.Links, config.SeedLink{
			ID:          l.ID,
			Origin:      l.Origin,
			Destination: l.Destination,
			Text:        l.Text,
		})
	}
	return nil
}

// findSeedFiles expands directories into the .hcl files they contain. A path
// that does not exist is an error.
func findSeedFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return files, nil
}
