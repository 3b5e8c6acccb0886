package config

import (
	"context"
)

// Loader is the interface for a format-specific seed loader.
type Loader interface {
	// Load reads seed content from the given paths and translates it into
	// the format-agnostic model. Without paths it returns the built-in seed.
	Load(ctx context.Context, paths ...string) (*Seed, error)
}
