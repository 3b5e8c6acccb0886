// Package config defines the format-agnostic seed model the relay starts
// from, along with the Loader interface for reading it from various sources.
//
// The `config.Seed` is the only thing the relay needs to know about seed
// files. Concrete implementations of the Loader, such as for HCL, are
// provided in separate packages.
package config
