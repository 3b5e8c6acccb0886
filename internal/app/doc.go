// Package app wires the relay together: it loads the seed diagram, owns the
// relay hub and the socket.io server, and serves the HTTP surface (socket.io
// transport, health, metrics and read-only diagram exports). It is decoupled
// from any specific entrypoint like a CLI.
package app
