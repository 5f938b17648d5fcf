// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// An App loads a graph description, builds the module graph, and then drives
// every Driver module once per frame. Consumers pull their inputs during
// their frame; producers recompute lazily when their inputs changed.
package app
