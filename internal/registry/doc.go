// Package registry provides the central "glue" for the module system.
//
// The Registry maps the class names used in graph files (e.g.
// "ParticleSource") to the Go factories that build module instances, and
// holds the call classes those modules speak. Go packages under modules/
// add themselves through the Module interface.
//
// During application startup, the registry is populated and then validated
// so that a graph file can only refer to classes that exist and every module
// class only declares call classes that are registered.
package registry
