// Package app wires the catalog, the working graph, the editor and the UI
// bridge into one application, with its configuration and lifecycle,
// decoupled from any specific entrypoint like a CLI.
package app
