// Package editor exposes the operations a UI performs on the graph: build,
// link, delink and delete nodes, read and write attribute values, compile,
// and list the catalog.
//
// Every operation takes a request struct validated with
// go-playground/validator and returns a Reply. Values cross the boundary
// as JSON in the go-cty encoding, so a UI that never saw the graph's types
// can still round-trip them. Attributes are addressed either by their
// opaque id or by a "<node>.<name>" reference.
//
// Handle dispatches by operation name over raw JSON payloads; it is what
// transports such as the socket.io bridge call.
package editor
