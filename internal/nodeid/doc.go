// internal/nodeid/doc.go

/*
Package nodeid provides the identifiers used by the graph engine.

Node and attribute ids are opaque strings minted from random UUIDs. A Ref
is the human-facing way to address an attribute, written as
`<node>.<parameter>`, e.g. `3f2a9c1d04be.units` or `3f2a9c1d04be.OUTPUT`.

This package centralizes all formatting and parsing of those forms.
*/
package nodeid
