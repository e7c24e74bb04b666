/*
Package builder is the entry point the editor uses to put nodes on the graph
and compile it.

A Builder owns the catalog registry, the live graph and a compiler over that
graph. Node kinds are looked up by label, their operation is resolved from
the registry and the result is added to the graph as a new source:

 1. BuildNode / BuildKind: instantiate a catalog kind. The node's doc is the
    kind's doc, or the registered operation's doc when the kind has none.

 2. BuildInput: instantiate the model entry point. Its only parameter,
    shape, is a node reference to a data node; the kind is not part of the
    catalog tree since every model has exactly one.

 3. CompileGraph: run the compiler from the graph's current sources.

The registry is built once at startup and shared by reference; the Builder
never mutates it.
*/
package builder
