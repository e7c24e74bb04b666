// Package catalog is the registry of buildable node kinds.
//
// The Registry stores the mapping between the operation names used in
// manifests (e.g. "arith.add") and the compiled Go operations that implement
// them, the class hierarchy nodes are checked against, and the NodeKind
// descriptors loaded from manifests.
//
// A Registry is built once at startup: modules register their operations,
// manifests add kinds, then Validate checks that manifests and Go code agree.
// After that it is only read.
package catalog
