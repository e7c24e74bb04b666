/*
Package operation defines the contract between graph nodes and the work
they wrap.

An Operation receives its resolved arguments as cty values and returns one
cty value. Failures are reported with *Error, whose Code is one of a closed
set; the graph uses the code to classify node failures.

Typed adapts a plain Go function taking a struct of `cty`-tagged fields, so
modules can be written against native Go types. The struct type also lets
the catalog verify, at startup, that a manifest's parameters match the Go
code.
*/
package operation
