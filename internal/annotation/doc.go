/*
Package annotation implements the typed value bindings attached to node
attributes.

An Annotation is a stateless strategy; Build creates the Handle that holds
the bound value of one attribute. Get reads through the handle and reports a
MismatchError when the handle was built by a different variant. Set never
fails loudly: it reports false and leaves the handle untouched when the value
does not fit.

All values are cty values. NodeRef handles hold no value of their own; they
ask the Resolver supplied at build time for the outputs linked into their
attribute.
*/
package annotation
